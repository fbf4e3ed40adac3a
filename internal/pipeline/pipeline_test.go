package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/user/magnus/internal/gateway"
	"github.com/user/magnus/internal/prompt"
	"github.com/user/magnus/internal/state"
	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
	"github.com/user/magnus/pkg/llm/llmtest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	pipelines *Pipelines
	sessions  *state.SessionStore
	provider  *llmtest.Provider
}

func newFixture(t *testing.T, handler func(*llm.Request) (*llm.Response, error)) *fixture {
	t.Helper()
	dir := t.TempDir()
	sessions := state.NewSessionStore(dir)
	attachments := state.NewAttachmentStore(dir)
	engine, err := prompt.New(128000, 4096)
	if err != nil {
		t.Fatal(err)
	}
	provider := llmtest.New()
	provider.Handler = handler
	p := New(provider, sessions, attachments, engine, nil, "UTC", testLogger())
	return &fixture{pipelines: p, sessions: sessions, provider: provider}
}

func (f *fixture) run(t *testing.T, text string, tool types.Tool) (*types.Session, *types.Message) {
	t.Helper()
	ctx := context.Background()
	session, err := f.sessions.ResolveOrCreate(ctx, types.NewSessionKey("test"))
	if err != nil {
		t.Fatal(err)
	}

	var reply *types.Message
	run := gateway.NewRun(session.ID, &types.InboundEvent{
		Source:     "test",
		SessionKey: session.Key,
		Text:       text,
		PinnedTool: tool,
	})
	run.Ctx = ctx
	run.OnComplete = func(msg *types.Message) { reply = msg }

	if err := f.pipelines.ProcessRun(run); err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}

	got, err := f.sessions.Get(ctx, session.ID)
	if err != nil {
		t.Fatal(err)
	}
	return got, reply
}

// titleAware wraps a handler with a canned reply for title generation calls.
func titleAware(title string, handler func(*llm.Request) (*llm.Response, error)) func(*llm.Request) (*llm.Response, error) {
	return func(req *llm.Request) (*llm.Response, error) {
		if len(req.Contents) == 1 && strings.Contains(req.Contents[0].Parts[0].Text, "concise title") {
			return &llm.Response{Text: title}, nil
		}
		return handler(req)
	}
}

func TestProcessRunGeneric(t *testing.T) {
	f := newFixture(t, titleAware(`"Black Hole Basics"`, func(req *llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: `{"response":"Black holes are collapsed stars.","language":"en-US"}`}, nil
	}))

	session, reply := f.run(t, "tell me about black holes", types.ToolNone)

	if len(session.History) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(session.History))
	}
	if session.History[0].Role != types.RoleUser || session.History[0].Content != "tell me about black holes" {
		t.Errorf("unexpected user turn: %+v", session.History[0])
	}
	if reply == nil || reply.Content != "Black holes are collapsed stars." {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if reply.Language != "en-US" {
		t.Errorf("Language = %q", reply.Language)
	}

	// Titling is fire and forget; poll for it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, _ := f.sessions.Get(context.Background(), session.ID)
		if got.Title == "Black Hole Basics" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("title never set, still %q", got.Title)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestProcessRunParseFallback(t *testing.T) {
	f := newFixture(t, titleAware("t", func(req *llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: "this is not json"}, nil
	}))

	session, reply := f.run(t, "hello there", types.ToolNone)

	if len(session.History) != 2 {
		t.Fatalf("expected exactly one reply, history has %d messages", len(session.History))
	}
	if reply.Content != parseFallback {
		t.Errorf("Content = %q", reply.Content)
	}
	if reply.Language != "en-US" {
		t.Errorf("Language = %q", reply.Language)
	}
	if reply.Payload != nil {
		t.Error("fallback reply must not carry a payload")
	}
}

func TestProcessRunTransportError(t *testing.T) {
	f := newFixture(t, titleAware("t", func(req *llm.Request) (*llm.Response, error) {
		return nil, errors.New("backend down")
	}))

	session, reply := f.run(t, "hello there", types.ToolNone)

	if len(session.History) != 2 {
		t.Fatalf("expected exactly one reply, history has %d messages", len(session.History))
	}
	if !strings.Contains(reply.Content, "backend down") {
		t.Errorf("apology must include the error, got %q", reply.Content)
	}
}

func TestProcessRunTranslation(t *testing.T) {
	f := newFixture(t, titleAware("t", func(req *llm.Request) (*llm.Response, error) {
		if !strings.Contains(req.Contents[0].Parts[0].Text, `Translate "ohayo" into japanese`) {
			return nil, fmt.Errorf("unexpected request: %q", req.Contents[0].Parts[0].Text)
		}
		return &llm.Response{Text: `{"translation":"おはよう","phonetic":"Ohayou","languageCode":"ja-JP"}`}, nil
	}))

	_, reply := f.run(t, "Ohayo in Japanese", types.ToolNone)

	if reply.Content != "おはよう (Ohayou)" {
		t.Errorf("Content = %q", reply.Content)
	}
	if reply.Language != "ja-JP" {
		t.Errorf("Language = %q", reply.Language)
	}
	tr := reply.Payload.Translation
	if tr == nil || tr.SourceText != "ohayo" || tr.Language != "japanese" {
		t.Errorf("unexpected translation payload: %+v", tr)
	}
}

func TestProcessRunMusic(t *testing.T) {
	f := newFixture(t, titleAware("t", func(req *llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: `{
			"title": "Summer Drift",
			"artist": "Silicon Symphony",
			"description": "Breezy synth pop.",
			"tempo": 112,
			"mood": "upbeat",
			"youtubeLinks": [{"title": "Ref 1", "url": "https://youtu.be/aaaaaaaaaaa"}]
		}`}, nil
	}))

	_, reply := f.run(t, "create a song about summer", types.ToolNone)

	m := reply.Payload.Music
	if m == nil {
		t.Fatal("expected music payload")
	}
	if m.Tempo != 112 || m.Mood != "upbeat" || m.Title != "Summer Drift" {
		t.Errorf("unexpected concept: %+v", m)
	}
	if len(m.Links) != 1 || m.Links[0].Title != "Ref 1" {
		t.Errorf("unexpected links: %+v", m.Links)
	}
}

func TestProcessRunVideoSearch(t *testing.T) {
	f := newFixture(t, titleAware("t", func(req *llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: `[
			{"title": "Cats Compilation", "description": "Cats.", "url": "https://youtu.be/bbbbbbbbbbb", "videoId": "bbbbbbbbbbb"}
		]`}, nil
	}))

	_, reply := f.run(t, "search for videos of cats", types.ToolNone)

	vs := reply.Payload.VideoSearch
	if vs == nil {
		t.Fatal("expected video search payload")
	}
	if vs.Query != "search for videos of cats" {
		t.Errorf("Query = %q", vs.Query)
	}
	if len(vs.Results) != 1 || vs.Results[0].VideoID != "bbbbbbbbbbb" {
		t.Errorf("unexpected results: %+v", vs.Results)
	}
}

func TestProcessRunPlayByID(t *testing.T) {
	f := newFixture(t, titleAware("t", func(req *llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: `{"videoId": "dQw4w9WgXcQ", "songTitle": "Never Gonna Give You Up", "artistName": "Rick Astley"}`}, nil
	}))

	_, reply := f.run(t, "https://youtu.be/dQw4w9WgXcQ", types.ToolNone)

	v := reply.Payload.Video
	if v == nil {
		t.Fatal("expected playback payload")
	}
	if v.VideoID != "dQw4w9WgXcQ" || v.Artist != "Rick Astley" {
		t.Errorf("unexpected playback: %+v", v)
	}
	if !strings.Contains(reply.Content, "Now playing the video you linked") {
		t.Errorf("Content = %q", reply.Content)
	}
}

func TestProcessRunMultiAgent(t *testing.T) {
	f := newFixture(t, titleAware("t", func(req *llm.Request) (*llm.Response, error) {
		text := req.Contents[0].Parts[0].Text
		switch {
		case strings.Contains(text, "project manager"):
			return &llm.Response{Text: `{
				"plan": "Research then synthesize.",
				"tasks": [
					{"role": "Researcher", "task": "research"},
					{"role": "Synthesizer", "task": "synthesize"}
				]
			}`}, nil
		case strings.Contains(req.SystemInstruction, "You are the Researcher"):
			return &llm.Response{Text: "research notes"}, nil
		case strings.Contains(req.SystemInstruction, "You are the Synthesizer"):
			return &llm.Response{Text: "final synthesis"}, nil
		default:
			return nil, fmt.Errorf("unexpected request")
		}
	}))

	session, reply := f.run(t, "plan my product launch", types.ToolTeamOfExperts)

	if len(session.History) != 2 {
		t.Fatalf("expected user turn plus one collaboration message, got %d", len(session.History))
	}
	st := session.History[1].Payload.MultiAgent
	if st == nil {
		t.Fatal("expected collaboration payload")
	}
	if st.FinalResponse != "final synthesis" {
		t.Errorf("FinalResponse = %q", st.FinalResponse)
	}
	for i, task := range st.Tasks {
		if !task.Complete {
			t.Errorf("task %d not complete", i)
		}
	}
	if reply.Content != "final synthesis" {
		t.Errorf("reply content = %q", reply.Content)
	}
}

func TestProcessRunAgenticWorkflow(t *testing.T) {
	f := newFixture(t, titleAware("t", func(req *llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: `{"perceive": "p", "reason": "r", "act": "a", "learn": "l"}`}, nil
	}))

	_, reply := f.run(t, "compare sorting algorithms", types.ToolThinkLonger)

	w := reply.Payload.Workflow
	if w == nil {
		t.Fatal("expected workflow payload")
	}
	if !w.Perceive.Done || !w.Reason.Done || !w.Act.Done || !w.Learn.Done {
		t.Errorf("all steps must be done: %+v", w)
	}
	if w.Learn.Content != "l" {
		t.Errorf("Learn = %q", w.Learn.Content)
	}
}

func TestProcessRunWebSearch(t *testing.T) {
	f := newFixture(t, titleAware("t", func(req *llm.Request) (*llm.Response, error) {
		if req.WebSearch {
			return &llm.Response{
				Text:    "Les actualités du jour.",
				Sources: []llm.Source{{URI: "https://example.com/news", Title: "Example News"}},
			}, nil
		}
		if strings.Contains(req.Contents[0].Parts[0].Text, "Detect the BCP-47") {
			return &llm.Response{Text: "fr-FR"}, nil
		}
		return nil, fmt.Errorf("unexpected request")
	}))

	_, reply := f.run(t, "latest news", types.ToolWebSearch)

	if reply.Language != "fr-FR" {
		t.Errorf("Language = %q", reply.Language)
	}
	if len(reply.Sources) != 1 || reply.Sources[0].URI != "https://example.com/news" || reply.Sources[0].Title != "Example News" {
		t.Errorf("unexpected sources: %+v", reply.Sources)
	}
}

func TestProcessRunStudyGuideRetitles(t *testing.T) {
	f := newFixture(t, titleAware("t", func(req *llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: `{
			"topic": "Photosynthesis",
			"summary": "How plants convert light.",
			"keyConcepts": [{"concept": "Chlorophyll", "explanation": "Green pigment."}],
			"practiceQuestions": ["What is the role of light?"],
			"furtherReading": ["https://example.com/photosynthesis"]
		}`}, nil
	}))

	ctx := context.Background()
	session, err := f.sessions.ResolveOrCreate(ctx, types.NewSessionKey("study"))
	if err != nil {
		t.Fatal(err)
	}
	// An earlier turn keeps auto-titling out of the picture.
	f.sessions.Append(ctx, session.ID, &types.Message{ID: types.NewMessageID(), Role: types.RoleUser, Content: "hi"})

	run := gateway.NewRun(session.ID, &types.InboundEvent{
		SessionKey: session.Key,
		Text:       "photosynthesis",
		PinnedTool: types.ToolStudy,
	})
	run.Ctx = ctx
	if err := f.pipelines.ProcessRun(run); err != nil {
		t.Fatal(err)
	}

	got, _ := f.sessions.Get(ctx, session.ID)
	if got.Title != "Study: Photosynthesis" {
		t.Errorf("Title = %q", got.Title)
	}
	last := got.History[len(got.History)-1]
	sg := last.Payload.StudyGuide
	if sg == nil || sg.Topic != "Photosynthesis" || len(sg.KeyConcepts) != 1 {
		t.Errorf("unexpected study guide: %+v", sg)
	}
}

func TestProcessRunFiltersInvalidActions(t *testing.T) {
	f := newFixture(t, titleAware("t", func(req *llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: `{
			"response": "Drafted the email.",
			"language": "en-US",
			"actions": [
				{"type": "send_email", "description": "ok", "parameters": {"to": "a@example.com", "subject": "Hi", "body": "Hello"}},
				{"type": "send_email", "description": "bad", "parameters": {"to": "not-an-address"}}
			]
		}`}, nil
	}))

	_, reply := f.run(t, "email a@example.com about the launch", types.ToolNone)

	if reply.Payload == nil || len(reply.Payload.Actions) != 1 {
		t.Fatalf("expected exactly one surviving action, got %+v", reply.Payload)
	}
	if reply.Payload.Actions[0].Parameters.To != "a@example.com" {
		t.Errorf("unexpected action: %+v", reply.Payload.Actions[0])
	}
}

func TestPlayByQueryRejectsBadID(t *testing.T) {
	f := newFixture(t, func(req *llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: `{"videoId": "short", "songTitle": "X", "artistName": "Y"}`}, nil
	})

	reply := f.pipelines.PlayByQuery(context.Background(), "play bohemian rhapsody")
	if reply.Payload != nil {
		t.Error("invalid ID must not produce a playback payload")
	}
	if !strings.Contains(reply.Content, "invalid YouTube video ID") {
		t.Errorf("Content = %q", reply.Content)
	}
}

func TestProcessRunNoProvider(t *testing.T) {
	dir := t.TempDir()
	sessions := state.NewSessionStore(dir)
	engine, err := prompt.New(128000, 4096)
	if err != nil {
		t.Fatalf("prompt.New: %v", err)
	}
	p := New(nil, sessions, state.NewAttachmentStore(dir), engine, nil, "UTC", testLogger())

	run := gateway.NewRun(types.NewSessionID(), &types.InboundEvent{Text: "hi"})
	if err := p.ProcessRun(run); err == nil {
		t.Fatal("expected configuration error")
	}
}
