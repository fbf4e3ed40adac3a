//go:build integration

package test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/user/magnus/internal/gateway"
	"github.com/user/magnus/internal/pipeline"
	"github.com/user/magnus/internal/prompt"
	"github.com/user/magnus/internal/state"
	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
	"github.com/user/magnus/pkg/llm/llmtest"
)

func newTestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()

	sessions := state.NewSessionStore(dir)

	gw := gateway.New(sessions)

	ctx := context.Background()
	gw.Start(ctx)
	defer gw.Stop()

	// Configure queue processor to append a reply per run
	gw.Queue.SetProcessor(func(run *gateway.Run) error {
		time.Sleep(10 * time.Millisecond)
		return sessions.Append(ctx, run.SessionID, &types.Message{
			ID:      types.NewMessageID(),
			Role:    types.RoleModel,
			Content: "reply to " + run.Event.Text,
		})
	})

	// Send multiple messages from same user
	for i := 0; i < 3; i++ {
		inbound := &types.InboundEvent{
			Source:     "test",
			SessionKey: types.NewSessionKey("test", "user1"),
			UserID:     "user1",
			Text:       fmt.Sprintf("message %d", i),
		}

		if err := gw.HandleInbound(ctx, inbound); err != nil {
			t.Fatal(err)
		}
	}

	// Wait for processing
	if !gw.Queue.WaitIdle(2 * time.Second) {
		t.Fatal("queue did not drain")
	}

	// Verify session was created
	sessionList, err := sessions.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessionList) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessionList))
	}

	// Verify replies were recorded in FIFO order
	session := sessionList[0]
	if len(session.History) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(session.History))
	}
	for i, msg := range session.History {
		want := fmt.Sprintf("reply to message %d", i)
		if msg.Content != want {
			t.Errorf("message %d: expected %q, got %q", i, want, msg.Content)
		}
	}
}

func TestEndToEndWithPipelines(t *testing.T) {
	dir := t.TempDir()

	sessions := state.NewSessionStore(dir)
	attachments := state.NewAttachmentStore(dir)

	provider := llmtest.New()
	provider.Handler = func(req *llm.Request) (*llm.Response, error) {
		if len(req.Contents) == 1 && strings.Contains(req.Contents[0].Parts[0].Text, "concise title") {
			return &llm.Response{Text: "Greeting"}, nil
		}
		return &llm.Response{Text: `{"response":"Hello from the model!","language":"en-US"}`}, nil
	}

	engine, err := prompt.New(128000, 4096)
	if err != nil {
		t.Fatal(err)
	}

	logger := newTestLogger(t)
	pipelines := pipeline.New(provider, sessions, attachments, engine, nil, "UTC", logger)

	gw := gateway.New(sessions)
	gw.Queue.SetProcessor(pipelines.ProcessRun)

	ctx := context.Background()
	gw.Start(ctx)
	defer gw.Stop()

	var reply *types.Message
	done := make(chan struct{})

	inbound := &types.InboundEvent{
		Source:     "test",
		SessionKey: types.NewSessionKey("test", "user1"),
		UserID:     "user1",
		Text:       "hello",
	}

	err = gw.HandleInbound(ctx, inbound, gateway.WithOnComplete(func(msg *types.Message) {
		reply = msg
		close(done)
	}))
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for response")
	}

	if reply.Content != "Hello from the model!" {
		t.Errorf("expected 'Hello from the model!', got %q", reply.Content)
	}

	sessionList, err := sessions.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessionList) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessionList))
	}
	if got := len(sessionList[0].History); got != 2 {
		t.Errorf("expected 2 messages, got %d", got)
	}
}

func TestEndToEndMultiAgent(t *testing.T) {
	dir := t.TempDir()

	sessions := state.NewSessionStore(dir)
	attachments := state.NewAttachmentStore(dir)

	provider := llmtest.New()
	provider.Handler = func(req *llm.Request) (*llm.Response, error) {
		text := req.Contents[0].Parts[0].Text
		switch {
		case strings.Contains(text, "concise title"):
			return &llm.Response{Text: "Launch Plan"}, nil
		case strings.Contains(text, "project manager"):
			return &llm.Response{Text: `{"plan":"One step.","tasks":[{"role":"Synthesizer","task":"answer"}]}`}, nil
		default:
			return &llm.Response{Text: "the final answer"}, nil
		}
	}

	engine, err := prompt.New(128000, 4096)
	if err != nil {
		t.Fatal(err)
	}

	pipelines := pipeline.New(provider, sessions, attachments, engine, nil, "UTC", newTestLogger(t))

	gw := gateway.New(sessions)
	gw.Queue.SetProcessor(pipelines.ProcessRun)

	ctx := context.Background()
	gw.Start(ctx)
	defer gw.Stop()

	done := make(chan *types.Message, 1)
	err = gw.HandleInbound(ctx, &types.InboundEvent{
		Source:     "test",
		SessionKey: types.NewSessionKey("test", "user1"),
		Text:       "plan the launch",
		PinnedTool: types.ToolTeamOfExperts,
	}, gateway.WithOnComplete(func(msg *types.Message) {
		done <- msg
	}))
	if err != nil {
		t.Fatal(err)
	}

	var reply *types.Message
	select {
	case reply = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for response")
	}

	if reply.Payload == nil || reply.Payload.MultiAgent == nil {
		t.Fatal("expected a collaboration payload")
	}
	if reply.Payload.MultiAgent.FinalResponse != "the final answer" {
		t.Errorf("FinalResponse = %q", reply.Payload.MultiAgent.FinalResponse)
	}

	// The persisted message carries the final state too.
	sessionList, err := sessions.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	last := sessionList[0].History[len(sessionList[0].History)-1]
	if last.Payload == nil || last.Payload.MultiAgent == nil || !last.Payload.MultiAgent.Tasks[0].Complete {
		t.Errorf("persisted collaboration state incomplete: %+v", last.Payload)
	}
}
