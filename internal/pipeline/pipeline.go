// internal/pipeline/pipeline.go

// Package pipeline holds the handler pipelines a routed prompt can land in.
// Every pipeline produces exactly one reply message; backend and parse
// failures are converted into apology messages rather than propagated.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/user/magnus/internal/actions"
	"github.com/user/magnus/internal/gateway"
	"github.com/user/magnus/internal/intent"
	"github.com/user/magnus/internal/orchestrator"
	"github.com/user/magnus/internal/prompt"
	"github.com/user/magnus/internal/router"
	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
)

const defaultLanguage = "en-US"

// Pipelines owns the routing target handlers and their shared dependencies.
type Pipelines struct {
	provider    llm.Provider
	sessions    types.SessionStore
	attachments types.AttachmentStore
	engine      *prompt.Engine
	orch        *orchestrator.Orchestrator
	fetcher     *actions.Fetcher
	profile     *types.Profile
	timezone    string
	logger      *slog.Logger
}

// New wires the pipelines. profile may be nil.
func New(
	provider llm.Provider,
	sessions types.SessionStore,
	attachments types.AttachmentStore,
	engine *prompt.Engine,
	profile *types.Profile,
	timezone string,
	logger *slog.Logger,
) *Pipelines {
	if timezone == "" {
		timezone = "UTC"
	}
	return &Pipelines{
		provider:    provider,
		sessions:    sessions,
		attachments: attachments,
		engine:      engine,
		orch:        orchestrator.New(provider, logger),
		fetcher:     actions.NewFetcher(),
		profile:     profile,
		timezone:    timezone,
		logger:      logger,
	}
}

// ProcessRun is the queue processor: it persists the user's turn, routes the
// prompt, executes the chosen pipeline, persists the reply, and hands it to
// the run's completion callback.
func (p *Pipelines) ProcessRun(run *gateway.Run) error {
	if p.provider == nil {
		return router.ErrNotConfigured
	}

	ctx := run.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now()
	run.StartedAt = &now
	run.Status = gateway.RunStatusRunning

	session, err := p.sessions.Get(ctx, run.SessionID)
	if err != nil {
		return err
	}
	firstTurn := len(session.History) == 0

	userMsg, err := p.persistUserTurn(ctx, session, run.Event)
	if err != nil {
		return err
	}
	session.History = append(session.History, userMsg)

	if firstTurn && run.Event.Text != "" {
		go p.autoTitle(context.Background(), session.ID, run.Event.Text)
	}

	classification := intent.Classify(run.Event.Text)
	pipelineID := router.Route(run.Event.Text, run.Event.PinnedTool, classification)

	p.logger.Info("routed prompt",
		"session_id", string(session.ID),
		"pipeline", string(pipelineID),
		"tool", string(run.Event.PinnedTool))

	var reply *types.Message
	switch pipelineID {
	case router.PipelineMultiAgent:
		reply = p.runMultiAgent(ctx, session, run.Event.Text)
	case router.PipelinePlayByID:
		reply = p.playByID(ctx, classification.VideoID)
	case router.PipelineVideoSearch:
		reply = p.searchVideos(ctx, run.Event.Text)
	case router.PipelineTranslation:
		reply = p.translate(ctx, classification.Translation)
	case router.PipelineWebSearch:
		reply = p.webSearch(ctx, session)
	case router.PipelineMusic:
		reply = p.composeMusic(ctx, run.Event.Text)
	case router.PipelineLocation:
		reply = p.findLocation(ctx, session)
	case router.PipelineStudyGuide:
		reply = p.studyGuide(ctx, session, run.Event.Text)
	default:
		reply = p.generic(ctx, session, run.Event.PinnedTool)
	}

	// The multi-agent pipeline persists its own placeholder message and
	// mutates it in place as the run progresses.
	if pipelineID != router.PipelineMultiAgent {
		if err := p.sessions.Append(ctx, session.ID, reply); err != nil {
			return err
		}
	}

	ended := time.Now()
	run.EndedAt = &ended
	run.Status = gateway.RunStatusComplete

	if run.OnComplete != nil {
		run.OnComplete(reply)
	}
	return nil
}

// persistUserTurn stores any uploads and appends the user's message.
func (p *Pipelines) persistUserTurn(ctx context.Context, session *types.Session, event *types.InboundEvent) (*types.Message, error) {
	msg := &types.Message{
		ID:        types.NewMessageID(),
		Role:      types.RoleUser,
		Content:   event.Text,
		CreatedAt: time.Now(),
	}
	for _, up := range event.Uploads {
		att, err := p.attachments.Put(ctx, session.ID, up.Name, up.MimeType, up.Data)
		if err != nil {
			return nil, err
		}
		msg.Attachments = append(msg.Attachments, att)
	}
	if err := p.sessions.Append(ctx, session.ID, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// autoTitle names a fresh session after its opening prompt. Failures only log.
func (p *Pipelines) autoTitle(ctx context.Context, sessionID types.SessionID, text string) {
	resp, err := p.provider.Generate(ctx, &llm.Request{
		Contents: []llm.Content{llm.NewTextContent(llm.RoleUser,
			"Create a very short, concise title (4 words max) for the following user query: \""+text+"\"")},
	})
	if err != nil {
		p.logger.Warn("title generation failed", "session_id", string(sessionID), "error", err)
		return
	}
	title := strings.TrimSpace(strings.ReplaceAll(resp.Text, `"`, ""))
	if title == "" {
		return
	}
	if err := p.sessions.SetTitle(ctx, sessionID, title); err != nil {
		p.logger.Warn("set title failed", "session_id", string(sessionID), "error", err)
	}
}

// reply builds a model message carrying plain text.
func textReply(content, language string) *types.Message {
	return &types.Message{
		ID:        types.NewMessageID(),
		Role:      types.RoleModel,
		Content:   content,
		Language:  language,
		CreatedAt: time.Now(),
	}
}

// payloadReply builds a model message carrying a structured payload.
func payloadReply(content, language string, payload *types.Payload) *types.Message {
	msg := textReply(content, language)
	msg.Payload = payload
	return msg
}
