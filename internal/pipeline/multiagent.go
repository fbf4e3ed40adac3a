// internal/pipeline/multiagent.go
package pipeline

import (
	"context"
	"time"

	"github.com/user/magnus/internal/orchestrator"
	"github.com/user/magnus/internal/types"
)

// runMultiAgent appends a placeholder message for the collaboration right
// away, then lets the orchestrator drive it, persisting every state
// snapshot onto that same message so observers can watch progress.
func (p *Pipelines) runMultiAgent(ctx context.Context, session *types.Session, query string) *types.Message {
	placeholder := &types.Message{
		ID:   types.NewMessageID(),
		Role: types.RoleModel,
		Payload: &types.Payload{MultiAgent: &types.MultiAgentState{
			OriginalQuery: query,
			Plan:          orchestrator.PlanningMessage,
		}},
		CreatedAt: time.Now(),
	}
	if err := p.sessions.Append(ctx, session.ID, placeholder); err != nil {
		p.logger.Error("append collaboration placeholder failed", "session_id", string(session.ID), "error", err)
		return textReply("Sorry, something went wrong starting the collaboration.", defaultLanguage)
	}

	final := p.orch.Run(ctx, query, func(snapshot *types.MultiAgentState) {
		if err := p.sessions.UpdateRun(ctx, session.ID, placeholder.ID, snapshot); err != nil {
			p.logger.Warn("persist collaboration snapshot failed", "session_id", string(session.ID), "error", err)
		}
	})

	placeholder.Payload.MultiAgent = final
	placeholder.Content = final.FinalResponse
	return placeholder
}
