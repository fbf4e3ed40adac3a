// internal/prompt/engine.go
package prompt

import (
	"context"
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
)

// Flat token cost charged for each inline image or document part.
const attachmentTokenCost = 258

// Engine assembles token-budgeted generation requests from session history.
type Engine struct {
	tokenizer *tiktoken.Tiktoken
	maxTokens int
	reserve   int
}

// New creates a prompt engine with the specified token budget.
// maxTokens is the model's context window size; reserve is the number of
// tokens kept free for the model's response.
func New(maxTokens, reserve int) (*Engine, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("get tokenizer: %w", err)
	}
	return &Engine{
		tokenizer: enc,
		maxTokens: maxTokens,
		reserve:   reserve,
	}, nil
}

// CountTokens returns the token count for a string.
func (e *Engine) CountTokens(text string) int {
	return len(e.tokenizer.Encode(text, nil, nil))
}

// messageTokens approximates the cost of one message.
func (e *Engine) messageTokens(msg *types.Message) int {
	n := e.CountTokens(msg.Content)
	n += attachmentTokenCost * len(msg.Attachments)
	return n
}

// BuildHistory converts session history into generation contents, newest
// turns kept, respecting the token budget left after the system instruction.
// Attachment bytes are loaded through the store; empty messages and messages
// whose only content is a payload are skipped.
func (e *Engine) BuildHistory(
	ctx context.Context,
	systemInstruction string,
	history []*types.Message,
	attachments types.AttachmentStore,
) ([]llm.Content, error) {
	inputBudget := e.maxTokens - e.reserve
	remaining := inputBudget - e.CountTokens(systemInstruction)

	// 70% for history, the rest is safety margin.
	historyBudget := int(float64(remaining) * 0.7)

	// Walk backwards so the most recent turns survive truncation.
	var kept []*types.Message
	usedTokens := 0
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.Content == "" && len(msg.Attachments) == 0 {
			continue
		}

		msgTokens := e.messageTokens(msg)
		if usedTokens+msgTokens > historyBudget {
			break
		}
		kept = append(kept, msg)
		usedTokens += msgTokens
	}

	// Restore chronological order.
	contents := make([]llm.Content, 0, len(kept))
	for i := len(kept) - 1; i >= 0; i-- {
		content, err := e.toContent(ctx, kept[i], attachments)
		if err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, nil
}

func (e *Engine) toContent(ctx context.Context, msg *types.Message, attachments types.AttachmentStore) (llm.Content, error) {
	role := llm.RoleUser
	if msg.Role == types.RoleModel {
		role = llm.RoleModel
	}

	content := llm.Content{Role: role}
	if msg.Content != "" {
		content.Parts = append(content.Parts, llm.Part{Text: msg.Content})
	}
	for _, att := range msg.Attachments {
		if attachments == nil {
			continue
		}
		data, err := attachments.Get(ctx, att.ID)
		if err != nil {
			return llm.Content{}, fmt.Errorf("load attachment %s: %w", att.ID, err)
		}
		content.Parts = append(content.Parts, llm.Part{MimeType: att.MimeType, Data: data})
	}
	return content, nil
}

// HasAttachments reports whether any message in the history carries files.
func HasAttachments(history []*types.Message) bool {
	for _, msg := range history {
		if len(msg.Attachments) > 0 {
			return true
		}
	}
	return false
}
