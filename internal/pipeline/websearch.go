// internal/pipeline/websearch.go
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
)

// webSearch answers with the search tool enabled and no response schema,
// then detects the reply's language with a side call. Grounding sources are
// attached to the message.
func (p *Pipelines) webSearch(ctx context.Context, session *types.Session) *types.Message {
	contents, err := p.engine.BuildHistory(ctx, "", session.History, p.attachments)
	if err != nil {
		return textReply(fmt.Sprintf("I'm sorry, I encountered an error during the web search. Error: %v", err), defaultLanguage)
	}

	resp, err := p.provider.Generate(ctx, &llm.Request{
		Contents:  contents,
		WebSearch: true,
	})
	if err != nil {
		return textReply(fmt.Sprintf("I'm sorry, I encountered an error during the web search. Error: %v", err), defaultLanguage)
	}

	msg := textReply(resp.Text, p.detectLanguage(ctx, resp.Text))
	for _, s := range resp.Sources {
		msg.Sources = append(msg.Sources, types.Source{URI: s.URI, Title: s.Title})
	}
	return msg
}

// detectLanguage asks the backend for a BCP-47 code; failures fall back to
// the default.
func (p *Pipelines) detectLanguage(ctx context.Context, text string) string {
	if text == "" {
		return defaultLanguage
	}
	resp, err := p.provider.Generate(ctx, &llm.Request{
		Contents: []llm.Content{llm.NewTextContent(llm.RoleUser,
			fmt.Sprintf("Detect the BCP-47 language code for the following text. Respond with only the code, e.g., \"en-US\".\n\nText: %q", text))},
	})
	if err != nil {
		p.logger.Warn("language detection failed", "error", err)
		return defaultLanguage
	}
	code := strings.TrimSpace(resp.Text)
	if code == "" {
		return defaultLanguage
	}
	return code
}
