// internal/pipeline/studyguide.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
)

const studyGuidePrompt = `Generate a comprehensive study guide on the topic: %q. The study guide should include a summary of the topic, a list of key concepts with their explanations, a few practice questions to test understanding, and a list of links or resources for further reading.`

// studyGuide builds a structured study guide for the topic and, for a fresh
// session, renames the chat after it.
func (p *Pipelines) studyGuide(ctx context.Context, session *types.Session, topic string) *types.Message {
	fail := func(err error) *types.Message {
		return textReply(fmt.Sprintf("Sorry, I couldn't generate the study guide. Error: %v", err), defaultLanguage)
	}

	resp, err := p.provider.Generate(ctx, &llm.Request{
		Contents: []llm.Content{llm.NewTextContent(llm.RoleUser, fmt.Sprintf(studyGuidePrompt, topic))},
		Schema:   studyGuideSchema(),
	})
	if err != nil {
		return fail(err)
	}

	var parsed struct {
		Topic       string `json:"topic"`
		Summary     string `json:"summary"`
		KeyConcepts []struct {
			Concept     string `json:"concept"`
			Explanation string `json:"explanation"`
		} `json:"keyConcepts"`
		PracticeQuestions []string `json:"practiceQuestions"`
		FurtherReading    []string `json:"furtherReading"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return fail(err)
	}

	guide := &types.StudyGuide{
		Topic:             parsed.Topic,
		Summary:           parsed.Summary,
		PracticeQuestions: parsed.PracticeQuestions,
		FurtherReading:    parsed.FurtherReading,
	}
	for _, kc := range parsed.KeyConcepts {
		guide.KeyConcepts = append(guide.KeyConcepts, types.KeyConcept{
			Concept:     kc.Concept,
			Explanation: kc.Explanation,
		})
	}

	if session.Title == "New Chat" && guide.Topic != "" {
		if err := p.sessions.SetTitle(ctx, session.ID, "Study: "+guide.Topic); err != nil {
			p.logger.Warn("study guide retitle failed", "session_id", string(session.ID), "error", err)
		}
	}

	return payloadReply("", defaultLanguage, &types.Payload{StudyGuide: guide})
}
