// internal/pipeline/generic.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/user/magnus/internal/actions"
	"github.com/user/magnus/internal/prompt"
	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
)

// parseFallback is the reply used when the backend answers with text that
// is not the JSON shape we asked for.
const parseFallback = "I'm sorry, I encountered an issue and couldn't format the response correctly. This can sometimes happen with requests that involve external tools. Please try rephrasing your query, or use a specific tool like 'Web Search' if applicable."

// genericResult is the wire shape of the standard structured reply.
type genericResult struct {
	Response  string `json:"response"`
	Language  string `json:"language"`
	Location  *struct {
		Name      string  `json:"name"`
		Address   string  `json:"address"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	CodeBlock *struct {
		Language        string `json:"language"`
		Code            string `json:"code"`
		Explanation     string `json:"explanation"`
		SimulatedOutput string `json:"simulatedOutput"`
	} `json:"codeBlock"`
	Actions []struct {
		Type        string `json:"type"`
		Description string `json:"description"`
		Parameters  struct {
			To        string   `json:"to"`
			Subject   string   `json:"subject"`
			Body      string   `json:"body"`
			Summary   string   `json:"summary"`
			Details   string   `json:"description"`
			StartTime string   `json:"start_time"`
			EndTime   string   `json:"end_time"`
			Attendees []string `json:"attendees"`
			URL       string   `json:"url"`
		} `json:"parameters"`
	} `json:"actions"`
}

type agenticResult struct {
	Perceive string `json:"perceive"`
	Reason   string `json:"reason"`
	Act      string `json:"act"`
	Learn    string `json:"learn"`
}

// generic handles the default pipeline: multimodal free text when the
// history carries files, the four-step agentic workflow when a reasoning
// tool is pinned, and the structured reply schema otherwise.
func (p *Pipelines) generic(ctx context.Context, session *types.Session, tool types.Tool) *types.Message {
	persona := prompt.BuildPersona(session.Personality, p.profile)

	if prompt.HasAttachments(session.History) {
		return p.genericMultimodal(ctx, session, persona)
	}

	if tool == types.ToolThinkLonger || tool == types.ToolDeepResearch {
		return p.genericAgentic(ctx, session, persona, tool)
	}

	return p.genericStandard(ctx, session, persona)
}

// genericMultimodal sends the history, files included, without a schema.
func (p *Pipelines) genericMultimodal(ctx context.Context, session *types.Session, persona string) *types.Message {
	contents, err := p.engine.BuildHistory(ctx, persona, session.History, p.attachments)
	if err != nil {
		return textReply(fmt.Sprintf("I'm sorry, I couldn't process your request. Error: %v", err), defaultLanguage)
	}

	resp, err := p.provider.Generate(ctx, &llm.Request{Contents: contents})
	if err != nil {
		return textReply(fmt.Sprintf("I'm sorry, I couldn't process your request. Error: %v", err), defaultLanguage)
	}
	return textReply(resp.Text, "")
}

// genericAgentic runs the perceive/reason/act/learn workflow.
func (p *Pipelines) genericAgentic(ctx context.Context, session *types.Session, persona string, tool types.Tool) *types.Message {
	instruction := prompt.BuildAgenticInstruction(persona, tool)

	contents, err := p.engine.BuildHistory(ctx, instruction, session.History, p.attachments)
	if err == nil {
		var resp *llm.Response
		resp, err = p.provider.Generate(ctx, &llm.Request{
			Contents:          contents,
			SystemInstruction: instruction,
			Schema:            agenticSchema(),
		})
		if err == nil {
			var parsed agenticResult
			if jsonErr := json.Unmarshal([]byte(resp.Text), &parsed); jsonErr == nil {
				done := func(content string) types.WorkflowStep {
					return types.WorkflowStep{Done: true, Content: content}
				}
				return payloadReply("", "", &types.Payload{Workflow: &types.WorkflowState{
					Perceive: done(parsed.Perceive),
					Reason:   done(parsed.Reason),
					Act:      done(parsed.Act),
					Learn:    done(parsed.Learn),
				}})
			} else {
				err = jsonErr
			}
		}
	}
	return textReply(fmt.Sprintf("I'm sorry, I encountered an error trying to process your request with the agentic workflow. Error: %v", err), defaultLanguage)
}

// genericStandard requests the structured reply schema and converts it into
// a message, dropping any drafted action that fails validation.
func (p *Pipelines) genericStandard(ctx context.Context, session *types.Session, persona string) *types.Message {
	instruction := prompt.BuildStandardInstruction(persona, time.Now(), p.timezone)

	contents, err := p.engine.BuildHistory(ctx, instruction, session.History, p.attachments)
	if err != nil {
		return textReply(fmt.Sprintf("I'm sorry, I couldn't process your request. Error: %v", err), defaultLanguage)
	}

	resp, err := p.provider.Generate(ctx, &llm.Request{
		Contents:          contents,
		SystemInstruction: instruction,
		Schema:            genericSchema(),
	})
	if err != nil {
		return textReply(fmt.Sprintf("I'm sorry, I couldn't process your request. Error: %v", err), defaultLanguage)
	}

	var parsed genericResult
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		p.logger.Warn("structured reply did not parse", "session_id", string(session.ID), "error", err)
		return textReply(parseFallback, defaultLanguage)
	}

	msg := textReply(parsed.Response, parsed.Language)
	payload := &types.Payload{}
	populated := false

	if parsed.Location != nil {
		payload.Location = &types.Location{
			Name:      parsed.Location.Name,
			Address:   parsed.Location.Address,
			Latitude:  parsed.Location.Latitude,
			Longitude: parsed.Location.Longitude,
		}
		populated = true
	}
	if parsed.CodeBlock != nil {
		payload.CodeBlock = &types.CodeBlock{
			Language:        parsed.CodeBlock.Language,
			Code:            parsed.CodeBlock.Code,
			Explanation:     parsed.CodeBlock.Explanation,
			SimulatedOutput: parsed.CodeBlock.SimulatedOutput,
		}
		populated = true
	}
	if len(parsed.Actions) > 0 {
		drafted := make([]types.Action, 0, len(parsed.Actions))
		for _, a := range parsed.Actions {
			drafted = append(drafted, types.Action{
				Type:        types.ActionType(a.Type),
				Description: a.Description,
				Parameters: types.ActionParams{
					To:        a.Parameters.To,
					Subject:   a.Parameters.Subject,
					Body:      a.Parameters.Body,
					Summary:   a.Parameters.Summary,
					Details:   a.Parameters.Details,
					StartTime: a.Parameters.StartTime,
					EndTime:   a.Parameters.EndTime,
					Attendees: a.Parameters.Attendees,
					URL:       a.Parameters.URL,
				},
			})
		}
		if valid := actions.Filter(drafted); len(valid) > 0 {
			for i := range valid {
				if valid[i].Type != types.ActionFetchReport || valid[i].Parameters.Details != "" {
					continue
				}
				report, fetchErr := p.fetcher.FetchReport(ctx, valid[i].Parameters.URL)
				if fetchErr != nil {
					p.logger.Warn("fetch report failed", "url", valid[i].Parameters.URL, "error", fetchErr)
					continue
				}
				valid[i].Parameters.Details = report
			}
			payload.Actions = valid
			populated = true
		}
	}
	if populated {
		msg.Payload = payload
	}
	return msg
}
