// Package gemini implements llm.Provider on top of the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/user/magnus/pkg/llm"
)

// Client implements the llm.Provider interface for the Gemini API.
type Client struct {
	client *genai.Client
	config *llm.Config
}

// New creates a Gemini client with the given configuration.
func New(ctx context.Context, config *llm.Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, config: config}, nil
}

// Generate sends a single generation request and returns the full response.
func (c *Client) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	contents := make([]*genai.Content, 0, len(req.Contents))
	for _, content := range req.Contents {
		parts := make([]*genai.Part, 0, len(content.Parts))
		for _, p := range content.Parts {
			if p.Text != "" {
				parts = append(parts, &genai.Part{Text: p.Text})
			}
			if len(p.Data) > 0 {
				parts = append(parts, &genai.Part{
					InlineData: &genai.Blob{MIMEType: p.MimeType, Data: p.Data},
				})
			}
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: content.Role, Parts: parts})
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("request has no content")
	}

	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}
	if c.config.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = c.config.MaxOutputTokens
	}
	if c.config.Temperature != 0 {
		temp := c.config.Temperature
		cfg.Temperature = &temp
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenaiSchema(req.Schema)
	}
	// The API rejects requests combining the search tool with a response
	// schema, so grounding only applies to schema-less requests.
	if req.WebSearch && req.Schema == nil {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.config.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned")
	}

	out := &llm.Response{Text: strings.TrimSpace(resp.Text())}
	if gm := resp.Candidates[0].GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk.Web != nil && chunk.Web.URI != "" {
				out.Sources = append(out.Sources, llm.Source{
					URI:   chunk.Web.URI,
					Title: chunk.Web.Title,
				})
			}
		}
	}
	return out, nil
}

// toGenaiSchema translates the provider-neutral schema tree into the Gemini
// native representation.
func toGenaiSchema(s *llm.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
		Items:       toGenaiSchema(s.Items),
	}
	switch s.Type {
	case llm.TypeObject:
		out.Type = genai.TypeObject
	case llm.TypeArray:
		out.Type = genai.TypeArray
	case llm.TypeString:
		out.Type = genai.TypeString
	case llm.TypeNumber:
		out.Type = genai.TypeNumber
	case llm.TypeInteger:
		out.Type = genai.TypeInteger
	case llm.TypeBoolean:
		out.Type = genai.TypeBoolean
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}
