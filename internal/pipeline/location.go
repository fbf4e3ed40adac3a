// internal/pipeline/location.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
)

const locationInstruction = `You are a location-finding specialist. The user's request is a query to find a location.
Your primary task is to identify this specific real-world location from the user's message.
You MUST generate a helpful text description about that location.
You MUST also provide the precise location details (name, address, latitude, and longitude) in the JSON response.
Failure to provide the 'location' object is a failure of your primary function.`

// findLocation resolves the conversation's location query into a described,
// mappable place.
func (p *Pipelines) findLocation(ctx context.Context, session *types.Session) *types.Message {
	fail := func(err error) *types.Message {
		return textReply(fmt.Sprintf("I'm sorry, I couldn't find that location. The mapping service might be unavailable or the location could not be determined. Please try being more specific.\n\n**Error:** %v", err), defaultLanguage)
	}

	contents, err := p.engine.BuildHistory(ctx, locationInstruction, session.History, p.attachments)
	if err != nil {
		return fail(err)
	}

	resp, err := p.provider.Generate(ctx, &llm.Request{
		Contents:          contents,
		SystemInstruction: locationInstruction,
		Schema:            locationSchema(),
	})
	if err != nil {
		return fail(err)
	}

	var parsed struct {
		Response string `json:"response"`
		Language string `json:"language"`
		Location struct {
			Name      string  `json:"name"`
			Address   string  `json:"address"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return fail(err)
	}

	return payloadReply(parsed.Response, parsed.Language, &types.Payload{Location: &types.Location{
		Name:      parsed.Location.Name,
		Address:   parsed.Location.Address,
		Latitude:  parsed.Location.Latitude,
		Longitude: parsed.Location.Longitude,
	}})
}
