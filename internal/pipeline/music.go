// internal/pipeline/music.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
)

const musicPrompt = `The user wants you to create music based on this prompt: %q.

You are a creative music AI. Since you cannot generate audio directly, your task is to generate a detailed CONCEPT for a song that a developer can use to programmatically generate a simple audio loop. This concept must include:
1.  A creative and fitting song title.
2.  An artist name (be creative, e.g., 'Magnus AI & The Agents', 'Silicon Symphony', 'Ghost in the Machine').
3.  A detailed description of the song's mood, style, instrumentation, and overall feel.
4.  A tempo in BPM (beats per minute), as a number.
5.  A single mood keyword from the following list: 'upbeat', 'somber', 'ethereal', 'driving', 'mellow'.
6.  Crucially, you must also find exactly 3 real, existing songs on YouTube that closely match the user's request. For each song, provide its title and its full, correct YouTube URL.`

// composeMusic generates a song concept with reference tracks.
func (p *Pipelines) composeMusic(ctx context.Context, text string) *types.Message {
	fail := func(err error) *types.Message {
		return textReply(fmt.Sprintf("I'm sorry, I encountered an error creating the music concept. Error: %v", err), defaultLanguage)
	}

	resp, err := p.provider.Generate(ctx, &llm.Request{
		Contents: []llm.Content{llm.NewTextContent(llm.RoleUser, fmt.Sprintf(musicPrompt, text))},
		Schema:   musicSchema(),
	})
	if err != nil {
		return fail(err)
	}

	var parsed struct {
		Title        string `json:"title"`
		Artist       string `json:"artist"`
		Description  string `json:"description"`
		Tempo        int    `json:"tempo"`
		Mood         string `json:"mood"`
		YoutubeLinks []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"youtubeLinks"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return fail(err)
	}

	concept := &types.MusicConcept{
		Title:       parsed.Title,
		Artist:      parsed.Artist,
		Description: parsed.Description,
		Tempo:       parsed.Tempo,
		Mood:        parsed.Mood,
	}
	for _, link := range parsed.YoutubeLinks {
		concept.Links = append(concept.Links, types.VideoLink{Title: link.Title, URL: link.URL})
	}

	return payloadReply("", "", &types.Payload{Music: concept})
}
