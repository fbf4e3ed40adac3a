// internal/pipeline/video.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
)

const videoSearchPrompt = `A user is searching for a video to play in an app based on the query: %q.
Your goal is to find up to 5 relevant, playable videos from YouTube.
The most critical rule is that the videos **must be embeddable**. If a video has embedding disabled, it will show an error to the user. Your primary goal is to avoid this error.
To achieve this:
1.  **Prioritize Official Sources that Allow Embedding:** Favor official artist channels, movie studio channels, and trusted media outlets that have a history of allowing embedding.
2.  **Be Cautious with Major Labels:** Be aware that some major music labels (like Sony Music, Universal Music Group, Times Music) sometimes restrict embedding on their newest or most popular videos. If you select a video from such a channel, be extra certain it's embeddable. Older videos or official lyric videos are often safer bets than official music videos.
3.  **No Private or Restricted Content:** Absolutely do not include links to videos that are private, deleted, have age restrictions, or are known to be blocked in certain regions.
4.  **Validate Output:** For each video, provide its official title, a brief (1-2 sentence) description, its full YouTube URL, and its 11-character video ID.

Return a JSON array of the video objects. If you cannot find any embeddable videos, return an empty array.`

const playByQueryPrompt = `A user wants to play a specific video in-app. Their request is: %q.
Your task is to find the single most relevant, official video on YouTube that is **guaranteed to be embeddable**.
An unembeddable video will cause an error. Avoiding this is your highest priority.
Follow these rules:
1.  **Verify Embeddability:** The video MUST be publicly accessible and allow embedding. Prioritize channels known for this, like official artist channels (especially lyric videos), VEVO, or movie studios.
2.  **Avoid Risky Channels:** Be extremely cautious with videos from major record labels that often disable embedding. If you must use one, prefer older content or lyric videos over brand new music videos.
3.  **Find the Best Match:** The video should be the most official and relevant version of the requested content.
4.  **Strictly Validate ID:** Return the video's 11-character YouTube video ID, its official title, and the name of the artist or channel. The video ID must be exactly 11 characters.
Do not return a result if you cannot find a reliably embeddable video.`

const playByIDPrompt = `The user has provided a YouTube video ID: %q.
Your task is to find the official song title and artist name for this video ID.
If it's not a song, use the video title and the channel name as the 'artist'.
Respond with a JSON object containing the YouTube Video ID, the video's title, and the artist/channel name.`

var videoIDFormat = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

type playbackResult struct {
	VideoID    string `json:"videoId"`
	SongTitle  string `json:"songTitle"`
	ArtistName string `json:"artistName"`
}

// searchVideos resolves a search or playback query into a list of
// embeddable videos.
func (p *Pipelines) searchVideos(ctx context.Context, query string) *types.Message {
	fail := func(err error) *types.Message {
		return textReply(fmt.Sprintf("I'm sorry, I couldn't complete the video search. There might be an issue with the search service. Please try again later.\n\n**Error:** %v", err), defaultLanguage)
	}

	resp, err := p.provider.Generate(ctx, &llm.Request{
		Contents: []llm.Content{llm.NewTextContent(llm.RoleUser, fmt.Sprintf(videoSearchPrompt, query))},
		Schema:   videoSearchSchema(),
	})
	if err != nil {
		return fail(err)
	}

	var parsed []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		VideoID     string `json:"videoId"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return fail(err)
	}

	results := &types.VideoSearchResults{Query: query}
	for _, r := range parsed {
		results.Results = append(results.Results, types.VideoResult{
			Title:       r.Title,
			Description: r.Description,
			URL:         r.URL,
			VideoID:     r.VideoID,
		})
	}
	return payloadReply("", defaultLanguage, &types.Payload{VideoSearch: results})
}

// PlayByQuery resolves a free-text request into a single playable video.
// The returned ID is validated locally before it is trusted.
func (p *Pipelines) PlayByQuery(ctx context.Context, query string) *types.Message {
	fail := func(err error) *types.Message {
		return textReply(fmt.Sprintf("I'm sorry, I couldn't find a playable video for that request. There might be an issue with the underlying search service. Please try being more specific with the song title and artist.\n\n**Error:** %v", err), defaultLanguage)
	}

	resp, err := p.provider.Generate(ctx, &llm.Request{
		Contents: []llm.Content{llm.NewTextContent(llm.RoleUser, fmt.Sprintf(playByQueryPrompt, query))},
		Schema:   playbackSchema(),
	})
	if err != nil {
		return fail(err)
	}

	var parsed playbackResult
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return fail(err)
	}
	if !videoIDFormat.MatchString(parsed.VideoID) {
		return fail(fmt.Errorf("the model returned an invalid YouTube video ID format: %q", parsed.VideoID))
	}

	return payloadReply(
		fmt.Sprintf("Found: **%s** by **%s**. Click the card to play.", parsed.SongTitle, parsed.ArtistName),
		defaultLanguage,
		&types.Payload{Video: &types.VideoPlayback{
			VideoID: parsed.VideoID,
			Title:   parsed.SongTitle,
			Artist:  parsed.ArtistName,
		}},
	)
}

// playByID looks up title and artist for a video ID pasted by the user.
func (p *Pipelines) playByID(ctx context.Context, videoID string) *types.Message {
	fail := func(err error) *types.Message {
		return textReply(fmt.Sprintf("I'm sorry, I couldn't get the details for that YouTube link. Error: %v", err), defaultLanguage)
	}

	resp, err := p.provider.Generate(ctx, &llm.Request{
		Contents: []llm.Content{llm.NewTextContent(llm.RoleUser, fmt.Sprintf(playByIDPrompt, videoID))},
		Schema:   playbackSchema(),
	})
	if err != nil {
		return fail(err)
	}

	var parsed playbackResult
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return fail(err)
	}

	return payloadReply(
		"Now playing the video you linked. Click the card to play.",
		defaultLanguage,
		&types.Payload{Video: &types.VideoPlayback{
			VideoID: videoID,
			Title:   parsed.SongTitle,
			Artist:  parsed.ArtistName,
		}},
	)
}
