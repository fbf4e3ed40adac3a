// internal/intent/playback.go
package intent

import "strings"

var playbackPrefixes = []string{"play", "listen to", "put on", "stream", "find me the song"}

// IsMediaPlayback reports whether the text asks to play a specific piece of
// media. Song creation and video search requests take precedence and are
// never treated as playback.
func IsMediaPlayback(text string) bool {
	p := Normalize(text)
	for _, prefix := range playbackPrefixes {
		if strings.HasPrefix(p, prefix) {
			return !strings.HasPrefix(p, "create a song") && !IsVideoSearch(text)
		}
	}
	if strings.Contains(p, "youtube") || strings.Contains(p, "on youtube") {
		if strings.HasPrefix(p, "how") || strings.HasPrefix(p, "what") || strings.HasPrefix(p, "can you") {
			return false
		}
		return !IsVideoSearch(text)
	}
	return false
}
