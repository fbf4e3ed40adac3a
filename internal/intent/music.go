// internal/intent/music.go
package intent

import "strings"

var musicQuestionPrefixes = []string{"how do you", "what is the", "can you explain"}

var musicPhrasePrefixes = []string{
	"create a song", "make a song", "generate a song", "compose a piece",
	"write a song", "a song about", "music that sounds like",
	"a melody for", "a track for", "an instrumental of",
}

var creationVerbs = []string{"create", "generate", "make", "design", "produce", "compose", "write"}

var musicNouns = []string{"music", "song", "track", "melody", "instrumental", "beat", "jingle", "tune"}

// IsMusicGeneration reports whether the text asks for an original piece of
// music rather than asking a question about music.
func IsMusicGeneration(text string) bool {
	p := Normalize(text)
	for _, q := range musicQuestionPrefixes {
		if strings.HasPrefix(p, q) {
			return false
		}
	}
	for _, phrase := range musicPhrasePrefixes {
		if strings.HasPrefix(p, phrase) {
			return true
		}
	}
	return containsAny(p, creationVerbs) && containsAny(p, musicNouns)
}
