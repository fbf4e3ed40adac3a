// internal/intent/video.go
package intent

import (
	"regexp"
	"strings"
)

var searchKeywords = []string{"search for", "find", "show me", "search"}

var videoKeywords = []string{
	"video", "videos", "clip", "clips", "trailer",
	"movie trailer", "youtube videos", "youtube clips",
}

// IsVideoSearch reports whether the text is a general video search request.
// Question-style prompts are rejected outright; the remaining rules are
// checked in order, first match wins.
func IsVideoSearch(text string) bool {
	p := Normalize(text)
	if strings.HasPrefix(p, "how") || strings.HasPrefix(p, "what is") {
		return false
	}

	// "search for videos", "find trailer", ...
	if containsAny(p, searchKeywords) && containsAny(p, videoKeywords) {
		return true
	}

	// "youtube search for ..."
	if strings.Contains(p, "youtube") && (strings.Contains(p, "search") || strings.Contains(p, "find")) {
		return true
	}

	// "videos of ...", "trailer for ...", "clips about ..."
	for _, vk := range videoKeywords {
		if strings.HasPrefix(p, vk+" of") || strings.HasPrefix(p, vk+" about") || strings.HasPrefix(p, vk+" for") {
			return true
		}
	}

	// "[movie name] trailer"
	return strings.HasSuffix(p, "trailer")
}

// videoIDPattern covers the known URL shapes that embed an 11-character
// video identifier: watch?v=, youtu.be/, embed/, v/, u/<letter>/ and &v=.
var videoIDPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// ExtractVideoID pulls an 11-character platform video identifier out of a
// URL-shaped message. It returns "" unless exactly 11 characters are captured.
func ExtractVideoID(text string) string {
	m := videoIDPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil || len(m[2]) != 11 {
		return ""
	}
	return m[2]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
