// internal/intent/translation.go
package intent

import (
	"regexp"
	"strings"
)

// TranslationRequest is the parsed form of a translation prompt: the text to
// translate and the target language, both trimmed.
type TranslationRequest struct {
	Text     string
	Language string
}

const languageAlternation = `(japanese|chinese|french|spanish|german|korean|italian|portuguese|russian|arabic|hindi|dutch|swedish|turkish|polish)`

var (
	// "<text> in <language>" with a guard against plain questions.
	implicitTranslation = regexp.MustCompile(`^(.*?)\s+in\s+` + languageAlternation + `$`)

	// "translate <text> to <language>", "say <text> in <language>",
	// "how to say <text> in <language>", optionally quoted.
	explicitTranslation = regexp.MustCompile(`^(?:translate|say|how\s+to\s+say)\s+['"]?(.*?)['"]?\s+(?:to|in)\s+` + languageAlternation + `$`)
)

var questionWords = []string{"what", "who", "where", "when", "why", "how", "which", "is there"}

// ParseTranslation detects translation prompts. The bare "<text> in <language>"
// form matches first but is rejected when the captured text opens with a
// question word, so "what is the population in japan" stays a plain question.
func ParseTranslation(text string) *TranslationRequest {
	p := Normalize(text)

	if m := implicitTranslation.FindStringSubmatch(p); m != nil {
		captured := strings.TrimSpace(m[1])
		if captured != "" && !startsWithAny(captured, questionWords) {
			return &TranslationRequest{Text: captured, Language: strings.TrimSpace(m[2])}
		}
	}

	if m := explicitTranslation.FindStringSubmatch(p); m != nil {
		captured := strings.TrimSpace(m[1])
		if captured != "" {
			return &TranslationRequest{Text: captured, Language: strings.TrimSpace(m[2])}
		}
	}

	return nil
}

func startsWithAny(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
