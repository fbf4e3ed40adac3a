// internal/intent/classify.go
package intent

// Classification holds the outcome of every rule-based classifier for a
// single prompt. Classifiers run unconditionally; precedence between
// overlapping matches is the router's concern.
type Classification struct {
	VideoSearch     bool
	MusicGeneration bool
	MediaPlayback   bool
	Translation     *TranslationRequest
	VideoID         string
}

// Classify runs all classifiers over the prompt.
func Classify(text string) Classification {
	return Classification{
		VideoSearch:     IsVideoSearch(text),
		MusicGeneration: IsMusicGeneration(text),
		MediaPlayback:   IsMediaPlayback(text),
		Translation:     ParseTranslation(text),
		VideoID:         ExtractVideoID(text),
	}
}
