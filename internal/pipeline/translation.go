// internal/pipeline/translation.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/magnus/internal/intent"
	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
)

// translate asks for the translation plus a phonetic transcription and
// renders them as "translation (phonetic)".
func (p *Pipelines) translate(ctx context.Context, req *intent.TranslationRequest) *types.Message {
	fail := func(err error) *types.Message {
		return textReply(fmt.Sprintf("I'm sorry, I couldn't process the translation request. Error: %v", err), defaultLanguage)
	}

	query := fmt.Sprintf("Translate %q into %s. Also provide the phonetic transcription in English letters (like Romaji for Japanese or Pinyin for Chinese).",
		req.Text, req.Language)

	resp, err := p.provider.Generate(ctx, &llm.Request{
		Contents: []llm.Content{llm.NewTextContent(llm.RoleUser, query)},
		Schema:   translationSchema(),
	})
	if err != nil {
		return fail(err)
	}

	var parsed struct {
		Translation  string `json:"translation"`
		Phonetic     string `json:"phonetic"`
		LanguageCode string `json:"languageCode"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return fail(err)
	}

	return payloadReply(
		fmt.Sprintf("%s (%s)", parsed.Translation, parsed.Phonetic),
		parsed.LanguageCode,
		&types.Payload{Translation: &types.Translation{
			SourceText:   req.Text,
			Language:     req.Language,
			Translation:  parsed.Translation,
			Phonetic:     parsed.Phonetic,
			LanguageCode: parsed.LanguageCode,
		}},
	)
}
