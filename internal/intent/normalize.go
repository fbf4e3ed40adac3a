// internal/intent/normalize.go
package intent

import "strings"

// Normalize prepares raw user text for pattern matching. The original-case
// text is what gets forwarded to the generation backend; the normalized form
// exists only for classification.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
