package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxTextLength = 5000

var htmlPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all HTML from user-authored text (comments, notes,
// request messages) and normalises whitespace. Stored text is plain text.
func SanitizeText(input string) string {
	input = htmlPolicy.Sanitize(input)
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)

	if len(input) > maxTextLength {
		input = input[:maxTextLength]
	}

	return input
}
