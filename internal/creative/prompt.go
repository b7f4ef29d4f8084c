package creative

import (
	"fmt"
	"strings"
)

// Separator literals are observable prompt text; the image model is sensitive
// to instruction order, so ad text always comes last.
const (
	styleHintPrefix  = ". Style hint: "
	styleHintsPrefix = ". Style hints: "
	styleHintJoin    = "; "
	adTextFormat     = ". Include the following text in the ad: '%s'"
)

// PromptParts collects the pieces of an enhanced prompt.
type PromptParts struct {
	Base       string
	StyleHints []string
	// Singular selects the ". Style hint: " form used by the one-reference
	// style-transfer flow; the multi-reference flow uses the plural form.
	Singular bool
	AdText   string
}

// BuildPrompt deterministically assembles the prompt sent to the image model:
// base prompt, then optional style hints, then the ad-text instruction.
func BuildPrompt(p PromptParts) string {
	var b strings.Builder
	b.WriteString(p.Base)

	hints := make([]string, 0, len(p.StyleHints))
	for _, h := range p.StyleHints {
		if h = strings.TrimSpace(h); h != "" {
			hints = append(hints, h)
		}
	}
	if len(hints) > 0 {
		if p.Singular && len(hints) == 1 {
			b.WriteString(styleHintPrefix)
		} else {
			b.WriteString(styleHintsPrefix)
		}
		b.WriteString(strings.Join(hints, styleHintJoin))
	}

	if p.AdText != "" {
		fmt.Fprintf(&b, adTextFormat, p.AdText)
	}
	return b.String()
}
