package generator

import (
	"fmt"
	"strings"
)

// Prompt is the message pair sent to a model provider.
type Prompt struct {
	System string
	User   string
}

// BuildOutlinePrompt asks the model to rewrite content as a slide outline in
// the exact JSON shape the coercion step expects.
func BuildOutlinePrompt(text, guidance string, withNotes bool) Prompt {
	if strings.TrimSpace(guidance) == "" {
		guidance = "general"
	}

	var sb strings.Builder
	sb.WriteString("You are a slide architect. Rewrite the user's content into a slide outline in JSON.\n\n")
	sb.WriteString("Return JSON with this shape (and nothing else):\n")
	sb.WriteString("{\n  \"slides\": [\n    {\"title\": \"Slide Title\", \"bullets\": [\"point 1\", \"point 2\"], \"notes\": \"optional speaker notes\"}\n  ]\n}\n\n")
	fmt.Fprintf(&sb, "Guidance: %s\n", guidance)
	fmt.Fprintf(&sb, "- At most %d slides, at most %d bullets per slide.\n", MaxModelSlides, MaxBullets)
	if withNotes {
		sb.WriteString("- Include concise speaker notes for every slide.\n")
	}
	sb.WriteString("\nUser content:\n")
	sb.WriteString(text)

	return Prompt{
		System: "You convert content into a concise slide outline JSON.",
		User:   sb.String(),
	}
}
