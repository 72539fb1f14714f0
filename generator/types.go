package generator

import "strings"

// Bounds applied by the normalizer. Other observed variants of these caps
// are treated as configuration, not alternatives.
const (
	// MaxHeuristicSlides caps outlines produced by line segmentation.
	MaxHeuristicSlides = 30
	// MaxModelSlides caps outlines coerced from model output.
	MaxModelSlides = 25
	// MaxBullets caps bullets per slide.
	MaxBullets = 8
	// MaxTitleLen caps slide titles, in runes.
	MaxTitleLen = 120
	// MaxBulletLen caps individual bullet text, in runes.
	MaxBulletLen = 300
	// MaxNotesLen caps speaker notes, in runes.
	MaxNotesLen = 1000

	// synthTitleLen is how much of the first bullet seeds a missing title.
	synthTitleLen = 60
	// chunkSize is the bullet group size when structureless input is
	// re-chunked into synthetic sections.
	chunkSize = 6
	// restructureAt is the bullet count past which a single untitled slide
	// gets re-chunked.
	restructureAt = 10
)

// SlideSpec is one normalized slide: a bounded title, bounded bullets, and
// optional speaker notes. Never mutated after the normalizer returns it.
type SlideSpec struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Notes   string   `json:"notes,omitempty"`
}

// Outline is the ordered slide sequence for one request.
type Outline []SlideSpec

// truncate limits s to n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// compactPrefix collapses whitespace and truncates, for synthesized text.
func compactPrefix(s string, n int) string {
	return truncate(strings.Join(strings.Fields(s), " "), n)
}
