package generator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingRe  = regexp.MustCompile(`^\s*#{1,3}\s+`)
	bulletRe   = regexp.MustCompile(`^\s*[-*+]\s+`)
	sentenceRe = regexp.MustCompile(`([.!?])\s+`)
)

// pending accumulates one slide during the scan. Bullets stay uncapped here
// so the restructure check can see the true count.
type pending struct {
	title    string
	explicit bool
	bullets  []string
}

// Segment derives an outline from raw text line by line: 1-3 leading '#'
// start a new slide, '-'/'*'/'+' lines append bullets, and any other
// non-blank line is split into sentences that each become a bullet.
// Returns nil only for empty or whitespace-only input.
func Segment(text string) Outline {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var drafts []pending
	cur := pending{}
	flush := func() {
		if cur.title == "" && len(cur.bullets) == 0 {
			return
		}
		drafts = append(drafts, cur)
		cur = pending{}
	}

	for _, ln := range strings.Split(text, "\n") {
		switch {
		case headingRe.MatchString(ln):
			flush()
			cur.title = strings.TrimSpace(headingRe.ReplaceAllString(ln, ""))
			cur.explicit = true
		case bulletRe.MatchString(ln):
			cur.bullets = append(cur.bullets, strings.TrimSpace(bulletRe.ReplaceAllString(ln, "")))
		case strings.TrimSpace(ln) != "":
			cur.bullets = append(cur.bullets, splitSentences(strings.TrimSpace(ln))...)
		}
	}
	flush()

	if len(drafts) > MaxHeuristicSlides {
		drafts = drafts[:MaxHeuristicSlides]
	}

	// Structureless input: one untitled slide with a long bullet run gets
	// re-chunked into fixed-size synthetic sections.
	if len(drafts) == 1 && !drafts[0].explicit && len(nonBlank(drafts[0].bullets)) > restructureAt {
		bullets := nonBlank(drafts[0].bullets)
		var out Outline
		for i := 0; i < len(bullets); i += chunkSize {
			end := i + chunkSize
			if end > len(bullets) {
				end = len(bullets)
			}
			out = append(out, SlideSpec{
				Title:   fmt.Sprintf("Section %d", len(out)+1),
				Bullets: capBullets(bullets[i:end]),
			})
			if len(out) == MaxHeuristicSlides {
				break
			}
		}
		return out
	}

	out := make(Outline, 0, len(drafts))
	for _, d := range drafts {
		bullets := capBullets(nonBlank(d.bullets))
		title := d.title
		if title == "" {
			if len(bullets) > 0 {
				title = truncate(bullets[0], synthTitleLen)
			} else {
				title = "Slide"
			}
		}
		out = append(out, SlideSpec{Title: truncate(title, MaxTitleLen), Bullets: bullets})
	}
	return out
}

// splitSentences breaks prose on sentence-ending punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(s string) []string {
	marked := sentenceRe.ReplaceAllString(s, "$1\n")
	var parts []string
	for _, p := range strings.Split(marked, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func nonBlank(bullets []string) []string {
	var kept []string
	for _, b := range bullets {
		if strings.TrimSpace(b) != "" {
			kept = append(kept, b)
		}
	}
	return kept
}

func capBullets(bullets []string) []string {
	if len(bullets) > MaxBullets {
		bullets = bullets[:MaxBullets]
	}
	out := make([]string, len(bullets))
	for i, b := range bullets {
		out[i] = truncate(b, MaxBulletLen)
	}
	return out
}
