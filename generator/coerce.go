package generator

import (
	"strings"

	"github.com/tidwall/gjson"
)

// CoerceModelOutline turns raw model text into a bounded outline. The model
// may wrap the JSON in prose or fences, so the parse works on the span from
// the first '{' to the last '}'. Unparsable output, a wrong top-level shape,
// or zero usable slides all degrade to a single slide synthesized from a
// prefix of the source text; this path never returns an empty outline.
func CoerceModelOutline(raw, sourceText string, withNotes bool) Outline {
	var out Outline

	if body := trimToJSONObject(raw); body != "" && gjson.Valid(body) {
		slides := gjson.Get(body, "slides")
		if slides.IsArray() {
			slides.ForEach(func(_, s gjson.Result) bool {
				title := strings.TrimSpace(s.Get("title").String())
				if title == "" {
					title = "Slide"
				}
				var bullets []string
				for _, b := range s.Get("bullets").Array() {
					t := strings.TrimSpace(b.String())
					if t == "" {
						continue
					}
					bullets = append(bullets, truncate(t, MaxBulletLen))
					if len(bullets) == MaxBullets {
						break
					}
				}
				notes := ""
				if withNotes {
					notes = truncate(strings.TrimSpace(s.Get("notes").String()), MaxNotesLen)
				}
				out = append(out, SlideSpec{
					Title:   truncate(title, MaxTitleLen),
					Bullets: bullets,
					Notes:   notes,
				})
				return len(out) < MaxModelSlides
			})
		}
	}

	if len(out) == 0 {
		return Outline{fallbackSlide(sourceText)}
	}
	return out
}

// trimToJSONObject cuts the span between the first '{' and the last '}'.
// Returns "" when no such span exists.
func trimToJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func fallbackSlide(sourceText string) SlideSpec {
	prefix := compactPrefix(sourceText, MaxTitleLen)
	if prefix == "" {
		prefix = "Slide"
	}
	return SlideSpec{
		Title:   truncate(prefix, synthTitleLen),
		Bullets: []string{prefix},
	}
}
