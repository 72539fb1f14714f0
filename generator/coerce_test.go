package generator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceWellFormedOutput(t *testing.T) {
	raw := "Here is your outline:\n" +
		`{"slides":[{"title":"One","bullets":["a","b"],"notes":"remember this"},{"title":"","bullets":["c"]}]}` +
		"\nLet me know if you need changes."

	out := CoerceModelOutline(raw, "source", true)

	require.Len(t, out, 2)
	assert.Equal(t, "One", out[0].Title)
	assert.Equal(t, []string{"a", "b"}, out[0].Bullets)
	assert.Equal(t, "remember this", out[0].Notes)
	assert.Equal(t, "Slide", out[1].Title, "blank title defaults")
}

func TestCoerceMalformedOutputFallsBack(t *testing.T) {
	out := CoerceModelOutline("sorry, no json today {{{", "The original user text about turtles.", false)

	require.Len(t, out, 1)
	assert.Contains(t, out[0].Title, "The original user text")
	require.Len(t, out[0].Bullets, 1)
}

func TestCoerceWrongShapeFallsBack(t *testing.T) {
	for _, raw := range []string{
		`{"slides": "not an array"}`,
		`{"slides": []}`,
		`{"something": "else"}`,
		``,
	} {
		out := CoerceModelOutline(raw, "fallback source", false)
		require.Len(t, out, 1, "raw=%q", raw)
		assert.NotEmpty(t, out[0].Title)
	}
}

func TestCoerceClearsNotesWhenNotRequested(t *testing.T) {
	raw := `{"slides":[{"title":"T","bullets":["b"],"notes":"secret"}]}`

	out := CoerceModelOutline(raw, "src", false)

	require.Len(t, out, 1)
	assert.Empty(t, out[0].Notes)
}

func TestCoerceBounds(t *testing.T) {
	var slides []string
	for i := 0; i < MaxModelSlides+10; i++ {
		var bullets []string
		for j := 0; j < MaxBullets+5; j++ {
			bullets = append(bullets, fmt.Sprintf(`"bullet %d"`, j))
		}
		slides = append(slides, fmt.Sprintf(
			`{"title":%q,"bullets":[%s],"notes":%q}`,
			strings.Repeat("t", MaxTitleLen+50),
			strings.Join(bullets, ","),
			strings.Repeat("n", MaxNotesLen+50),
		))
	}
	raw := `{"slides":[` + strings.Join(slides, ",") + `]}`

	out := CoerceModelOutline(raw, "src", true)

	require.Len(t, out, MaxModelSlides)
	for _, s := range out {
		assert.LessOrEqual(t, len(s.Bullets), MaxBullets)
		assert.LessOrEqual(t, len([]rune(s.Title)), MaxTitleLen)
		assert.LessOrEqual(t, len([]rune(s.Notes)), MaxNotesLen)
	}
}

func TestCoerceDropsBlankBullets(t *testing.T) {
	raw := `{"slides":[{"title":"T","bullets":["a","  ","","b"]}]}`

	out := CoerceModelOutline(raw, "src", false)

	require.Len(t, out, 1)
	assert.Equal(t, []string{"a", "b"}, out[0].Bullets)
}

func TestCoerceStringifiesNonStringBullets(t *testing.T) {
	raw := `{"slides":[{"title":"T","bullets":[1,true,"x"]}]}`

	out := CoerceModelOutline(raw, "src", false)

	require.Len(t, out, 1)
	assert.Equal(t, []string{"1", "true", "x"}, out[0].Bullets)
}
