package generator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentHeadingsAndBullets(t *testing.T) {
	out := Segment("# A\n- x\n- y\n\n# B\n- z")

	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Title)
	assert.Equal(t, []string{"x", "y"}, out[0].Bullets)
	assert.Equal(t, "B", out[1].Title)
	assert.Equal(t, []string{"z"}, out[1].Bullets)
}

func TestSegmentEmptyInput(t *testing.T) {
	assert.Nil(t, Segment(""))
	assert.Nil(t, Segment("   \n\t\n"))
}

func TestSegmentSentenceSplitting(t *testing.T) {
	out := Segment("# Intro\nFirst point. Second point! Third point? Trailing")

	require.Len(t, out, 1)
	assert.Equal(t, []string{"First point.", "Second point!", "Third point?", "Trailing"}, out[0].Bullets)
}

func TestSegmentRechunksStructurelessInput(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&sb, "Sentence number %d is here. ", i)
	}

	out := Segment(sb.String())

	require.Len(t, out, 2)
	assert.Equal(t, "Section 1", out[0].Title)
	assert.Equal(t, "Section 2", out[1].Title)
	assert.Len(t, out[0].Bullets, 6)
	assert.Len(t, out[1].Bullets, 6)
}

func TestSegmentRechunkRespectsSlideCap(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 200; i++ {
		fmt.Fprintf(&sb, "Sentence number %d is here.\n", i)
	}

	out := Segment(sb.String())

	require.Len(t, out, MaxHeuristicSlides)
	assert.Equal(t, fmt.Sprintf("Section %d", MaxHeuristicSlides), out[len(out)-1].Title)
}

func TestSegmentExplicitTitleNeverRechunked(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("# Everything\n")
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&sb, "- bullet %d\n", i)
	}

	out := Segment(sb.String())

	require.Len(t, out, 1)
	assert.Equal(t, "Everything", out[0].Title)
	assert.Len(t, out[0].Bullets, MaxBullets)
}

func TestSegmentSlideCap(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= MaxHeuristicSlides+10; i++ {
		fmt.Fprintf(&sb, "# Slide %d\n- point\n", i)
	}

	out := Segment(sb.String())

	require.Len(t, out, MaxHeuristicSlides)
	assert.Equal(t, "Slide 1", out[0].Title)
}

func TestSegmentSynthesizesTitleFromFirstBullet(t *testing.T) {
	long := strings.Repeat("abcdefghij", 10) // 100 chars, no sentence breaks
	out := Segment("- " + long)

	require.Len(t, out, 1)
	assert.Equal(t, truncate(long, synthTitleLen), out[0].Title)
	assert.Len(t, []rune(out[0].Title), synthTitleLen)
}

func TestSegmentDropsBlankBullets(t *testing.T) {
	out := Segment("# T\n- a\n-  \n- b")

	require.Len(t, out, 1)
	assert.Equal(t, []string{"a", "b"}, out[0].Bullets)
}

func TestSegmentBulletCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("# T\n")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "- b%d\n", i)
	}

	out := Segment(sb.String())

	require.Len(t, out, 1)
	require.Len(t, out[0].Bullets, MaxBullets)
	assert.Equal(t, "b0", out[0].Bullets[0])
}

func TestSegmentFourHashesIsProse(t *testing.T) {
	out := Segment("#### not a heading here")

	require.Len(t, out, 1)
	assert.Equal(t, []string{"#### not a heading here"}, out[0].Bullets)
}
