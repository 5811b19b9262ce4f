package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHighlights(t *testing.T) {
	segments := ParseHighlights("Think about @[velocity] and @[acceleration].")
	assert.Equal(t, []TextSegment{
		{Text: "Think about "},
		{Text: "velocity", Highlighted: true},
		{Text: " and "},
		{Text: "acceleration", Highlighted: true},
		{Text: "."},
	}, segments)
}

func TestParseHighlightsPlainText(t *testing.T) {
	segments := ParseHighlights("no markers here")
	assert.Equal(t, []TextSegment{{Text: "no markers here"}}, segments)
}

func TestParseHighlightsEdges(t *testing.T) {
	assert.Empty(t, ParseHighlights(""))
	assert.Equal(t, []TextSegment{{Text: "velocity", Highlighted: true}}, ParseHighlights("@[velocity]"))
	// 未闭合的标记按普通文本处理
	assert.Equal(t, []TextSegment{{Text: "@[velocity"}}, ParseHighlights("@[velocity"))
}
