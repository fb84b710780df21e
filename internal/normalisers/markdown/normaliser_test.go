package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.Equal(t, []string{".md", ".markdown"}, normaliser.SupportedExtensions())
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_SinglePage(t *testing.T) {
	raw := &domain.RawDocument{
		SourcePath: "Y3S2/Finance/Notes/week1.md",
		Name:       "week1.md",
		Content:    []byte("# Week 1\r\n\r\nRatios are **important**."),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, 0, result.Pages[0].Number)
	assert.Equal(t, "Week 1\n\nRatios are important.", result.Pages[0].Text)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "headings", input: "## Section\nbody", expected: "Section\nbody"},
		{name: "bold and italic", input: "a **b** and *c* and __d__", expected: "a b and c and d"},
		{name: "links keep text", input: "see [the notes](http://x/y)", expected: "see the notes"},
		{name: "images keep alt", input: "![chart](c.png)", expected: "chart"},
		{name: "inline code keeps text", input: "call `npv()` first", expected: "call npv() first"},
		{name: "fenced code keeps body", input: "```go\nx := 1\n```", expected: "x := 1"},
		{name: "lists", input: "- one\n* two\n1. three", expected: "one\ntwo\nthree"},
		{name: "blockquote", input: "> quoted", expected: "quoted"},
		{name: "horizontal rule", input: "above\n---\nbelow", expected: "above\n\nbelow"},
		{name: "snake case survives", input: "net_present_value", expected: "net_present_value"},
		{name: "collapse newlines", input: "a\n\n\n\n\nb", expected: "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripMarkdown(tt.input))
		})
	}
}
