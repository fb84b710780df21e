package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

type stubNormaliser struct {
	exts     []string
	priority int
	text     string
}

func (s *stubNormaliser) SupportedExtensions() []string { return s.exts }
func (s *stubNormaliser) Priority() int                 { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, _ *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Pages: []domain.Page{{Text: s.text}}}, nil
}

func TestRegistry_PriorityWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{exts: []string{".md"}, priority: 5, text: "fallback"})
	r.Register(&stubNormaliser{exts: []string{"MD"}, priority: 50, text: "markdown"})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{Name: "notes.MD"})
	require.NoError(t, err)
	assert.Equal(t, "markdown", result.Pages[0].Text)
}

func TestRegistry_Supports(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		ext  string
		want bool
	}{
		{ext: ".pdf", want: true},
		{ext: ".PDF", want: true},
		{ext: "docx", want: true},
		{ext: ".md", want: true},
		{ext: ".html", want: true},
		{ext: ".txt", want: true},
		{ext: ".exe", want: false},
		{ext: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Supports(tt.ext))
		})
	}
}

func TestRegistry_SupportedExtensions(t *testing.T) {
	exts := NewDefaultRegistry().SupportedExtensions()
	assert.Contains(t, exts, ".pdf")
	assert.Contains(t, exts, ".docx")
	assert.IsIncreasing(t, exts)
}

func TestRegistry_Normalise(t *testing.T) {
	r := NewDefaultRegistry()

	t.Run("markdown routed to format normaliser", func(t *testing.T) {
		result, err := r.Normalise(context.Background(), &domain.RawDocument{
			SourcePath: "Y3S2/Finance/Notes/week1.md",
			Content:    []byte("# Week 1\n**Ratios**"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Week 1\nRatios", result.Pages[0].Text)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := r.Normalise(context.Background(), &domain.RawDocument{Name: "tool.exe"})
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("nil document", func(t *testing.T) {
		_, err := r.Normalise(context.Background(), nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
