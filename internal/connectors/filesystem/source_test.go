package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// writeFile creates a file below root, making parent directories.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

func newTestSource(t *testing.T) (*Source, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "Finance/Year1/W1/notes.md", "# Ratios")
	writeFile(t, root, "Finance/Year1/W1/slides.pdf", "%PDF")
	writeFile(t, root, "Finance/Year1/W1/.DS_Store", "x")
	writeFile(t, root, "Finance/Year1/W2/intro.txt", "hello")
	writeFile(t, root, "Finance/Year2/W1/a.txt", "a")
	writeFile(t, root, "Law/Contracts/Offer/offer.docx", "docx")
	writeFile(t, root, ".cache/x/y/z.txt", "hidden")
	return New(root), root
}

func TestSource_ListCollections(t *testing.T) {
	src, _ := newTestSource(t)
	ctx := context.Background()

	collections, err := src.ListCollections(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Finance", "Law"}, collections)

	subs, err := src.ListSubcollections(ctx, "Finance")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Year1", "Year2"}, subs)

	_, err = src.ListSubcollections(ctx, "Missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = src.ListSubcollections(ctx, "../etc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSource_ListCollections_MissingRoot(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "nope"))
	_, err := src.ListCollections(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = New(file).ListCollections(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSource_ListUnits(t *testing.T) {
	src, _ := newTestSource(t)

	items, err := src.ListUnits(context.Background(), "Finance", "Year1")
	require.NoError(t, err)
	require.Len(t, items, 3)

	var paths []string
	for _, item := range items {
		paths = append(paths, item.SourcePath)
		assert.Equal(t, "Finance", item.Collection)
		assert.Equal(t, "Year1", item.Subcollection)
	}
	assert.ElementsMatch(t, []string{
		"Finance/Year1/W1/notes.md",
		"Finance/Year1/W1/slides.pdf",
		"Finance/Year1/W2/intro.txt",
	}, paths)

	for _, item := range items {
		if item.Name == "notes.md" {
			assert.Equal(t, "W1", item.UnitID)
			assert.Equal(t, int64(len("# Ratios")), item.Size)
		}
	}
}

func TestSource_ReadAndStat(t *testing.T) {
	src, _ := newTestSource(t)
	ctx := context.Background()

	data, err := src.Read(ctx, "Finance/Year1/W1/notes.md")
	require.NoError(t, err)
	assert.Equal(t, "# Ratios", string(data))

	_, err = src.Read(ctx, "Finance/Year1/W1/gone.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	info, err := src.Stat(ctx, "Finance/Year1/W2/intro.txt")
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.Equal(t, int64(5), info.Size)

	info, err = src.Stat(ctx, "Finance/Year1/W2/gone.txt")
	require.NoError(t, err)
	assert.False(t, info.Exists)

	// Directories are not documents.
	info, err = src.Stat(ctx, "Finance/Year1/W2")
	require.NoError(t, err)
	assert.False(t, info.Exists)
}

func TestSource_RejectsEscapingPaths(t *testing.T) {
	src, _ := newTestSource(t)
	ctx := context.Background()

	for _, p := range []string{"../secret.txt", "/etc/passwd", "Finance/../../x"} {
		t.Run(p, func(t *testing.T) {
			_, err := src.Read(ctx, p)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)

			_, err = src.Stat(ctx, p)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSource_Relative(t *testing.T) {
	src, root := newTestSource(t)

	rel, ok := src.Relative(filepath.Join(root, "Finance", "Year1", "W1", "notes.md"))
	assert.True(t, ok)
	assert.Equal(t, "Finance/Year1/W1/notes.md", rel)

	_, ok = src.Relative(root)
	assert.False(t, ok)

	_, ok = src.Relative(filepath.Dir(root))
	assert.False(t, ok)
}

func TestSource_Name(t *testing.T) {
	src, root := newTestSource(t)
	assert.Equal(t, "local:"+root, src.Name())
	assert.Equal(t, root, src.Root())
}
