package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/studyrag/internal/connectors/filesystem"
	"github.com/custodia-labs/studyrag/internal/connectors/github"
	"github.com/custodia-labs/studyrag/internal/core/domain"
)

func TestResolveTenant(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		session  string
		source   string
		expected string
	}{
		{name: "flag wins", flag: "alice", session: "bob", source: "carol", expected: "alice"},
		{name: "session next", session: "bob", source: "carol", expected: "bob"},
		{name: "source last", source: "carol", expected: "carol"},
		{name: "none", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := domain.DefaultAppSettings()
			settings.Session.UserID = tt.session
			settings.Source.Tenant = tt.source
			assert.Equal(t, tt.expected, resolveTenant(cli.Options{UserID: tt.flag}, &settings))
		})
	}
}

func TestOpenSource(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Source.Root = t.TempDir()

		source, err := openSource(context.Background(), &settings)
		require.NoError(t, err)
		fs, ok := source.(*filesystem.Source)
		require.True(t, ok)
		assert.Equal(t, settings.Source.Root, fs.Root())
	})

	t.Run("github", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Source.Kind = domain.SourceKindGitHub
		settings.Source.Repo = "acme/notes"

		source, err := openSource(context.Background(), &settings)
		require.NoError(t, err)
		assert.IsType(t, &github.Source{}, source)
	})

	t.Run("github without repo", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Source.Kind = domain.SourceKindGitHub

		_, err := openSource(context.Background(), &settings)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("gcs without bucket", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Source.Kind = domain.SourceKindGCS

		source, err := openSource(context.Background(), &settings)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Nil(t, source)
	})
}

func TestBuild_SQLite(t *testing.T) {
	home := t.TempDir()
	root := filepath.Join(home, "raw_data")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Y3S2", "Finance", "Report1"), 0o755))

	settings := domain.DefaultAppSettings()
	settings.Source.Root = root
	settings.Session.UserID = "user-1"

	svc, err := build(context.Background(), home, &settings, cli.Options{})
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, "user-1", svc.Tenant)
	assert.NotNil(t, svc.Catalog)
	assert.NotNil(t, svc.Scope)
	assert.NotNil(t, svc.Retriever)
	assert.NotNil(t, svc.Agent)
	assert.NotNil(t, svc.Ingestion)
	assert.NotNil(t, svc.Watch)
	assert.FileExists(t, filepath.Join(home, "data", "index.db"))

	assert.Empty(t, svc.Catalog.ListCollections(context.Background()))
}

func TestBuild_Memory(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Index.Backend = domain.IndexBackendMemory
	settings.Source.Kind = domain.SourceKindGitHub
	settings.Source.Repo = "acme/notes"

	svc, err := build(context.Background(), t.TempDir(), &settings, cli.Options{UserID: "bob"})
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, "bob", svc.Tenant)
	assert.Nil(t, svc.Watch)

	runs, err := svc.Ingestion.Runs(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestBuild_PostgresNeedsDimension(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Index.Backend = domain.IndexBackendPostgres
	settings.Index.PostgresURL = "postgres://localhost:1/none"

	_, err := build(context.Background(), t.TempDir(), &settings, cli.Options{})
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}
