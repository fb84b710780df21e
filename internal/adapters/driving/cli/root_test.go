package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "studyrag", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{
		"ask", "chat", "collections", "subcollections", "units",
		"ingest", "runs", "settings", "tui", "mcp", "version",
	} {
		assert.Contains(t, names, want)
	}
}

func TestPreRun_Bootstrap(t *testing.T) {
	svc, _, _ := testServices()
	closed := 0
	svc.Close = func() { closed++ }

	var got Options
	SetBootstrap(func(_ context.Context, opts Options) (*Services, error) {
		got = opts
		return svc, nil
	})
	t.Cleanup(func() {
		SetBootstrap(nil)
		SetServices(&Services{})
	})

	out, _, err := runCommand(t, "", "collections", "--user", "alice", "-v")
	require.NoError(t, err)

	assert.Equal(t, Options{UserID: "alice", Verbose: true}, got)
	assert.Contains(t, out, "Y3S2")
	assert.Equal(t, 1, closed)
	assert.Empty(t, closeHooks)
}

func TestPreRun_BootstrapError(t *testing.T) {
	boom := errors.New("index unavailable")
	SetBootstrap(func(context.Context, Options) (*Services, error) {
		return nil, boom
	})
	t.Cleanup(func() { SetBootstrap(nil) })

	_, _, err := runCommand(t, "", "collections")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "initialising")
}

func TestPreRun_SkipsBootstrap(t *testing.T) {
	SetBootstrap(func(context.Context, Options) (*Services, error) {
		return nil, errors.New("should not run")
	})
	SetSettingsService(&mockSettings{})
	t.Cleanup(func() {
		SetBootstrap(nil)
		SetSettingsService(nil)
	})

	tests := []struct {
		name string
		args []string
	}{
		{name: "version", args: []string{"version"}},
		{name: "settings", args: []string{"settings"}},
		{name: "settings subcommand", args: []string{"settings", "keys"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCommand(t, "", tt.args...)
			assert.NoError(t, err)
		})
	}
}

func TestNotConfigured(t *testing.T) {
	err := notConfigured("catalog")

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.EqualError(t, err, "catalog: service not configured")
}
