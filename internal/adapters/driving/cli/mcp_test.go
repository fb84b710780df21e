package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/mcp"
)

func TestMCPCmd_Subcommands(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("port"))
}

func TestMCPServe_MissingServices(t *testing.T) {
	_, _, err := runCommand(t, "", "mcp", "serve")
	assert.ErrorIs(t, err, mcp.ErrMissingCatalog)
}
