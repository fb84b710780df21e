package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorts_Validate(t *testing.T) {
	full := newTestPorts()

	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{name: "all set", ports: full},
		{name: "agent optional", ports: &Ports{Catalog: full.Catalog, Scope: full.Scope}},
		{name: "missing catalog", ports: &Ports{Scope: full.Scope}, wantErr: ErrMissingCatalog},
		{name: "missing scope", ports: &Ports{Catalog: full.Catalog}, wantErr: ErrMissingScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
