package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/shell"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewMenu, "menu"},
		{ViewChat, "chat"},
		{ViewBrowse, "browse"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestLevels_Ordered(t *testing.T) {
	assert.Less(t, LevelCollections, LevelSubcollections)
	assert.Less(t, LevelSubcollections, LevelUnits)
}

func TestCommandCompleted(t *testing.T) {
	err := errors.New("boom")
	msg := CommandCompleted{Line: "ask x", Reply: shell.Reply{Text: "answer"}, Err: err}

	assert.Equal(t, "ask x", msg.Line)
	assert.Equal(t, "answer", msg.Reply.Text)
	assert.ErrorIs(t, msg.Err, err)
}
