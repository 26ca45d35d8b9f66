package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		key     string
		binding key.Binding
	}{
		{"send", "enter", km.Send},
		{"new line", "alt+enter", km.NewLine},
		{"new line alt", "ctrl+j", km.NewLine},
		{"cancel", "esc", km.Cancel},
		{"new session", "ctrl+n", km.NewSession},
		{"quit", "ctrl+c", km.Quit},
		{"scroll up", "pgup", km.ScrollUp},
		{"scroll down", "pgdown", km.ScrollDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Matches(tt.key, tt.binding))
		})
	}
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("enter", km.Send))
	assert.False(t, Matches("q", km.Quit), "q must stay typeable in the input")
	assert.False(t, Matches("", km.Send))
}

func TestHelpSets(t *testing.T) {
	km := DefaultKeyMap()

	idle := km.IdleHelp()
	streaming := km.StreamingHelp()

	assert.Len(t, idle, 4)
	assert.Len(t, streaming, 4)
	assert.Equal(t, "send", idle[0].Help().Desc)
	assert.Equal(t, "stop", streaming[0].Help().Desc)
}
