package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	assert.Equal(t, []string{"ctrl+c"}, km.Quit.Keys())
	assert.Equal(t, []string{"enter"}, km.Send.Keys())
	assert.Equal(t, []string{"ctrl+r"}, km.Reset.Keys())
	assert.Equal(t, []string{"ctrl+t"}, km.Topics.Keys())
	assert.Equal(t, []string{"esc"}, km.Back.Keys())
}

func TestKeyMap_HelpHasDescriptions(t *testing.T) {
	km := DefaultKeyMap()

	for _, b := range append(km.ChatHelp(), km.TopicsHelp()...) {
		assert.NotEmpty(t, b.Help().Key)
		assert.NotEmpty(t, b.Help().Desc)
	}
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		key  string
		want bool
	}{
		{"up", true},
		{"k", true},
		{"down", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.key, km.Up))
		})
	}
}
