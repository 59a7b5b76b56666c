package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		server, err := NewServer(nil)
		require.Error(t, err)
		assert.Nil(t, server)
	})

	t.Run("missing chat service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingChatService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Chat:      &mockChatService{},
			Retrieval: &mockRetrievalService{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil chat service returns error", func(t *testing.T) {
		ports := &Ports{}
		assert.ErrorIs(t, ports.Validate(), ErrMissingChatService)
	})

	t.Run("nil retrieval service returns error", func(t *testing.T) {
		ports := &Ports{Chat: &mockChatService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingRetrievalService)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Chat:      &mockChatService{},
			Retrieval: &mockRetrievalService{},
			Topics:    &mockTopicService{},
			Articles:  &mockArticleService{},
		}
		assert.NoError(t, ports.Validate())
	})
}
