package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := NewClient(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestNewClient_CustomKeyEnv(t *testing.T) {
	t.Setenv("LEGATA_GEMINI", "")
	_, err := NewClient(context.Background(), Config{APIKeyEnv: "LEGATA_GEMINI"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEGATA_GEMINI")
}
