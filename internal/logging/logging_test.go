package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			logger, err := New(level, "console")
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	logger, err := New("info", "json")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", "console")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}
