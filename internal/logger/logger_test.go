package logger

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_SetsLevel(t *testing.T) {
	require.NoError(t, Configure("debug", "", false))
	assert.Equal(t, log.DebugLevel, Logger.GetLevel())

	require.NoError(t, Configure("error", "", false))
	assert.Equal(t, log.ErrorLevel, Logger.GetLevel())
}

func TestConfigure_UnknownLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, Configure("nonsense", "", false))
	assert.Equal(t, log.InfoLevel, Logger.GetLevel())
}

func TestNewStyledLogger_InheritsConfiguredLevel(t *testing.T) {
	require.NoError(t, Configure("debug", "", false))
	styled := NewStyledLogger("Flow")
	require.NotNil(t, styled)
	assert.Equal(t, log.DebugLevel, styled.GetLevel())
	assert.Equal(t, "Flow ", styled.GetPrefix())
}
