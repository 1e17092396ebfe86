package rbpmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRegistry_Disabled(t *testing.T) {
	InitRegistry(false)
	assert.False(t, IsEnabled())
	assert.Nil(t, GetRegistry())
}

func TestInitRegistry_Enabled(t *testing.T) {
	reg := InitRegistry(true)
	require.NotNil(t, reg)
	assert.True(t, IsEnabled())
	assert.Same(t, reg, GetRegistry())

	InitRegistry(false) // leave global state clean for other tests
}
