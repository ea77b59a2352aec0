package main

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/spatialfx-go"
	"github.com/cbegin/spatialfx-go/internal/settings"
)

func TestRunSetRoutesChoiceAndNumericFields(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	e, err := spatialfx.NewEngine(spatialfx.WithManualOutput(), spatialfx.WithLogger(log))
	require.NoError(t, err)
	defer e.Dispose()
	require.NoError(t, e.Initialize())

	quit, err := run(e, []string{"set", "movementShape", "circular"})
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, settings.ShapeCircular, e.Settings().MovementShape)

	_, err = run(e, []string{"set", "travelSpeed", "70"})
	require.NoError(t, err)
	assert.Equal(t, 70.0, e.Settings().TravelSpeed)

	_, err = run(e, []string{"set", "travelSpeed", "fast"})
	assert.Error(t, err)
	_, err = run(e, []string{"set", "movementShape", "spiral"})
	assert.ErrorIs(t, err, settings.ErrInvalidChoice)

	_, err = run(e, []string{"set", "mode", "haas"})
	require.NoError(t, err)
	assert.Equal(t, spatialfx.ModeHaas, e.Mode())

	quit, err = run(e, []string{"quit"})
	require.NoError(t, err)
	assert.True(t, quit)
}
