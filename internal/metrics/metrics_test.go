package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironroute-backend/internal/metrics"
)

func TestNew_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	c, err := metrics.New(reg)
	require.NoError(t, err)
	require.NotNil(t, c)

	c.PendingBotTurns.Set(2)
	c.TurnsExecuted.Inc()
	c.TurnDuration.Observe(0.25)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew_DuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	assert.Error(t, err)
}
