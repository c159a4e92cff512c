package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatelens/climatelens/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        false,
	})

	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)
	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)

	assert.NoError(t, provider.Shutdown(ctx))
}

func TestProvider_Shutdown_NilProviders(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestProviderMetrics_RecordRequest(t *testing.T) {
	metrics, err := telemetry.NewProviderMetrics()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		metrics.RecordRequest("power", "fetch", 120*time.Millisecond, nil)
		metrics.RecordRequest("power", "fetch", time.Second, errors.New("boom"))
	})
}

func TestProviderMetrics_NilReceiver(t *testing.T) {
	var metrics *telemetry.ProviderMetrics
	assert.NotPanics(t, func() {
		metrics.RecordRequest("gemini", "generate", time.Second, nil)
	})
}
