package telemetry

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown := Setup(context.Background(), Config{ServiceName: "workout-tracker"}, zerolog.Nop())
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}
