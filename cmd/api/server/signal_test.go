package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSignal_StopCancels(t *testing.T) {
	ctx, stop := WithSignal(context.Background())
	require.NoError(t, ctx.Err())

	stop()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
