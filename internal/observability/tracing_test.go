package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_DisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "blogicum-test", Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartRepositorySpan(context.Background(), "ListPublic", "posts")
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("query failed"))
}

func TestTrackQuery_RecordsObservation(t *testing.T) {
	done := TrackQuery("select", "posts")
	done()
}
