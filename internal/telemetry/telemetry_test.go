package telemetry

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/lowc1012/drivetrain-limiter/internal/drive"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{
		Addr: server.Addr(),
	})
	t.Cleanup(func() { client.Close() })
	return server, client
}

func TestFromCommand(t *testing.T) {
	c := drive.Command{
		Time:     1.5,
		Y:        drive.AxisState{Input: 1, Output: 0.5, Branch: "accelerating"},
		X:        drive.AxisState{Input: -0.2, Output: -0.2, Branch: "releasing"},
		Rotation: drive.AxisState{Input: 0, Output: 0},
	}

	assert.Equal(t, []Sample{
		{Axis: "y", Time: 1.5, Input: 1, Output: 0.5, Branch: "accelerating"},
		{Axis: "x", Time: 1.5, Input: -0.2, Output: -0.2, Branch: "releasing"},
		{Axis: "rotation", Time: 1.5, Input: 0, Output: 0},
	}, FromCommand(c))
}

func TestRedisRecorder(t *testing.T) {
	ctx := context.Background()
	server, client := newRedis(t)
	r := NewRedisRecorder(client, "drivetrain:")
	require.NotEmpty(t, r.RunID())

	_, err := r.Latest(ctx, "y")
	assert.ErrorIs(t, err, ErrNoSample)

	first := Sample{Axis: "y", Time: 0.1, Input: 0.5, Output: 0.1, Branch: "accelerating"}
	second := Sample{Axis: "y", Time: 0.2, Input: 0.5, Output: 0.2, Branch: "accelerating"}
	require.NoError(t, r.Record(ctx, first))
	require.NoError(t, r.Record(ctx, second, second))
	require.NoError(t, r.Record(ctx))

	latest, err := r.Latest(ctx, "y")
	require.NoError(t, err)
	assert.Equal(t, second, latest)

	all, err := r.Samples(ctx, math.Inf(-1), math.Inf(1))
	require.NoError(t, err)
	assert.Equal(t, []Sample{first, second, second}, all)

	window, err := r.Samples(ctx, 0.15, 1)
	require.NoError(t, err)
	assert.Len(t, window, 2)

	assert.True(t, server.Exists("drivetrain:"+r.RunID()+":samples"))
}

func TestRedisRecorder_ConnectionError(t *testing.T) {
	server, client := newRedis(t)
	r := NewRedisRecorder(client, "drivetrain:")
	server.Close()

	err := r.Record(context.Background(), Sample{Axis: "x", Time: 1})
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Record(context.Background(),
		Sample{Axis: "y", Input: 1, Output: 0.25, Branch: "accelerating"},
		Sample{Axis: "y", Input: 1, Output: 0.5, Branch: "accelerating"},
		Sample{Axis: "x", Input: -1, Output: -1, Branch: "releasing"},
		Sample{Axis: "rotation", Input: 0.3, Output: 0.3},
	))

	assert.Equal(t, 0.5, testutil.ToFloat64(m.Output.WithLabelValues("y")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Input.WithLabelValues("y")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("y", "accelerating")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("x", "releasing")))
	assert.Equal(t, 0.3, testutil.ToFloat64(m.Output.WithLabelValues("rotation")))
}

type failingRecorder struct{ err error }

func (f failingRecorder) Record(context.Context, ...Sample) error { return f.err }

func (f failingRecorder) Close() error { return f.err }

func TestMulti(t *testing.T) {
	boom := errors.New("boom")
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	err := Multi{Nop{}, m, failingRecorder{boom}}.Record(context.Background(), Sample{Axis: "y", Output: 0.7})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0.7, testutil.ToFloat64(m.Output.WithLabelValues("y")))

	assert.NoError(t, Multi{Nop{}, m}.Record(context.Background()))

	assert.ErrorIs(t, Multi{Nop{}, m, failingRecorder{boom}}.Close(), boom)
	assert.NoError(t, Multi{Nop{}, m}.Close())
}

func TestRedisRecorder_CloseClosesClient(t *testing.T) {
	_, client := newRedis(t)
	r := NewRedisRecorder(client, "drivetrain:")
	require.NoError(t, r.Record(context.Background(), Sample{Axis: "y", Time: 1}))

	require.NoError(t, r.Close())
	assert.Error(t, r.Record(context.Background(), Sample{Axis: "y", Time: 2}))
}
