package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/lowc1012/drivetrain-limiter/internal/log"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ensure that RedisRecorder satisfies the Recorder interface
var _ Recorder = &RedisRecorder{}

const (
	sortedSetMax = "+inf"
	sortedSetMin = "-inf"
)

// ErrNoSample is returned when an axis has not been recorded yet.
var ErrNoSample = errors.New("no sample recorded")

// sampleRecord is a sorted set member; the id keeps identical samples apart.
type sampleRecord struct {
	ID string `json:"id"`
	Sample
}

// RedisRecorder keeps the latest state of every axis in a hash and the
// full history of a run in a sorted set scored by time.
type RedisRecorder struct {
	client    *redis.Client
	runID     string
	keyPrefix string
}

// NewRedisRecorder starts a new run under keyPrefix. The recorder owns
// client and closes it on Close.
func NewRedisRecorder(client *redis.Client, keyPrefix string) *RedisRecorder {
	return &RedisRecorder{
		client:    client,
		runID:     uuid.NewString(),
		keyPrefix: keyPrefix,
	}
}

// RunID identifies this recorder's run.
func (r *RedisRecorder) RunID() string {
	return r.runID
}

func (r *RedisRecorder) Record(ctx context.Context, samples ...Sample) error {
	if len(samples) == 0 {
		return nil
	}

	// one round trip per control cycle
	p := r.client.Pipeline()
	for _, s := range samples {
		member, err := json.Marshal(sampleRecord{ID: uuid.NewString(), Sample: s})
		if err != nil {
			return err
		}
		p.HSet(ctx, r.axisKey(s.Axis), s)
		p.ZAdd(ctx, r.samplesKey(), redis.Z{
			Score:  s.Time,
			Member: string(member),
		})
	}

	if _, err := p.Exec(ctx); err != nil {
		log.Logger().Error("Failed to record telemetry",
			zap.String("run", r.runID), zap.Error(err))
		return err
	}
	return nil
}

func (r *RedisRecorder) Close() error {
	return r.client.Close()
}

// Latest returns the most recent sample recorded for axis.
func (r *RedisRecorder) Latest(ctx context.Context, axis string) (Sample, error) {
	var s Sample
	res := r.client.HGetAll(ctx, r.axisKey(axis))
	if err := res.Err(); err != nil {
		return s, err
	}
	if len(res.Val()) == 0 {
		return s, fmt.Errorf("%w for axis %q", ErrNoSample, axis)
	}
	if err := res.Scan(&s); err != nil {
		return s, err
	}
	return s, nil
}

// Samples returns the samples recorded between from and to seconds,
// inclusive, ordered by time.
func (r *RedisRecorder) Samples(ctx context.Context, from, to float64) ([]Sample, error) {
	members, err := r.client.ZRangeByScore(ctx, r.samplesKey(), &redis.ZRangeBy{
		Min: formatScore(from),
		Max: formatScore(to),
	}).Result()
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(members))
	for _, m := range members {
		var rec sampleRecord
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			return nil, fmt.Errorf("decode sample: %w", err)
		}
		samples = append(samples, rec.Sample)
	}
	return samples, nil
}

func (r *RedisRecorder) axisKey(axis string) string {
	return r.keyPrefix + r.runID + ":" + axis
}

func (r *RedisRecorder) samplesKey() string {
	return r.keyPrefix + r.runID + ":samples"
}

func formatScore(v float64) string {
	switch {
	case math.IsInf(v, -1):
		return sortedSetMin
	case math.IsInf(v, 1):
		return sortedSetMax
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
