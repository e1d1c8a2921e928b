package drive

import (
	"testing"

	"github.com/lowc1012/drivetrain-limiter/internal/ratelimiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingDrive_KeepsMostRecentCalls(t *testing.T) {
	var d RecordingDrive
	_, ok := d.Last()
	assert.False(t, ok)

	total := 3*MaxRecordedCalls + 7
	for i := 0; i < total; i++ {
		d.DriveCartesian(float64(i), 0, 0, 0)
	}

	calls := d.Calls()
	require.Len(t, calls, MaxRecordedCalls)
	assert.Equal(t, float64(total-MaxRecordedCalls), calls[0].YSpeed)
	assert.Equal(t, float64(total-1), calls[len(calls)-1].YSpeed)

	last, ok := d.Last()
	require.True(t, ok)
	assert.Equal(t, float64(total-1), last.YSpeed)
}

func TestRecordingDrive_BoundedUnderSubsystem(t *testing.T) {
	s, hw, _ := newTestSubsystem(t, ratelimiter.AccelerationLimiterType)
	for i := 0; i < 50*60; i++ {
		s.DriveCartesianFieldCentric(0.5, 0, 0)
	}
	assert.Len(t, hw.Drive.Calls(), MaxRecordedCalls)
}
