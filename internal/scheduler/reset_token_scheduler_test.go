package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpired() (int64, error) {
	p.calls.Add(1)
	return 2, p.err
}

func TestResetTokenScheduler_RunOnce(t *testing.T) {
	purger := &countingPurger{}
	s := NewResetTokenScheduler(purger, "")

	s.RunOnce()
	assert.Equal(t, int32(1), purger.calls.Load())
	assert.Equal(t, DefaultPurgeSpec, s.spec)

	// errors are logged, not propagated
	purger.err = errors.New("db down")
	s.RunOnce()
	assert.Equal(t, int32(2), purger.calls.Load())
}

func TestResetTokenScheduler_InvalidSpec(t *testing.T) {
	s := NewResetTokenScheduler(&countingPurger{}, "not a cron spec")
	assert.Error(t, s.Start())
}

func TestResetTokenScheduler_RunsOnSchedule(t *testing.T) {
	purger := &countingPurger{}
	s := NewResetTokenScheduler(purger, "@every 1s")

	assert.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return purger.calls.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
}
