package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, BackoffExponential, p.Mode)
	assert.Equal(t, 50*time.Millisecond, p.Initial)
	assert.Equal(t, 800*time.Millisecond, p.Max)
	assert.Equal(t, 4, p.MaxRetries)
	require.NoError(t, p.Validate())
}

// initial > max is clamped.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(BackoffFixed, 5*time.Second, 2*time.Second, 5)
	assert.Equal(t, 2*time.Second, p.Initial)
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, BackoffFixed, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)

	p = NewPolicy("weird", 10*time.Millisecond, 0, -1)
	assert.Equal(t, BackoffExponential, p.Mode)
	assert.Equal(t, 4, p.MaxRetries)
}

func TestDelayModes(t *testing.T) {
	ms := time.Millisecond
	tests := []struct {
		name   string
		policy Policy
		want   []time.Duration // attempts 1..n
	}{
		{"fixed", NewPolicy(BackoffFixed, 100*ms, 500*ms, 3), []time.Duration{100 * ms, 100 * ms, 100 * ms}},
		{"linear", NewPolicy(BackoffLinear, 100*ms, 250*ms, 5), []time.Duration{100 * ms, 200 * ms, 250 * ms, 250 * ms}},
		{"exponential", NewPolicy(BackoffExponential, 50*ms, 160*ms, 5), []time.Duration{50 * ms, 100 * ms, 160 * ms, 160 * ms}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, want := range tt.want {
				assert.Equal(t, want, tt.policy.Delay(i+1), "attempt %d", i+1)
			}
		})
	}
}

func TestDelayEdgeCases(t *testing.T) {
	p := NewPolicy(BackoffExponential, 10*time.Millisecond, time.Second, 1)
	assert.Zero(t, p.Delay(0))
	assert.Zero(t, p.Delay(-1))
	assert.Equal(t, time.Second, p.Delay(64))
}

func TestValidate(t *testing.T) {
	assert.Error(t, Policy{Initial: 0, Max: time.Second}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: 0}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
	assert.NoError(t, Policy{Initial: time.Second, Max: time.Second}.Validate())
}

var errTransient = errors.New("transient")

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 3), nil, func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUp(t *testing.T) {
	calls := 0
	err := Do(context.Background(), NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 2), nil, func() error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := Do(context.Background(), DefaultPolicy(), func(err error) bool { return errors.Is(err, errTransient) }, func() error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Do(ctx, NewPolicy(BackoffFixed, time.Hour, time.Hour, 5), nil, func() error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}
