package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoVal_FirstTrySucceeds(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastRetry(3), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 1, calls)
}

func TestDoVal_RecoversAfterTransientFailures(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastRetry(4), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, Transient(eris.New("flaky upstream"))
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 3, calls)
}

func TestDoVal_Exhaustion(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastRetry(3), func(ctx context.Context) (string, error) {
		calls++
		return "partial", Transient(eris.New("still down"))
	})
	require.Error(t, err)
	assert.Equal(t, "", val, "failed calls must not leak partial values")
	assert.Equal(t, 3, calls)
}

func TestDoVal_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastRetry(5), func(ctx context.Context) (string, error) {
		calls++
		return "", eris.New("bad request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ContextCancelStopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry(10)
	cfg.InitialBackoff = 50 * time.Millisecond

	calls := 0
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", Transient(eris.New("down"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_CustomShouldRetry(t *testing.T) {
	marker := eris.New("retry me")
	cfg := fastRetry(3)
	cfg.ShouldRetry = func(err error) bool { return eris.Is(err, marker) }

	calls := 0
	_, err := DoVal(context.Background(), cfg, func(ctx context.Context) (int, error) {
		calls++
		return 0, marker
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls, "custom predicate should drive retries for non-transient errors")
}

func TestDoVal_OnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := fastRetry(3)
	cfg.OnRetry = func(attempt int, err error) {
		attempts = append(attempts, attempt)
	}

	DoVal(context.Background(), cfg, func(ctx context.Context) (int, error) {
		return 0, Transient(eris.New("down"))
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDo_WrapsDoVal(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return Transient(eris.New("once"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoVal_ZeroConfigGetsDefaults(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), RetryConfig{InitialBackoff: time.Millisecond}, func(ctx context.Context) (int, error) {
		calls++
		return 0, Transient(eris.New("down"))
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls, "default MaxAttempts is 3")
}

func TestBackoff_Growth(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
	}
	assert.Equal(t, 100*time.Millisecond, backoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, backoff(1, cfg))
	assert.Equal(t, 400*time.Millisecond, backoff(2, cfg))
}

func TestBackoff_Cap(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     2 * time.Second,
		Multiplier:     10.0,
	}
	assert.Equal(t, 2*time.Second, backoff(5, cfg))
}

func TestBackoff_JitterStaysInRange(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.5,
	}
	for i := 0; i < 100; i++ {
		d := backoff(0, cfg)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestRetryLogger(t *testing.T) {
	// Must not panic with the global logger.
	fn := RetryLogger("llm", "anthropic")
	fn(1, eris.New("rate limited"))
}
