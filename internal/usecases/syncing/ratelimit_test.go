package syncing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock simula a passagem de tempo registrando as esperas solicitadas
type fakeClock struct {
	current time.Time
	sleeps  []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.current = c.current.Add(d)
	return nil
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestRateLimiter_Wait(t *testing.T) {
	t.Run("Primeira chamada nunca espera", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewRateLimiter(10)
		limiter.now = clock.now
		limiter.sleep = clock.sleep

		err := limiter.Wait(context.Background())
		require.NoError(t, err)
		assert.Empty(t, clock.sleeps)
	})

	t.Run("Chamadas consecutivas respeitam o intervalo mínimo", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewRateLimiter(10) // 100ms entre chamadas
		limiter.now = clock.now
		limiter.sleep = clock.sleep

		require.NoError(t, limiter.Wait(context.Background()))

		// Segunda chamada imediata deve esperar o intervalo inteiro
		require.NoError(t, limiter.Wait(context.Background()))
		require.Len(t, clock.sleeps, 1)
		assert.Equal(t, 100*time.Millisecond, clock.sleeps[0])

		// Terceira chamada após 40ms espera apenas o restante
		clock.advance(40 * time.Millisecond)
		require.NoError(t, limiter.Wait(context.Background()))
		require.Len(t, clock.sleeps, 2)
		assert.Equal(t, 60*time.Millisecond, clock.sleeps[1])
	})

	t.Run("Chamada após intervalo completo não espera", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewRateLimiter(10)
		limiter.now = clock.now
		limiter.sleep = clock.sleep

		require.NoError(t, limiter.Wait(context.Background()))
		clock.advance(150 * time.Millisecond)
		require.NoError(t, limiter.Wait(context.Background()))

		assert.Empty(t, clock.sleeps)
	})

	t.Run("RPS zero desabilita o limitador", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewRateLimiter(0)
		limiter.now = clock.now
		limiter.sleep = clock.sleep

		for i := 0; i < 5; i++ {
			require.NoError(t, limiter.Wait(context.Background()))
		}
		assert.Empty(t, clock.sleeps)
	})

	t.Run("Cancelamento do contexto interrompe a espera", func(t *testing.T) {
		limiter := NewRateLimiter(1)

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, limiter.Wait(ctx))

		cancel()
		err := limiter.Wait(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
