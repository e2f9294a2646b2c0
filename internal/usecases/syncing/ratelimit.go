package syncing

import (
	"context"
	"time"
)

// RateLimiter impõe um intervalo mínimo fixo entre chamadas à API da
// plataforma. É deliberadamente conservador (intervalo fixo, não token
// bucket) para respeitar cotas horárias rígidas do upstream.
//
// Não é seguro para uso concorrente: o pipeline de sincronização executa
// estritamente em sequência e compartilha uma única linha do tempo.
type RateLimiter struct {
	minInterval time.Duration
	last        time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter cria um limitador a partir de um teto de requisições por
// segundo. rps igual a zero desabilita o limitador.
func NewRateLimiter(rps float64) *RateLimiter {
	var minInterval time.Duration
	if rps > 0 {
		minInterval = time.Duration(float64(time.Second) / rps)
	}

	return &RateLimiter{
		minInterval: minInterval,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Wait bloqueia até que o intervalo mínimo desde a última chamada permitida
// tenha passado. A primeira chamada nunca espera.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.minInterval <= 0 {
		return nil
	}

	now := rl.now()
	if rl.last.IsZero() {
		rl.last = now
		return nil
	}

	if elapsed := now.Sub(rl.last); elapsed < rl.minInterval {
		if err := rl.sleep(ctx, rl.minInterval-elapsed); err != nil {
			return err
		}
	}

	rl.last = rl.now()
	return nil
}

// sleepContext espera a duração informada sem busy-wait, respeitando o
// cancelamento do contexto
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
