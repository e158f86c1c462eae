package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
)

// spinAttempts bounds retries when a chosen prize sells out between pool read
// and commit.
const spinAttempts = 3

// drawPrize runs the weighted prize draw for a participant. Preconditions:
// the participant exists, has reached the spin threshold, and has never spun
// before. The spins table is keyed by participant, so the conditional create
// inside CreateSpin is the at-most-once gate; this function never overwrites
// an existing spin.
func drawPrize(ctx context.Context, store Store, participantID string) (Spin, error) {
	if participantID == "" {
		return Spin{}, ErrMissingFields
	}

	p, err := store.GetParticipant(ctx, participantID)
	if errors.Is(err, ErrNotFound) {
		return Spin{}, ErrParticipantNotFound
	}
	if err != nil {
		return Spin{}, err
	}

	threshold, err := store.SpinThreshold(ctx)
	if err != nil {
		return Spin{}, err
	}
	if p.Points < threshold {
		return Spin{}, ErrInsufficientPoints
	}

	if _, err := store.GetSpin(ctx, participantID); err == nil {
		return Spin{}, ErrAlreadySpun
	} else if !errors.Is(err, ErrNotFound) {
		return Spin{}, err
	}

	for range spinAttempts {
		pool, err := store.EligiblePrizes(ctx)
		if err != nil {
			return Spin{}, err
		}
		if len(pool) == 0 {
			return Spin{}, ErrNoPrizesAvailable
		}

		prize := pickPrize(pool, rand.Int64N(totalWeight(pool)))

		created, err := store.CreateSpin(ctx, participantID, prize, newClaimCode())
		if errors.Is(err, errStockConflict) {
			continue
		}
		if err != nil {
			return Spin{}, err
		}
		if !created {
			return Spin{}, ErrAlreadySpun
		}
		return store.GetSpin(ctx, participantID)
	}
	return Spin{}, ErrNoPrizesAvailable
}

func totalWeight(pool []Prize) int64 {
	var total int64
	for _, p := range pool {
		total += int64(p.Weight)
	}
	return total
}

// pickPrize walks the pool subtracting each weight from roll until it goes
// negative. A single uniform roll in [0, totalWeight) makes each prize's
// probability exactly weight/totalWeight.
func pickPrize(pool []Prize, roll int64) Prize {
	for _, p := range pool {
		roll -= int64(p.Weight)
		if roll < 0 {
			return p
		}
	}
	return pool[len(pool)-1]
}

// newClaimCode returns a 4-digit code for the prize desk. Collisions among
// the handful of concurrent winners are accepted as negligible.
func newClaimCode() string {
	return fmt.Sprintf("%04d", rand.IntN(10000))
}
