// Package codes allocates short human-readable codes unique within a tenant.
package codes

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/punctoo/punctoo/internal/metrics"
	"gorm.io/gorm"
)

// Alphabet excludes visually confusable characters (0/O, 1/I/L).
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultAttempts bounds the redraw loop; with 32^6 combinations per scope a
// collision streak this long means the scope is effectively saturated.
const DefaultAttempts = 10

const (
	// PairingCodeLength is used for employee pairing codes.
	PairingCodeLength = 6
	// TagCodeLength is used for scan tag codes.
	TagCodeLength = 8
)

// ErrExhausted is returned when the retry budget is spent without landing a
// free code. It is a server-side failure, distinct from user input errors.
var ErrExhausted = errors.New("code allocation retry budget exhausted")

// TakenFunc reports whether a candidate code already exists in the scope.
type TakenFunc func(ctx context.Context, code string) (bool, error)

// InsertFunc persists the entity carrying the candidate code. It must return
// gorm.ErrDuplicatedKey when the scope's uniqueness constraint rejects the
// code; any other error aborts the allocation.
type InsertFunc func(ctx context.Context, code string) error

type Allocator struct {
	alphabet string
	attempts int
	metrics  *metrics.Collector
}

func NewAllocator(collector *metrics.Collector) *Allocator {
	return newAllocatorWith(Alphabet, DefaultAttempts, collector)
}

// newAllocatorWith takes the alphabet and attempt budget directly. Tests use
// it to shrink the code space far enough to saturate; the alphabet length
// must still divide 256.
func newAllocatorWith(alphabet string, attempts int, collector *metrics.Collector) *Allocator {
	return &Allocator{
		alphabet: alphabet,
		attempts: attempts,
		metrics:  collector,
	}
}

// Allocate draws random candidates of the given length until insert accepts
// one. The existence pre-check keeps the common case to a single insert; the
// uniqueness constraint is the real backstop against concurrent allocators,
// so a constraint violation counts as a collision and triggers a redraw.
func (a *Allocator) Allocate(ctx context.Context, length int, taken TakenFunc, insert InsertFunc) (string, error) {
	for i := 0; i < a.attempts; i++ {
		code, err := a.random(length)
		if err != nil {
			return "", err
		}

		exists, err := taken(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking code existence: %w", err)
		}
		if exists {
			a.metrics.RecordCodeRetry()
			continue
		}

		err = insert(ctx, code)
		if err == nil {
			return code, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			a.metrics.RecordCodeRetry()
			continue
		}
		return "", err
	}

	a.metrics.RecordCodeExhausted()
	return "", ErrExhausted
}

// random draws an unbiased code from the alphabet. The alphabet length
// divides 256, so a plain modulo introduces no bias.
func (a *Allocator) random(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length %d", length)
	}
	if 256%len(a.alphabet) != 0 {
		return "", fmt.Errorf("alphabet length %d does not divide 256", len(a.alphabet))
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = a.alphabet[int(b)%len(a.alphabet)]
	}
	return string(buf), nil
}
