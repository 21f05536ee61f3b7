package codes

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryScope mimics a per-company uniqueness constraint in memory.
type memoryScope struct {
	codes map[string]bool
}

func newMemoryScope() *memoryScope {
	return &memoryScope{codes: make(map[string]bool)}
}

func (m *memoryScope) taken(_ context.Context, code string) (bool, error) {
	return m.codes[code], nil
}

func (m *memoryScope) insert(_ context.Context, code string) error {
	if m.codes[code] {
		return gorm.ErrDuplicatedKey
	}
	m.codes[code] = true
	return nil
}

func TestAllocator_AllocateProducesDistinctCodes(t *testing.T) {
	allocator := NewAllocator(nil)
	scope := newMemoryScope()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := allocator.Allocate(ctx, PairingCodeLength, scope.taken, scope.insert)
		require.NoError(t, err)
		assert.Len(t, code, PairingCodeLength)
		assert.False(t, seen[code], "allocator issued %q twice", code)
		seen[code] = true

		for _, r := range code {
			assert.True(t, strings.ContainsRune(Alphabet, r), "character %q outside alphabet", r)
		}
	}
}

func TestAllocator_ScopesAreIndependent(t *testing.T) {
	allocator := NewAllocator(nil)
	ctx := context.Background()

	// The same code may exist in two scopes; only the scope's own constraint
	// rejects a candidate.
	first := newMemoryScope()
	second := newMemoryScope()

	code, err := allocator.Allocate(ctx, PairingCodeLength, first.taken, first.insert)
	require.NoError(t, err)

	require.NoError(t, second.insert(ctx, code))
	_, err = allocator.Allocate(ctx, PairingCodeLength, second.taken, second.insert)
	require.NoError(t, err)
}

func TestAllocator_RetriesOnConstraintViolation(t *testing.T) {
	allocator := NewAllocator(nil)
	ctx := context.Background()

	// The pre-check says free, but the insert hits the constraint once. This
	// is the concurrent-allocator race; the loop must redraw and land.
	var rejected bool
	insert := func(_ context.Context, code string) error {
		if !rejected {
			rejected = true
			return gorm.ErrDuplicatedKey
		}
		return nil
	}
	taken := func(_ context.Context, code string) (bool, error) { return false, nil }

	code, err := allocator.Allocate(ctx, TagCodeLength, taken, insert)
	require.NoError(t, err)
	assert.Len(t, code, TagCodeLength)
	assert.True(t, rejected)
}

func TestAllocator_ExhaustsInsteadOfSpinning(t *testing.T) {
	allocator := NewAllocator(nil)
	ctx := context.Background()

	// A fully saturated scope must fail after the retry budget, not hang.
	taken := func(_ context.Context, code string) (bool, error) { return true, nil }
	insert := func(_ context.Context, code string) error {
		t.Fatal("insert must not run when the pre-check reports taken")
		return nil
	}

	_, err := allocator.Allocate(ctx, PairingCodeLength, taken, insert)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestAllocator_FindsLastFreeCode(t *testing.T) {
	// Two runes, length two: a four-code space with every code but "BB"
	// pre-populated. A generous attempt budget makes missing the last free
	// code vanishingly unlikely, so the draw must land on it.
	allocator := newAllocatorWith("AB", 512, nil)
	scope := newMemoryScope()
	ctx := context.Background()

	for _, code := range []string{"AA", "AB", "BA"} {
		require.NoError(t, scope.insert(ctx, code))
	}

	code, err := allocator.Allocate(ctx, 2, scope.taken, scope.insert)
	require.NoError(t, err)
	assert.Equal(t, "BB", code)
}

func TestAllocator_SaturatedSpaceExhausts(t *testing.T) {
	// Same tiny space with nothing left. The loop must stop at the budget
	// with ErrExhausted instead of spinning.
	allocator := newAllocatorWith("AB", 16, nil)
	scope := newMemoryScope()
	ctx := context.Background()

	for _, code := range []string{"AA", "AB", "BA", "BB"} {
		require.NoError(t, scope.insert(ctx, code))
	}

	_, err := allocator.Allocate(ctx, 2, scope.taken, scope.insert)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestAllocator_PropagatesStorageErrors(t *testing.T) {
	allocator := NewAllocator(nil)
	ctx := context.Background()

	taken := func(_ context.Context, code string) (bool, error) { return false, nil }
	insert := func(_ context.Context, code string) error { return gorm.ErrInvalidDB }

	_, err := allocator.Allocate(ctx, PairingCodeLength, taken, insert)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExhausted)
}

func TestAllocator_RejectsInvalidLength(t *testing.T) {
	allocator := NewAllocator(nil)
	scope := newMemoryScope()

	_, err := allocator.Allocate(context.Background(), 0, scope.taken, scope.insert)
	assert.Error(t, err)
}

func TestAlphabetExcludesConfusableCharacters(t *testing.T) {
	for _, r := range "01OIL" {
		assert.False(t, strings.ContainsRune(Alphabet, r), "alphabet must not contain %q", r)
	}
	assert.Equal(t, 0, 256%len(Alphabet))
}
