package slug

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setChecker struct {
	taken map[string]bool
	err   error
	calls int
}

func (s *setChecker) SlugExists(_ context.Context, slug string) (bool, error) {
	s.calls++
	return s.taken[slug], s.err
}

func TestGenerate(t *testing.T) {
	for range 500 {
		s := Generate()
		require.Len(t, s, Length)

		seen := map[rune]bool{}
		for _, r := range s {
			assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected char %q", r)
			assert.False(t, seen[r], "duplicate char %q in %q", r, s)
			seen[r] = true
		}
		assert.NotContains(t, s, "0")
	}
}

func TestAssign_Free(t *testing.T) {
	c := &setChecker{}
	s, err := Assign(context.Background(), c, 0)
	require.NoError(t, err)
	assert.Len(t, s, Length)
	assert.Equal(t, 1, c.calls)
}

func TestAssign_RegeneratesOnCollision(t *testing.T) {
	c := &setChecker{taken: map[string]bool{"abcd": true}}
	seq := []string{"abcd", "abcd", "wxyz"}
	i := 0
	gen := func() string {
		s := seq[i]
		i++
		return s
	}

	s, err := assign(context.Background(), c, 10, gen)
	require.NoError(t, err)
	assert.Equal(t, "wxyz", s)
	assert.Equal(t, 3, c.calls)
}

func TestAssign_Exhausted(t *testing.T) {
	c := &setChecker{taken: map[string]bool{"abcd": true}}
	_, err := assign(context.Background(), c, 3, func() string { return "abcd" })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, c.calls)
}

func TestAssign_CheckerError(t *testing.T) {
	c := &setChecker{err: errors.New("db down")}
	_, err := Assign(context.Background(), c, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestAssign_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Assign(ctx, &setChecker{}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
