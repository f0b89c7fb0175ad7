// Package slug generates the short public identifiers results are served
// under.
package slug

import (
	"context"
	"math/rand/v2"

	"github.com/rotisserie/eris"
)

// Alphabet is the character set slugs are drawn from. Zero is excluded.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ123456789"

// Length is the number of characters in a slug.
const Length = 4

// DefaultMaxAttempts bounds the regeneration loop in Assign.
const DefaultMaxAttempts = 100

// Checker reports whether a slug is already taken.
type Checker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Generate returns Length distinct characters from Alphabet in random order.
func Generate() string {
	idx := rand.Perm(len(Alphabet))[:Length]
	out := make([]byte, Length)
	for i, j := range idx {
		out[i] = Alphabet[j]
	}
	return string(out)
}

// Assign generates slugs until one is unused, giving up after maxAttempts.
// A non-positive maxAttempts uses DefaultMaxAttempts.
func Assign(ctx context.Context, c Checker, maxAttempts int) (string, error) {
	return assign(ctx, c, maxAttempts, Generate)
}

func assign(ctx context.Context, c Checker, maxAttempts int, gen func() string) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	for range maxAttempts {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "slug: assign")
		}
		s := gen()
		taken, err := c.SlugExists(ctx, s)
		if err != nil {
			return "", eris.Wrap(err, "slug: check existing")
		}
		if !taken {
			return s, nil
		}
	}
	return "", eris.Errorf("slug: no free slug after %d attempts", maxAttempts)
}
