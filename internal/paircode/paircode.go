// Package paircode issues the human-shareable codes that let one user
// link their account to a partner's.
package paircode

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/dichenko/myshadow/internal/apperror"
)

const (
	// Length of every issued code. 16 symbols over a 36-char alphabet
	// is ~83 bits of entropy; collisions are practically unreachable,
	// but uniqueness is still verified against the store.
	Length = 16

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	maxAttempts = 10
)

// Index answers whether a candidate code is already held by some user.
type Index interface {
	CodeTaken(ctx context.Context, code string) (bool, error)
}

// Generator produces unique pair codes. It has no side effects; storing
// the issued code is the caller's responsibility.
type Generator struct {
	idx Index
}

func New(idx Index) *Generator {
	return &Generator{idx: idx}
}

// Generate returns a fresh code no user currently holds. Retries on
// collision up to maxAttempts, then fails with ErrCodeExhausted so a
// pathological index cannot loop forever.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", fmt.Errorf("generating pair code: %w", err)
		}
		taken, err := g.idx.CodeTaken(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking pair code uniqueness: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperror.CodeExhausted()
}

// randomCode draws Length symbols uniformly from the alphabet using
// rejection sampling, so no symbol is favored by modulo bias.
func randomCode() (string, error) {
	const limit = byte(len(alphabet)) * (255 / byte(len(alphabet))) // 252

	out := make([]byte, 0, Length)
	buf := make([]byte, Length*2)
	for len(out) < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == Length {
				break
			}
		}
	}
	return string(out), nil
}
