package core

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/proset/internal/catalog"
	"github.com/JonMunkholm/proset/internal/logging"
	"github.com/JonMunkholm/proset/internal/store"
)

// Generated code defaults: "GEN-" followed by six characters from
// [A-Z0-9], giving 36^6 (about 2.2 billion) codes.
const (
	DefaultCodePrefix   = "GEN-"
	DefaultCodeLength   = 6
	DefaultMaxAttempts  = 25
	DefaultMaxGenerated = 10000
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratorConfig shapes generated codes. Zero values select defaults.
type GeneratorConfig struct {
	Prefix string
	Length int
	// MaxAttempts bounds the tries spent finding one unused code.
	MaxAttempts int
	// MaxCount bounds n for a single Generate call.
	MaxCount int
	// Rand is the randomness source; nil means crypto/rand.
	Rand io.Reader
}

type generator struct {
	cfg GeneratorConfig
}

func newGenerator(cfg GeneratorConfig) *generator {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultCodePrefix
	}
	if cfg.Length <= 0 {
		cfg.Length = DefaultCodeLength
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.MaxCount <= 0 {
		cfg.MaxCount = DefaultMaxGenerated
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}
	return &generator{cfg: cfg}
}

// code returns prefix plus Length characters drawn uniformly from
// codeAlphabet. Bytes at or above the largest multiple of 36 are discarded
// so every character is equally likely.
func (g *generator) code() (string, error) {
	const limit = 256 - 256%len(codeAlphabet)

	var b strings.Builder
	b.Grow(len(g.cfg.Prefix) + g.cfg.Length)
	b.WriteString(g.cfg.Prefix)

	buf := make([]byte, g.cfg.Length*2)
	need := g.cfg.Length
	for need > 0 {
		if _, err := io.ReadFull(g.cfg.Rand, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, c := range buf {
			if int(c) >= limit {
				continue
			}
			b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
			need--
			if need == 0 {
				break
			}
		}
	}
	return b.String(), nil
}

// Generate mints n new products for vendor with unused codes, stored as
// generated and current with old_sku NA. Count and vendor are checked
// before anything is written. Each code is checked against the whole product
// collection and inserted right after the check, one at a time.
//
// If a code cannot be found within MaxAttempts tries, or the store fails,
// the products created so far are returned together with the error; they
// stay stored.
func (s *Service) Generate(ctx context.Context, vendor string, n int) ([]catalog.Product, error) {
	g := s.generator
	if n <= 0 || n > g.cfg.MaxCount {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidCount, n, g.cfg.MaxCount)
	}
	if err := s.requireVendor(ctx, vendor); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx = logging.WithBatchID(ctx, uuid.NewString())
	logger := logging.FromContext(ctx)
	logger.Info("generation started", "vendor", vendor, "count", n)

	out := make([]catalog.Product, 0, n)
	seen := make(map[string]struct{}, n)
	collisions := 0

	for len(out) < n {
		if err := ctx.Err(); err != nil {
			logger.Warn("generation cancelled", "created", len(out), "requested", n)
			return out, fmt.Errorf("generation cancelled after %d of %d: %w", len(out), n, err)
		}

		p, tries, err := s.mintOne(ctx, vendor, seen)
		collisions += tries - 1
		if err != nil {
			logger.Error("generation stopped", "created", len(out), "requested", n, "error", err)
			return out, err
		}
		out = append(out, p)
	}

	logger.Info("generation finished", "vendor", vendor, "created", len(out), "collisions", collisions)
	return out, nil
}

// mintOne finds an unused code and stores a product for it. It returns the
// number of attempts spent.
func (s *Service) mintOne(ctx context.Context, vendor string, seen map[string]struct{}) (catalog.Product, int, error) {
	g := s.generator
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		code, err := g.code()
		if err != nil {
			return catalog.Product{}, attempt, err
		}
		if _, dup := seen[code]; dup {
			continue
		}

		var existing catalog.Product
		taken, err := s.store.FindOne(ctx, catalog.ProductsCollection, store.Filter{catalog.FieldSKU: code}, &existing)
		if err != nil {
			return catalog.Product{}, attempt, fmt.Errorf("check %s: %w", code, err)
		}
		if taken {
			seen[code] = struct{}{}
			continue
		}

		p := catalog.NewProduct(vendor, code, catalog.TypeGenerated, catalog.StatusCurrent, catalog.NA)
		if _, err := s.store.InsertOne(ctx, catalog.ProductsCollection, p); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				seen[code] = struct{}{}
				continue
			}
			return catalog.Product{}, attempt, fmt.Errorf("insert %s: %w", code, err)
		}
		seen[code] = struct{}{}
		return p, attempt, nil
	}
	return catalog.Product{}, g.cfg.MaxAttempts,
		fmt.Errorf("%w after %d attempts", ErrGenerationExhausted, g.cfg.MaxAttempts)
}
