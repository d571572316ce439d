package core

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/proset/internal/catalog"
)

var generatedCode = regexp.MustCompile(`^GEN-[A-Z0-9]{6}$`)

// zeroReader always yields zero bytes, so every code is GEN-AAAAAA.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestGenerate_DistinctCodes(t *testing.T) {
	f := newFixture(t, "Acme")

	products, err := f.svc.Generate(context.Background(), "Acme", 100)
	require.NoError(t, err)
	require.Len(t, products, 100)

	seen := make(map[string]bool)
	for _, p := range products {
		assert.Regexp(t, generatedCode, p.SkuInfo.SKU)
		assert.False(t, seen[p.SkuInfo.SKU], "duplicate code %s", p.SkuInfo.SKU)
		seen[p.SkuInfo.SKU] = true

		assert.Equal(t, catalog.TypeGenerated, p.SkuInfo.Type)
		assert.Equal(t, catalog.StatusCurrent, p.SkuInfo.Status)
		assert.Equal(t, catalog.NA, p.SkuInfo.OldSKU)
		assert.Equal(t, "Acme", p.Vendor.Name)
	}
	assert.Equal(t, 100, f.productCount())
}

func TestGenerate_CustomShape(t *testing.T) {
	f := newFixtureWith(t, Options{Generator: GeneratorConfig{Prefix: "X", Length: 3}}, "Acme")

	products, err := f.svc.Generate(context.Background(), "Acme", 5)
	require.NoError(t, err)
	for _, p := range products {
		assert.Regexp(t, `^X[A-Z0-9]{3}$`, p.SkuInfo.SKU)
	}
}

func TestGenerate_RejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name    string
		vendor  string
		n       int
		wantErr error
	}{
		{"zero count", "Acme", 0, ErrInvalidCount},
		{"negative count", "Acme", -3, ErrInvalidCount},
		{"over max", "Acme", DefaultMaxGenerated + 1, ErrInvalidCount},
		{"no vendor", "", 1, ErrVendorRequired},
		{"unknown vendor", "Globex", 1, ErrUnknownVendor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "Acme")
			products, err := f.svc.Generate(context.Background(), tt.vendor, tt.n)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, products)
			assert.Equal(t, 0, f.productCount())
		})
	}
}

func TestGenerate_SkipsCodesUsedByOtherVendors(t *testing.T) {
	f := newFixtureWith(t, Options{Generator: GeneratorConfig{Rand: zeroReader{}, MaxAttempts: 3}}, "Acme")
	f.seed(t, catalog.NewProduct("Globex", "GEN-AAAAAA", catalog.TypeGenerated, catalog.StatusCurrent, ""))

	products, err := f.svc.Generate(context.Background(), "Acme", 1)
	assert.ErrorIs(t, err, ErrGenerationExhausted)
	assert.Empty(t, products)
	assert.Equal(t, 1, f.productCount())
}

func TestGenerate_ExhaustionKeepsPartialResults(t *testing.T) {
	f := newFixtureWith(t, Options{Generator: GeneratorConfig{Rand: zeroReader{}, MaxAttempts: 4}}, "Acme")

	products, err := f.svc.Generate(context.Background(), "Acme", 3)
	require.ErrorIs(t, err, ErrGenerationExhausted)
	require.Len(t, products, 1)
	assert.Equal(t, "GEN-AAAAAA", products[0].SkuInfo.SKU)

	_, found := f.product(t, "Acme", "GEN-AAAAAA")
	assert.True(t, found, "codes minted before exhaustion stay stored")
	assert.Equal(t, 1, f.productCount())
}

func TestGenerate_StoreFailure(t *testing.T) {
	f := newFixture(t, "Acme")
	f.store.FailOn = func(op, collection string) error {
		if op == "insert_one" {
			return errors.New("disk full")
		}
		return nil
	}

	products, err := f.svc.Generate(context.Background(), "Acme", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, products)
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t, "Acme")
	inserts := 0
	f.store.FailOn = func(op, collection string) error {
		if op == "insert_one" {
			inserts++
			if inserts == 2 {
				cancel()
			}
		}
		return nil
	}

	products, err := f.svc.Generate(ctx, "Acme", 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, products, 2)
}

func TestGeneratorCode_Uniform(t *testing.T) {
	g := newGenerator(GeneratorConfig{})
	counts := make(map[byte]int)
	for i := 0; i < 2000; i++ {
		code, err := g.code()
		require.NoError(t, err)
		require.Regexp(t, generatedCode, code)
		for j := len(DefaultCodePrefix); j < len(code); j++ {
			counts[code[j]]++
		}
	}
	assert.Len(t, counts, len(codeAlphabet), "every alphabet character shows up")
}
