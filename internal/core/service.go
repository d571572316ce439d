package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/proset/internal/catalog"
	"github.com/JonMunkholm/proset/internal/logging"
	"github.com/JonMunkholm/proset/internal/store"
)

// DefaultMaxRows caps the data rows accepted by one import.
const DefaultMaxRows = 50000

// Options tunes a Service. Zero values select defaults.
type Options struct {
	Generator GeneratorConfig
	MaxRows   int
	Limiter   *BatchLimiter
}

// Service runs export, import and generation against an injected store.
type Service struct {
	store     store.Store
	vendors   VendorChecker
	validator *RowValidator
	generator *generator
	limiter   *BatchLimiter
	maxRows   int
}

// NewService wires a Service over st, checking vendors with vendors.
func NewService(st store.Store, vendors VendorChecker, opts Options) *Service {
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.Limiter == nil {
		opts.Limiter = NewBatchLimiter(DefaultMaxConcurrentBatches, DefaultBatchWait)
	}
	return &Service{
		store:     st,
		vendors:   vendors,
		validator: NewRowValidator(vendors),
		generator: newGenerator(opts.Generator),
		limiter:   opts.Limiter,
		maxRows:   opts.MaxRows,
	}
}

// LimiterStatus reports how many batches are running.
func (s *Service) LimiterStatus() BatchLimiterStatus {
	return s.limiter.Status()
}

// WaitForBatches blocks until running batches finish or ctx ends.
func (s *Service) WaitForBatches(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Products returns every product stored for vendor, in store order.
func (s *Service) Products(ctx context.Context, vendor string) ([]catalog.Product, error) {
	if vendor == "" {
		return nil, ErrVendorRequired
	}
	var out []catalog.Product
	err := s.store.FindMany(ctx, catalog.ProductsCollection, store.Filter{catalog.FieldVendorName: vendor}, &out)
	if err != nil {
		return nil, fmt.Errorf("list products for %q: %w", vendor, err)
	}
	return out, nil
}

// Product returns the product stored as (vendor, sku).
func (s *Service) Product(ctx context.Context, vendor, sku string) (catalog.Product, error) {
	var p catalog.Product
	found, err := s.store.FindOne(ctx, catalog.ProductsCollection, productKey(vendor, sku), &p)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("get product %s/%s: %w", vendor, sku, err)
	}
	if !found {
		return catalog.Product{}, fmt.Errorf("%w: %s/%s", ErrProductNotFound, vendor, sku)
	}
	return p, nil
}

// SaveProduct writes one complete product, sizes included, creating it when
// (vendor, sku) is not stored yet. Cells are trimmed, enums lowercased and an
// empty old_sku becomes NA before the record is validated. It reports whether
// a new product was created.
func (s *Service) SaveProduct(ctx context.Context, p catalog.Product) (bool, error) {
	p.Vendor.Name = strings.TrimSpace(p.Vendor.Name)
	p.SkuInfo.SKU = strings.TrimSpace(p.SkuInfo.SKU)
	p.SkuInfo.Type = strings.ToLower(strings.TrimSpace(p.SkuInfo.Type))
	p.SkuInfo.Status = strings.ToLower(strings.TrimSpace(p.SkuInfo.Status))
	if p.SkuInfo.OldSKU = strings.TrimSpace(p.SkuInfo.OldSKU); p.SkuInfo.OldSKU == "" {
		p.SkuInfo.OldSKU = catalog.NA
	}

	if err := s.requireVendor(ctx, p.Vendor.Name); err != nil {
		return false, err
	}
	if err := catalog.Validate(p); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidProduct, err)
	}

	vendor, sku := p.Key()
	res, err := s.store.Upsert(ctx, catalog.ProductsCollection, productKey(vendor, sku), p.Patch())
	if err != nil {
		return false, fmt.Errorf("save product %s/%s: %w", vendor, sku, err)
	}

	dims := 0
	if p.Sizes != nil {
		dims = len(p.Sizes.Dimensions)
	}
	logging.FromContext(ctx).Info("product saved",
		"vendor", vendor,
		"sku", sku,
		"dimensions", dims,
		"created", res.Created(),
		"modified", res.Modified,
	)
	return res.Created(), nil
}

// DeleteProduct removes one product. Imports never delete; this is the
// separate administrative path.
func (s *Service) DeleteProduct(ctx context.Context, vendor, sku string) error {
	if vendor == "" {
		return ErrVendorRequired
	}
	res, err := s.store.DeleteOne(ctx, catalog.ProductsCollection, productKey(vendor, sku))
	if err != nil {
		return fmt.Errorf("delete product %s/%s: %w", vendor, sku, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s/%s", ErrProductNotFound, vendor, sku)
	}
	logging.FromContext(ctx).Info("product deleted", "vendor", vendor, "sku", sku)
	return nil
}

// requireVendor runs the structural vendor checks shared by generation and
// single-product writes.
func (s *Service) requireVendor(ctx context.Context, vendor string) error {
	if vendor == "" {
		return ErrVendorRequired
	}
	ok, err := s.vendors.Exists(ctx, vendor)
	if err != nil {
		return fmt.Errorf("check vendor %q: %w", vendor, err)
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVendor, vendor)
	}
	return nil
}

// IsStructural reports whether err aborted an operation before any write.
func IsStructural(err error) bool {
	for _, target := range []error{
		ErrEmptyFile, ErrHeaderMismatch, ErrTooManyRows,
		ErrInvalidCount, ErrVendorRequired, ErrUnknownVendor,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
