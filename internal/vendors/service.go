// Package vendors manages vendor records and answers the existence checks
// the SKU engine makes before accepting a row.
package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/proset/internal/catalog"
	"github.com/JonMunkholm/proset/internal/logging"
	"github.com/JonMunkholm/proset/internal/store"
)

// ErrVendorNotFound is returned when no vendor has the requested name.
var ErrVendorNotFound = errors.New("vendor not found")

// Service is the vendor CRUD surface.
type Service struct {
	store   store.Store
	checker *Checker
}

// NewService returns a Service that keeps checker's cache in step with
// writes.
func NewService(st store.Store, checker *Checker) *Service {
	return &Service{store: st, checker: checker}
}

// Checker returns the existence checker used by the service.
func (s *Service) Checker() *Checker { return s.checker }

// List returns every vendor in store order.
func (s *Service) List(ctx context.Context) ([]catalog.Vendor, error) {
	var out []catalog.Vendor
	if err := s.store.FindMany(ctx, catalog.VendorsCollection, nil, &out); err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return out, nil
}

// Get returns the vendor named name.
func (s *Service) Get(ctx context.Context, name string) (catalog.Vendor, error) {
	var v catalog.Vendor
	found, err := s.store.FindOne(ctx, catalog.VendorsCollection, store.Filter(catalog.VendorFilter(name)), &v)
	if err != nil {
		return catalog.Vendor{}, fmt.Errorf("get vendor %q: %w", name, err)
	}
	if !found {
		return catalog.Vendor{}, fmt.Errorf("%w: %q", ErrVendorNotFound, name)
	}
	return v, nil
}

// Save creates or replaces the vendor with v's name. It reports whether a
// new vendor was created.
func (s *Service) Save(ctx context.Context, v catalog.Vendor) (bool, error) {
	v.Name = strings.TrimSpace(v.Name)
	if err := catalog.Validate(v); err != nil {
		return false, fmt.Errorf("invalid vendor: %w", err)
	}

	res, err := s.store.Upsert(ctx, catalog.VendorsCollection, store.Filter(catalog.VendorFilter(v.Name)), v.Patch())
	if err != nil {
		return false, fmt.Errorf("save vendor %q: %w", v.Name, err)
	}
	s.checker.Forget(ctx, v.Name)

	logging.FromContext(ctx).Info("vendor saved",
		"vendor", v.Name,
		"created", res.Created(),
		"modified", res.Modified,
	)
	return res.Created(), nil
}

// Delete removes the vendor named name. Its products are left in place.
func (s *Service) Delete(ctx context.Context, name string) error {
	res, err := s.store.DeleteOne(ctx, catalog.VendorsCollection, store.Filter(catalog.VendorFilter(name)))
	if err != nil {
		return fmt.Errorf("delete vendor %q: %w", name, err)
	}
	s.checker.Forget(ctx, name)
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %q", ErrVendorNotFound, name)
	}

	logging.FromContext(ctx).Info("vendor deleted", "vendor", name)
	return nil
}
