package core

import (
	"context"
	"errors"
	"strings"

	"github.com/JonMunkholm/proset/internal/catalog"
	"github.com/JonMunkholm/proset/internal/store"
)

// Action is the store mutation an import row asks for.
type Action int

const (
	// ActionUpsert writes the full record keyed by (vendor, sku).
	ActionUpsert Action = iota
	// ActionReplace renames the record found by (vendor, old_sku) to sku.
	ActionReplace
	// ActionDiscontinue marks the record found by (vendor, sku) discontinued.
	ActionDiscontinue
)

func (a Action) String() string {
	switch a {
	case ActionReplace:
		return "replace"
	case ActionDiscontinue:
		return "discontinue"
	default:
		return "upsert"
	}
}

// ActionFor maps a row's sku_status cell to its action. Matching ignores
// case and surrounding space; anything unrecognized is an upsert.
func ActionFor(status string) Action {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case catalog.StatusReplace:
		return ActionReplace
	case catalog.StatusDiscontinued:
		return ActionDiscontinue
	default:
		return ActionUpsert
	}
}

type actionFunc func(ctx context.Context, st store.Store, p catalog.Product) result

var actions = map[Action]actionFunc{
	ActionUpsert:      applyUpsert,
	ActionReplace:     applyReplace,
	ActionDiscontinue: applyDiscontinue,
}

// apply runs the action for a validated product.
func (a Action) apply(ctx context.Context, st store.Store, p catalog.Product) result {
	return actions[a](ctx, st, p)
}

func productKey(vendor, sku string) store.Filter {
	return store.Filter(catalog.ProductFilter(vendor, sku))
}

// applyUpsert writes the sku block and vendor of p. The store reports
// whether the write matched and changed anything, which separates Created,
// Updated and NoChange.
func applyUpsert(ctx context.Context, st store.Store, p catalog.Product) result {
	vendor, sku := p.Key()
	res, err := st.Upsert(ctx, catalog.ProductsCollection, productKey(vendor, sku), p.SkuInfoPatch())
	switch {
	case err != nil:
		return storeFailure(err)
	case res.Created():
		return created()
	case res.Modified:
		return updated()
	default:
		return noChange()
	}
}

// applyReplace renames the product currently stored as p.OldSKU to p.SKU in
// place, recording the previous code in old_sku. Status and sizes are kept.
func applyReplace(ctx context.Context, st store.Store, p catalog.Product) result {
	vendor, newSKU := p.Key()
	oldSKU := p.SkuInfo.OldSKU

	if newSKU == oldSKU {
		return replaceConflict(newSKU)
	}

	var existing catalog.Product
	found, err := st.FindOne(ctx, catalog.ProductsCollection, productKey(vendor, oldSKU), &existing)
	if err != nil {
		return storeFailure(err)
	}
	if !found {
		return replaceNotFound(oldSKU)
	}

	var clash catalog.Product
	taken, err := st.FindOne(ctx, catalog.ProductsCollection, productKey(vendor, newSKU), &clash)
	if err != nil {
		return storeFailure(err)
	}
	if taken {
		return replaceConflict(newSKU)
	}

	res, err := st.Update(ctx, catalog.ProductsCollection, productKey(vendor, oldSKU), store.Patch{
		catalog.FieldSKU:    newSKU,
		catalog.FieldOldSKU: oldSKU,
	})
	if errors.Is(err, store.ErrDuplicateKey) {
		return replaceConflict(newSKU)
	}
	if err != nil {
		return storeFailure(err)
	}
	// The target can vanish between the lookup and the write.
	if !res.Matched {
		return replaceNotFound(oldSKU)
	}
	return replaced(oldSKU, newSKU)
}

// applyDiscontinue sets sku_status to discontinued on an existing product
// and touches nothing else.
func applyDiscontinue(ctx context.Context, st store.Store, p catalog.Product) result {
	vendor, sku := p.Key()

	var existing catalog.Product
	found, err := st.FindOne(ctx, catalog.ProductsCollection, productKey(vendor, sku), &existing)
	if err != nil {
		return storeFailure(err)
	}
	if !found {
		return discontinueNotFound(sku)
	}
	if existing.SkuInfo.Status == catalog.StatusDiscontinued {
		return noChange()
	}

	res, err := st.Update(ctx, catalog.ProductsCollection, productKey(vendor, sku), store.Patch{
		catalog.FieldSKUStatus: catalog.StatusDiscontinued,
	})
	if err != nil {
		return storeFailure(err)
	}
	if !res.Matched {
		return discontinueNotFound(sku)
	}
	if !res.Modified {
		return noChange()
	}
	return discontinued()
}
