package catalog

// SkuInfo is the identity and lifecycle block of a product.
type SkuInfo struct {
	SKU    string `json:"sku" bson:"sku" validate:"required"`
	Type   string `json:"sku_type" bson:"sku_type" validate:"oneof=generated vendor"`
	Status string `json:"sku_status" bson:"sku_status" validate:"oneof=current discontinued"`
	OldSKU string `json:"old_sku" bson:"old_sku" validate:"required"`
}

// VendorRef links a product to its vendor by name.
type VendorRef struct {
	Name string `json:"vendor_name" bson:"vendor_name" validate:"required"`
}

// Dimension is one named measurement of a product.
type Dimension struct {
	Name  string  `json:"name" bson:"name" validate:"required,dimension"`
	Unit  string  `json:"unit" bson:"unit" validate:"oneof=in ft yd mm cm m NA UN"`
	Exact Measure `json:"exact" bson:"exact" validate:"measure"`
}

// Sizes groups a product's dimensions.
type Sizes struct {
	Dimensions []Dimension `json:"dimensions" bson:"dimensions" validate:"dive"`
}

// Product is a stored product document, unique by (vendor name, sku).
type Product struct {
	SkuInfo SkuInfo   `json:"sku_info" bson:"sku_info"`
	Vendor  VendorRef `json:"vendor" bson:"vendor"`
	Sizes   *Sizes    `json:"sizes,omitempty" bson:"sizes,omitempty"`
}

// Key returns the (vendor name, sku) identity of the product.
func (p Product) Key() (vendor, sku string) {
	return p.Vendor.Name, p.SkuInfo.SKU
}

// NewProduct builds a product with old_sku normalized to NA when empty.
func NewProduct(vendor, sku, skuType, status, oldSKU string) Product {
	if oldSKU == "" {
		oldSKU = NA
	}
	return Product{
		SkuInfo: SkuInfo{SKU: sku, Type: skuType, Status: status, OldSKU: oldSKU},
		Vendor:  VendorRef{Name: vendor},
	}
}

// ProductFilter matches a single product by its identity.
func ProductFilter(vendor, sku string) map[string]any {
	return map[string]any{
		FieldVendorName: vendor,
		FieldSKU:        sku,
	}
}

// SkuInfoPatch returns the field updates that write p's sku block and vendor
// reference, leaving any stored sizes untouched.
func (p Product) SkuInfoPatch() map[string]any {
	return map[string]any{
		FieldSKU:        p.SkuInfo.SKU,
		FieldSKUType:    p.SkuInfo.Type,
		FieldSKUStatus:  p.SkuInfo.Status,
		FieldOldSKU:     p.SkuInfo.OldSKU,
		FieldVendorName: p.Vendor.Name,
	}
}

// Patch returns the field updates that write the whole product, sizes
// included. A product without sizes is stored with an empty dimension list.
func (p Product) Patch() map[string]any {
	sizes := Sizes{Dimensions: []Dimension{}}
	if p.Sizes != nil && p.Sizes.Dimensions != nil {
		sizes = *p.Sizes
	}
	patch := p.SkuInfoPatch()
	patch[FieldSizes] = sizes
	return patch
}
