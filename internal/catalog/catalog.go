// Package catalog defines the product and vendor documents stored by the
// service, along with the fixed enumerations they are validated against.
package catalog

// Collection names. These match the collections the desktop tool used so an
// existing database can be pointed at directly.
const (
	ProductsCollection = "all_products"
	VendorsCollection  = "vendors"
)

// Sentinels for "not applicable" and "unknown".
const (
	NA = "NA"
	UN = "UN"
)

// SKU types.
const (
	TypeGenerated = "generated"
	TypeVendor    = "vendor"
)

// SKU statuses. Only current and discontinued are ever stored; "replace" is
// an import instruction, not a state.
const (
	StatusCurrent      = "current"
	StatusDiscontinued = "discontinued"
	StatusReplace      = "replace"
)

// Document field paths used in store filters and patches.
const (
	FieldSKU        = "sku_info.sku"
	FieldSKUType    = "sku_info.sku_type"
	FieldSKUStatus  = "sku_info.sku_status"
	FieldOldSKU     = "sku_info.old_sku"
	FieldVendorName = "vendor.vendor_name"
	FieldSizes      = "sizes"
	FieldName       = "name"
)

// Units accepted for a dimension.
var Units = []string{"in", "ft", "yd", "mm", "cm", "m", NA, UN}

// DimensionNames is the closed set of measurement labels a product may carry.
var DimensionNames = []string{
	"width",
	"length",
	"thickness",
	"diagonal",
	"radius",
	"diameter",
	"long_parallel_side",
	"short_parallel_side",
	"left_side",
	"right_side",
	"long_side",
	"short_side",
	"height",
	"bottom_side",
	"long_diagonal",
	"short_diagonal",
	"side",
	"long_diameter",
	"short_diameter",
	"opposite_sides_distance",
	"opposite_vertices_distance",
	"long_opposing_sides",
	"short_opposing_vertices",
	"short_opposing_sides",
	"long_opposing_vertices",
	"dimension_a",
	"dimension_b",
	"dimension_c",
	"dimension_d",
	"dimension_e",
	"dimension_f",
	"dimension_g",
	"dimension_h",
	"back_layer_thickness",
	"core_layer_thickness",
	"wear_layer_thickness",
	"short_return_length",
	"long_return_length",
	"return_length",
	"width_a",
	"width_b",
}

var dimensionSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(DimensionNames))
	for _, n := range DimensionNames {
		m[n] = struct{}{}
	}
	return m
}()

// IsDimensionName reports whether name is a recognized dimension label.
func IsDimensionName(name string) bool {
	_, ok := dimensionSet[name]
	return ok
}
