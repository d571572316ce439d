package store

import "github.com/JonMunkholm/proset/internal/catalog"

// UniqueIndex is a uniqueness constraint over fields of one collection.
type UniqueIndex struct {
	Name       string
	Collection string
	Fields     []string
}

// UniqueIndexes are created by every backend on startup.
var UniqueIndexes = []UniqueIndex{
	{
		Name:       "product_vendor_sku",
		Collection: catalog.ProductsCollection,
		Fields:     []string{catalog.FieldVendorName, catalog.FieldSKU},
	},
	{
		Name:       "vendor_name",
		Collection: catalog.VendorsCollection,
		Fields:     []string{catalog.FieldName},
	},
}

// IndexesFor returns the unique indexes declared for collection.
func IndexesFor(collection string) []UniqueIndex {
	var out []UniqueIndex
	for _, idx := range UniqueIndexes {
		if idx.Collection == collection {
			out = append(out, idx)
		}
	}
	return out
}
