package catalog

// SalesRep is a vendor's sales contact.
type SalesRep struct {
	Name        string `json:"name" bson:"name"`
	OfficePhone string `json:"office_phone" bson:"office_phone"`
	CellPhone   string `json:"cell_phone" bson:"cell_phone"`
	Email1      string `json:"email1" bson:"email1" validate:"omitempty,email"`
	Email2      string `json:"email2" bson:"email2" validate:"omitempty,email"`
}

// Warehouse is one of a vendor's stocking locations.
type Warehouse struct {
	Name    string `json:"name" bson:"name" validate:"required"`
	Address string `json:"address" bson:"address"`
	Phone   string `json:"phone" bson:"phone"`
	Email   string `json:"email" bson:"email" validate:"omitempty,email"`
}

// Vendor is a supplier document, unique by name.
type Vendor struct {
	Name                string      `json:"name" bson:"name" validate:"required"`
	FullName            string      `json:"full_name" bson:"full_name"`
	Abbreviation        string      `json:"abbreviation" bson:"abbreviation"`
	HeadquartersAddress string      `json:"headquarters_address" bson:"headquarters_address"`
	HeadquartersPhone   string      `json:"headquarters_phone" bson:"headquarters_phone"`
	HeadquartersEmail   string      `json:"headquarters_email" bson:"headquarters_email" validate:"omitempty,email"`
	SalesRep            SalesRep    `json:"sales_rep" bson:"sales_rep"`
	Warehouses          []Warehouse `json:"warehouses" bson:"warehouses" validate:"dive"`
}

// VendorFilter matches a vendor by name.
func VendorFilter(name string) map[string]any {
	return map[string]any{FieldName: name}
}

// Patch returns the field updates that write every vendor field.
func (v Vendor) Patch() map[string]any {
	warehouses := v.Warehouses
	if warehouses == nil {
		warehouses = []Warehouse{}
	}
	return map[string]any{
		"name":                 v.Name,
		"full_name":            v.FullName,
		"abbreviation":         v.Abbreviation,
		"headquarters_address": v.HeadquartersAddress,
		"headquarters_phone":   v.HeadquartersPhone,
		"headquarters_email":   v.HeadquartersEmail,
		"sales_rep":            v.SalesRep,
		"warehouses":           warehouses,
	}
}
