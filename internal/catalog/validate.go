package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Measures validate as their string form so the struct is not descended into.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		if m, ok := v.Interface().(Measure); ok {
			return m.String()
		}
		return nil
	}, Measure{})

	validate.RegisterValidation("dimension", func(fl validator.FieldLevel) bool {
		return IsDimensionName(fl.Field().String())
	})
	validate.RegisterValidation("measure", func(fl validator.FieldLevel) bool {
		_, err := ParseMeasure(fl.Field().String())
		return err == nil
	})
}

// FieldError is a single failed rule on a document field.
type FieldError struct {
	Field string // json name, e.g. "sku_type"
	Path  string // dotted json path, e.g. "sku_info.sku_type"
	Tag   string
	Value string
}

func (e FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: failed %q", e.Path, e.Tag)
	}
	return fmt.Sprintf("%s: invalid value %q", e.Path, e.Value)
}

// Validate checks a product or vendor against its struct rules. The returned
// error, if any, unwraps to the first FieldError in field order.
func Validate(doc any) error {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	first := verrs[0]
	fe := FieldError{
		Field: first.Field(),
		Path:  trimRoot(first.Namespace()),
		Tag:   first.Tag(),
		Value: fmt.Sprint(first.Value()),
	}
	if len(verrs) == 1 {
		return fe
	}
	return fmt.Errorf("%w (and %d more)", fe, len(verrs)-1)
}

// trimRoot drops the struct type name validator puts at the front of a
// namespace ("Product.sku_info.sku" becomes "sku_info.sku").
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
