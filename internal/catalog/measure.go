package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Measure is an exact dimension value: either a number or one of the
// sentinels NA and UN. It is stored as a double or a string.
type Measure struct {
	Value    float64
	Sentinel string
}

// Exact returns a numeric measure.
func Exact(v float64) Measure { return Measure{Value: v} }

// Unknown returns the UN measure.
func Unknown() Measure { return Measure{Sentinel: UN} }

// NotApplicable returns the NA measure.
func NotApplicable() Measure { return Measure{Sentinel: NA} }

// IsNumber reports whether m carries a numeric value.
func (m Measure) IsNumber() bool { return m.Sentinel == "" }

func (m Measure) String() string {
	if m.Sentinel != "" {
		return m.Sentinel
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// ParseMeasure accepts a decimal number or a sentinel.
func ParseMeasure(s string) (Measure, error) {
	if s == NA || s == UN {
		return Measure{Sentinel: s}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Measure{}, fmt.Errorf("measure %q: want a number, %s or %s", s, NA, UN)
	}
	return Exact(v), nil
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if m.Sentinel != "" {
		return json.Marshal(m.Sentinel)
	}
	return json.Marshal(m.Value)
}

func (m *Measure) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseMeasure(s)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("measure: %w", err)
	}
	*m = Exact(v)
	return nil
}

func (m Measure) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if m.Sentinel != "" {
		return bson.MarshalValue(m.Sentinel)
	}
	return bson.MarshalValue(m.Value)
}

func (m *Measure) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Double:
		*m = Exact(raw.Double())
	case bsontype.Int32:
		*m = Exact(float64(raw.Int32()))
	case bsontype.Int64:
		*m = Exact(float64(raw.Int64()))
	case bsontype.String:
		parsed, err := ParseMeasure(raw.StringValue())
		if err != nil {
			return err
		}
		*m = parsed
	default:
		return fmt.Errorf("measure: unsupported bson type %s", t)
	}
	return nil
}
