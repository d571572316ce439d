package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Document is a decoded JSON object. Backends that keep documents as JSON
// (memstore, pgstore) share these helpers so filters and patches behave the
// same way everywhere.
type Document = map[string]any

// ToDocument converts any JSON-encodable value into a Document.
func ToDocument(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("document must be an object: %w", err)
	}
	return doc, nil
}

// NormalizeValue converts v to the shape it has after a JSON round trip, so
// that values written from Go structs compare equal to values read back.
func NormalizeValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}

// Decode copies doc into out, which must be a pointer.
func Decode(doc Document, out any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// DecodeAll copies docs into out, which must be a pointer to a slice.
func DecodeAll(docs []Document, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("decode documents: out must be a pointer to a slice, got %T", out)
	}
	if docs == nil {
		docs = []Document{}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode documents: %w", err)
	}
	return nil
}

// Lookup returns the value at a dotted path.
func Lookup(doc Document, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetPath writes value at a dotted path, creating intermediate objects.
func SetPath(doc Document, path string, value any) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// Matches reports whether doc satisfies every condition in filter. Filter
// values must already be normalized.
func Matches(doc Document, filter Document) bool {
	for path, want := range filter {
		got, ok := Lookup(doc, path)
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// NormalizeFilter normalizes every value in f.
func NormalizeFilter(f Filter) (Document, error) {
	out := make(Document, len(f))
	for k, v := range f {
		nv, err := NormalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

// ApplyPatch writes every patch value into doc and reports whether the
// document changed.
func ApplyPatch(doc Document, p Patch) (bool, error) {
	changed := false
	for path, v := range p {
		nv, err := NormalizeValue(v)
		if err != nil {
			return false, fmt.Errorf("patch %s: %w", path, err)
		}
		if old, ok := Lookup(doc, path); ok && reflect.DeepEqual(old, nv) {
			continue
		}
		SetPath(doc, path, nv)
		changed = true
	}
	return changed, nil
}

// Expand turns dotted paths into a nested object, e.g. the containment
// document for a filter.
func Expand(flat Document) Document {
	out := Document{}
	for path, v := range flat {
		SetPath(out, path, v)
	}
	return out
}

// Clone deep-copies a document.
func Clone(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
