package money

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeFor[decimal.Decimal]()

// ZeroMalformedAmounts rewrites a JSON document so that every field typed
// decimal.Decimal in t holding an empty string, unparsable text or a
// non-number value becomes 0. Missing and null amounts are left alone since
// they already decode as zero. It reports whether anything was rewritten.
func ZeroMalformedAmounts(raw []byte, t reflect.Type) ([]byte, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return raw, false
	}
	if !zeroAmounts(&doc, t) {
		return raw, false
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return raw, false
	}
	return out, true
}

func zeroAmounts(v *any, t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == decimalType {
		if validAmount(*v) {
			return false
		}
		*v = json.Number("0")
		return true
	}

	changed := false
	switch t.Kind() {
	case reflect.Struct:
		obj, ok := (*v).(map[string]any)
		if !ok {
			return false
		}
		for name, ft := range jsonFields(t) {
			val, present := obj[name]
			if present && zeroAmounts(&val, ft) {
				obj[name] = val
				changed = true
			}
		}
	case reflect.Slice, reflect.Array:
		arr, ok := (*v).([]any)
		if !ok {
			return false
		}
		for i := range arr {
			if zeroAmounts(&arr[i], t.Elem()) {
				changed = true
			}
		}
	case reflect.Map:
		obj, ok := (*v).(map[string]any)
		if !ok {
			return false
		}
		for key, val := range obj {
			if zeroAmounts(&val, t.Elem()) {
				obj[key] = val
				changed = true
			}
		}
	}
	return changed
}

func validAmount(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case json.Number:
		_, err := decimal.NewFromString(x.String())
		return err == nil
	case string:
		_, err := decimal.NewFromString(x)
		return err == nil
	}
	return false
}

// jsonFields maps the JSON names of t's fields to their types, flattening
// untagged embedded structs the way encoding/json does.
func jsonFields(t reflect.Type) map[string]reflect.Type {
	out := map[string]reflect.Type{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			inner := f.Type
			if inner.Kind() == reflect.Pointer {
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct {
				for k, v := range jsonFields(inner) {
					if _, taken := out[k]; !taken {
						out[k] = v
					}
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out[name] = f.Type
	}
	return out
}
