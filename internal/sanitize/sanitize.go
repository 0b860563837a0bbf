// Package sanitize converts arbitrary Go values into a JSON-safe tree.
//
// The output only ever contains nil, bool, float64, string, []any and
// map[string]any, so sanitising a sanitised value is a no-op and a JSON
// round trip reproduces it exactly.
package sanitize

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// CircularReference replaces any container revisited while it is still
// being walked.
const CircularReference = "[Circular Reference]"

// TimeLayout is the ISO-8601 layout used for time values.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	timeType    = reflect.TypeOf(time.Time{})
	jsonMarshal = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshal = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Value returns the sanitised form of v.
func Value(v any) any {
	w := &walker{visiting: make(map[visitKey]struct{})}
	out, _ := w.walk(reflect.ValueOf(v))
	return out
}

// Object sanitises v and guarantees an object result. Values that do not
// sanitise to an object are wrapped as {"data": value}.
func Object(v any) map[string]any {
	out := Value(v)
	if m, ok := out.(map[string]any); ok {
		return m
	}
	return map[string]any{"data": out}
}

type visitKey struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

type walker struct {
	visiting map[visitKey]struct{}
}

// enter marks a container as being walked. It returns false if the
// container is already on the current path.
func (w *walker) enter(k visitKey) bool {
	if _, ok := w.visiting[k]; ok {
		return false
	}
	w.visiting[k] = struct{}{}
	return true
}

func (w *walker) leave(k visitKey) {
	delete(w.visiting, k)
}

// walk converts v. The boolean is false when the value is unrepresentable
// and must be dropped by the caller.
func (w *walker) walk(v reflect.Value) (any, bool) {
	if !v.IsValid() {
		return nil, true
	}

	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, false
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil, true
		}
	}

	if v.Type() == timeType {
		if !v.CanInterface() {
			return nil, false
		}
		return formatTime(v.Interface().(time.Time)), true
	}
	if out, handled, ok := w.marshaled(v); handled {
		return out, ok
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, true
		}
		return f, true
	case reflect.String:
		return v.String(), true
	case reflect.Interface:
		return w.walk(v.Elem())
	case reflect.Ptr:
		k := visitKey{ptr: v.Pointer(), typ: v.Type()}
		if !w.enter(k) {
			return CircularReference, true
		}
		defer w.leave(k)
		return w.walk(v.Elem())
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(v.Bytes()), true
		}
		k := visitKey{ptr: v.Pointer(), typ: v.Type(), n: v.Len()}
		if !w.enter(k) {
			return CircularReference, true
		}
		defer w.leave(k)
		return w.list(v), true
	case reflect.Array:
		return w.list(v), true
	case reflect.Map:
		k := visitKey{ptr: v.Pointer(), typ: v.Type()}
		if !w.enter(k) {
			return CircularReference, true
		}
		defer w.leave(k)
		if isSet(v.Type()) {
			return w.set(v), true
		}
		return w.mapping(v), true
	case reflect.Struct:
		out := make(map[string]any, v.NumField())
		w.fields(v, out)
		return out, true
	}
	return nil, false
}

// marshaled applies a value's own JSON or text encoding, if it has one.
// handled reports that v has such an encoding; ok is false when the
// encoding fails and the value must be dropped.
func (w *walker) marshaled(v reflect.Value) (out any, handled, ok bool) {
	target := v
	if !v.Type().Implements(jsonMarshal) && !v.Type().Implements(textMarshal) {
		if v.Kind() == reflect.Ptr || !v.CanAddr() {
			return nil, false, false
		}
		target = v.Addr()
	}
	if !target.CanInterface() {
		return nil, false, false
	}

	switch m := target.Interface().(type) {
	case json.Marshaler:
		raw, err := m.MarshalJSON()
		if err != nil {
			return nil, true, false
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, true, false
		}
		walked, _ := w.walk(reflect.ValueOf(decoded))
		return walked, true, true
	case encoding.TextMarshaler:
		text, err := m.MarshalText()
		if err != nil {
			return nil, true, false
		}
		return string(text), true, true
	}
	return nil, false, false
}

func (w *walker) list(v reflect.Value) []any {
	out := make([]any, v.Len())
	for i := range out {
		if item, ok := w.walk(v.Index(i)); ok {
			out[i] = item
		}
	}
	return out
}

func (w *walker) mapping(v reflect.Value) map[string]any {
	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		item, ok := w.walk(iter.Value())
		if !ok {
			continue
		}
		out[keyString(iter.Key())] = item
	}
	return out
}

// set flattens a map[K]struct{} into its keys, sorted by string form.
func (w *walker) set(v reflect.Value) []any {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keyString(keys[i]) < keyString(keys[j])
	})
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		if item, ok := w.walk(k); ok {
			out = append(out, item)
		}
	}
	return out
}

// fields writes struct fields into out following encoding/json tag rules.
// Shallower fields win over promoted ones.
func (w *walker) fields(v reflect.Value, out map[string]any) {
	t := v.Type()
	var embedded []reflect.Value

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, opts := parseTag(sf.Tag.Get("json"))
		if name == "-" && opts == "" {
			continue
		}

		fv := v.Field(i)
		if sf.Anonymous && name == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && ft != timeType {
				if fv.Kind() == reflect.Ptr {
					if fv.IsNil() {
						continue
					}
					fv = fv.Elem()
				}
				embedded = append(embedded, fv)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if strings.Contains(opts, "omitempty") && isEmpty(fv) {
			continue
		}
		item, ok := w.walk(fv)
		if !ok {
			continue
		}
		out[name] = item
	}

	for _, ev := range embedded {
		promoted := make(map[string]any)
		w.fields(ev, promoted)
		for k, item := range promoted {
			if _, exists := out[k]; !exists {
				out[k] = item
			}
		}
	}
}

func parseTag(tag string) (string, string) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}

func isSet(t reflect.Type) bool {
	e := t.Elem()
	return e.Kind() == reflect.Struct && e.NumField() == 0
}

func keyString(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(k.Bool())
	}
	if k.CanInterface() {
		if t, ok := k.Interface().(time.Time); ok {
			return formatTime(t)
		}
		if m, ok := k.Interface().(encoding.TextMarshaler); ok {
			if text, err := m.MarshalText(); err == nil {
				return string(text)
			}
		}
		return fmt.Sprintf("%v", k.Interface())
	}
	return k.Type().String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
