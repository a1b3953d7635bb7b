package titanium

import (
	"fmt"
	"reflect"
	"sort"
)

// kind tags a Value's shape so the hasher can dispatch without repeated
// type assertions: the "tagged union, not isinstance dispatch" the design
// notes call for.
type kind uint8

const (
	kindNull kind = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindList
	kindTuple
	kindMap
	kindSet
	kindHandle
	kindIgnored
)

// Tuple marks a Go slice as an ordered *tuple* rather than a list, so the
// Value Hasher emits the tuple discriminator byte spec §4.1 requires. A
// plain []any (or any other slice/array) normalizes as a list.
type Tuple []any

// Set marks a Go slice as a set: the hasher sorts the element hashes before
// combining them, so element order at the call site never affects the
// signature.
type Set []any

// ignoredValue is the "ignored sentinel" from spec §4.1/§4.5. It is never
// constructed directly; [Ignore] produces one.
type ignoredValue struct {
	raw any
}

// mapEntry is a single normalized (key, value) pair, kept alongside its
// canonical string key form for the hasher's total ordering.
type mapEntry struct {
	keyCanon string
	key      value
	val      value
}

// value is the normalized internal form of any parameter value, built by
// [normalize]. It is deliberately unexported: callers interact with Go
// values directly (ints, strings, slices, maps, *LazyOutput, Tuple, Set,
// ignoredValue); value only exists to give the hasher and the concretizer a
// single shape to recurse over.
type value struct {
	kind kind

	boolean bool
	integer int64
	float   float64
	str     string
	elems   []value    // list/tuple/set
	entries []mapEntry // map, sorted by keyCanon
	handle  *LazyOutput
	inner   *value // kindIgnored only: the wrapped value, still concretized
	raw     any    // original Go value, used to rebuild concrete arguments

	// deps accumulates every *LazyOutput transitively reachable from this
	// value's construction, for §4.3's dependency-set normalization.
	deps map[*LazyOutput]struct{}
}

// normalize converts an arbitrary Go value into the internal [value] tree,
// flattening any nested [*LazyOutput] into the returned dependency set while
// preserving each handle's positional place in the structure (spec §4.3
// step 3).
func normalize(v any) (value, error) {
	deps := map[*LazyOutput]struct{}{}
	out, err := normalizeInto(v, deps)
	if err != nil {
		return value{}, err
	}
	out.deps = deps
	return out, nil
}

func normalizeInto(v any, deps map[*LazyOutput]struct{}) (value, error) {
	switch x := v.(type) {
	case nil:
		return value{kind: kindNull, raw: nil}, nil
	case bool:
		return value{kind: kindBool, boolean: x, raw: x}, nil
	case string:
		return value{kind: kindString, str: x, raw: x}, nil
	case ignoredValue:
		// The ignored sentinel carries its wrapped value through for
		// execution (the body still observes it, with any nested
		// dependency handles resolved same as elsewhere) but contributes
		// nothing to the signature (see hasher.go's kindIgnored case).
		inner, err := normalizeInto(x.raw, deps)
		if err != nil {
			return value{}, err
		}
		return value{kind: kindIgnored, inner: &inner, raw: x.raw}, nil
	case *LazyOutput:
		if x == nil {
			return value{kind: kindNull, raw: nil}, nil
		}
		deps[x] = struct{}{}
		return value{kind: kindHandle, handle: x, raw: x}, nil
	case Tuple:
		elems := make([]value, len(x))
		for i, e := range x {
			ev, err := normalizeInto(e, deps)
			if err != nil {
				return value{}, err
			}
			elems[i] = ev
		}
		return value{kind: kindTuple, elems: elems, raw: x}, nil
	case Set:
		elems := make([]value, len(x))
		for i, e := range x {
			ev, err := normalizeInto(e, deps)
			if err != nil {
				return value{}, err
			}
			elems[i] = ev
		}
		return value{kind: kindSet, elems: elems, raw: x}, nil
	}

	if iv, ok := asInt64(v); ok {
		return value{kind: kindInt, integer: iv, raw: v}, nil
	}
	if fv, ok := asFloat64(v); ok {
		return value{kind: kindFloat, float: fv, raw: v}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		elems := make([]value, n)
		raw := make([]any, n)
		for i := 0; i < n; i++ {
			elt := rv.Index(i).Interface()
			ev, err := normalizeInto(elt, deps)
			if err != nil {
				return value{}, err
			}
			elems[i] = ev
			raw[i] = elt
		}
		return value{kind: kindList, elems: elems, raw: raw}, nil
	case reflect.Map:
		keys := rv.MapKeys()
		entries := make([]mapEntry, 0, len(keys))
		rawMap := make(map[string]any, len(keys))
		for _, k := range keys {
			kv, err := normalizeInto(k.Interface(), deps)
			if err != nil {
				return value{}, err
			}
			canon := canonicalKeyString(k.Interface())
			vv, err := normalizeInto(rv.MapIndex(k).Interface(), deps)
			if err != nil {
				return value{}, err
			}
			entries = append(entries, mapEntry{keyCanon: canon, key: kv, val: vv})
			rawMap[canon] = rv.MapIndex(k).Interface()
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].keyCanon < entries[j].keyCanon })
		return value{kind: kindMap, entries: entries, raw: rawMap}, nil
	}

	return value{}, &UnhashableValueError{GoType: fmt.Sprintf("%T", v)}
}

// canonicalKeyString derives the total-order key form spec §4.1 requires
// ("a total order derived from the key's canonical string form").
func canonicalKeyString(k any) string {
	return fmt.Sprintf("%v", k)
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// concretize rebuilds the original Go value shape with every dependency
// handle replaced by its resolved output, for passing into a task body.
func concretize(v value, resolved func(*LazyOutput) any) any {
	switch v.kind {
	case kindHandle:
		return resolved(v.handle)
	case kindList:
		out := make([]any, len(v.elems))
		for i, e := range v.elems {
			out[i] = concretize(e, resolved)
		}
		return out
	case kindTuple:
		out := make(Tuple, len(v.elems))
		for i, e := range v.elems {
			out[i] = concretize(e, resolved)
		}
		return out
	case kindSet:
		out := make(Set, len(v.elems))
		for i, e := range v.elems {
			out[i] = concretize(e, resolved)
		}
		return out
	case kindMap:
		out := make(map[string]any, len(v.entries))
		for _, e := range v.entries {
			out[e.keyCanon] = concretize(e.val, resolved)
		}
		return out
	case kindIgnored:
		if v.inner != nil {
			return concretize(*v.inner, resolved)
		}
		return v.raw
	default:
		return v.raw
	}
}
