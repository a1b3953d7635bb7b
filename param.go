package titanium

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// paramKind classifies how a bound parameter participates in a task's
// signature and execution, per spec §4.3.
type paramKind uint8

const (
	paramPlain paramKind = iota
	paramInjectable
	paramIgnored
)

// ParamSpec is one argument to a [TaskDef] call. Build one with [Plain],
// [Injectable], or [Ignore]; Go has no decorator syntax to attach parameter
// metadata to a function signature, so classification is carried by these
// explicit builder values instead (the Design Notes call this out as the
// intended substitute for "runtime type-system gymnastics").
type ParamSpec struct {
	name string
	kind paramKind

	// plain/ignored value, set directly at the call site.
	explicit    any
	hasExplicit bool

	// injectable-only fields.
	injType    reflect.Type
	required   bool
	defaultVal any
	hasDefault bool
	ignored    bool
}

// InjectableOption configures an [Injectable] parameter.
type InjectableOption func(*ParamSpec)

// Required marks an injectable parameter as mandatory: binding fails with
// [ErrMissingInjectable] if neither an explicit value nor an ambient
// context binding nor a default is available.
func Required() InjectableOption {
	return func(p *ParamSpec) { p.required = true }
}

// WithDefault supplies the value used when neither an explicit argument nor
// an ambient context binding is present.
func WithDefault(v any) InjectableOption {
	return func(p *ParamSpec) {
		p.defaultVal = v
		p.hasDefault = true
	}
}

// Ignored marks an injectable parameter as signature-ignored: its resolved
// value still reaches the task body, but never contributes to the task's
// signature, per spec §4.3's "a parameter may be both ignored and
// injectable" and §4.5's "skips" rule for that combination.
func Ignored() InjectableOption {
	return func(p *ParamSpec) { p.ignored = true }
}

// Plain declares a parameter whose value is fixed at the call site and
// always contributes to the task's signature.
func Plain(name string, value any) ParamSpec {
	return ParamSpec{name: name, kind: paramPlain, explicit: value, hasExplicit: true}
}

// Injectable declares a parameter resolved, in order, from: explicit (if
// non-nil), the active context frame, then a configured default. T fixes
// the type the resolved value must end up as; a context value of a
// different shape (e.g. a map decoding into a struct) is coerced with
// mapstructure, per spec §4.3.
func Injectable[T any](name string, explicit *T, opts ...InjectableOption) ParamSpec {
	p := ParamSpec{
		name:    name,
		kind:    paramInjectable,
		injType: reflect.TypeOf((*T)(nil)).Elem(),
	}
	if explicit != nil {
		p.explicit = *explicit
		p.hasExplicit = true
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Ignore declares a parameter that is passed to the task body unchanged but
// never contributes to the signature (the spec's "ignored sentinel"). For a
// parameter that must also be resolved from the context frame, use
// [Injectable] with the [Ignored] option instead: Ignore's value is fixed at
// the call site, so it cannot express injectable resolution.
func Ignore(name string, value any) ParamSpec {
	return ParamSpec{name: name, kind: paramIgnored, explicit: value, hasExplicit: true}
}

// resolve turns a ParamSpec into a normalized [value], consulting frame for
// injectable lookups. The returned value is what both the signature engine
// and the task body eventually see (wrapped in the ignored sentinel when
// appropriate).
func (p ParamSpec) resolve(frame *Frame) (value, error) {
	switch p.kind {
	case paramPlain:
		return normalize(p.explicit)

	case paramIgnored:
		return normalize(ignoredValue{raw: p.explicit})

	case paramInjectable:
		raw, err := p.resolveInjectable(frame)
		if err != nil {
			return value{}, err
		}
		if p.ignored {
			return normalize(ignoredValue{raw: raw})
		}
		return normalize(raw)

	default:
		return value{}, fmt.Errorf("titanium: unknown parameter kind for %q", p.name)
	}
}

func (p ParamSpec) resolveInjectable(frame *Frame) (any, error) {
	if p.hasExplicit {
		return p.coerce(p.explicit)
	}
	if frame != nil {
		if v, ok := frame.Get(p.name); ok {
			return p.coerce(v)
		}
	}
	if p.hasDefault {
		return p.coerce(p.defaultVal)
	}
	if p.required {
		return nil, fmt.Errorf("%w: %q", ErrMissingInjectable, p.name)
	}
	return nil, nil
}

// coerce ensures v is shaped like p.injType, using mapstructure when it
// isn't already: the one place the engine performs implicit type
// conversion, confined to injectable resolution per spec §4.3.
func (p ParamSpec) coerce(v any) (any, error) {
	if v == nil || p.injType == nil {
		return v, nil
	}
	if reflect.TypeOf(v).AssignableTo(p.injType) {
		return v, nil
	}

	out := reflect.New(p.injType).Interface()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: building decoder for %q: %v", ErrBindError, p.name, err)
	}
	if err := dec.Decode(v); err != nil {
		return nil, fmt.Errorf("%w: coercing %q to %s: %v", ErrBindError, p.name, p.injType, err)
	}
	return reflect.ValueOf(out).Elem().Interface(), nil
}

// Params is the task body's read-only view of its bound, concrete
// arguments: dependency handles already resolved to their output values.
type Params struct {
	values map[string]any
}

func newParams(values map[string]any) Params {
	return Params{values: values}
}

// Get returns the raw bound value for name, or nil if absent.
func (p Params) Get(name string) any {
	return p.values[name]
}

// Has reports whether name was bound at all.
func (p Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Int reads name as an int, per the same numeric-widening rules [normalize]
// uses. Panics if the binding is absent or not integer-shaped; task bodies
// are expected to declare their own parameters, so a mismatch is a
// programmer error, not a runtime data condition.
func (p Params) Int(name string) int {
	v, ok := asInt64(p.values[name])
	if !ok {
		panic(fmt.Sprintf("titanium: parameter %q is not an integer", name))
	}
	return int(v)
}

// Float reads name as a float64.
func (p Params) Float(name string) float64 {
	v, ok := asFloat64(p.values[name])
	if ok {
		return v
	}
	if iv, ok := asInt64(p.values[name]); ok {
		return float64(iv)
	}
	panic(fmt.Sprintf("titanium: parameter %q is not a float", name))
}

// String reads name as a string.
func (p Params) String(name string) string {
	s, ok := p.values[name].(string)
	if !ok {
		panic(fmt.Sprintf("titanium: parameter %q is not a string", name))
	}
	return s
}

// Bool reads name as a bool.
func (p Params) Bool(name string) bool {
	b, ok := p.values[name].(bool)
	if !ok {
		panic(fmt.Sprintf("titanium: parameter %q is not a bool", name))
	}
	return b
}
