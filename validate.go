// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"strconv"

	"github.com/go-json-experiment/json"
)

// KindPolicy controls how the "kind" discriminator is checked while parsing.
type KindPolicy uint8

const (
	// KindStrict requires the "kind" member and selects the variant from it.
	// A missing tag, an unknown tag, or a tag that disagrees with the payload shape is a SchemaMismatch.
	KindStrict KindPolicy = iota

	// KindLenient selects the variant by shape, trying variants in declaration order,
	// and rewrites the tag to the literal of the variant that matched.
	// This reproduces the behavior of older reference implementations and accepts payloads
	// such as a text part tagged "file".
	KindLenient
)

// String implements [fmt.Stringer].
func (p KindPolicy) String() string {
	switch p {
	case KindStrict:
		return "strict"
	case KindLenient:
		return "lenient"
	default:
		return "KindPolicy(" + strconv.Itoa(int(p)) + ")"
	}
}

// Parser turns untyped payloads, as produced by decoding JSON into an any, into typed values.
//
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	kinds KindPolicy
}

// ParserOption configures a [Parser].
type ParserOption func(*Parser)

// WithKindPolicy sets the discriminator policy. The default is [KindStrict].
func WithKindPolicy(policy KindPolicy) ParserOption {
	return func(p *Parser) {
		p.kinds = policy
	}
}

// NewParser returns a new [Parser].
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{kinds: KindStrict}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// KindPolicy returns the discriminator policy of p.
func (p *Parser) KindPolicy() KindPolicy {
	return p.kinds
}

var defaultParser = NewParser()

// fieldPath renders the location of a value inside a payload, e.g. "params.message.parts[0]".
type fieldPath string

func (p fieldPath) field(name string) fieldPath {
	if p == "" {
		return fieldPath(name)
	}
	return p + "." + fieldPath(name)
}

func (p fieldPath) index(i int) fieldPath {
	return p + "[" + fieldPath(strconv.Itoa(i)) + "]"
}

// object is a decoded JSON object together with its location.
type object struct {
	m    map[string]any
	path fieldPath
}

func asObject(v any, path fieldPath) (object, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return object{}, schemaErrorf(path, "expected object, got %s", typeName(v))
	}
	return object{m: m, path: path}, nil
}

// lookup returns the member name, treating an explicit null as absent.
func (o object) lookup(name string) (any, bool) {
	v, ok := o.m[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (o object) has(name string) bool {
	_, ok := o.lookup(name)
	return ok
}

func (o object) requiredString(name string) (string, error) {
	v, ok := o.lookup(name)
	if !ok {
		return "", schemaErrorf(o.path.field(name), "required")
	}
	s, ok := v.(string)
	if !ok {
		return "", schemaErrorf(o.path.field(name), "expected string, got %s", typeName(v))
	}
	return s, nil
}

func (o object) nonEmptyString(name string) (string, error) {
	s, err := o.requiredString(name)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", schemaErrorf(o.path.field(name), "must not be empty")
	}
	return s, nil
}

func (o object) optionalString(name string) (string, error) {
	v, ok := o.lookup(name)
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", schemaErrorf(o.path.field(name), "expected string, got %s", typeName(v))
	}
	return s, nil
}

func (o object) requiredBool(name string) (bool, error) {
	if !o.has(name) {
		return false, schemaErrorf(o.path.field(name), "required")
	}
	return o.optionalBool(name)
}

func (o object) optionalBool(name string) (bool, error) {
	v, ok := o.lookup(name)
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, schemaErrorf(o.path.field(name), "expected boolean, got %s", typeName(v))
	}
	return b, nil
}

func (o object) optionalInt(name string) (*int, error) {
	v, ok := o.lookup(name)
	if !ok {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return nil, schemaErrorf(o.path.field(name), "expected integer, got %s", typeName(v))
	}
	n := int(f)
	return &n, nil
}

func (o object) optionalMap(name string) (map[string]any, error) {
	v, ok := o.lookup(name)
	if !ok {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, schemaErrorf(o.path.field(name), "expected object, got %s", typeName(v))
	}
	return m, nil
}

func (o object) optionalStrings(name string) ([]string, error) {
	v, ok := o.lookup(name)
	if !ok {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, schemaErrorf(o.path.field(name), "expected array, got %s", typeName(v))
	}
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, schemaErrorf(o.path.field(name).index(i), "expected string, got %s", typeName(item))
		}
		out = append(out, s)
	}
	return out, nil
}

// array returns the named array member. A missing member is reported only when required.
func (o object) array(name string, required bool) ([]any, bool, error) {
	v, ok := o.lookup(name)
	if !ok {
		if required {
			return nil, false, schemaErrorf(o.path.field(name), "required")
		}
		return nil, false, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false, schemaErrorf(o.path.field(name), "expected array, got %s", typeName(v))
	}
	return arr, true, nil
}

func (o object) child(name string) (object, error) {
	v, ok := o.lookup(name)
	if !ok {
		return object{}, schemaErrorf(o.path.field(name), "required")
	}
	return asObject(v, o.path.field(name))
}

// checkKind enforces the discriminator of a single-variant type under the strict policy.
func (p *Parser) checkKind(o object, want Kind) error {
	if p.kinds == KindLenient {
		return nil
	}
	v, ok := o.m["kind"]
	if !ok {
		return schemaErrorf(o.path.field("kind"), "required, want %q", want)
	}
	if s, isString := v.(string); !isString || Kind(s) != want {
		return schemaErrorf(o.path.field("kind"), "got %v, want %q", v, want)
	}
	return nil
}

// variant is one arm of a tagged union.
type variant[T any] struct {
	kind  Kind
	parse func(o object) (T, error)
}

// selectVariant picks the arm of a tagged union according to the parser's kind policy.
func selectVariant[T any](p *Parser, o object, variants ...variant[T]) (T, error) {
	var zero T

	tag, _ := o.m["kind"].(string)

	if p.kinds == KindStrict {
		if _, ok := o.m["kind"]; !ok {
			return zero, schemaErrorf(o.path.field("kind"), "required, want one of %s", kindList(variants))
		}
		for _, v := range variants {
			if Kind(tag) == v.kind {
				return v.parse(o)
			}
		}
		return zero, schemaErrorf(o.path.field("kind"), "got %v, want one of %s", o.m["kind"], kindList(variants))
	}

	var tagged error
	for _, v := range variants {
		got, err := v.parse(o)
		if err == nil {
			return got, nil
		}
		if Kind(tag) == v.kind {
			tagged = err
		}
	}
	if tagged != nil {
		return zero, tagged
	}
	return zero, schemaErrorf(o.path, "matches none of %s", kindList(variants))
}

func kindList[T any](variants []variant[T]) string {
	s := ""
	for i, v := range variants {
		if i > 0 {
			s += ", "
		}
		s += strconv.Quote(string(v.kind))
	}
	return s
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unsupported value"
	}
}

// decodeAny decodes a JSON document into an untyped tree.
func decodeAny(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &Error{Kind: InvalidJSON, Msg: "malformed JSON", Err: err}
	}
	return v, nil
}

// unmarshalWith decodes data and hands the tree to parse, used by the UnmarshalJSON methods.
func unmarshalWith[T any](data []byte, parse func(v any, path fieldPath) (T, error)) (T, error) {
	v, err := decodeAny(data)
	if err != nil {
		var zero T
		return zero, err
	}
	return parse(v, "")
}

