package params

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Kind is the declared runtime type of a parameter.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Field is one row of a provider's parameter table.
type Field struct {
	Name     string
	Kind     Kind
	Default  any
	Max      int
	Required bool
	Allowed  []string
}

// Schema is the fixed parameter table of one provider.
type Schema struct {
	provider string
	fields   map[string]Field
	order    []string
}

// NewSchema builds a schema from fields. It panics on a malformed table
// because schemas are package-level constants of the provider clients.
func NewSchema(provider string, fields ...Field) *Schema {
	s := &Schema{
		provider: provider,
		fields:   make(map[string]Field, len(fields)),
		order:    make([]string, 0, len(fields)),
	}
	for _, field := range fields {
		if _, exists := s.fields[field.Name]; exists {
			panic(fmt.Sprintf("params: duplicate field %q in %s schema", field.Name, provider))
		}
		if err := field.check(field.Default); err != nil {
			panic(fmt.Sprintf("params: bad default for %s: %v", field.Name, err))
		}
		s.fields[field.Name] = field
		s.order = append(s.order, field.Name)
	}
	return s
}

func (s *Schema) Provider() string {
	return s.provider
}

// Field returns the schema row for name.
func (s *Schema) Field(name string) (Field, bool) {
	field, ok := s.fields[name]
	return field, ok
}

// Names returns the parameter names in declaration order.
func (s *Schema) Names() []string {
	return append([]string(nil), s.order...)
}

// New returns a parameter set holding a private copy of the defaults.
func (s *Schema) New() *Set {
	values := make(map[string]any, len(s.fields))
	for name, field := range s.fields {
		values[name] = field.Default
	}
	return &Set{
		schema:     s,
		values:     values,
		restricted: map[string]map[string]struct{}{},
	}
}

// Set is a validated bundle of request parameters for one provider.
type Set struct {
	schema     *Schema
	values     map[string]any
	restricted map[string]map[string]struct{}
}

func (p *Set) Schema() *Schema {
	return p.schema
}

// Set validates value against the schema and stores it. A nil value unsets
// the parameter. On error the set is left unchanged.
func (p *Set) Set(name string, value any) error {
	field, ok := p.schema.fields[name]
	if !ok {
		return &ValidationError{Kind: ErrUnknownParameter, Param: name, Reason: "not in " + p.schema.provider + " schema"}
	}
	if err := field.check(value); err != nil {
		return err
	}
	if value != nil {
		if allowed, ok := p.restricted[name]; ok {
			if _, ok := allowed[formatValue(value)]; !ok {
				return &ValidationError{Kind: ErrNotAllowed, Param: name, Reason: fmt.Sprintf("%v is not in the provider dictionary", value)}
			}
		}
	}
	p.values[name] = value
	return nil
}

// SetString parses raw according to the declared kind of name. An empty
// string unsets the parameter.
func (p *Set) SetString(name string, raw string) error {
	field, ok := p.schema.fields[name]
	if !ok {
		return &ValidationError{Kind: ErrUnknownParameter, Param: name, Reason: "not in " + p.schema.provider + " schema"}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return p.Set(name, nil)
	}

	switch field.Kind {
	case KindInt:
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return &ValidationError{Kind: ErrTypeMismatch, Param: name, Reason: fmt.Sprintf("%q is not an integer", raw)}
		}
		return p.Set(name, parsed)
	case KindBool:
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return &ValidationError{Kind: ErrTypeMismatch, Param: name, Reason: fmt.Sprintf("%q is not a boolean", raw)}
		}
		return p.Set(name, parsed)
	default:
		return p.Set(name, raw)
	}
}

// Restrict limits name to values taken from a provider dictionary. A
// currently set value outside the new enumeration is rejected.
func (p *Set) Restrict(name string, values []string) error {
	if _, ok := p.schema.fields[name]; !ok {
		return &ValidationError{Kind: ErrUnknownParameter, Param: name, Reason: "not in " + p.schema.provider + " schema"}
	}
	allowed := make(map[string]struct{}, len(values))
	for _, value := range values {
		allowed[value] = struct{}{}
	}
	if current := p.values[name]; current != nil {
		if _, ok := allowed[formatValue(current)]; !ok {
			return &ValidationError{Kind: ErrNotAllowed, Param: name, Reason: fmt.Sprintf("current value %v is not in the provider dictionary", current)}
		}
	}
	p.restricted[name] = allowed
	return nil
}

// Get returns the current value and whether it is set.
func (p *Set) Get(name string) (any, bool) {
	value, ok := p.values[name]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// Int returns an int parameter, or 0 when unset or not an int.
func (p *Set) Int(name string) int {
	value, _ := p.values[name].(int)
	return value
}

// String returns a string parameter, or "" when unset.
func (p *Set) String(name string) string {
	value, _ := p.values[name].(string)
	return value
}

// Values returns a copy of all parameters, unset ones included as nil.
func (p *Set) Values() map[string]any {
	out := make(map[string]any, len(p.values))
	for name, value := range p.values {
		out[name] = value
	}
	return out
}

// Clone returns an independent copy of the set, restrictions included.
func (p *Set) Clone() *Set {
	clone := &Set{
		schema:     p.schema,
		values:     p.Values(),
		restricted: make(map[string]map[string]struct{}, len(p.restricted)),
	}
	for name, allowed := range p.restricted {
		copied := make(map[string]struct{}, len(allowed))
		for value := range allowed {
			copied[value] = struct{}{}
		}
		clone.restricted[name] = copied
	}
	return clone
}

// Query renders every parameter that is not unset as request query values.
func (p *Set) Query() url.Values {
	query := url.Values{}
	for _, name := range p.schema.order {
		value := p.values[name]
		if value == nil {
			continue
		}
		query.Set(name, formatValue(value))
	}
	return query
}

// Describe renders the set parameters as sorted "name=value" pairs.
func (p *Set) Describe() string {
	query := p.Query()
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+query.Get(key))
	}
	return strings.Join(parts, " ")
}

func (f Field) check(value any) error {
	if value == nil {
		if f.Required {
			return &ValidationError{Kind: ErrTypeMismatch, Param: f.Name, Reason: "value is required"}
		}
		return nil
	}

	switch f.Kind {
	case KindInt:
		n, ok := value.(int)
		if !ok {
			return &ValidationError{Kind: ErrTypeMismatch, Param: f.Name, Reason: fmt.Sprintf("want int, got %T", value)}
		}
		if n < 0 {
			return &ValidationError{Kind: ErrOutOfRange, Param: f.Name, Reason: fmt.Sprintf("%d is negative", n)}
		}
		if f.Max > 0 && n > f.Max {
			return &ValidationError{Kind: ErrOutOfRange, Param: f.Name, Reason: fmt.Sprintf("%d exceeds maximum %d", n, f.Max)}
		}
	case KindBool:
		if _, ok := value.(bool); !ok {
			return &ValidationError{Kind: ErrTypeMismatch, Param: f.Name, Reason: fmt.Sprintf("want bool, got %T", value)}
		}
	default:
		if _, ok := value.(string); !ok {
			return &ValidationError{Kind: ErrTypeMismatch, Param: f.Name, Reason: fmt.Sprintf("want string, got %T", value)}
		}
	}

	if len(f.Allowed) > 0 {
		formatted := formatValue(value)
		for _, allowed := range f.Allowed {
			if allowed == formatted {
				return nil
			}
		}
		return &ValidationError{Kind: ErrNotAllowed, Param: f.Name, Reason: fmt.Sprintf("%v is not one of %s", value, strings.Join(f.Allowed, ", "))}
	}
	return nil
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
