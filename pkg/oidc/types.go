package oidc

import (
	"encoding/json"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

type Locales []language.Tag

// UnmarshalText tolerates faulty values in the space separated list of
// locales. Undecodable entries are skipped, so that a single bad value
// never fails the whole request binding.
func (l *Locales) UnmarshalText(text []byte) error {
	locales := strings.Split(string(text), " ")
	for _, locale := range locales {
		tag, err := language.Parse(locale)
		if err == nil && !tag.IsRoot() {
			*l = append(*l, tag)
		}
	}
	return nil
}

type SpaceDelimitedArray []string

func (s SpaceDelimitedArray) String() string {
	return strings.Join(s, " ")
}

func (s *SpaceDelimitedArray) UnmarshalText(text []byte) error {
	*s = strings.Split(string(text), " ")
	return nil
}

func (s SpaceDelimitedArray) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Parameter is a single response parameter value: either one string or
// an ordered list of strings. The zero value is an empty single string.
type Parameter struct {
	values []string
	list   bool
}

func StringParameter(value string) Parameter {
	return Parameter{values: []string{value}}
}

func ListParameter(values ...string) Parameter {
	return Parameter{values: values, list: true}
}

// Values returns the parameter's values in insertion order.
// A single-valued parameter yields a slice of length one.
func (p Parameter) Values() []string {
	return p.values
}

func (p Parameter) IsList() bool {
	return p.list
}

func (p Parameter) String() string {
	if len(p.values) == 0 {
		return ""
	}
	return p.values[0]
}

// MarshalJSON renders single values as JSON strings and lists as JSON
// arrays, so handler-added parameters keep their shape in the inline
// response payload.
func (p Parameter) MarshalJSON() ([]byte, error) {
	if p.list {
		if p.values == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(p.values)
	}
	return json.Marshal(p.String())
}

// Parameters is the mutable response parameter set of a transaction.
// Handlers may set or append parameters at any stage; the apply
// response stage serializes them verbatim, inline or on the redirect
// target.
type Parameters map[string]Parameter

func NewParameters() Parameters {
	return make(Parameters)
}

func (p Parameters) Set(name, value string) {
	p[name] = StringParameter(value)
}

func (p Parameters) SetList(name string, values ...string) {
	p[name] = ListParameter(values...)
}

// Add appends value to the named parameter, converting it into a list
// when a value is already present.
func (p Parameters) Add(name, value string) {
	current, ok := p[name]
	if !ok {
		p.Set(name, value)
		return
	}
	p[name] = ListParameter(append(current.values, value)...)
}

func (p Parameters) Get(name string) string {
	return p[name].String()
}

func (p Parameters) Has(name string) bool {
	_, ok := p[name]
	return ok
}

func (p Parameters) Del(name string) {
	delete(p, name)
}

func (p Parameters) Clone() Parameters {
	clone := make(Parameters, len(p))
	for name, param := range p {
		clone[name] = param
	}
	return clone
}

// Query flattens the parameter set into url.Values for serialization
// as redirect query parameters.
func (p Parameters) Query() url.Values {
	values := make(url.Values, len(p))
	for name, param := range p {
		values[name] = append([]string(nil), param.values...)
	}
	return values
}
