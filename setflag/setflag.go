// Package setflag has pflag values restricted to a fixed set of options.
package setflag

import (
	"fmt"
	"strings"
)

// New returns a flag accepting a comma-separated list of distinct options.
// Values keep the order they were given in.
func New(typ string, options ...string) *SetFlag {
	sf := &SetFlag{
		typ:     typ,
		values:  make(map[string]struct{}, len(options)),
		options: make(map[string]struct{}, len(options)),
	}
	for _, opt := range options {
		sf.options[opt] = struct{}{}
	}
	return sf
}

type SetFlag struct {
	typ     string
	options map[string]struct{}
	values  map[string]struct{}
	order   []string
}

func (sf *SetFlag) List() []string {
	return append([]string(nil), sf.order...)
}

func (sf *SetFlag) String() string {
	return strings.Join(sf.order, ",")
}

func (sf *SetFlag) Type() string { return sf.typ }

func (sf *SetFlag) Set(value string) error {
	values := []string{value}
	if strings.Contains(value, ",") {
		values = strings.Split(value, ",")
		for i, str := range values {
			values[i] = strings.TrimSpace(str)
		}
	}
	for _, value := range values {
		if _, exists := sf.options[value]; !exists {
			return fmt.Errorf("unsupported value '%s'", value)
		}
		if _, dup := sf.values[value]; dup {
			return fmt.Errorf("'%s' given twice", value)
		}
		sf.values[value] = struct{}{}
		sf.order = append(sf.order, value)
	}
	return nil
}

// Choice is a flag taking exactly one of its options.
type Choice struct {
	typ     string
	options []string
	value   string
}

// NewChoice returns a choice flag set to def, which should be one of the
// options.
func NewChoice(typ, def string, options ...string) *Choice {
	return &Choice{typ: typ, options: options, value: def}
}

func (c *Choice) String() string { return c.value }
func (c *Choice) Type() string   { return c.typ }

func (c *Choice) Set(value string) error {
	for _, opt := range c.options {
		if opt == value {
			c.value = value
			return nil
		}
	}
	return fmt.Errorf("unsupported value '%s', want one of %s", value, strings.Join(c.options, ", "))
}
