package musicxml

import (
	"strconv"
	"strings"

	xmldom "github.com/subchen/go-xmldom"
)

// Element lookups go by local name. The decoder strips namespace prefixes,
// so a prefixed root (mx:score-partwise) is walked like an unprefixed one.

func child(n *xmldom.Node, name string) *xmldom.Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func children(n *xmldom.Node, name string) []*xmldom.Node {
	if n == nil {
		return nil
	}
	var out []*xmldom.Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func has(n *xmldom.Node, name string) bool { return child(n, name) != nil }

func attr(n *xmldom.Node, name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attributes {
		if a.Name == name {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

func attrOr(n *xmldom.Node, name, def string) string {
	if v := attr(n, name); v != "" {
		return v
	}
	return def
}

func text(n *xmldom.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}

func childText(n *xmldom.Node, name string) string { return text(child(n, name)) }

// number parses s, reporting a diagnostic when s is present but not a number.
func (r *reporter) number(s, what string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.warn(CodeInvalidNumber, "invalid %s %q", what, s)
		return 0, false
	}
	return v, true
}

// integer parses s as an integer, accepting integral decimals such as "2.0".
func (r *reporter) integer(s, what string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		r.warn(CodeInvalidNumber, "invalid %s %q", what, s)
		return 0, false
	}
	return int(f), true
}

func (r *reporter) integerOr(s, what string, def int) int {
	if v, ok := r.integer(s, what); ok {
		return v
	}
	return def
}

// numberPtr parses an optional numeric attribute.
func (r *reporter) numberPtr(s, what string) *float64 {
	if v, ok := r.number(s, what); ok {
		return &v
	}
	return nil
}
