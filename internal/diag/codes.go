package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Code is the category identifier shared by every occurrence of one kind of
// issue, e.g. "WS001". All diagnostics with the same Code are remediated as
// one unit.
type Code string

func (c Code) String() string { return string(c) }

// Valid reports whether c is a usable category id: non-empty and free of
// whitespace and the ':' separator used in summaries.
func (c Code) Valid() bool {
	if c == "" {
		return false
	}
	return !strings.ContainsAny(string(c), " \t\r\n:")
}

// CodeSet is an allow-list of category ids. The nil set allows everything.
type CodeSet map[Code]struct{}

// NewCodeSet builds a set from the given codes. Called without codes it
// returns nil, which allows everything.
func NewCodeSet(codes ...Code) CodeSet {
	if len(codes) == 0 {
		return nil
	}
	set := make(CodeSet, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// ParseCodes splits comma separated lists (as given on the command line or
// in the manifest) into a CodeSet.
func ParseCodes(values ...string) (CodeSet, error) {
	codes := make([]Code, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			c := Code(part)
			if !c.Valid() {
				return nil, fmt.Errorf("invalid diagnostic id %q", part)
			}
			codes = append(codes, c)
		}
	}
	return NewCodeSet(codes...), nil
}

// Allows reports whether c passes the allow-list.
func (s CodeSet) Allows(c Code) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[c]
	return ok
}

// Intersects reports whether any of codes is in the set. An empty set
// intersects everything.
func (s CodeSet) Intersects(codes []Code) bool {
	if len(s) == 0 {
		return true
	}
	for _, c := range codes {
		if _, ok := s[c]; ok {
			return true
		}
	}
	return false
}

// Sorted returns the codes in lexical order.
func (s CodeSet) Sorted() []Code {
	out := make([]Code, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
