package query

import (
	"fmt"
	"strings"
)

// Expansion is a typed relation descriptor: which join resolves the
// reference and which projected columns it contributes. Descriptors are
// declared per collection and validated once at startup; there is no
// per-request path parsing. A dangling reference simply projects NULLs
// through the LEFT JOIN, never a fault.
type Expansion struct {
	// Name is the value callers pass via ?expand=.
	Name string
	// Join is the complete LEFT JOIN clause resolving the reference.
	Join string
	// Columns are the projected select expressions, aliased onto the
	// detail record (e.g. `u.name AS teacher_name`).
	Columns []string
	// Nested expansions resolve one further level and are applied together
	// with their parent.
	Nested []Expansion
}

func (e Expansion) validate() error {
	if e.Name == "" {
		return fmt.Errorf("expansion without a name")
	}
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(e.Join)), "LEFT JOIN") {
		return fmt.Errorf("expansion %q: join must be a LEFT JOIN", e.Name)
	}
	if len(e.Columns) == 0 {
		return fmt.Errorf("expansion %q: no projected columns", e.Name)
	}
	for _, nested := range e.Nested {
		if len(nested.Nested) > 0 {
			return fmt.Errorf("expansion %q: nesting is limited to one level", e.Name)
		}
		if err := nested.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Expansions indexes a collection's declared expansions by name.
type Expansions map[string]Expansion

// NewExpansions validates the descriptors and indexes them by name.
func NewExpansions(list ...Expansion) (Expansions, error) {
	set := make(Expansions, len(list))
	for _, e := range list {
		if err := e.validate(); err != nil {
			return nil, err
		}
		if _, dup := set[e.Name]; dup {
			return nil, fmt.Errorf("duplicate expansion %q", e.Name)
		}
		set[e.Name] = e
	}
	return set, nil
}

// MustExpansions is NewExpansions for package-level declarations.
func MustExpansions(list ...Expansion) Expansions {
	set, err := NewExpansions(list...)
	if err != nil {
		panic(err)
	}
	return set
}

// Apply resolves the requested expansion names into join clauses and
// projected columns, preserving request order. Unknown names are ignored and
// duplicates are applied once. Nested expansions ride along with their
// parent.
func (es Expansions) Apply(names []string) (joins []string, columns []string) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		e, ok := es[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		joins = append(joins, e.Join)
		columns = append(columns, e.Columns...)
		for _, nested := range e.Nested {
			joins = append(joins, nested.Join)
			columns = append(columns, nested.Columns...)
		}
	}
	return joins, columns
}
