package core

// resolver.go maps free-form cell text to catalog indices.
//
// Matching is forgiving about case and spacing: "thunder  PUNCH" resolves the
// same as "Thunder Punch". When no name matches, "#12" and "Move #12" are
// accepted as explicit indices as long as they fall inside the catalog.

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Catalog is an ordered list of named attributes addressed by position.
type Catalog struct {
	Type  string   // Singular type name used in fallbacks: "Move"
	Names []string // Position is the attribute index
}

// Size returns the number of catalog entries.
func (c Catalog) Size() int {
	return len(c.Names)
}

// Resolver resolves cell text against one catalog.
type Resolver struct {
	catalog Catalog
	byName  map[string]int
	prefix  string // normalized "<type> #"
}

// NewResolver precomputes the normalized name table for a catalog.
// When two entries normalize to the same name the lower index wins.
func NewResolver(c Catalog) *Resolver {
	r := &Resolver{
		catalog: c,
		byName:  make(map[string]int, len(c.Names)),
		prefix:  foldName(c.Type) + " #",
	}
	for i, name := range c.Names {
		key := foldName(name)
		if key == "" {
			continue
		}
		if _, exists := r.byName[key]; !exists {
			r.byName[key] = i
		}
	}
	return r
}

// Catalog returns the catalog the resolver was built from.
func (r *Resolver) Catalog() Catalog {
	return r.catalog
}

// Resolve returns the catalog index for text.
// Blank text resolves to NoMove with a nil error. Text that matches no name
// and no in-range "#<index>" form returns a ValidationError wrapping ErrNotFound.
func (r *Resolver) Resolve(text string) (int, error) {
	key := foldName(text)
	if key == "" {
		return NoMove, nil
	}

	if idx, ok := r.byName[key]; ok {
		return idx, nil
	}

	rest, ok := strings.CutPrefix(key, r.prefix)
	if !ok {
		rest, ok = strings.CutPrefix(key, "#")
	}
	if ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err == nil && n >= 0 && n < r.catalog.Size() {
			return n, nil
		}
	}

	return NoMove, &ValidationError{
		Field:   r.catalog.Type,
		Value:   strings.TrimSpace(text),
		Message: fmt.Sprintf("%s not found", strings.ToLower(r.catalog.Type)),
		Err:     ErrNotFound,
	}
}

// Format renders an index for display.
// NoMove renders blank. Unknown indices, and indices whose name is shadowed
// by an earlier duplicate, render as "<Type> #<id>" so the text resolves back.
func (r *Resolver) Format(id int) string {
	if id < 0 {
		return ""
	}
	if id < r.catalog.Size() {
		name := r.catalog.Names[id]
		// A shadowed duplicate name would resolve to the earlier index.
		if owner, ok := r.byName[foldName(name)]; ok && owner == id {
			return name
		}
	}
	return fmt.Sprintf("%s #%d", r.catalog.Type, id)
}

// foldName case-folds s and collapses runs of whitespace to a single space.
func foldName(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}
