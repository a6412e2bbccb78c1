package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownTest = errors.New("unknown test")

// Test is one catalog line: a test name and its standard price in rupees.
type Test struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Catalog is an immutable name to standard price table. Lookups ignore case
// and surrounding whitespace.
type Catalog struct {
	byKey map[string]Test
	tests []Test
}

func key(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

func New(tests []Test) (*Catalog, error) {
	c := &Catalog{byKey: make(map[string]Test, len(tests))}
	for _, t := range tests {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return nil, fmt.Errorf("test name is required")
		}
		if t.Price < 0 {
			return nil, fmt.Errorf("price of %s must not be negative", t.Name)
		}
		k := key(t.Name)
		if _, dup := c.byKey[k]; dup {
			return nil, fmt.Errorf("duplicate test: %s", t.Name)
		}
		c.byKey[k] = t
		c.tests = append(c.tests, t)
	}
	sort.Slice(c.tests, func(i, j int) bool { return c.tests[i].Name < c.tests[j].Name })
	return c, nil
}

// Default is the lab's price list.
func Default() *Catalog {
	c, err := New(defaultTests)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Lookup(name string) (Test, bool) {
	t, ok := c.byKey[key(name)]
	return t, ok
}

func (c *Catalog) Price(name string) (int64, error) {
	t, ok := c.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTest, strings.TrimSpace(name))
	}
	return t.Price, nil
}

// Tests returns the catalog sorted by name.
func (c *Catalog) Tests() []Test {
	out := make([]Test, len(c.tests))
	copy(out, c.tests)
	return out
}

func (c *Catalog) Len() int { return len(c.tests) }

// Search returns tests whose name contains q, ignoring case.
func (c *Catalog) Search(q string) []Test {
	q = key(q)
	if q == "" {
		return c.Tests()
	}
	var out []Test
	for _, t := range c.tests {
		if strings.Contains(key(t.Name), q) {
			out = append(out, t)
		}
	}
	return out
}
