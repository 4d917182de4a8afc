// Package naming derives the capitalization variants used for generated
// identifiers.
package naming

import (
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Variants holds every form of a name the templates may reference.
type Variants struct {
	// Original is the name as declared
	Original string `json:"original"`
	// Pascal has its first letter upper-cased, e.g. MyTupleParam_0
	Pascal string `json:"pascal"`
	// Camel has its first letter lower-cased, e.g. myTupleParam_0
	Camel string `json:"camel"`
}

// Derive computes the variants of name. Only the first letter changes; the
// rest of the name is kept as declared.
func Derive(name string) Variants {
	return Variants{
		Original: name,
		Pascal:   pascal(name),
		Camel:    camel(name),
	}
}

func pascal(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return cases.Title(language.Und, cases.NoLower).String(string(r)) + name[size:]
}

func camel(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

// Cache computes variants once per unique name and hands back the same value
// on every later request, so entity and field generation cannot drift apart.
type Cache struct {
	mu       sync.Mutex
	variants map[string]Variants
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{variants: make(map[string]Variants)}
}

// Get returns the variants of name, deriving them on first use.
func (c *Cache) Get(name string) Variants {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.variants[name]; ok {
		return v
	}
	v := Derive(name)
	c.variants[name] = v
	return v
}

// Len returns the number of distinct names seen.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.variants)
}
