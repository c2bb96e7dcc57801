// Package schema expands schema functions into the flat list of keys they
// reference, following nested schema calls.
package schema

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/glot/pkg/registry"
)

// ExpandedKey is one key produced by a schema expansion.
type ExpandedKey struct {
	// FullKey is `namespace.raw` or the raw key when there is no namespace.
	FullKey      string `json:"full_key"`
	RawKey       string `json:"raw_key"`
	FromSchema   string `json:"from_schema"`
	SchemaFile   string `json:"schema_file"`
	HasNamespace bool   `json:"has_namespace"`
}

// Result is the outcome of expanding one schema.
type Result struct {
	Keys []ExpandedKey `json:"keys"`
	// UnresolvedNested lists nested calls to functions that are not schemas.
	UnresolvedNested []string `json:"unresolved_nested,omitempty"`
}

// Expand flattens schema name under namespace ("" for none). visited guards
// against cycles: a schema already in it contributes nothing. Pass a fresh
// set for each top-level expansion.
func Expand(name, namespace string, schemas map[string]registry.SchemaFunction, visited map[string]bool) Result {
	var res Result
	if visited[name] {
		return res
	}
	visited[name] = true

	s, ok := schemas[name]
	if !ok {
		return res
	}
	for _, key := range s.Keys {
		res.Keys = append(res.Keys, ExpandedKey{
			FullKey:      join(namespace, key),
			RawKey:       key,
			FromSchema:   name,
			SchemaFile:   s.FilePath,
			HasNamespace: namespace != "",
		})
	}
	for _, nested := range s.NestedCalls {
		if _, ok := schemas[nested]; !ok {
			res.UnresolvedNested = append(res.UnresolvedNested, nested)
			continue
		}
		sub := Expand(nested, namespace, schemas, visited)
		res.Keys = append(res.Keys, sub.Keys...)
		res.UnresolvedNested = append(res.UnresolvedNested, sub.UnresolvedNested...)
	}
	return res
}

// WithNamespace applies namespace to a namespace-free expansion.
func (r Result) WithNamespace(namespace string) Result {
	out := Result{
		Keys:             make([]ExpandedKey, len(r.Keys)),
		UnresolvedNested: r.UnresolvedNested,
	}
	for i, k := range r.Keys {
		k.FullKey = join(namespace, k.RawKey)
		k.HasNamespace = namespace != ""
		out.Keys[i] = k
	}
	return out
}

func join(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + "." + key
}

// Cache memoizes expansions per schema name. Key expansion does not depend
// on the namespace, so one entry serves every call site of a schema.
// A Cache is safe for concurrent use.
type Cache struct {
	schemas map[string]registry.SchemaFunction
	entries *lru.Cache[string, Result]
}

// NewCache sizes the cache to hold every schema.
func NewCache(schemas map[string]registry.SchemaFunction) (*Cache, error) {
	entries, err := lru.New[string, Result](len(schemas) + 1)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}
	return &Cache{schemas: schemas, entries: entries}, nil
}

// Warm expands every schema. Resolution starts only after Warm returns.
func (c *Cache) Warm() {
	for name := range c.schemas {
		c.raw(name)
	}
}

// Expand returns the expansion of name with namespace applied.
func (c *Cache) Expand(name, namespace string) Result {
	return c.raw(name).WithNamespace(namespace)
}

// Has reports whether name is a known schema.
func (c *Cache) Has(name string) bool {
	_, ok := c.schemas[name]
	return ok
}

// SchemaFile returns the file that declares name.
func (c *Cache) SchemaFile(name string) string {
	return c.schemas[name].FilePath
}

// UnresolvedNested reports, per schema, nested calls that are not schemas.
func (c *Cache) UnresolvedNested() map[string][]string {
	out := map[string][]string{}
	for name := range c.schemas {
		if r := c.raw(name); len(r.UnresolvedNested) > 0 {
			out[name] = r.UnresolvedNested
		}
	}
	return out
}

// Len returns the number of cached expansions.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) raw(name string) Result {
	if r, ok := c.entries.Get(name); ok {
		return r
	}
	r := Expand(name, "", c.schemas, map[string]bool{})
	c.entries.Add(name, r)
	return r
}
