// Package locale loads the message key set of a locale from JSON or YAML
// message files.
//
// Two layouts are supported under the messages root:
//
//	messages/en.json            single file, keys as written
//	messages/en/common.json     one file per namespace, keys prefixed "common."
//
// Nested objects flatten to dotted keys. Strings and string-only arrays are
// leaves; other arrays expand by index (items.0.title).
package locale

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotFound is returned when no message file exists for a locale.
var ErrNotFound = errors.New("locale messages not found")

// Entry is one flattened message.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	File  string `json:"file"`
}

// Messages is the flattened message set of one locale.
type Messages struct {
	Locale  string           `json:"locale"`
	Entries map[string]Entry `json:"entries"`
}

func newMessages(locale string) *Messages {
	return &Messages{Locale: locale, Entries: map[string]Entry{}}
}

// Keys returns the key set.
func (m *Messages) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, len(m.Entries))
	for k := range m.Entries {
		keys[k] = struct{}{}
	}
	return keys
}

// SortedKeys returns every key in order.
func (m *Messages) SortedKeys() []string {
	out := make([]string, 0, len(m.Entries))
	for k := range m.Entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *Messages) add(key, value, file string) {
	m.Entries[key] = Entry{Key: key, Value: value, File: file}
}

// Load reads the messages of locale under root. An empty root yields an
// empty set.
func Load(root, locale string) (*Messages, error) {
	msgs := newMessages(locale)
	if root == "" {
		return msgs, nil
	}

	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(root, locale+ext)
		if isFile(path) {
			if err := loadFile(msgs, path, ""); err != nil {
				return nil, err
			}
			return msgs, nil
		}
	}

	dir := filepath.Join(root, locale)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q under %s", ErrNotFound, locale, root)
	}
	files, err := doublestar.Glob(os.DirFS(dir), "*.{json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(files)
	for _, name := range files {
		namespace := strings.TrimSuffix(name, filepath.Ext(name))
		if err := loadFile(msgs, filepath.Join(dir, name), namespace); err != nil {
			return nil, err
		}
	}
	return msgs, nil
}

// Locales lists the locales present under root, in either layout.
func Locales(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read messages root: %w", err)
	}
	seen := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			seen[name] = true
			continue
		}
		switch ext := filepath.Ext(name); ext {
		case ".json", ".yaml", ".yml":
			seen[strings.TrimSuffix(name, ext)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out, nil
}

func loadFile(msgs *Messages, path, namespace string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	switch filepath.Ext(path) {
	case ".json":
		err = parseJSON(msgs, data, namespace, path)
	default:
		err = parseYAML(msgs, data, namespace, path)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
