// Package i18n provides the message catalog used to compose customer-facing
// SMS text.  The catalog is constructed explicitly at startup from a
// directory of per-language YAML files and is read-mostly afterwards;
// Reload re-reads the files on demand (e.g. on SIGHUP) rather than watching
// them ambiently.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultLanguage is the fallback when a key is missing for the requested
// language.
const DefaultLanguage = "en"

// Catalog holds translations per language.  Safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	dir   string
	langs map[string]map[string]string
}

// New loads every `<lang>.yaml` file in dir into a Catalog.  Missing or
// malformed files for individual languages are skipped with a warning left
// to the caller; an unreadable directory is an error.
func New(dir string) (*Catalog, error) {
	c := &Catalog{dir: dir, langs: map[string]map[string]string{}}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads all language files from the catalog directory, replacing
// the in-memory tables atomically.
func (c *Catalog) Reload() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read catalog dir: %w", err)
	}
	langs := map[string]map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		table := map[string]string{}
		if err := yaml.Unmarshal(data, &table); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		langs[strings.TrimSuffix(name, ".yaml")] = table
	}
	c.mu.Lock()
	c.langs = langs
	c.mu.Unlock()
	return nil
}

// Lookup returns the message for key in lang, falling back to the default
// language and finally to the key itself so a missing translation is
// visible rather than silent.
func (c *Catalog) Lookup(lang, key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if table, ok := c.langs[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if table, ok := c.langs[DefaultLanguage]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	return key
}

// Languages returns the loaded language codes.
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.langs))
	for lang := range c.langs {
		out = append(out, lang)
	}
	return out
}

// DetectLanguage picks a catalog language from an Accept-Language header.
// Nordic language codes map to Danish, everything else to English.
func DetectLanguage(acceptLanguage string) string {
	accept := strings.ToLower(acceptLanguage)
	for _, code := range []string{"da", "dk", "sv", "se", "no", "nb", "nn"} {
		if strings.Contains(accept, code) {
			return "da"
		}
	}
	return DefaultLanguage
}
