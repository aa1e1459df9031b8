// Package contacts maps display names to email addresses.
package contacts

import (
	"strings"
	"sync"
)

// builtin is the address book shipped with the assistant. A contacts file
// adds to and overrides these entries.
var builtin = map[string]string{
	"salah":    "salahuddin0758@gmail.com",
	"abdullah": "aamcse@gmail.com",
	"sallu":    "salauddin0758@gmail.com",
}

// Directory is a case-insensitive name to address table. Safe for concurrent use.
type Directory struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewDirectory creates a directory seeded with the built-in contacts plus extra.
func NewDirectory(extra map[string]string) *Directory {
	d := &Directory{}
	d.Replace(extra)
	return d
}

// Resolve returns the address for name. Input containing "@" is treated as a
// literal address and returned unchanged, without validation.
func (d *Directory) Resolve(name string) (string, bool) {
	if strings.Contains(name, "@") {
		return name, true
	}

	key := normalize(name)
	if key == "" {
		return "", false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	addr, ok := d.entries[key]
	return addr, ok
}

// Replace swaps the non-builtin entries for extra.
func (d *Directory) Replace(extra map[string]string) {
	entries := make(map[string]string, len(builtin)+len(extra))
	for name, addr := range builtin {
		entries[name] = addr
	}
	for name, addr := range extra {
		if key := normalize(name); key != "" && addr != "" {
			entries[key] = strings.TrimSpace(addr)
		}
	}

	d.mu.Lock()
	d.entries = entries
	d.mu.Unlock()
}

// Len returns the number of known contacts.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
