// Package cache is a content-addressed cache of lexed token streams:
// blake2b-256 of the source text as the key, CBOR as the stored encoding.
//
// The lexer's token stream, unlike the AST, is a closed set of plain value
// types with no embedded interfaces, so it round-trips through CBOR with no
// custom (un)marshaling. Caching it skips re-lexing (including indentation
// tracking) for source text seen before; parsing still runs on every call,
// so observable evaluation behavior never depends on cache state.
package cache

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/aledsdavies/pyscript/internal/token"
)

// Key is a content-address for a source string: the blake2b-256 digest of
// its bytes, hex-encoded.
type Key string

// KeyFor hashes source into a cache Key.
func KeyFor(source string) Key {
	sum := blake2b.Sum256([]byte(source))
	return Key(fmt.Sprintf("%x", sum))
}

// Cache stores CBOR-encoded token streams keyed by content hash. The zero
// value is not usable; construct with New.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key][]byte
}

// New returns an empty, ready-to-use Cache.
func New() *Cache {
	return &Cache{entries: make(map[Key][]byte)}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Get returns the cached token stream for source's content hash, and
// whether it was found.
func (c *Cache) Get(source string) ([]token.Token, bool) {
	key := KeyFor(source)
	c.mu.RLock()
	raw, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	var toks []token.Token
	if err := cbor.Unmarshal(raw, &toks); err != nil {
		return nil, false
	}
	return toks, true
}

// Put stores toks under source's content hash.
func (c *Cache) Put(source string, toks []token.Token) error {
	raw, err := cbor.Marshal(toks)
	if err != nil {
		return fmt.Errorf("cache: encode tokens: %w", err)
	}
	key := KeyFor(source)
	c.mu.Lock()
	c.entries[key] = raw
	c.mu.Unlock()
	return nil
}
