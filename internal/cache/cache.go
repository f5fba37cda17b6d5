// Package cache stores per-server tool and resource listings on disk with
// a TTL, so the chat loop and shell completion do not re-query every
// server on every prompt.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lydakis/mcpchat/internal/paths"
)

// DefaultTTL is how long a cached listing stays fresh unless the server
// config overrides it.
const DefaultTTL = 60 * time.Second

// Kind selects which listing a cache entry holds.
type Kind string

const (
	KindTools     Kind = "tools"
	KindResources Kind = "resources"
)

type entry struct {
	Payload json.RawMessage `json:"payload"`
	Created time.Time       `json:"created"`
	Expires time.Time       `json:"expires"`
}

// GetListing returns the cached listing for a server, or false when the
// entry is absent, expired, or unreadable. Expired and corrupt entries
// are removed on read.
func GetListing(server string, kind Kind) (json.RawMessage, bool) {
	path := entryPath(server, kind)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		_ = os.Remove(path)
		return nil, false
	}
	if time.Now().After(e.Expires) {
		_ = os.Remove(path)
		return nil, false
	}
	return e.Payload, true
}

// PutListing stores a listing with the given TTL.
func PutListing(server string, kind Kind, payload json.RawMessage, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	dir := paths.ListingsCacheDir()
	if err := paths.EnsureDir(dir); err != nil {
		return err
	}

	now := time.Now()
	data, err := json.Marshal(entry{
		Payload: payload,
		Created: now,
		Expires: now.Add(ttl),
	})
	if err != nil {
		return err
	}

	return os.WriteFile(entryPath(server, kind), data, 0600)
}

// Invalidate drops the cached listing for a server, if any.
func Invalidate(server string, kind Kind) {
	_ = os.Remove(entryPath(server, kind))
}

func entryPath(server string, kind Kind) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s", server, kind)
	key := hex.EncodeToString(h.Sum(nil))[:32]
	return filepath.Join(paths.ListingsCacheDir(), key+".json")
}
