package marketdata

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ChainCache stores fetched option chains on disk so repeated runs for the
// same symbol and expiration skip the network. Entries expire by file
// modification time.
type ChainCache struct {
	cacheDir string
	ttl      time.Duration
	enabled  bool
}

func NewChainCache(cacheDir string, ttl time.Duration, enabled bool) *ChainCache {
	return &ChainCache{
		cacheDir: cacheDir,
		ttl:      ttl,
		enabled:  enabled,
	}
}

// cacheKey derives the cache file name for one chain lookup.
func (cc *ChainCache) cacheKey(source, symbol, date string) string {
	hash := md5.Sum([]byte(symbol + "|" + date))
	return fmt.Sprintf("%s_chain_%x.json", source, hash)
}

// Get returns the cached chain for the lookup, or false when the cache is
// disabled, the entry is missing, or it has outlived the TTL.
func (cc *ChainCache) Get(source, symbol, date string) (*Chain, bool) {
	if !cc.enabled {
		return nil, false
	}

	filePath := filepath.Join(cc.cacheDir, cc.cacheKey(source, symbol, date))

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > cc.ttl {
		os.Remove(filePath) // Remove expired cache
		return nil, false
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}

	var chain Chain
	if err := json.Unmarshal(data, &chain); err != nil {
		return nil, false
	}
	return &chain, true
}

// Set stores a chain for the lookup. A disabled cache is a no-op.
func (cc *ChainCache) Set(source, symbol, date string, chain *Chain) error {
	if !cc.enabled {
		return nil
	}

	if err := os.MkdirAll(cc.cacheDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(chain, "", "  ")
	if err != nil {
		return err
	}

	filePath := filepath.Join(cc.cacheDir, cc.cacheKey(source, symbol, date))
	return os.WriteFile(filePath, data, 0644)
}
