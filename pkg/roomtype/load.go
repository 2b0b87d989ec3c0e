package roomtype

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed default.toml
var defaultCatalog []byte

type catalogFile struct {
	Types []Type `toml:"type"`
}

// Parse decodes a TOML catalog and validates it with [New].
func Parse(data []byte) (*Registry, error) {
	var f catalogFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(f.Types)
}

// Load reads a TOML catalog from path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the built-in catalog. The same registry is returned on
// every call.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Parse(defaultCatalog)
		if err != nil {
			panic(fmt.Sprintf("roomtype: built-in catalog: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
