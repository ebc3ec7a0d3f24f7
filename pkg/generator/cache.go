package generator

import (
	"fmt"
	"sync"
)

// Cache memoizes generator handles per (mode, project, location) tuple so
// that repeated requests with the same configuration reuse the same
// client.
type Cache struct {
	lck        sync.Mutex
	generators map[string]*Generator
}

func NewCache() *Cache {
	return &Cache{
		generators: map[string]*Generator{},
	}
}

func key(cfg *Config) string {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeSimulate
	}
	return fmt.Sprintf("%s:%s:%s", mode, cfg.Project, cfg.Location)
}

// Get returns the cached generator for the configuration tuple, creating
// it on first use.
func (c *Cache) Get(cfg *Config) (*Generator, error) {
	k := key(cfg)
	c.lck.Lock()
	defer c.lck.Unlock()
	if g, ok := c.generators[k]; ok {
		return g, nil
	}
	g, err := New(cfg)
	if err != nil {
		return nil, err
	}
	c.generators[k] = g
	return g, nil
}

// Reset drops all cached generators. Used when the configuration changes
// and on shutdown.
func (c *Cache) Reset() {
	c.lck.Lock()
	defer c.lck.Unlock()
	c.generators = map[string]*Generator{}
}
