package tenant

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Config describes one catalog tenant.
type Config struct {
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

type tenantsFile struct {
	Tenants []Config `json:"tenants"`
}

type Registry struct {
	mu      sync.RWMutex
	tenants map[string]*Config
}

func NewRegistry() *Registry {
	return &Registry{
		tenants: make(map[string]*Config),
	}
}

// LoadFromFile reads a tenants.json document:
//
//	{"tenants": [{"tenant_id": "acme", "name": "Acme Store"}]}
func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tenants config: %w", err)
	}

	var file tenantsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tenants config: %w", err)
	}
	if len(file.Tenants) == 0 {
		return nil, fmt.Errorf("tenants config %s lists no tenants", path)
	}

	registry := NewRegistry()
	for i := range file.Tenants {
		if file.Tenants[i].TenantID == "" {
			return nil, fmt.Errorf("tenant #%d has an empty tenant_id", i)
		}
		registry.Register(&file.Tenants[i])
	}
	return registry, nil
}

func (r *Registry) Register(cfg *Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[cfg.TenantID] = cfg
}

func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tenants[id]
	return ok
}

// IDs returns the registered tenant ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.tenants))
	for id := range r.tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tenants)
}
