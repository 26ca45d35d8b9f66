package memory

import (
	"sync"

	"github.com/custodia-labs/procdocs/internal/adapters/driven/config/configvalue"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Seed values are copied.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates a config store holding seed.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	for _, values := range seed {
		s.apply(values)
	}
	return s
}

// Get retrieves a value by dotted key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString retrieves a string value.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	return configvalue.String(val)
}

// GetInt retrieves a whole-number value.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	return configvalue.Int(val)
}

// GetFloat retrieves a numeric value.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	return configvalue.Float(val)
}

// Update applies a batch of values.
func (s *ConfigStore) Update(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(values)
	return nil
}

func (s *ConfigStore) apply(values map[string]any) {
	for key, val := range values {
		if configvalue.Removes(val) {
			delete(s.values, key)
			continue
		}
		s.values[key] = val
	}
}

// Path returns a marker, since nothing is persisted.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
