package sqlargon

import "sync"

var registry struct {
	mu     sync.RWMutex
	models []interface{}
}

// Register records models for CreateAll, DropAll and baseline migrations.
// Typically called from init() in the packages defining the models.
func Register(models ...interface{}) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.models = append(registry.models, models...)
}

// RegisteredModels returns the registered models in registration order.
func RegisteredModels() []interface{} {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	out := make([]interface{}, len(registry.models))
	copy(out, registry.models)
	return out
}
