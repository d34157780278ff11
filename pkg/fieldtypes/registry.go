package fieldtypes

import (
	"embed"
	"encoding/json"
	"sync"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/models"
)

//go:embed fieldTypes.json
var fieldTypesFS embed.FS

// Config shapes a field type can declare
const (
	ConfigShapeNone    = "none"
	ConfigShapeOptions = "options"
	ConfigShapeNumeric = "numeric"
)

// Descriptor describes how a field type is rendered, configured and stored
type Descriptor struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	InputKind   string `json:"inputKind"`
	ConfigShape string `json:"configShape"`
}

// Registry holds field type descriptors
type Registry struct {
	types map[string]Descriptor
	mu    sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// GetRegistry returns the singleton field types registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{
			types: make(map[string]Descriptor),
		}
		defaultRegistry.loadFromEmbedded()
	})
	return defaultRegistry
}

// loadFromEmbedded loads field types from the embedded JSON file
func (r *Registry) loadFromEmbedded() error {
	data, err := fieldTypesFS.ReadFile("fieldTypes.json")
	if err != nil {
		return err
	}

	var types map[string]Descriptor
	if err := json.Unmarshal(data, &types); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = types
	return nil
}

// Get returns a field type descriptor by name
func (r *Registry) Get(typeName string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.types[typeName]
	return def, ok
}

// Describe returns the descriptor for a field type. Unknown types fall
// back to the text descriptor so that forward-compatible backend data
// renders as plain text instead of failing.
func (r *Registry) Describe(ft constants.FieldType) Descriptor {
	if def, ok := r.Get(string(ft)); ok {
		return def
	}
	def, _ := r.Get(string(constants.FieldTypeText))
	return def
}

// DefaultConfig returns the config an editor starts from for a field type
func (r *Registry) DefaultConfig(ft constants.FieldType) *models.FieldConfig {
	switch r.Describe(ft).ConfigShape {
	case ConfigShapeOptions:
		return &models.FieldConfig{Options: []models.FieldOption{}}
	case ConfigShapeNumeric:
		return &models.FieldConfig{}
	default:
		return nil
	}
}

// GetAll returns all registered field types
func (r *Registry) GetAll() map[string]Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]Descriptor, len(r.types))
	for k, v := range r.types {
		result[k] = v
	}
	return result
}

// Package-level convenience functions using the default registry

// Describe returns the descriptor for a field type (text fallback for unknown)
func Describe(ft constants.FieldType) Descriptor {
	return GetRegistry().Describe(ft)
}

// DefaultConfig returns the starting config for a field type
func DefaultConfig(ft constants.FieldType) *models.FieldConfig {
	return GetRegistry().DefaultConfig(ft)
}

// DescriptorWithName includes the type name in the descriptor
type DescriptorWithName struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	InputKind   string `json:"inputKind"`
	ConfigShape string `json:"configShape"`
}

// GetAllFieldTypes returns all built-in field types as a slice with names,
// ordered the way the enum lists them
func GetAllFieldTypes() []DescriptorWithName {
	registry := GetRegistry()
	result := make([]DescriptorWithName, 0, len(registry.GetAll()))

	for _, name := range constants.GetAllFieldTypes() {
		def, ok := registry.Get(name)
		if !ok {
			continue
		}
		result = append(result, DescriptorWithName{
			Name:        name,
			Label:       def.Label,
			Description: def.Description,
			Icon:        def.Icon,
			InputKind:   def.InputKind,
			ConfigShape: def.ConfigShape,
		})
	}

	return result
}
