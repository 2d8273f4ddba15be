package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var embedded embed.FS

// Kinds de registro validados antes de escribir
const (
	KindItem = "item"
	KindUser = "user"
)

// Schema representa un schema JSON cargado
type Schema struct {
	Kind     string         `json:"-"` // ej: "item", "user"
	Version  string         `json:"-"` // ej: "v1"
	ID       string         `json:"$id"`
	Title    string         `json:"title"`
	Metadata SchemaMetadata `json:"metadata"`
	compiled *gojsonschema.Schema
}

// SchemaMetadata describe a qué colección y clave aplica el schema
type SchemaMetadata struct {
	Version    string `json:"version"`
	Collection string `json:"collection"`
	Key        string `json:"key"`
}

// ValidationError representa un error de validación
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationResult contiene el resultado de una validación
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Error resume los errores en una sola línea
func (r *ValidationResult) Error() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(msgs, "; ")
}

// SchemaManager gestiona la carga y validación de schemas
type SchemaManager struct {
	schemas map[string]*Schema // key: "kind.version" ej: "item.v1"
	fsys    fs.FS
	mu      sync.RWMutex
}

// NewSchemaManager crea un gestor sobre un fs.FS con archivos kind.version.json
func NewSchemaManager(fsys fs.FS) *SchemaManager {
	return &SchemaManager{
		schemas: make(map[string]*Schema),
		fsys:    fsys,
	}
}

// Default retorna un gestor con los schemas embebidos ya cargados
func Default() (*SchemaManager, error) {
	sub, err := fs.Sub(embedded, "schemas")
	if err != nil {
		return nil, err
	}
	sm := NewSchemaManager(sub)
	if err := sm.LoadSchemas(); err != nil {
		return nil, err
	}
	return sm, nil
}

// LoadSchemas carga todos los schemas del fs
func (sm *SchemaManager) LoadSchemas() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.schemas = make(map[string]*Schema)

	return fs.WalkDir(sm.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".json") {
			return nil
		}

		// Formato esperado: "item.v1.json"
		filename := path.Base(p)
		parts := strings.Split(strings.TrimSuffix(filename, ".json"), ".")
		if len(parts) != 2 {
			return fmt.Errorf("invalid schema filename format: %s (expected: kind.version.json)", filename)
		}

		schema, err := sm.loadSchemaFile(p, parts[0], parts[1])
		if err != nil {
			return fmt.Errorf("failed to load schema %s: %w", p, err)
		}
		sm.schemas[parts[0]+"."+parts[1]] = schema
		return nil
	})
}

func (sm *SchemaManager) loadSchemaFile(p, kind, version string) (*Schema, error) {
	data, err := fs.ReadFile(sm.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	schema := &Schema{Kind: kind, Version: version}
	if err := json.Unmarshal(data, schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	schema.compiled = compiled

	return schema, nil
}

// GetSchema obtiene un schema por kind y version
func (sm *SchemaManager) GetSchema(kind, version string) (*Schema, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	schema, exists := sm.schemas[kind+"."+version]
	if !exists {
		return nil, fmt.Errorf("schema not found: %s.%s", kind, version)
	}
	return schema, nil
}

// Validate valida un payload contra un schema específico. El payload se
// serializa con sus tags json.
func (sm *SchemaManager) Validate(kind, version string, payload interface{}) (*ValidationResult, error) {
	schema, err := sm.GetSchema(kind, version)
	if err != nil {
		return nil, err
	}

	result, err := schema.compiled.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	validationResult := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		validationResult.Errors = append(validationResult.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Value:   e.Value(),
		})
	}
	return validationResult, nil
}

// Keys lista las claves cargadas ordenadas ("item.v1", "user.v1")
func (sm *SchemaManager) Keys() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	keys := make([]string, 0, len(sm.schemas))
	for key := range sm.schemas {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// String retorna una representación string del schema
func (s *Schema) String() string {
	return fmt.Sprintf("%s.%s (%s)", s.Kind, s.Version, s.Title)
}
