package schema

import (
	"testing"
	"testing/fstest"
	"time"

	"invadmin/internal/models"
)

func loadDefault(t *testing.T) *SchemaManager {
	t.Helper()
	manager, err := Default()
	if err != nil {
		t.Fatalf("Failed to load schemas: %v", err)
	}
	return manager
}

func TestSchemaManager_LoadSchemas(t *testing.T) {
	manager := loadDefault(t)

	keys := manager.Keys()
	expected := []string{"item.v1", "user.v1"}
	if len(keys) != len(expected) {
		t.Fatalf("Expected %d schemas, got %v", len(expected), keys)
	}
	for i, key := range expected {
		if keys[i] != key {
			t.Errorf("Expected schema %s, got %s", key, keys[i])
		}
	}
}

func TestSchemaManager_GetSchema(t *testing.T) {
	manager := loadDefault(t)

	schema, err := manager.GetSchema(KindItem, "v1")
	if err != nil {
		t.Fatalf("Failed to get item.v1 schema: %v", err)
	}
	if schema.Kind != "item" || schema.Version != "v1" {
		t.Errorf("Schema kind/version mismatch: got %s.%s, want item.v1", schema.Kind, schema.Version)
	}
	if schema.Metadata.Key != "name" || schema.Metadata.Collection != "items" {
		t.Errorf("Unexpected metadata: %+v", schema.Metadata)
	}

	if _, err := manager.GetSchema("nonexistent", "v1"); err == nil {
		t.Error("Expected error for non-existent schema")
	}
}

func TestSchemaManager_InvalidFilename(t *testing.T) {
	manager := NewSchemaManager(fstest.MapFS{
		"item.json": &fstest.MapFile{Data: []byte(`{"type":"object"}`)},
	})
	if err := manager.LoadSchemas(); err == nil {
		t.Error("Expected error for filename without version")
	}
}

func TestSchemaManager_InvalidJSON(t *testing.T) {
	manager := NewSchemaManager(fstest.MapFS{
		"item.v1.json": &fstest.MapFile{Data: []byte(`{not json`)},
	})
	if err := manager.LoadSchemas(); err == nil {
		t.Error("Expected error for malformed schema")
	}
}

func strp(s string) *string { return &s }

func TestValidate_ItemSchema(t *testing.T) {
	manager := loadDefault(t)
	price := 2.5

	tests := []struct {
		name  string
		item  models.Item
		valid bool
	}{
		{
			name: "Valid item",
			item: models.Item{
				Name: "Bolt M8", Category: "Bolt M8", VendorName: "Bolt M8",
				Price: &price, Quantity: 100, TotalQuantity: 100,
				IsScrap: true, ScrappedAt: time.Now(),
			},
			valid: true,
		},
		{
			name: "Valid item with nulls",
			item: models.Item{
				Name: "Pipe", Category: "Pipe", VendorName: "ACME",
				Notes: strp("bent"), IsScrap: true, ScrappedAt: time.Now(),
			},
			valid: true,
		},
		{
			name: "Empty name",
			item: models.Item{
				Category: "x", VendorName: "x", IsScrap: true, ScrappedAt: time.Now(),
			},
			valid: false,
		},
		{
			name: "Not scrap",
			item: models.Item{
				Name: "Pipe", Category: "Pipe", VendorName: "Pipe", ScrappedAt: time.Now(),
			},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := manager.Validate(KindItem, "v1", tt.item)
			if err != nil {
				t.Fatalf("Validation error: %v", err)
			}
			if result.Valid != tt.valid {
				t.Errorf("Expected valid=%v, got valid=%v. Errors: %s", tt.valid, result.Valid, result.Error())
			}
		})
	}
}

func TestValidate_UserSchema(t *testing.T) {
	manager := loadDefault(t)

	tests := []struct {
		name  string
		user  models.User
		valid bool
	}{
		{
			name:  "Valid user",
			user:  models.User{Name: "Jane Doe", Email: "jane.doe@gmail.com", Role: "staff", CodeNo: strp("E1")},
			valid: true,
		},
		{
			name:  "Double space in name keeps email valid",
			user:  models.User{Name: "Ana  Maria", Email: "ana..maria@gmail.com", Role: "staff"},
			valid: true,
		},
		{
			name:  "Tab in name and dotless domain",
			user:  models.User{Name: "Ana\tMaria", Email: "ana\tmaria@corp", Role: "staff"},
			valid: true,
		},
		{
			name:  "At sign in name",
			user:  models.User{Name: "R@nd Team", Email: "r@nd.team@gmail.com", Role: "staff"},
			valid: true,
		},
		{
			name:  "Email without domain",
			user:  models.User{Name: "X", Email: "x@", Role: "staff"},
			valid: false,
		},
		{
			name:  "Missing role",
			user:  models.User{Name: "X", Email: "x@gmail.com"},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := manager.Validate(KindUser, "v1", tt.user)
			if err != nil {
				t.Fatalf("Validation error: %v", err)
			}
			if result.Valid != tt.valid {
				t.Errorf("Expected valid=%v, got valid=%v. Errors: %s", tt.valid, result.Valid, result.Error())
			}
		})
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	manager := loadDefault(t)
	if _, err := manager.Validate("feeding", "v1", map[string]interface{}{}); err == nil {
		t.Error("Expected error for unknown kind")
	}
}
