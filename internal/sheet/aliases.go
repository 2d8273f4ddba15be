package sheet

// AliasTable campo canónico -> grafías aceptadas de la cabecera.
// Order fija el orden de los campos canónicos.
type AliasTable struct {
	Order   []string
	Aliases map[string][]string
}

// ItemAliases cabeceras aceptadas por la importación de scrap
func ItemAliases() AliasTable {
	return AliasTable{
		Order: []string{
			"name", "category", "quantity", "price", "notes", "vendorname",
			"vendorContact", "vendorEmail", "vendorAddress", "itemId", "shape", "scrappedAt",
		},
		Aliases: map[string][]string{
			"name":          {"name", "item", "item name", "product", "product name", "itemname"},
			"category":      {"category"},
			"quantity":      {"quantity", "qty"},
			"price":         {"price", "unit price"},
			"notes":         {"notes", "note", "remark", "remarks"},
			"vendorname":    {"vendorname", "vendor name", "vendor"},
			"vendorContact": {"vendorcontact", "vendor contact", "contact"},
			"vendorEmail":   {"vendoremail", "vendor email", "email"},
			"vendorAddress": {"vendoraddress", "vendor address", "address"},
			"itemId":        {"itemid", "item id", "sku"},
			"shape":         {"shape"},
			"scrappedAt":    {"scrapped on", "scrapped at", "date", "scrap date"},
		},
	}
}

// UserAliases cabeceras aceptadas por la migración de empleados
func UserAliases() AliasTable {
	return AliasTable{
		Order: []string{"name", "code_no", "department"},
		Aliases: map[string][]string{
			"name":       {"employee name", "name", "employee"},
			"code_no":    {"code no", "code no.", "code", "employee code"},
			"department": {"department", "dept"},
		},
	}
}

// With retorna una copia con las grafías extra añadidas después de las
// incorporadas. Los campos desconocidos se ignoran.
func (t AliasTable) With(extra map[string][]string) AliasTable {
	out := AliasTable{
		Order:   append([]string(nil), t.Order...),
		Aliases: make(map[string][]string, len(t.Aliases)),
	}
	for field, spellings := range t.Aliases {
		out.Aliases[field] = append(append([]string(nil), spellings...), extra[field]...)
	}
	return out
}

// For alias de un campo canónico
func (t AliasTable) For(field string) []string {
	return t.Aliases[field]
}

// Tokens conjunto de todas las grafías normalizadas
func (t AliasTable) Tokens() map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, spellings := range t.Aliases {
		for _, s := range spellings {
			tokens[NormalizeLabel(s)] = struct{}{}
		}
	}
	return tokens
}

// Field retorna el campo canónico al que corresponde una etiqueta de cabecera
func (t AliasTable) Field(label string) (string, bool) {
	norm := NormalizeLabel(label)
	for _, field := range t.Order {
		for _, s := range t.Aliases[field] {
			if NormalizeLabel(s) == norm {
				return field, true
			}
		}
	}
	return "", false
}
