package normalize

import (
	"errors"
	"time"

	"invadmin/internal/models"
	"invadmin/internal/sheet"
)

// ErrMissingName la fila no tiene el campo identificador
var ErrMissingName = errors.New("missing name")

// ItemNormalizer convierte filas de la hoja de scrap en models.Item
type ItemNormalizer struct {
	Aliases sheet.AliasTable
	// Now marca de tiempo de la ejecución, usada cuando scrappedAt falta
	Now time.Time
}

// NewItemNormalizer crea un normalizador con los alias dados
func NewItemNormalizer(aliases sheet.AliasTable, now time.Time) *ItemNormalizer {
	return &ItemNormalizer{Aliases: aliases, Now: now}
}

// Normalize produce exactamente un candidato por fila. Sin name retorna
// ErrMissingName y el registro no debe escribirse.
//
// category y vendorname toman el name cuando faltan. No es una regla de
// negocio: el esquema destino tiene índices únicos sobre esos campos y el
// valor por defecto evita choques entre filas sin proveedor ni categoría.
func (n *ItemNormalizer) Normalize(row sheet.RawRow) (models.Item, error) {
	get := func(field string) sheet.Cell {
		c, _ := row.Get(n.Aliases.For(field))
		return c
	}

	name := String(get("name"))
	if name == nil {
		return models.Item{}, ErrMissingName
	}

	quantity := 0
	if q := Int(get("quantity")); q != nil {
		quantity = *q
	}

	scrappedAt := n.Now
	if d := Date(get("scrappedAt")); d != nil {
		scrappedAt = *d
	}

	return models.Item{
		Category:      orDefault(String(get("category")), *name),
		Name:          *name,
		VendorName:    orDefault(String(get("vendorname")), *name),
		VendorContact: String(get("vendorContact")),
		VendorEmail:   String(get("vendorEmail")),
		VendorAddress: String(get("vendorAddress")),
		ItemID:        String(get("itemId")),
		Shape:         String(get("shape")),
		Price:         Number(get("price")),
		Quantity:      quantity,
		TotalQuantity: quantity,
		Notes:         String(get("notes")),
		IsScrap:       true,
		ScrappedAt:    scrappedAt,
	}, nil
}

func orDefault(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
