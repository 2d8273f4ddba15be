package services

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"invadmin/internal/models"
	"invadmin/internal/normalize"
	"invadmin/internal/sheet"
)

const (
	legacyCategoryIndex = "category_1"
	categoryNameIndex   = "category_1_name_1"
)

// ItemsCollection subconjunto de *mongo.Collection usado por fix-totals
type ItemsCollection interface {
	UpdateCollection
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// ComputeTotal total = disponible + max(asignado neto, 0). Cada entrada
// "assigned" suma y cada "returned" resta su cantidad (1 si falta o no es finita).
func ComputeTotal(item models.ItemTotals) float64 {
	available := 0.0
	if item.Quantity != nil {
		available = *item.Quantity
	}

	net := 0.0
	for _, h := range item.AssignmentHistory {
		q := 1.0
		if h.Quantity != nil && !math.IsNaN(*h.Quantity) && !math.IsInf(*h.Quantity, 0) {
			q = *h.Quantity
		}
		switch h.Action {
		case "assigned":
			net += q
		case "returned":
			net -= q
		}
	}
	return available + math.Max(net, 0)
}

// itemTotalsDoc proyección cruda: los campos numéricos pueden venir con
// cualquier tipo BSON y se convierten con rawNumber
type itemTotalsDoc struct {
	ID                primitive.ObjectID `bson:"_id"`
	Quantity          bson.RawValue      `bson:"quantity"`
	TotalQuantity     bson.RawValue      `bson:"totalQuantity"`
	AssignmentHistory bson.RawValue      `bson:"assignmentHistory"`
}

func (d itemTotalsDoc) totals() models.ItemTotals {
	item := models.ItemTotals{ID: d.ID, Quantity: rawNumber(d.Quantity)}
	// Un total guardado como texto se reescribe como número
	if d.TotalQuantity.Type != bson.TypeString {
		item.TotalQuantity = rawNumber(d.TotalQuantity)
	}

	history, ok := d.AssignmentHistory.ArrayOK()
	if !ok {
		return item
	}
	entries, err := history.Values()
	if err != nil {
		return item
	}
	for _, e := range entries {
		entry, ok := e.DocumentOK()
		if !ok {
			continue
		}
		action, _ := entry.Lookup("action").StringValueOK()
		item.AssignmentHistory = append(item.AssignmentHistory, models.Assignment{
			Action:   action,
			Quantity: rawNumber(entry.Lookup("quantity")),
		})
	}
	return item
}

// rawNumber convierte un valor BSON a número finito; el texto se interpreta
// igual que una celda importada. Lo demás es ausente.
func rawNumber(v bson.RawValue) *float64 {
	var f float64
	switch v.Type {
	case bson.TypeDouble:
		f = v.Double()
	case bson.TypeInt32:
		f = float64(v.Int32())
	case bson.TypeInt64:
		f = float64(v.Int64())
	case bson.TypeDecimal128:
		parsed, err := strconv.ParseFloat(v.Decimal128().String(), 64)
		if err != nil {
			return nil
		}
		f = parsed
	case bson.TypeBoolean:
		if v.Boolean() {
			f = 1
		}
	case bson.TypeString:
		return normalize.Number(sheet.String(v.StringValue()))
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// TotalsFixer recalcula totalQuantity de todos los items
type TotalsFixer struct {
	collection ItemsCollection
}

// NewTotalsFixer crea el corrector sobre la colección de items
func NewTotalsFixer(collection ItemsCollection) *TotalsFixer {
	return &TotalsFixer{collection: collection}
}

// Fix actualiza solo los documentos cuyo total guardado difiere del calculado
// y retorna cuántos cambió
func (f *TotalsFixer) Fix(ctx context.Context) (int, error) {
	projection := bson.M{"quantity": 1, "totalQuantity": 1, "assignmentHistory": 1}
	cursor, err := f.collection.Find(ctx, bson.M{}, options.Find().SetProjection(projection))
	if err != nil {
		return 0, fmt.Errorf("error listing items: %w", err)
	}
	defer cursor.Close(ctx)

	updated := 0
	for cursor.Next(ctx) {
		var doc itemTotalsDoc
		if err := cursor.Decode(&doc); err != nil {
			return updated, fmt.Errorf("error decoding item: %w", err)
		}
		item := doc.totals()

		total := ComputeTotal(item)
		if item.TotalQuantity != nil && *item.TotalQuantity == total {
			continue
		}

		_, err := f.collection.UpdateOne(ctx,
			bson.M{"_id": item.ID},
			bson.M{"$set": bson.M{"totalQuantity": totalValue(total)}},
		)
		if err != nil {
			return updated, fmt.Errorf("error updating item %s: %w", item.ID.Hex(), err)
		}
		updated++
	}
	if err := cursor.Err(); err != nil {
		return updated, fmt.Errorf("error iterating items: %w", err)
	}
	return updated, nil
}

// totalValue guarda enteros como int64 para no cambiar el tipo BSON del campo
func totalValue(total float64) interface{} {
	if total == math.Trunc(total) && math.Abs(total) < math.MaxInt64 {
		return int64(total)
	}
	return total
}

// IndexManager subconjunto de mongo.IndexView usado por fix-indexes
type IndexManager interface {
	ListSpecifications(ctx context.Context) ([]*mongo.IndexSpecification, error)
	DropOne(ctx context.Context, name string) error
	CreateOne(ctx context.Context, model mongo.IndexModel) (string, error)
}

type indexView struct {
	view mongo.IndexView
}

// IndexesOf adapta los índices de una colección a IndexManager
func IndexesOf(collection *mongo.Collection) IndexManager {
	return indexView{view: collection.Indexes()}
}

func (v indexView) ListSpecifications(ctx context.Context) ([]*mongo.IndexSpecification, error) {
	return v.view.ListSpecifications(ctx)
}

func (v indexView) DropOne(ctx context.Context, name string) error {
	_, err := v.view.DropOne(ctx, name)
	return err
}

func (v indexView) CreateOne(ctx context.Context, model mongo.IndexModel) (string, error) {
	return v.view.CreateOne(ctx, model)
}

// IndexFixResult qué índices se tocaron. Los errores de drop/create se
// reportan aquí y no abortan la operación.
type IndexFixResult struct {
	Dropped   string
	DropErr   error
	Created   string
	CreateErr error
	Indexes   []string
}

// IndexFixer reemplaza el índice único legacy sobre category por uno
// compuesto {category, name}
type IndexFixer struct {
	indexes IndexManager
}

// NewIndexFixer crea el corrector de índices
func NewIndexFixer(indexes IndexManager) *IndexFixer {
	return &IndexFixer{indexes: indexes}
}

// Fix elimina category_1 si existe y es único, y crea category_1_name_1 si falta
func (f *IndexFixer) Fix(ctx context.Context) (IndexFixResult, error) {
	var result IndexFixResult

	specs, err := f.indexes.ListSpecifications(ctx)
	if err != nil {
		return result, fmt.Errorf("error listing indexes: %w", err)
	}

	hasCompound := false
	for _, spec := range specs {
		switch {
		case spec.Name == legacyCategoryIndex && spec.Unique != nil && *spec.Unique:
			if err := f.indexes.DropOne(ctx, legacyCategoryIndex); err != nil {
				result.DropErr = err
			} else {
				result.Dropped = legacyCategoryIndex
			}
		case spec.Name == categoryNameIndex:
			hasCompound = true
		}
	}

	if !hasCompound {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName(categoryNameIndex).SetUnique(true),
		}
		if name, err := f.indexes.CreateOne(ctx, model); err != nil {
			result.CreateErr = err
		} else {
			result.Created = name
		}
	}

	specs, err = f.indexes.ListSpecifications(ctx)
	if err != nil {
		return result, fmt.Errorf("error listing indexes: %w", err)
	}
	for _, spec := range specs {
		result.Indexes = append(result.Indexes, spec.Name)
	}
	return result, nil
}
