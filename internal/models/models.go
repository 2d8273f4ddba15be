package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User documento de la colección users generado por la migración de empleados.
// La identidad es el email derivado del nombre.
type User struct {
	Name       string  `bson:"name" json:"name"`
	Email      string  `bson:"email" json:"email"`
	Password   string  `bson:"password" json:"-"` // No incluir en JSON
	Role       string  `bson:"role" json:"role"`
	CodeNo     *string `bson:"code_no" json:"code_no"`
	Department *string `bson:"department" json:"department"`
}

// Item documento de la colección items generado por la importación de scrap.
// Los campos nil se escriben como null para que cada upsert reemplace el
// conjunto completo de campos modelados.
type Item struct {
	Category      string    `bson:"category" json:"category"`
	Name          string    `bson:"name" json:"name"`
	VendorName    string    `bson:"vendorname" json:"vendorname"`
	VendorContact *string   `bson:"vendorContact" json:"vendorContact"`
	VendorEmail   *string   `bson:"vendorEmail" json:"vendorEmail"`
	VendorAddress *string   `bson:"vendorAddress" json:"vendorAddress"`
	ItemID        *string   `bson:"itemId" json:"itemId"`
	Shape         *string   `bson:"shape" json:"shape"`
	Price         *float64  `bson:"price" json:"price"`
	Quantity      int       `bson:"quantity" json:"quantity"`
	TotalQuantity int       `bson:"totalQuantity" json:"totalQuantity"`
	Notes         *string   `bson:"notes" json:"notes"`
	IsScrap       bool      `bson:"isScrap" json:"isScrap"`
	ScrappedAt    time.Time `bson:"scrappedAt" json:"scrappedAt"`
}

// Assignment entrada del historial de asignaciones de un item
type Assignment struct {
	Action   string   `bson:"action" json:"action"` // assigned, returned
	Quantity *float64 `bson:"quantity,omitempty" json:"quantity,omitempty"`
}

// ItemTotals proyección de un item usada para recalcular totalQuantity
type ItemTotals struct {
	ID                primitive.ObjectID `bson:"_id" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Quantity          *float64           `bson:"quantity" json:"quantity"`
	TotalQuantity     *float64           `bson:"totalQuantity" json:"totalQuantity"`
	AssignmentHistory []Assignment       `bson:"assignmentHistory" json:"assignmentHistory"`
}
