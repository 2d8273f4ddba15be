package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"invadmin/internal/models"
)

// UpdateCollection subconjunto de *mongo.Collection usado por el upsert
type UpdateCollection interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// Upserter escribe registros con upsert sobre una clave natural
type Upserter[T any] struct {
	collection UpdateCollection
	keyField   string
	key        func(T) string
}

// NewUpserter crea un upserter que filtra por {keyField: key(record)}
func NewUpserter[T any](collection UpdateCollection, keyField string, key func(T) string) *Upserter[T] {
	return &Upserter[T]{
		collection: collection,
		keyField:   keyField,
		key:        key,
	}
}

// NewItemUpserter upsert de items por name
func NewItemUpserter(collection UpdateCollection) *Upserter[models.Item] {
	return NewUpserter(collection, "name", func(i models.Item) string { return i.Name })
}

// NewUserUpserter upsert de usuarios por email
func NewUserUpserter(collection UpdateCollection) *Upserter[models.User] {
	return NewUpserter(collection, "email", func(u models.User) string { return u.Email })
}

// Upsert reemplaza todos los campos modelados del documento con la clave del
// registro, creándolo si no existe. Los campos ausentes se escriben como null.
func (u *Upserter[T]) Upsert(ctx context.Context, record T) (models.Outcome, error) {
	filter := bson.M{u.keyField: u.key(record)}
	update := bson.M{"$set": record}

	result, err := u.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return models.OutcomeFailedWrite, fmt.Errorf("upsert %s=%q: %w", u.keyField, u.key(record), err)
	}

	switch {
	case result.UpsertedID != nil:
		return models.OutcomeInserted, nil
	case result.ModifiedCount > 0:
		return models.OutcomeUpdated, nil
	default:
		return models.OutcomeUnchanged, nil
	}
}
