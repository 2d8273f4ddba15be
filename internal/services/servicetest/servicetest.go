// Package servicetest colecciones e índices en memoria para tests de jobs
// y servicios
package servicetest

import (
	"context"
	"errors"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection colección en memoria con la semántica mínima de
// UpdateOne(upsert), CountDocuments, DeleteMany y Find
type Collection struct {
	Docs      []bson.M
	FailOn    string // valor de filtro cuyo UpdateOne falla
	Updates   int
	CountErr  error
	DeleteErr error
}

func toM(v interface{}) bson.M {
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}

func asM(v interface{}) bson.M {
	switch d := v.(type) {
	case bson.M:
		return d
	case bson.D:
		return d.Map()
	}
	panic("not a document")
}

func (c *Collection) matches(doc, filter bson.M) bool {
	for k, v := range filter {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

func (c *Collection) UpdateOne(_ context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	c.Updates++
	f := toM(filter)
	for _, v := range f {
		if s, ok := v.(string); ok && s != "" && s == c.FailOn {
			return nil, errors.New("E11000 duplicate key error")
		}
	}
	set := asM(toM(update)["$set"])

	upsert := false
	for _, o := range opts {
		if o != nil && o.Upsert != nil {
			upsert = *o.Upsert
		}
	}

	for i, doc := range c.Docs {
		if !c.matches(doc, f) {
			continue
		}
		changed := false
		for k, v := range set {
			if !reflect.DeepEqual(doc[k], v) {
				changed = true
				c.Docs[i][k] = v
			}
		}
		result := &mongo.UpdateResult{MatchedCount: 1}
		if changed {
			result.ModifiedCount = 1
		}
		return result, nil
	}

	if !upsert {
		return &mongo.UpdateResult{}, nil
	}
	id := primitive.NewObjectID()
	doc := bson.M{"_id": id}
	for k, v := range f {
		doc[k] = v
	}
	for k, v := range set {
		doc[k] = v
	}
	c.Docs = append(c.Docs, doc)
	return &mongo.UpdateResult{UpsertedCount: 1, UpsertedID: id}, nil
}

func (c *Collection) CountDocuments(_ context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	if c.CountErr != nil {
		return 0, c.CountErr
	}
	f := toM(filter)
	var n int64
	for _, doc := range c.Docs {
		if c.matches(doc, f) {
			n++
		}
	}
	return n, nil
}

func (c *Collection) DeleteMany(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	if c.DeleteErr != nil {
		return nil, c.DeleteErr
	}
	f := toM(filter)
	kept := c.Docs[:0]
	var deleted int64
	for _, doc := range c.Docs {
		if c.matches(doc, f) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	c.Docs = kept
	return &mongo.DeleteResult{DeletedCount: deleted}, nil
}

func (c *Collection) Find(_ context.Context, _ interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	docs := make([]interface{}, len(c.Docs))
	for i, d := range c.Docs {
		docs[i] = d
	}
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

// Indexes índices en memoria
type Indexes struct {
	Specs     []*mongo.IndexSpecification
	DropErr   error
	CreateErr error
	Dropped   []string
	Created   []string
}

func (f *Indexes) ListSpecifications(context.Context) ([]*mongo.IndexSpecification, error) {
	return append([]*mongo.IndexSpecification(nil), f.Specs...), nil
}

func (f *Indexes) DropOne(_ context.Context, name string) error {
	if f.DropErr != nil {
		return f.DropErr
	}
	f.Dropped = append(f.Dropped, name)
	kept := f.Specs[:0]
	for _, s := range f.Specs {
		if s.Name != name {
			kept = append(kept, s)
		}
	}
	f.Specs = kept
	return nil
}

func (f *Indexes) CreateOne(_ context.Context, model mongo.IndexModel) (string, error) {
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	name := *model.Options.Name
	f.Created = append(f.Created, name)
	f.Specs = append(f.Specs, &mongo.IndexSpecification{Name: name, Unique: model.Options.Unique})
	return name, nil
}
