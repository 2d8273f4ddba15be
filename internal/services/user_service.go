package services

import (
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RoleCollection subconjunto de *mongo.Collection usado por la purga
type RoleCollection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// PurgeState estado de la purga de usuarios
type PurgeState string

const (
	StateConnected           PurgeState = "connected"
	StateCounted             PurgeState = "counted"
	StateConfirmationPending PurgeState = "confirmation_pending"
	StateDeleted             PurgeState = "deleted"
	StateCancelled           PurgeState = "cancelled"
	StateEmpty               PurgeState = "empty"
)

// PurgeResult resultado final de la purga
type PurgeResult struct {
	State   PurgeState
	Matched int64
	Deleted int64
}

// UserPurger borra en bloque los usuarios de un rol tras confirmación
type UserPurger struct {
	collection     RoleCollection
	collectionName string
	confirmer      Confirmer
	out            io.Writer
	state          PurgeState
}

// NewUserPurger crea una purga sobre una colección ya conectada
func NewUserPurger(collection RoleCollection, collectionName string, confirmer Confirmer, out io.Writer) *UserPurger {
	return &UserPurger{
		collection:     collection,
		collectionName: collectionName,
		confirmer:      confirmer,
		out:            out,
		state:          StateConnected,
	}
}

// State estado actual
func (p *UserPurger) State() PurgeState { return p.state }

// Purge cuenta los usuarios con el rol dado, pide confirmación y los borra.
// Sin coincidencias termina en StateEmpty sin preguntar; sin confirmación
// termina en StateCancelled sin efectos.
func (p *UserPurger) Purge(ctx context.Context, role string) (PurgeResult, error) {
	filter := bson.M{"role": role}

	count, err := p.collection.CountDocuments(ctx, filter)
	if err != nil {
		return PurgeResult{State: p.state}, fmt.Errorf("error counting users with role %q: %w", role, err)
	}
	p.state = StateCounted

	if count == 0 {
		p.state = StateEmpty
		fmt.Fprintf(p.out, "No users found with the role '%s'. No action taken.\n", role)
		return PurgeResult{State: p.state}, nil
	}

	p.state = StateConfirmationPending
	fmt.Fprintf(p.out, "\n⚠️  You are about to delete %d user(s) from the '%s' collection.\n", count, p.collectionName)
	fmt.Fprintln(p.out, "This action cannot be undone.")

	ok, err := p.confirmer.Confirm("To confirm, please type 'yes' and press Enter: ")
	if err != nil {
		p.state = StateCancelled
		return PurgeResult{State: p.state, Matched: count}, err
	}
	if !ok {
		p.state = StateCancelled
		fmt.Fprintln(p.out, "\nDeletion cancelled by user.")
		return PurgeResult{State: p.state, Matched: count}, nil
	}

	fmt.Fprintln(p.out, "\nDeleting users...")
	result, err := p.collection.DeleteMany(ctx, filter)
	if err != nil {
		return PurgeResult{State: p.state, Matched: count}, fmt.Errorf("error deleting users with role %q: %w", role, err)
	}

	p.state = StateDeleted
	fmt.Fprintf(p.out, "\n✅ Success! %d user(s) have been deleted.\n", result.DeletedCount)
	return PurgeResult{State: p.state, Matched: count, Deleted: result.DeletedCount}, nil
}
