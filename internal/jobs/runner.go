package jobs

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"invadmin/internal/config"
	"invadmin/internal/database"
	"invadmin/internal/metrics"
	"invadmin/internal/schema"
	"invadmin/internal/services"
)

// Collection operaciones de colección que usan los jobs.
// *mongo.Collection la satisface.
type Collection interface {
	services.ItemsCollection
	services.RoleCollection
}

// Backend conexión abierta durante una ejecución
type Backend interface {
	Collection(name string) (Collection, error)
	Indexes(collection string) (services.IndexManager, error)
	Disconnect(ctx context.Context) error
}

// Dialer abre un Backend
type Dialer func(ctx context.Context, cfg database.MongoConfig) (Backend, error)

type mongoBackend struct {
	store *database.Store
}

// DialMongo conecta con database.Connect
func DialMongo(ctx context.Context, cfg database.MongoConfig) (Backend, error) {
	store, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return mongoBackend{store: store}, nil
}

func (b mongoBackend) Collection(name string) (Collection, error) {
	coll, err := b.store.Collection(name)
	if err != nil {
		return nil, err
	}
	return coll, nil
}

func (b mongoBackend) Indexes(collection string) (services.IndexManager, error) {
	coll, err := b.store.Collection(collection)
	if err != nil {
		return nil, err
	}
	return services.IndexesOf(coll), nil
}

func (b mongoBackend) Disconnect(ctx context.Context) error {
	return b.store.Disconnect(ctx)
}

// Runner ejecuta los jobs administrativos con una configuración inyectada.
// Toda la salida para el operador va a Out.
type Runner struct {
	Config   *config.Config
	Out      io.Writer
	Dial     Dialer
	Schemas  *schema.SchemaManager
	Now      func() time.Time
	NewRunID func() string
}

// NewRunner crea un Runner contra MongoDB con los schemas embebidos
func NewRunner(cfg *config.Config, out io.Writer) (*Runner, error) {
	schemas, err := schema.Default()
	if err != nil {
		return nil, fmt.Errorf("error loading schemas: %w", err)
	}
	return &Runner{
		Config:   cfg,
		Out:      out,
		Dial:     DialMongo,
		Schemas:  schemas,
		Now:      time.Now,
		NewRunID: uuid.NewString,
	}, nil
}

func (r *Runner) connect(ctx context.Context, appName string) (Backend, error) {
	if err := r.Config.Validate(); err != nil {
		return nil, err
	}
	dbName, err := r.Config.DatabaseName()
	if err != nil {
		return nil, err
	}

	backend, err := r.Dial(ctx, database.MongoConfig{
		URI:      r.Config.MongoDB.URI,
		Database: dbName,
		Timeout:  r.Config.ConnectTimeout(),
		AppName:  appName,
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(r.Out, "✅ MongoDB connection successful.")
	return backend, nil
}

func (r *Runner) disconnect(backend Backend) {
	if err := backend.Disconnect(context.Background()); err != nil {
		log.Printf("⚠️  Warning: error closing MongoDB connection: %v", err)
		return
	}
	fmt.Fprintln(r.Out, "MongoDB connection closed.")
}

// pushMetrics marca el éxito y empuja; un Pushgateway caído no falla el job
func (r *Runner) pushMetrics(ctx context.Context, m *metrics.JobMetrics) {
	m.MarkSuccess(r.Now())
	if err := m.Push(ctx, r.Config.Metrics.PushgatewayURL); err != nil {
		log.Printf("⚠️  Warning: %v", err)
	}
}

func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrUnreadable, path)
	}
	return nil
}
