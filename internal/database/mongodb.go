package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotConnected se retorna al usar un Store ya cerrado
var ErrNotConnected = errors.New("mongodb client not initialized")

// MongoConfig configuración de una conexión de job
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
	AppName  string
}

// Store una conexión abierta a una base de datos
type Store struct {
	client   *mongo.Client
	database *mongo.Database
	name     string
}

// Connect establece la conexión con MongoDB y verifica que responda.
// Un fallo en el ping cierra el cliente antes de retornar.
func Connect(ctx context.Context, config MongoConfig) (*Store, error) {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	clientOptions := options.Client().ApplyURI(config.URI)
	clientOptions.SetConnectTimeout(config.Timeout)
	clientOptions.SetServerSelectionTimeout(config.Timeout)
	if config.AppName != "" {
		clientOptions.SetAppName(config.AppName)
	}

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("could not connect to MongoDB: %w", err)
	}

	// Comando administrativo trivial para verificar la conexión
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("could not reach MongoDB: %w", err)
	}

	log.Printf("✅ MongoDB connection successful - database: %s", config.Database)
	return &Store{
		client:   client,
		database: client.Database(config.Database),
		name:     config.Database,
	}, nil
}

// Disconnect cierra la conexión. Es seguro llamarlo más de una vez.
func (s *Store) Disconnect(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.client.Disconnect(ctx)
	s.client = nil
	s.database = nil
	if err != nil {
		return fmt.Errorf("error closing MongoDB connection: %w", err)
	}

	log.Println("🔌 MongoDB connection closed.")
	return nil
}

// Collection obtiene una colección de la base de datos configurada
func (s *Store) Collection(name string) (*mongo.Collection, error) {
	if s == nil || s.database == nil {
		return nil, ErrNotConnected
	}
	return s.database.Collection(name), nil
}

// DatabaseName nombre de la base de datos en uso
func (s *Store) DatabaseName() string {
	return s.name
}

// HealthCheck verifica el estado de la conexión
func (s *Store) HealthCheck(ctx context.Context) error {
	if s == nil || s.client == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("MongoDB is not responding: %w", err)
	}
	return nil
}
