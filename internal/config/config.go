package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Errores de configuración
var (
	ErrMissingURI      = errors.New("MONGODB_URI is not set in the environment (load it from .env.local or set it)")
	ErrMissingDatabase = errors.New("database name not found in MONGODB_URI and MONGODB_DB not set")
)

// Config contiene toda la configuración de los jobs administrativos
type Config struct {
	Environment string        `yaml:"environment"`
	MongoDB     MongoDBConfig `yaml:"mongodb"`
	Jobs        JobsConfig    `yaml:"jobs"`
	Aliases     AliasesConfig `yaml:"aliases"`
	Metrics     MetricsConfig `yaml:"metrics"`

	// Ruta del archivo YAML efectivamente cargado ("" si no existe)
	Source string `yaml:"-"`
}

// MongoDBConfig configuración específica de MongoDB
type MongoDBConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
	Timeout  string `yaml:"timeout"`
}

// JobsConfig configuración por job
type JobsConfig struct {
	DeleteUsers  DeleteUsersConfig  `yaml:"delete_users"`
	ImportScrap  ImportScrapConfig  `yaml:"import_scrap"`
	MigrateUsers MigrateUsersConfig `yaml:"migrate_users"`
	Maintenance  MaintenanceConfig  `yaml:"maintenance"`
}

// DeleteUsersConfig configuración del borrado masivo de usuarios
type DeleteUsersConfig struct {
	Collection string `yaml:"collection"`
	Role       string `yaml:"role"`
}

// ImportScrapConfig configuración de la importación de items de scrap
type ImportScrapConfig struct {
	Collection     string `yaml:"collection"`
	DefaultFile    string `yaml:"default_file"`
	HeaderScanRows int    `yaml:"header_scan_rows"`
}

// MigrateUsersConfig configuración de la migración de empleados
type MigrateUsersConfig struct {
	Collection      string `yaml:"collection"`
	DefaultFile     string `yaml:"default_file"`
	DefaultPassword string `yaml:"-"`
	EmailDomain     string `yaml:"email_domain"`
	Role            string `yaml:"role"`
}

// MaintenanceConfig configuración de los jobs de mantenimiento de items
type MaintenanceConfig struct {
	Collection string `yaml:"collection"`
}

// AliasesConfig grafías extra de cabeceras, por campo canónico
type AliasesConfig struct {
	Items map[string][]string `yaml:"items"`
	Users map[string][]string `yaml:"users"`
}

// MetricsConfig configuración del push de métricas
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
}

// LoadEnvFiles carga .env.local y .env desde dir sin sobrescribir variables
// ya presentes en el entorno. .env.local tiene prioridad sobre .env.
func LoadEnvFiles(dir string) {
	var files []string
	for _, name := range []string{".env.local", ".env"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return
	}
	if err := godotenv.Load(files...); err != nil {
		log.Printf("⚠️  Warning: error loading env files: %v", err)
	}
}

// LoadConfig carga la configuración desde variables de entorno y el archivo YAML opcional
func LoadConfig() (*Config, error) {
	config := defaultConfig()

	configFile := getEnv("ADMIN_CONFIG", "configs/admin.yaml")
	if fileExists(configFile) {
		if err := loadYAML(configFile, config); err != nil {
			return nil, err
		}
		config.Source = configFile
	}

	// Las variables de entorno tienen prioridad sobre el YAML
	config.Environment = getEnv("ENVIRONMENT", config.Environment)
	config.MongoDB.URI = getEnv("MONGODB_URI", config.MongoDB.URI)
	config.MongoDB.Database = getEnv("MONGODB_DB", config.MongoDB.Database)
	config.MongoDB.Timeout = getEnv("MONGODB_TIMEOUT", config.MongoDB.Timeout)
	config.Metrics.PushgatewayURL = getEnv("PUSHGATEWAY_URL", config.Metrics.PushgatewayURL)
	config.Jobs.MigrateUsers.DefaultPassword = getEnv("MIGRATE_DEFAULT_PASSWORD", config.Jobs.MigrateUsers.DefaultPassword)

	if _, err := time.ParseDuration(config.MongoDB.Timeout); err != nil {
		return nil, fmt.Errorf("invalid MONGODB_TIMEOUT %q: %w", config.MongoDB.Timeout, err)
	}

	return config, nil
}

// Validate comprueba la configuración obligatoria para conectarse
func (c *Config) Validate() error {
	if strings.TrimSpace(c.MongoDB.URI) == "" {
		return ErrMissingURI
	}
	if _, err := c.DatabaseName(); err != nil {
		return err
	}
	return nil
}

// DatabaseName resuelve el nombre de la base de datos: MONGODB_DB explícito,
// luego el path de la URI.
func (c *Config) DatabaseName() (string, error) {
	if c.MongoDB.Database != "" {
		return c.MongoDB.Database, nil
	}
	if db := databaseFromURI(c.MongoDB.URI); db != "" {
		return db, nil
	}
	return "", ErrMissingDatabase
}

// databaseFromURI extrae "/<db>" de una URI mongodb:// o mongodb+srv:// sin
// resolver registros SRV.
func databaseFromURI(uri string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}
	i := strings.Index(rest, "/")
	if i < 0 {
		return ""
	}
	db, err := url.PathUnescape(rest[i+1:])
	if err != nil {
		return ""
	}
	return db
}

// ConnectTimeout retorna el timeout de conexión ya parseado
func (c *Config) ConnectTimeout() time.Duration {
	d, err := time.ParseDuration(c.MongoDB.Timeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

func loadYAML(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// defaultConfig retorna la configuración por defecto
func defaultConfig() *Config {
	return &Config{
		Environment: "development",
		MongoDB: MongoDBConfig{
			Timeout: "5s",
		},
		Jobs: JobsConfig{
			DeleteUsers: DeleteUsersConfig{
				Collection: "users",
				Role:       "user",
			},
			ImportScrap: ImportScrapConfig{
				Collection:     "items",
				DefaultFile:    "scrap.xlsx",
				HeaderScanRows: 10,
			},
			MigrateUsers: MigrateUsersConfig{
				Collection:      "users",
				DefaultFile:     "users.csv",
				DefaultPassword: "123456",
				EmailDomain:     "gmail.com",
				Role:            "staff",
			},
			Maintenance: MaintenanceConfig{
				Collection: "items",
			},
		},
	}
}

// LogConfigSummary escribe un resumen de la configuración cargada
func (c *Config) LogConfigSummary(w io.Writer) {
	db, err := c.DatabaseName()
	if err != nil {
		db = "<unset>"
	}
	fmt.Fprintf(w, "📋 Configuration Summary:\n")
	fmt.Fprintf(w, "   Environment: %s\n", c.Environment)
	fmt.Fprintf(w, "   MongoDB: %s (Database: %s, timeout %s)\n", redactURI(c.MongoDB.URI), db, c.MongoDB.Timeout)
	if c.Source != "" {
		fmt.Fprintf(w, "   Config file: %s\n", c.Source)
	}
	if c.Metrics.PushgatewayURL != "" {
		fmt.Fprintf(w, "   Pushgateway: %s\n", c.Metrics.PushgatewayURL)
	}
}

// redactURI oculta la contraseña de la URI para poder imprimirla
func redactURI(uri string) string {
	scheme := strings.Index(uri, "://")
	at := strings.LastIndex(uri, "@")
	if scheme < 0 || at < scheme {
		return uri
	}
	creds := uri[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		return uri[:scheme+3] + creds[:i] + ":****" + uri[at:]
	}
	return uri
}

// fileExists verifica si un archivo existe
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}

// getEnv obtiene una variable de entorno con un valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
