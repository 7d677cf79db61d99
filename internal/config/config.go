package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB     DBConfig
	Server ServerConfig
	Auth   AuthConfig
	Strava StravaConfig
	Ingest IngestConfig
	Seeder SeederConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// QueryTimeout bounds every store call so a stuck connection cannot
	// block a request forever.
	QueryTimeout time.Duration
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// AuthConfig holds settings for bearer-token verification.
type AuthConfig struct {
	JWTSecret string
}

// StravaConfig holds the OAuth application credentials for activity import.
type StravaConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// IngestConfig holds the geospatial correlation settings.
type IngestConfig struct {
	// CorrelationRadiusM is how close (in meters) a mountain summit must be
	// to an activity path to count as ascended. The legacy system had both
	// 25 and 50 in different code paths; 50 is the default here and the
	// value stays configurable until product settles it.
	CorrelationRadiusM float64
	// NearbyDefaultRadiusM is the radius used when a nearby-mountains query
	// asks for the default rather than an explicit value.
	NearbyDefaultRadiusM float64
}

// SeederConfig holds settings for catalogue import
type SeederConfig struct {
	CataloguePath string
	BatchSize     int
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		// SQLite in-memory database
		if c.Name != "" && c.Name != "summit" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	// PostgreSQL connection string
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	config := &Config{
		DB: DBConfig{
			Type:         dbType,
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "summit"),
			Password:     getEnv("DB_PASSWORD", "summit_password"),
			Name:         getEnv("DB_NAME", "summit"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			QueryTimeout: getEnvAsDuration("DB_QUERY_TIMEOUT", 10*time.Second),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Strava: StravaConfig{
			ClientID:     getEnv("STRAVA_CLIENT_ID", ""),
			ClientSecret: getEnv("STRAVA_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("STRAVA_REDIRECT_URL", "http://localhost:8080/api/v1/strava/authorize_callback"),
		},
		Ingest: IngestConfig{
			CorrelationRadiusM:   getEnvAsFloat("INGEST_CORRELATION_RADIUS_M", 50),
			NearbyDefaultRadiusM: getEnvAsFloat("NEARBY_DEFAULT_RADIUS_M", 30000),
		},
		Seeder: SeederConfig{
			CataloguePath: getEnv("SEEDER_CATALOGUE_PATH", "data/mountains.json"),
			BatchSize:     getEnvAsInt("SEEDER_BATCH_SIZE", 1000),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
