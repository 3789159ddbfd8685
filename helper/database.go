package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection parameters for Postgres.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// NewDatabaseConfiguration reads the database configuration from the
// environment (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME).
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	config := &DatabaseConfiguration{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
	}

	missing := []string{}
	if config.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if config.Port == "" {
		missing = append(missing, "DB_PORT")
	}
	if config.User == "" {
		missing = append(missing, "DB_USER")
	}
	if config.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if config.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return nil, NewError("database configuration", fmt.Errorf("missing environment variables: %v", missing))
	}

	return config, nil
}

// Database wraps a sql.DB connection with its logger.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
	Config   *DatabaseConfiguration
}

// NewDatabase opens a connection to Postgres and verifies it with a
// ping. It panics if the database is unreachable, as nothing can run
// without it.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.Default()
	}

	psqlInfo := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.Host,
		config.Port,
		config.User,
		config.Password,
		config.Name,
	)

	instance, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		log.Panicf("error opening database connection: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = instance.PingContext(ctx)
	if err != nil {
		log.Panicf("error pinging database: %v", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("port", config.Port))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
		Config:   config,
	}
}
