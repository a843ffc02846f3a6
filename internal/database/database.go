// Package database opens the GORM connection and applies the schema.
package database

import (
	"embed"
	"fmt"
	"strings"

	"lifejournal/internal/logging"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var embedMigrations embed.FS

// Dialect names as understood by goose.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// DialectFor infers the database dialect from a connection URL. URLs
// starting with "sqlite:" or "file:" select SQLite; everything else is
// treated as a Postgres DSN.
func DialectFor(url string) string {
	if strings.HasPrefix(url, "sqlite:") || strings.HasPrefix(url, "file:") {
		return DialectSQLite
	}
	return DialectPostgres
}

// Open connects to the database named by url and runs the migrations.
func Open(url string) (*gorm.DB, error) {
	dialect := DialectFor(url)

	var dialector gorm.Dialector
	switch dialect {
	case DialectSQLite:
		dialector = sqlite.Open(strings.TrimPrefix(url, "sqlite:"))
	default:
		dialector = postgres.Open(url)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// A single connection keeps an in-memory database alive and
		// serialises writers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	logging.Info().Str("dialect", dialect).Msg("database connection established")

	if err := Migrate(db, dialect); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate applies the embedded goose migrations for dialect.
func Migrate(db *gorm.DB, dialect string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(sqlDB, "migrations/"+dialect); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}

	logging.Info().Str("dialect", dialect).Msg("migrations completed")
	return nil
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
