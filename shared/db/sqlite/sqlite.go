package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/dfryer1193/wizardry/shared/db"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

type SQLiteConfig struct {
	Path string `env:"SQLITE_DB_PATH" envDefault:"./wizardry.db"`
}

// NewSQLiteConfig reads the database path from SQLITE_DB_PATH, defaulting to
// ./wizardry.db.
func NewSQLiteConfig() (*SQLiteConfig, error) {
	cfg := &SQLiteConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sqlite config: %w", err)
	}
	return cfg, nil
}

var _ db.Database = (*SQLiteDB)(nil)

// SQLiteDB implements db.Database for SQLite
type SQLiteDB struct {
	dbPath string
	db     *sql.DB
}

func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	return &SQLiteDB{
		dbPath: cfg.Path,
	}
}

// Connect opens the database, applies pragmas and runs pending migrations.
func (s *SQLiteDB) Connect() error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}

	conn, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if s.dbPath == memoryPath {
		// each pooled connection would otherwise get its own empty database
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-64000",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.db = conn
	return nil
}

func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

// SchemaVersion reports the highest applied migration version.
func (s *SQLiteDB) SchemaVersion() (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not connected")
	}
	return currentVersion(s.db)
}
