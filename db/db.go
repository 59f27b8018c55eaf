package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const dbDriver = "sqlite3"

// Open opens the SQLite database at path, creating its directory and tables if
// they don't exist. WAL and a busy timeout let the bot and web processes share
// the file.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data dir %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	conn, err := sql.Open(dbDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// createTables is defined in migrate.go
	if err := createTables(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}
