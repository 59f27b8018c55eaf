package db

import (
	"database/sql"
	"fmt"
)

// createTables 如果数据库中不存在必要的表，则创建它们
func createTables(conn *sql.DB) error {
	// 用于创建 'verified_users' 表的 SQL 语句
	createVerifiedUsersTableSQL := `
	CREATE TABLE IF NOT EXISTS verified_users (
		user_id TEXT PRIMARY KEY,
		username TEXT,
		first_verified TEXT NOT NULL,
		last_verified TEXT NOT NULL
	);`

	if _, err := conn.Exec(createVerifiedUsersTableSQL); err != nil {
		return fmt.Errorf("create verified_users table: %w", err)
	}

	return nil
}
