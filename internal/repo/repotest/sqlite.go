// Package repotest opens throwaway sqlite databases carrying the storefront
// tables, for repository tests.
package repotest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS owners (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS shoppers (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  rfid_tag TEXT NOT NULL DEFAULT '',
  dietary_preferences TEXT,
  username TEXT NOT NULL DEFAULT '',
  timestamp DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  "Product" TEXT NOT NULL,
  "Description" TEXT NOT NULL DEFAULT '',
  "Price" NUMERIC NOT NULL DEFAULT 0,
  "Category" TEXT NOT NULL DEFAULT '',
  "Subcategory" TEXT NOT NULL DEFAULT '',
  "Stock" INTEGER NOT NULL DEFAULT 0,
  "Aisle" TEXT NOT NULL DEFAULT '',
  "Popular" INTEGER NOT NULL DEFAULT 0,
  image_url TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS shopping_list (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  shopper_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  scanned INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`

// Open returns an isolated in-memory database with the storefront tables.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(schema).Error)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// one connection keeps concurrent writers from hitting shared-cache table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}
