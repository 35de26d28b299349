package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB represents our sqlite3 database file.
type DB struct{ *gorm.DB }

//go:embed schema.sql
var schema string

// LowerFunc is the SQL function that lowercases text the way
// strings.ToLower does. sqlite's own lower() only folds ASCII.
const LowerFunc = "ulower"

const driverName = "sqlite3_westie"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(LowerFunc, unicodeLower, true)
		},
	})
}

// unicodeLower passes NULLs and non-text values through unchanged.
func unicodeLower(v any) any {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		return strings.ToLower(string(s))
	}
	return v
}

// Open returns a connection to an existing sqlite3 database file. The
// serving path opens files this way, so a missing table stays missing.
func Open(filename string) (*DB, error) {
	gdb, err := gorm.Open(&sqlite.Dialector{
		DriverName: driverName,
		DSN:        filename + "?_busy_timeout=5000",
	}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening db file at '%s': %w", filename, err)
	}
	return &DB{gdb}, nil
}

// Create returns a connection to a migrated sqlite3 database file on disk,
// creating the file and running migrations if necessary.
func Create(filename string) (*DB, error) {
	db, err := Open(filename)
	if err != nil {
		return nil, err
	}
	if err := db.Exec(schema).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("error migrating db at '%s': %w", filename, err)
	}
	return db, nil
}

func (db *DB) Close() error {
	pool, err := db.DB.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}

func (db *DB) HasTable(name string) bool {
	return db.Migrator().HasTable(name)
}

func (db *DB) DropTables(ctx context.Context, names ...string) error {
	for _, name := range names {
		if err := db.WithContext(ctx).Exec("drop table if exists " + name).Error; err != nil {
			return fmt.Errorf("error dropping table '%s': %w", name, err)
		}
	}
	return nil
}

// Vacuum compacts the file after a build has dropped its scratch tables.
func (db *DB) Vacuum(ctx context.Context) error {
	if err := db.WithContext(ctx).Exec("vacuum").Error; err != nil {
		return fmt.Errorf("error vacuuming: %w", err)
	}
	return nil
}

func (db *DB) BuildInfo(ctx context.Context) (*data.BuildInfo, error) {
	var info data.BuildInfo
	if err := db.WithContext(ctx).
		Table(data.TableBuildInfo).
		Order("built_at desc").
		Limit(1).
		Scan(&info).
		Error; err != nil {
		return nil, fmt.Errorf("error reading build info: %w", err)
	}
	return &info, nil
}
