// Package sampledb opens the AdventureWorks sample database the samples run
// against and loads its fixed data set.
//
// SQLite is the default: the four AdventureWorks schemas are attached to
// every connection, so Production.Product resolves the same way it does on
// MySQL, where each schema is a database.
package sampledb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Schemas 示例库用到的全部 schema
var Schemas = []string{"Production", "Sales", "Person", "HumanResources"}

type DBOption func(db *DB)

type DB struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

func WithLogger(l *zap.Logger) DBOption {
	return func(db *DB) {
		db.logger = l
	}
}

// Open opens the sample database for driver ("sqlite3" or "mysql") and pings it.
// An empty dsn with sqlite3 means a private in-memory database.
func Open(ctx context.Context, driverName, dsn string, opts ...DBOption) (*DB, error) {
	dialect, err := DialectOf(driverName)
	if err != nil {
		return nil, err
	}

	var sqlDB *sql.DB
	switch dialect {
	case MySQL:
		sqlDB, err = openMySQL(dsn)
	default:
		sqlDB = openSQLite3(dsn)
	}
	if err != nil {
		return nil, err
	}

	db := OpenDB(sqlDB, dialect, opts...)
	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	db.logger.Debug("sampledb: opened", zap.String("driver", dialect.DriverName()))
	return db, nil
}

// OpenDB wraps an already opened *sql.DB.
func OpenDB(sqlDB *sql.DB, dialect Dialect, opts ...DBOption) *DB {
	db := &DB{
		db:      sqlDB,
		dialect: dialect,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

func (db *DB) SQL() *sql.DB {
	return db.db
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

func (db *DB) Close() error {
	return db.db.Close()
}

func openMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	// 建表脚本需要一次执行多条语句，DATETIME 要解析成 time.Time
	cfg.ParseTime = true
	cfg.MultiStatements = true
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

func openSQLite3(dsn string) *sql.DB {
	if dsn == "" {
		dsn = ":memory:"
	}
	c := &sqlite3Connector{
		dsn: dsn,
		driver: &sqlite3.SQLiteDriver{
			ConnectHook: attachSchemas(dsn),
		},
	}
	db := sql.OpenDB(c)
	// 内存库每个连接都是独立的，只能有一个连接
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	return db
}

// attachSchemas 每个新连接都要 ATTACH 一遍
func attachSchemas(dsn string) func(conn *sqlite3.SQLiteConn) error {
	return func(conn *sqlite3.SQLiteConn) error {
		for _, schema := range Schemas {
			target := ":memory:"
			if !isMemory(dsn) {
				target = attachPath(dsn, schema)
			}
			if _, err := conn.Exec("ATTACH DATABASE ? AS "+schema, []driver.Value{target}); err != nil {
				return err
			}
		}
		return nil
	}
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// attachPath aw.db -> aw.Production.db
func attachPath(dsn, schema string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + schema + ext
}

// sqlite3Connector 让每个 *sql.DB 带自己的 ConnectHook，不用全局 sql.Register
type sqlite3Connector struct {
	dsn    string
	driver *sqlite3.SQLiteDriver
}

func (c *sqlite3Connector) Connect(context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

func (c *sqlite3Connector) Driver() driver.Driver {
	return c.driver
}
