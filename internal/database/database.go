package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"price-tracker/internal/models"
)

// ErrNotFound is returned when no alert has the requested id.
var ErrNotFound = errors.New("alert not found")

const alertColumns = "id, url, platform, target_price, last_price, recipient, created_at, last_checked, is_active"

// DB is the SQLite-backed alert store.
type DB struct {
	conn *sqlx.DB
}

// New opens the database at dbPath and creates the schema if needed.
func New(dbPath string) (*DB, error) {
	conn, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer; this also keeps ":memory:" on a single database.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// NewWithConn wraps an existing connection without touching the schema.
func NewWithConn(conn *sqlx.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS price_alerts (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		platform TEXT NOT NULL,
		target_price REAL NOT NULL CHECK (target_price > 0),
		last_price REAL,
		recipient TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		last_checked DATETIME,
		is_active BOOLEAN NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_price_alerts_is_active ON price_alerts(is_active);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Create inserts a new alert.
func (db *DB) Create(ctx context.Context, alert *models.Alert) error {
	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO price_alerts (`+alertColumns+`)
		VALUES (:id, :url, :platform, :target_price, :last_price, :recipient, :created_at, :last_checked, :is_active)`,
		alert,
	)
	if err != nil {
		return fmt.Errorf("insert alert %s: %w", alert.ID, err)
	}
	return nil
}

// GetByID returns one alert, active or not.
func (db *DB) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	var alert models.Alert
	err := db.conn.GetContext(ctx, &alert, "SELECT "+alertColumns+" FROM price_alerts WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alert %s: %w", id, err)
	}
	return &alert, nil
}

// ListActive returns every active alert in creation order.
func (db *DB) ListActive(ctx context.Context) ([]models.Alert, error) {
	alerts := []models.Alert{}
	err := db.conn.SelectContext(ctx, &alerts,
		"SELECT "+alertColumns+" FROM price_alerts WHERE is_active = 1 ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	return alerts, nil
}

// UpdatePrice records a successful check.
func (db *DB) UpdatePrice(ctx context.Context, id string, price float64, checkedAt time.Time) error {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE price_alerts SET last_price = ?, last_checked = ? WHERE id = ?",
		price, checkedAt.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update price for alert %s: %w", id, err)
	}
	return requireRow(res, id)
}

// Deactivate soft-removes an alert; the row is kept.
func (db *DB) Deactivate(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, "UPDATE price_alerts SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deactivate alert %s: %w", id, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for alert %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
