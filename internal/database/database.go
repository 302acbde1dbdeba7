package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"price-tracker/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// DB stores tracked products in SQLite
type DB struct {
	conn *sql.DB
}

// New opens the database file and creates the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// a single writer connection keeps upserts serialized
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	logrus.WithField("path", dbPath).Info("Database initialized")
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) init() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS tracked_products (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		native_id TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL,
		product_name TEXT NOT NULL,
		category TEXT,
		price REAL NOT NULL DEFAULT 0,
		sale_price REAL,
		sale_percent INTEGER,
		status TEXT NOT NULL DEFAULT 'fullprice',
		platform TEXT NOT NULL,
		currency TEXT NOT NULL,
		date_added DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (user_id, product_id)
	);
	CREATE INDEX IF NOT EXISTS idx_tracked_products_user ON tracked_products (user_id);
	`

	_, err := db.conn.Exec(createTableSQL)
	return err
}

const selectColumns = `SELECT id, user_id, product_id, native_id, url, product_name, category, price,
	sale_price, sale_percent, status, platform, currency, date_added, updated_at FROM tracked_products`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.TrackedProduct, error) {
	var p models.TrackedProduct
	var category sql.NullString
	var salePrice sql.NullFloat64
	var salePercent sql.NullInt64
	var status, platform string

	err := row.Scan(&p.ID, &p.UserID, &p.ProductID, &p.NativeID, &p.URL, &p.ProductName, &category, &p.Price,
		&salePrice, &salePercent, &status, &platform, &p.Currency, &p.DateAdded, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Category = category.String
	p.Status = models.Status(status)
	p.Platform = models.Platform(platform)
	if salePrice.Valid {
		v := salePrice.Float64
		p.SalePrice = &v
	}
	if salePercent.Valid {
		v := int(salePercent.Int64)
		p.SalePercent = &v
	}
	return &p, nil
}

// FindByProduct returns the record for (userID, productID), or nil when there is none
func (db *DB) FindByProduct(ctx context.Context, userID, productID string) (*models.TrackedProduct, error) {
	row := db.conn.QueryRowContext(ctx, selectColumns+" WHERE user_id = ? AND product_id = ?", userID, productID)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// FindByIdentifier looks a record up by storage id, product id or native id, in that order
func (db *DB) FindByIdentifier(ctx context.Context, userID, identifier string) (*models.TrackedProduct, error) {
	row := db.conn.QueryRowContext(ctx, selectColumns+`
		WHERE user_id = ? AND (id = ? OR product_id = ? OR native_id = ?)
		ORDER BY CASE WHEN id = ? THEN 0 WHEN product_id = ? THEN 1 ELSE 2 END
		LIMIT 1`,
		userID, identifier, identifier, identifier, identifier, identifier)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// Upsert inserts p, or updates the existing (user_id, product_id) row in a single statement.
// The stored id and date_added of an existing row are kept. It returns the stored record and
// whether it was created.
func (db *DB) Upsert(ctx context.Context, p *models.TrackedProduct) (*models.TrackedProduct, bool, error) {
	var salePrice sql.NullFloat64
	var salePercent sql.NullInt64
	if p.SalePrice != nil {
		salePrice = sql.NullFloat64{Float64: *p.SalePrice, Valid: true}
	}
	if p.SalePercent != nil {
		salePercent = sql.NullInt64{Int64: int64(*p.SalePercent), Valid: true}
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO tracked_products (id, user_id, product_id, native_id, url, product_name, category, price,
			sale_price, sale_percent, status, platform, currency, date_added, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, product_id) DO UPDATE SET
			url = excluded.url,
			product_name = excluded.product_name,
			category = excluded.category,
			price = excluded.price,
			sale_price = excluded.sale_price,
			sale_percent = excluded.sale_percent,
			status = excluded.status,
			platform = excluded.platform,
			currency = excluded.currency,
			updated_at = excluded.updated_at`,
		p.ID, p.UserID, p.ProductID, p.NativeID, p.URL, p.ProductName, p.Category, p.Price,
		salePrice, salePercent, string(p.Status), string(p.Platform), p.Currency,
		p.DateAdded.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, false, err
	}

	stored, err := db.FindByProduct(ctx, p.UserID, p.ProductID)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, sql.ErrNoRows
	}
	return stored, stored.ID == p.ID, nil
}

// Delete removes one record matching identifier. It reports false when nothing matched.
func (db *DB) Delete(ctx context.Context, userID, identifier string) (bool, error) {
	p, err := db.FindByIdentifier(ctx, userID, identifier)
	if err != nil || p == nil {
		return false, err
	}

	res, err := db.conn.ExecContext(ctx, "DELETE FROM tracked_products WHERE id = ? AND user_id = ?", p.ID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListByUser returns all records of a user, newest first
func (db *DB) ListByUser(ctx context.Context, userID string) ([]models.TrackedProduct, error) {
	rows, err := db.conn.QueryContext(ctx, selectColumns+" WHERE user_id = ? ORDER BY date_added DESC", userID)
	if err != nil {
		return nil, err
	}
	return scanAll(rows)
}

func scanAll(rows *sql.Rows) ([]models.TrackedProduct, error) {
	defer rows.Close()

	products := []models.TrackedProduct{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// ListAll returns every record, oldest first
func (db *DB) ListAll(ctx context.Context) ([]models.TrackedProduct, error) {
	rows, err := db.conn.QueryContext(ctx, selectColumns+" ORDER BY date_added ASC")
	if err != nil {
		return nil, err
	}
	return scanAll(rows)
}

// Ping checks the connection, used by the health endpoint
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.conn.PingContext(ctx)
}
