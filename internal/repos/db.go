package repos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "stockroom/internal/log"
)

// TimeLayout is fixed width and always UTC, so comparing stored timestamps as
// text gives the same order as comparing the instants.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Timestamp formats t for storage.
func Timestamp(t time.Time) string { return t.UTC().Format(TimeLayout) }

// OpenDB opens the sqlite database, applies the schema and optionally seeds a
// demo shop.
func OpenDB(dsn string, seed bool) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", withForeignKeys(dsn))
	if err != nil {
		return nil, err
	}
	// One connection: ":memory:" databases are per connection, and sqlite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if seed {
		if err := seedIfEmpty(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// withForeignKeys asks the driver to enable foreign keys on every connection
// it opens, not only the one that ran the schema.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// InTx runs fn inside a transaction, committing when fn returns nil.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Shops & membership
CREATE TABLE IF NOT EXISTS shops(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  created_at TEXT
);

CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('Manager','StockClerk','SalesPerson')),
  created_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_nocase ON users(LOWER(username));

CREATE TABLE IF NOT EXISTS shop_members(
  shop_id INTEGER NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY (shop_id, user_id)
);

CREATE TABLE IF NOT EXISTS sessions(
  token TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  role TEXT NOT NULL,
  shop_id INTEGER NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
  created_at TEXT,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Catalog
CREATE TABLE IF NOT EXISTS categories(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  shop_id INTEGER NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
  quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
  price TEXT NOT NULL,             -- decimal(10,2) as text
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_shop ON products(shop_id);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(shop_id, LOWER(name));

CREATE TABLE IF NOT EXISTS stock_alerts(
  product_id INTEGER PRIMARY KEY REFERENCES products(id) ON DELETE CASCADE,
  threshold INTEGER NOT NULL DEFAULT 2 CHECK (threshold >= 0),
  is_alerted INTEGER NOT NULL DEFAULT 0
);

-- Sales
CREATE TABLE IF NOT EXISTS sales(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  shop_id INTEGER NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
  product_id INTEGER REFERENCES products(id) ON DELETE SET NULL,
  product_name TEXT NOT NULL,
  quantity_sold INTEGER NOT NULL CHECK (quantity_sold > 0),
  total_price TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sales_shop_created ON sales(shop_id, created_at);

-- Audit trail (append-only)
CREATE TABLE IF NOT EXISTS audit_logs(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
  shop_id INTEGER,
  action TEXT NOT NULL CHECK (action IN ('LOGIN','LOGOUT','CREATE','UPDATE','DELETE','VIEW','SALE','HOMEPAGE')),
  model TEXT,
  object_id TEXT,
  details TEXT NOT NULL DEFAULT '{}',
  ip_address TEXT,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_shop ON audit_logs(shop_id, id);
`
	_, err := db.Exec(schema)
	return err
}

// Demo credentials; every seeded user has this password.
const DemoPassword = "Passw0rd!"

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM shops`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info("seed: inserting demo shop, staff and products")

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := Timestamp(time.Now())

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO shops(id,name,created_at) VALUES (1,'Corner Store',?), (2,'Harbor Goods',?)`, now, now)

	tx.MustExec(`INSERT INTO users(id,username,name,password_hash,role,created_at) VALUES
	  (1,'manager','Mona Manager',?,'Manager',?),
	  (2,'clerk','Cal Clerk',?,'StockClerk',?),
	  (3,'seller','Sam Seller',?,'SalesPerson',?),
	  (4,'harbor','Hal Harbor',?,'Manager',?)`,
		string(hash), now, string(hash), now, string(hash), now, string(hash), now)

	tx.MustExec(`INSERT INTO shop_members(shop_id,user_id) VALUES (1,1),(1,2),(1,3),(2,4)`)

	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  (1,'Beverages'),
	  (2,'Snacks'),
	  (3,'Household')`)

	tx.MustExec(`INSERT INTO products(id,shop_id,name,category_id,quantity,price,created_at,updated_at) VALUES
	  (1,1,'Sparkling Water 500ml',1,24,'1.25',?,?),
	  (2,1,'Salted Crisps',2,10,'2.10',?,?),
	  (3,1,'Dish Soap',3,5,'3.99',?,?),
	  (4,2,'Rope 10m',3,7,'12.50',?,?)`,
		now, now, now, now, now, now, now, now)

	tx.MustExec(`INSERT INTO stock_alerts(product_id,threshold,is_alerted) VALUES (1,2,0),(2,2,0),(3,2,0),(4,2,0)`)

	return tx.Commit()
}
