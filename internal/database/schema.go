package database

import "fmt"

// The store holds four entity tables plus a build_info provenance table.
// Identifiers are fixed-width ten-character strings, enforced with CHECK
// constraints. Each loaded row carries a seq column recording its position
// in the source extract, so first-occurrence and tie-break rules stay
// reproducible inside SQL.
//
// Foreign keys between the tables are informational: clicks may reference
// SKUs that were never ordered, so neither backend declares them.

var sqliteSchema = []string{
	`CREATE TABLE orders (
		order_ID TEXT NOT NULL CHECK (LENGTH(order_ID) = 10),
		sku_ID TEXT NOT NULL CHECK (LENGTH(sku_ID) = 10),
		user_ID TEXT NOT NULL CHECK (LENGTH(user_ID) = 10),
		order_time DATETIME NOT NULL,
		quantity INTEGER NOT NULL,
		final_unit_price REAL NOT NULL,
		seq INTEGER NOT NULL,
		PRIMARY KEY (order_ID, sku_ID)
	)`,

	`CREATE TABLE delivery (
		order_ID TEXT NOT NULL CHECK (LENGTH(order_ID) = 10),
		package_ID TEXT NOT NULL CHECK (LENGTH(package_ID) = 10),
		ship_out_time DATETIME NOT NULL,
		seq INTEGER NOT NULL,
		PRIMARY KEY (order_ID, package_ID)
	)`,

	`CREATE TABLE clicks (
		user_ID TEXT NOT NULL CHECK (LENGTH(user_ID) = 10),
		sku_ID TEXT NOT NULL CHECK (LENGTH(sku_ID) = 10),
		request_time DATETIME NOT NULL,
		seq INTEGER NOT NULL
	)`,

	`CREATE TABLE users (
		user_ID TEXT NOT NULL CHECK (LENGTH(user_ID) = 10),
		plus INTEGER NOT NULL CHECK (plus IN (0, 1)),
		seq INTEGER NOT NULL,
		PRIMARY KEY (user_ID)
	)`,

	`CREATE TABLE build_info (
		run_ID TEXT NOT NULL,
		table_name TEXT NOT NULL,
		source_file TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		rows_dropped INTEGER NOT NULL,
		built_at DATETIME NOT NULL,
		PRIMARY KEY (run_ID, table_name)
	)`,

	`CREATE INDEX orders_user_index ON orders (user_ID)`,
	`CREATE INDEX clicks_user_index ON clicks (user_ID)`,
	`CREATE INDEX clicks_sku_index ON clicks (sku_ID)`,
}

var mysqlSchema = []string{
	`CREATE TABLE orders (
		order_ID VARCHAR(10) NOT NULL,
		sku_ID VARCHAR(10) NOT NULL,
		user_ID VARCHAR(10) NOT NULL,
		order_time DATETIME NOT NULL,
		quantity INT NOT NULL,
		final_unit_price DOUBLE NOT NULL,
		seq BIGINT NOT NULL,
		PRIMARY KEY (order_ID, sku_ID),
		CONSTRAINT orders_id_len CHECK (CHAR_LENGTH(order_ID) = 10),
		CONSTRAINT orders_sku_len CHECK (CHAR_LENGTH(sku_ID) = 10),
		CONSTRAINT orders_user_len CHECK (CHAR_LENGTH(user_ID) = 10),
		INDEX orders_user_index (user_ID)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE delivery (
		order_ID VARCHAR(10) NOT NULL,
		package_ID VARCHAR(10) NOT NULL,
		ship_out_time DATETIME NOT NULL,
		seq BIGINT NOT NULL,
		PRIMARY KEY (order_ID, package_ID),
		CONSTRAINT delivery_id_len CHECK (CHAR_LENGTH(order_ID) = 10),
		CONSTRAINT delivery_pkg_len CHECK (CHAR_LENGTH(package_ID) = 10)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE clicks (
		user_ID VARCHAR(10) NOT NULL,
		sku_ID VARCHAR(10) NOT NULL,
		request_time DATETIME NOT NULL,
		seq BIGINT NOT NULL,
		CONSTRAINT clicks_user_len CHECK (CHAR_LENGTH(user_ID) = 10),
		CONSTRAINT clicks_sku_len CHECK (CHAR_LENGTH(sku_ID) = 10),
		INDEX clicks_user_index (user_ID),
		INDEX clicks_sku_index (sku_ID)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE users (
		user_ID VARCHAR(10) NOT NULL,
		plus TINYINT NOT NULL,
		seq BIGINT NOT NULL,
		PRIMARY KEY (user_ID),
		CONSTRAINT users_id_len CHECK (CHAR_LENGTH(user_ID) = 10),
		CONSTRAINT users_plus_domain CHECK (plus IN (0, 1))
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE build_info (
		run_ID VARCHAR(36) NOT NULL,
		table_name VARCHAR(64) NOT NULL,
		source_file VARCHAR(255) NOT NULL,
		row_count BIGINT NOT NULL,
		rows_dropped BIGINT NOT NULL,
		built_at DATETIME NOT NULL,
		PRIMARY KEY (run_ID, table_name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Tables lists the entity tables in load order.
var Tables = []string{"orders", "delivery", "clicks", "users"}

// CreateSchema creates the four entity tables, the supporting indexes, and
// the build_info table. The store must be empty.
func (db *DB) CreateSchema() error {
	statements := sqliteSchema
	if db.driver == DriverMySQL {
		statements = mysqlSchema
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

func (db *DB) dropTables() error {
	tables := append([]string{"build_info"}, Tables...)
	for _, table := range tables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
