package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the statements that bring a fresh database up to the
// current layout.  Every statement is idempotent so Migrate can run on
// each startup.  available_seats is the stored capacity counter; sold is
// always derived from it.  The unique key on (title, location, day)
// backs the duplicate-listing check in the event repository.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username VARCHAR(64) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		preferred_name VARCHAR(64) NOT NULL,
		role VARCHAR(10) NOT NULL DEFAULT 'USER',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id),
		UNIQUE KEY uniq_username (username)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS events (
		event_id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title VARCHAR(128) NOT NULL,
		day CHAR(3) NOT NULL,
		location VARCHAR(128) NOT NULL,
		price DECIMAL(10,2) NOT NULL DEFAULT 0,
		total_seats INT NOT NULL,
		available_seats INT NOT NULL,
		enabled TINYINT(1) NOT NULL DEFAULT 1,
		PRIMARY KEY (event_id),
		UNIQUE KEY uniq_listing (title, location, day),
		CONSTRAINT chk_seats CHECK (available_seats >= 0 AND available_seats <= total_seats)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		order_date DATETIME NOT NULL,
		total_price DECIMAL(10,2) NOT NULL,
		PRIMARY KEY (order_id),
		KEY idx_orders_user (user_id),
		CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (user_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		order_id BIGINT UNSIGNED NOT NULL,
		event_id BIGINT UNSIGNED NOT NULL,
		quantity INT NOT NULL,
		price_per_ticket DECIMAL(10,2) NOT NULL,
		event_title VARCHAR(128) NOT NULL,
		event_venue VARCHAR(128) NOT NULL,
		event_day CHAR(3) NOT NULL,
		PRIMARY KEY (id),
		KEY idx_items_order (order_id),
		CONSTRAINT fk_items_order FOREIGN KEY (order_id) REFERENCES orders (order_id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
}

// Migrate applies the schema statements in order.  order_items carries
// snapshot copies of the event's title, venue and day on purpose: no
// foreign key points at events, so deleting a listing never touches
// order history.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
