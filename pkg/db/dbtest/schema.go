package dbtest

// schema mirrors pkg/migrate/migrations for sqlite. Dates are stored as
// DATETIME so the driver round-trips time.Time values.
var schema = []string{
	`CREATE TABLE brands (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE stores (
		id TEXT PRIMARY KEY,
		brand_id TEXT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		location TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE media_items (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		dimensions TEXT,
		format TEXT,
		base_price TEXT NOT NULL DEFAULT '0',
		lease_duration_days INTEGER NOT NULL DEFAULT 1,
		capacity INTEGER,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE media_spaces (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
		media_item_id TEXT NOT NULL REFERENCES media_items(id),
		status TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'leased')),
		photo_url TEXT,
		info TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL DEFAULT 'ADVERTISER',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		created_at DATETIME
	)`,
	`CREATE TABLE statuses (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`INSERT INTO statuses (id, name) VALUES
		(1, 'Recibido'),
		(2, 'Asignado'),
		(3, 'Encendido'),
		(4, 'Evidencia Enviada'),
		(5, 'Reporte Enviado'),
		(6, 'Facturado'),
		(7, 'Completado')`,
	`CREATE TABLE leases (
		id TEXT PRIMARY KEY,
		media_space_id TEXT NOT NULL REFERENCES media_spaces(id),
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		customer_name TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		amount TEXT NOT NULL DEFAULT '0',
		status_id INTEGER NOT NULL DEFAULT 1 REFERENCES statuses(id),
		created_at DATETIME,
		updated_at DATETIME,
		CHECK (start_date <= end_date)
	)`,
	`CREATE TABLE lease_extra_information (
		id TEXT PRIMARY KEY,
		lease_id TEXT NOT NULL UNIQUE REFERENCES leases(id) ON DELETE CASCADE,
		provider_info TEXT,
		product_details TEXT,
		campaign_redirect TEXT,
		marketing_goals TEXT,
		disclaimer TEXT,
		product_url TEXT,
		target_audience TEXT,
		brand_graphics TEXT,
		provider_contact TEXT,
		billing_type TEXT,
		gift_campaign_details TEXT,
		plan_a_la_medida TEXT,
		plan_a_la_medida_amount TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		link TEXT,
		read_at DATETIME,
		created_at DATETIME
	)`,
	`CREATE TABLE notification_settings (
		id TEXT PRIMARY KEY,
		brand_id TEXT NOT NULL UNIQUE REFERENCES brands(id) ON DELETE CASCADE,
		email TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}
