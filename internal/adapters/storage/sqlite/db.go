// Package sqlite guarda medicamentos y recordatorios en un archivo SQLite (modo single-node
// sin Postgres). Usa sqlx sobre el driver mattn/go-sqlite3.
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS medications (
	id             TEXT PRIMARY KEY,
	user_id        TEXT     NOT NULL,
	name           TEXT     NOT NULL,
	dosage         TEXT     NOT NULL DEFAULT '',
	frequency      TEXT     NOT NULL,
	start_date     DATETIME NOT NULL,
	end_date       DATETIME,
	notes          TEXT     NOT NULL DEFAULT '',
	reminder_times TEXT     NOT NULL DEFAULT '[]',
	is_active      BOOLEAN  NOT NULL DEFAULT 1,
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_medications_user ON medications (user_id);

CREATE TABLE IF NOT EXISTS reminders (
	id              TEXT PRIMARY KEY,
	user_id         TEXT     NOT NULL,
	medication_id   TEXT     NOT NULL,
	medication_name TEXT     NOT NULL DEFAULT '',
	dosage          TEXT     NOT NULL DEFAULT '',
	reminder_time   TEXT     NOT NULL,
	active          BOOLEAN  NOT NULL DEFAULT 1,
	created_at      DATETIME NOT NULL,
	last_triggered  DATETIME,
	next_trigger    DATETIME
);
CREATE INDEX IF NOT EXISTS idx_reminders_medication ON reminders (medication_id);
`

// Open abre (o crea) la base en path y aplica el schema. ":memory:" sirve para tests.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite connect: %w", err)
	}
	// SQLite serializa escrituras; una conexión evita "database is locked" y
	// mantiene una sola base para ":memory:".
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return db, nil
}
