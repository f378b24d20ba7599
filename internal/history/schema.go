package history

import (
	"database/sql"

	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/logger"
)

const (
	SchemaVersion = 1

	// SQL statements derived from schema
	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS samples (
	       id          INTEGER PRIMARY KEY AUTOINCREMENT,
	       timestamp   INTEGER NOT NULL,
	       site        TEXT NOT NULL,
	       fan_id      TEXT NOT NULL,
	       temperature REAL NOT NULL,
	       speed       INTEGER NOT NULL CHECK (typeof(speed) = 'integer'),
	       power       REAL NOT NULL
	   );
	   CREATE INDEX IF NOT EXISTS samples_fan_time ON samples (fan_id, timestamp);
	   CREATE TABLE IF NOT EXISTS events (
	       id        TEXT PRIMARY KEY,
	       timestamp INTEGER NOT NULL,
	       fan_id    TEXT NOT NULL,
	       kind      TEXT NOT NULL CHECK (kind IN ('action', 'threshold_exceeded', 'threshold_normal')),
	       message   TEXT NOT NULL
	   );
	   CREATE INDEX IF NOT EXISTS events_fan_time ON events (fan_id, timestamp);`

	insertSampleSQL = `
    INSERT INTO samples (
        timestamp, site, fan_id, temperature, speed, power
    ) VALUES (?, ?, ?, ?, ?, ?)`

	insertEventSQL = `
    INSERT OR IGNORE INTO events (
        id, timestamp, fan_id, kind, message
    ) VALUES (?, ?, ?, ?, ?)`

	selectSamplesSQL = `
    SELECT timestamp, site, fan_id, temperature, speed, power
    FROM samples
    WHERE fan_id = ?
    ORDER BY timestamp DESC, id DESC
    LIMIT ?`

	selectEventsSQL = `
    SELECT id, timestamp, fan_id, kind, message
    FROM events
    WHERE (? = '' OR fan_id = ?)
    ORDER BY timestamp DESC, rowid DESC
    LIMIT ?`
)

// InitSchema creates a new database schema with the current version
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	log.Debug().Msg("Creating database...")

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	// Track transaction state
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				// Only log if it's not the "already committed" error
				if !errors.Is(err, sql.ErrTxDone) {
					log.Debug().Err(err).Msg("Failed to rollback transaction")
				}
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			SQL   string
		}{
			Error: err.Error(),
			SQL:   createTablesSQL,
		})
	}

	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "record_version",
		})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().
		Int("version", SchemaVersion).
		Msg("Schema initialized successfully")

	return nil
}

// GetSchemaVersion returns the current schema version, 0 for a new database
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(db, "schema_versions")
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errors.New().WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}
