package persistence

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed migrations/0001_init.up.sql
var migration0001Up string

// migrationLockKey serializes migration DDL across concurrent
// processes so simultaneous bootstraps do not race on the catalog.
const migrationLockKey = int64(52190841730529)

func MigratePostgres(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("nil database handle")
	}
	// Advisory locks are session-scoped, so the lock, the DDL, and the
	// unlock must all run on the same connection.
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockKey)
	}()

	if _, err := conn.ExecContext(ctx, migration0001Up); err != nil {
		return fmt.Errorf("apply migration 0001_init.up.sql: %w", err)
	}
	return nil
}
