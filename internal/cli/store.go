package cli

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"klondike/internal/persistence"
)

// openPostgresStore connects to the simulation store, applies pending
// migrations, and returns the repository with its close func.
func openPostgresStore(ctx context.Context, dsn string) (persistence.Repository, func(), error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	if err := persistence.MigratePostgres(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return persistence.NewPostgresRepository(db), func() { _ = db.Close() }, nil
}
