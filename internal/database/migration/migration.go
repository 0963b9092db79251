package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_tariffs",
		SQL: `CREATE TABLE IF NOT EXISTS tariffs (
  seq          BIGSERIAL        PRIMARY KEY,
  id           TEXT             NOT NULL UNIQUE,
  route        TEXT             NOT NULL,
  origin       TEXT             NOT NULL DEFAULT '',
  destination  TEXT             NOT NULL DEFAULT '',
  price        DOUBLE PRECISION NULL CHECK (price IS NULL OR price >= 0),
  discounted   TEXT             NOT NULL DEFAULT '',
  km           TEXT             NOT NULL DEFAULT '',
  unit         TEXT             NOT NULL DEFAULT '',
  meta         JSONB            NOT NULL DEFAULT '{}'::jsonb,
  uploaded_by  TEXT             NOT NULL,
  uploaded_at  TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_tariffs_uploaded_by",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tariffs_uploaded_by ON tariffs (uploaded_by);`,
	},
	{
		Name: "create_index_tariffs_uploaded_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tariffs_uploaded_at ON tariffs (uploaded_at);`,
	},
}

// EnsureMigrated checks if the 'tariffs' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *zap.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.tariffs') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
