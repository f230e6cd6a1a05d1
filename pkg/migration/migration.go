package migration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/muhammadchandra19/bar-replay/pkg/errors"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	"github.com/muhammadchandra19/bar-replay/pkg/questdb"
)

const (
	createMigrationTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id STRING,
			name STRING,
			applied_at TIMESTAMP
		) TIMESTAMP(applied_at) PARTITION BY DAY;
	`
	selectApplied   = `SELECT id FROM schema_migrations ORDER BY applied_at`
	insertApplied   = `INSERT INTO schema_migrations VALUES ($1, $2, now())`
	deleteApplied   = `DELETE FROM schema_migrations WHERE id = $1`
	timestampLayout = "20060102150405"
)

// Migration represents a database migration
type Migration struct {
	ID        string
	Name      string
	Timestamp time.Time
	UpSQL     string
	DownSQL   string
}

// Runner applies the QuestDB schema the bar store reads from.
type Runner struct {
	client       questdb.QuestDBClient
	migrationDir string
	logger       logger.Interface
}

// NewRunner creates a new migration runner
func NewRunner(client questdb.QuestDBClient, migrationDir string, log logger.Interface) *Runner {
	return &Runner{
		client:       client,
		migrationDir: migrationDir,
		logger:       log,
	}
}

// EnsureMigrationTable creates the schema_migrations table if it doesn't exist
func (r *Runner) EnsureMigrationTable(ctx context.Context) error {
	if err := r.client.Exec(ctx, createMigrationTable); err != nil {
		return errors.TracerFromError(err).WithCode(errors.QuestDBMigrationError)
	}
	return nil
}

// GetAppliedMigrations returns a map of applied migration IDs
func (r *Runner) GetAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := r.client.Query(ctx, selectApplied)
	if err != nil {
		return nil, errors.TracerFromError(err).WithCode(errors.QuestDBQueryError)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.TracerFromError(err).WithCode(errors.QuestDBQueryError)
		}
		applied[id] = true
	}

	return applied, rows.Err()
}

// LoadMigrations reads every *.up.sql file in the migration directory, oldest first.
func (r *Runner) LoadMigrations() ([]Migration, error) {
	upFiles, err := filepath.Glob(filepath.Join(r.migrationDir, "*.up.sql"))
	if err != nil {
		return nil, err
	}

	sort.Strings(upFiles)

	migrations := make([]Migration, 0, len(upFiles))
	for _, upFile := range upFiles {
		migration, err := parseMigrationFiles(upFile)
		if err != nil {
			return nil, errors.NewTracer(fmt.Sprintf("failed to parse migration %s", upFile)).
				WithCode(errors.QuestDBMigrationError).
				Wrap(err)
		}
		migrations = append(migrations, migration)
	}

	return migrations, nil
}

// parseMigrationFiles reads an up file and its optional down sibling.
// File names follow YYYYMMDDHHMMSS_name.up.sql.
func parseMigrationFiles(upFilePath string) (Migration, error) {
	upContent, err := os.ReadFile(upFilePath)
	if err != nil {
		return Migration{}, err
	}

	id := strings.TrimSuffix(filepath.Base(upFilePath), ".up.sql")
	downFilePath := strings.TrimSuffix(upFilePath, ".up.sql") + ".down.sql"

	name := id
	stamp, rest, found := strings.Cut(id, "_")
	if found {
		name = rest
	}

	timestamp, err := time.Parse(timestampLayout, stamp)
	if err != nil {
		// files like "001_initial"
		timestamp = time.Unix(0, 0).UTC()
	}

	var downSQL string
	if downContent, err := os.ReadFile(downFilePath); err == nil {
		downSQL = strings.TrimSpace(string(downContent))
	}

	return Migration{
		ID:        id,
		Name:      name,
		Timestamp: timestamp,
		UpSQL:     strings.TrimSpace(string(upContent)),
		DownSQL:   downSQL,
	}, nil
}

// MigrateUp applies pending migrations. steps <= 0 applies all of them.
func (r *Runner) MigrateUp(ctx context.Context, steps int) error {
	migrations, err := r.LoadMigrations()
	if err != nil {
		return err
	}

	applied, err := r.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	var toApply []Migration
	for _, migration := range migrations {
		if !applied[migration.ID] {
			toApply = append(toApply, migration)
		}
	}

	if steps > 0 && len(toApply) > steps {
		toApply = toApply[:steps]
	}

	for _, migration := range toApply {
		if migration.UpSQL == "" {
			r.logger.WarnContext(ctx, "migration has no up sql", logger.NewField("id", migration.ID))
			continue
		}

		if err := r.client.Exec(ctx, migration.UpSQL); err != nil {
			return errors.NewTracer(fmt.Sprintf("failed to apply migration %s", migration.ID)).
				WithCode(errors.QuestDBMigrationError).
				Wrap(err)
		}

		if err := r.client.Exec(ctx, insertApplied, migration.ID, migration.Name); err != nil {
			return errors.NewTracer(fmt.Sprintf("failed to record migration %s", migration.ID)).
				WithCode(errors.QuestDBMigrationError).
				Wrap(err)
		}

		r.logger.InfoContext(ctx, "applied migration", logger.NewField("id", migration.ID))
	}

	return nil
}

// MigrateDown reverts the last steps applied migrations.
func (r *Runner) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		return errors.NewTracer("steps must be greater than 0 for down migrations").
			WithCode(errors.QuestDBMigrationError)
	}

	migrations, err := r.LoadMigrations()
	if err != nil {
		return err
	}

	applied, err := r.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	var toRevert []Migration
	for i := len(migrations) - 1; i >= 0 && len(toRevert) < steps; i-- {
		if applied[migrations[i].ID] {
			toRevert = append(toRevert, migrations[i])
		}
	}

	for _, migration := range toRevert {
		if migration.DownSQL == "" {
			return errors.NewTracer(fmt.Sprintf("no down sql for migration %s", migration.ID)).
				WithCode(errors.QuestDBMigrationError)
		}

		if err := r.client.Exec(ctx, migration.DownSQL); err != nil {
			return errors.NewTracer(fmt.Sprintf("failed to revert migration %s", migration.ID)).
				WithCode(errors.QuestDBMigrationError).
				Wrap(err)
		}

		if err := r.client.Exec(ctx, deleteApplied, migration.ID); err != nil {
			return errors.NewTracer(fmt.Sprintf("failed to remove migration record %s", migration.ID)).
				WithCode(errors.QuestDBMigrationError).
				Wrap(err)
		}

		r.logger.InfoContext(ctx, "reverted migration", logger.NewField("id", migration.ID))
	}

	return nil
}
