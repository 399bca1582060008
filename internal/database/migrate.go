package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/GuiaBolso/darwin"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// Migrate applies the migrations for db's driver. Already applied versions
// are skipped by darwin.
func Migrate(db *sqlx.DB) error {
	var (
		dialect darwin.Dialect
		dir     string
	)
	switch db.DriverName() {
	case DriverSQLite:
		dialect, dir = darwin.SqliteDialect{}, "migrations/sqlite"
	case DriverPostgres:
		dialect, dir = darwin.PostgresDialect{}, "migrations/postgres"
	default:
		return fmt.Errorf("no migrations for driver %q", db.DriverName())
	}

	migrations, err := loadMigrations(migrationFiles, dir)
	if err != nil {
		return err
	}

	driver := darwin.NewGenericDriver(db.DB, dialect)
	if err := darwin.New(driver, migrations, nil).Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// loadMigrations reads NNNN_description.sql files from dir, ordered by version
func loadMigrations(fsys fs.FS, dir string) ([]darwin.Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	migrations := make([]darwin.Migration, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		prefix, rest, ok := strings.Cut(strings.TrimSuffix(name, ".sql"), "_")
		if !ok {
			return nil, fmt.Errorf("migration %s: expected NNNN_description.sql", name)
		}
		version, err := strconv.ParseFloat(prefix, 64)
		if err != nil {
			return nil, fmt.Errorf("migration %s: invalid version: %w", name, err)
		}

		script, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		migrations = append(migrations, darwin.Migration{
			Version:     version,
			Description: strings.ReplaceAll(rest, "_", " "),
			Script:      string(script),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}
