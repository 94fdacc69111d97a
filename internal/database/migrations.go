package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"

	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migration is one versioned pair of SQL scripts under migrations/.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

// SchemaMigration is the ledger row written when a migration is applied.
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (SchemaMigration) TableName() string { return "schema_migrations" }

// LoadMigrations reads NNNNNN_name.up.sql / .down.sql pairs from dir in
// fsys, ordered by version. A missing down script or a duplicate version
// is an error.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	seen := make(map[int]string)
	var out []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		base := strings.TrimSuffix(name, ".up.sql")
		num, label, ok := strings.Cut(base, "_")
		version, convErr := strconv.Atoi(num)
		if !ok || convErr != nil || version <= 0 {
			return nil, fmt.Errorf("migration %q: expected NNNNNN_name.up.sql", name)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %d used by %s and %s", version, prev, name)
		}
		seen[version] = name

		up, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		down, err := fs.ReadFile(fsys, path.Join(dir, base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %s has no down script: %w", base, err)
		}
		out = append(out, Migration{Version: version, Name: label, Up: string(up), Down: string(down)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Migrator applies and reverts SQL migrations, recording each one in
// schema_migrations inside the same transaction as its script.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

// NewMigrator returns a Migrator over the portal's embedded migrations.
func NewMigrator(db *gorm.DB) (*Migrator, error) {
	ms, err := LoadMigrations(embeddedMigrations, "migrations")
	if err != nil {
		return nil, err
	}
	return NewMigratorWith(db, ms), nil
}

// NewMigratorWith returns a Migrator over an explicit migration set.
func NewMigratorWith(db *gorm.DB, migrations []Migration) *Migrator {
	return &Migrator{db: db, migrations: migrations}
}

// Migrations returns the known migrations in version order.
func (m *Migrator) Migrations() []Migration { return m.migrations }

func (m *Migrator) ensureLedger(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

// Applied returns the ledger rows in version order. Versions the code does
// not know about are an error: the database is ahead of this build.
func (m *Migrator) Applied(ctx context.Context) ([]SchemaMigration, error) {
	if err := m.ensureLedger(ctx); err != nil {
		return nil, err
	}
	var rows []SchemaMigration
	if err := m.db.WithContext(ctx).Order("version ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}

	known := make(map[int]bool, len(m.migrations))
	for _, mig := range m.migrations {
		known[mig.Version] = true
	}
	var unknown []string
	for _, row := range rows {
		if !known[row.Version] {
			unknown = append(unknown, fmt.Sprintf("%06d", row.Version))
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("schema_migrations has versions this build does not ship: %s", strings.Join(unknown, ", "))
	}
	return rows, nil
}

// Pending returns the migrations not yet recorded in the ledger.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	rows, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(rows))
	for _, row := range rows {
		done[row.Version] = true
	}
	var pending []Migration
	for _, mig := range m.migrations {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration in order and returns those applied.
func (m *Migrator) Up(ctx context.Context) ([]Migration, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}
	for i, mig := range pending {
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.Up).Error; err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{Version: mig.Version, Name: mig.Name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return pending[:i], fmt.Errorf("apply %s: %w", mig, err)
		}
		middleware.Logger.Info("migration applied", slog.Int("version", mig.Version), slog.String("name", mig.Name))
	}
	return pending, nil
}

// Down reverts one applied migration.
func (m *Migrator) Down(ctx context.Context, version int) error {
	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			target = &m.migrations[i]
		}
	}
	if target == nil {
		return fmt.Errorf("migration %06d does not exist", version)
	}
	rows, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	applied := false
	for _, row := range rows {
		applied = applied || row.Version == version
	}
	if !applied {
		return fmt.Errorf("migration %s has not been applied", target)
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(target.Down).Error; err != nil {
			return err
		}
		return tx.Delete(&SchemaMigration{}, version).Error
	})
	if err != nil {
		return fmt.Errorf("revert %s: %w", target, err)
	}
	middleware.Logger.Info("migration reverted", slog.Int("version", version), slog.String("name", target.Name))
	return nil
}
