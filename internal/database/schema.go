package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/config"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan says which schema steps run at startup.
type SchemaPlan struct {
	Mode        string
	SQL         bool
	AutoMigrate bool
}

// PlanSchema resolves DB_SCHEMA_MODE for cfg. Hybrid runs SQL migrations
// everywhere and AutoMigrate outside production; auto in production needs
// DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	mode := cfg.DBSchemaMode
	if mode == "" {
		mode = SchemaModeHybrid
	}
	plan := SchemaPlan{Mode: mode}
	switch mode {
	case SchemaModeSQL:
		plan.SQL = true
	case SchemaModeAuto:
		if cfg.IsProduction() && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.AutoMigrate = true
	case SchemaModeHybrid:
		plan.SQL = true
		plan.AutoMigrate = !cfg.IsProduction()
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
	return plan, nil
}

// ApplySchema brings the database up to date according to cfg's plan.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}
	if plan.SQL {
		m, err := NewMigrator(db)
		if err != nil {
			return err
		}
		if _, err := m.Up(ctx); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.AutoMigrate {
		middleware.Logger.Info("running GORM AutoMigrate",
			slog.String("mode", plan.Mode), slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// TableStatus describes one schema-managed table. Listing tables also
// report how many rows sit in each moderation state.
type TableStatus struct {
	Table    string
	Exists   bool
	Rows     int64
	Listing  bool
	ByStatus map[models.ModerationStatus]int64
}

// SchemaStatus is what `migrate status` prints.
type SchemaStatus struct {
	Plan    SchemaPlan
	Applied []SchemaMigration
	Pending []Migration
	Tables  []TableStatus
}

// GetSchemaStatus reports migration progress and the state of every table
// in PersistentModels.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{Plan: plan}

	m, err := NewMigrator(db)
	if err != nil {
		return nil, err
	}
	if status.Applied, err = m.Applied(ctx); err != nil {
		return nil, err
	}
	if status.Pending, err = m.Pending(ctx); err != nil {
		return nil, err
	}
	if status.Tables, err = TableStatuses(ctx, db); err != nil {
		return nil, err
	}
	return status, nil
}

// TableStatuses inspects every model in PersistentModels.
func TableStatuses(ctx context.Context, db *gorm.DB) ([]TableStatus, error) {
	db = db.WithContext(ctx)
	out := make([]TableStatus, 0, len(PersistentModels()))
	for _, model := range PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse %T: %w", model, err)
		}
		ts := TableStatus{Table: stmt.Schema.Table}
		_, ts.Listing = model.(models.Listing)
		ts.Exists = db.Migrator().HasTable(ts.Table)
		if !ts.Exists {
			out = append(out, ts)
			continue
		}

		if !ts.Listing {
			if err := db.Table(ts.Table).Count(&ts.Rows).Error; err != nil {
				return nil, fmt.Errorf("count %s: %w", ts.Table, err)
			}
			out = append(out, ts)
			continue
		}

		var groups []struct {
			Status models.ModerationStatus
			N      int64
		}
		if err := db.Table(ts.Table).Select("status, COUNT(*) AS n").Group("status").Scan(&groups).Error; err != nil {
			return nil, fmt.Errorf("count %s by status: %w", ts.Table, err)
		}
		ts.ByStatus = make(map[models.ModerationStatus]int64, len(groups))
		for _, g := range groups {
			ts.ByStatus[g.Status] = g.N
			ts.Rows += g.N
		}
		out = append(out, ts)
	}
	return out, nil
}
