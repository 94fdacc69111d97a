// Command migrate manages the portal schema: SQL migrations, GORM
// AutoMigrate and a per-table report of listing moderation state.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/config"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/database"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/joho/godotenv"
)

const usage = "usage: migrate <up|auto|status|down VERSION>"

func main() {
	_ = godotenv.Load()
	flag.Parse()
	if err := run(context.Background(), flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New(usage)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	switch strings.ToLower(args[0]) {
	case "up":
		m, err := database.NewMigrator(db)
		if err != nil {
			return err
		}
		applied, err := m.Up(ctx)
		for _, mig := range applied {
			log.Printf("applied %s", mig)
		}
		if err != nil {
			return err
		}
		log.Printf("%d migration(s) applied", len(applied))
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		log.Println("models auto-migrated")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return err
		}
		printStatus(status)
	case "down":
		if len(args) < 2 {
			return errors.New(usage)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		m, err := database.NewMigrator(db)
		if err != nil {
			return err
		}
		if err := m.Down(ctx, version); err != nil {
			return err
		}
		log.Printf("reverted %06d", version)
	default:
		return errors.New(usage)
	}
	return nil
}

func printStatus(s *database.SchemaStatus) {
	fmt.Printf("mode=%s sql=%t automigrate=%t applied=%d pending=%d\n",
		s.Plan.Mode, s.Plan.SQL, s.Plan.AutoMigrate, len(s.Applied), len(s.Pending))
	for _, mig := range s.Pending {
		fmt.Printf("pending %s\n", mig)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nTABLE\tROWS\tPENDING\tAPPROVED\tREJECTED")
	for _, t := range s.Tables {
		switch {
		case !t.Exists:
			fmt.Fprintf(w, "%s\tmissing\t\t\t\n", t.Table)
		case t.Listing:
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", t.Table, t.Rows,
				t.ByStatus[models.StatusPending], t.ByStatus[models.StatusApproved], t.ByStatus[models.StatusRejected])
		default:
			fmt.Fprintf(w, "%s\t%d\t-\t-\t-\n", t.Table, t.Rows)
		}
	}
	_ = w.Flush()
}
