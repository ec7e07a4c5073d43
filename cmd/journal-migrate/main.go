// journal-migrate copies a SQLite visit journal into PostgreSQL.
//
// Usage:
//
//	go run ./cmd/journal-migrate \
//	    -sqlite data/journal.db \
//	    -pg-host localhost \
//	    -pg-user dungeon \
//	    -pg-password dungeon \
//	    -pg-database dungeon_journal
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lawnchairsociety/dungeongen/internal/database"
)

func main() {
	pg := database.DefaultPostgresConfig()

	sqlitePath := flag.String("sqlite", "data/journal.db", "Path to SQLite journal")
	flag.StringVar(&pg.Host, "pg-host", pg.Host, "PostgreSQL host")
	flag.IntVar(&pg.Port, "pg-port", pg.Port, "PostgreSQL port")
	flag.StringVar(&pg.User, "pg-user", pg.User, "PostgreSQL user")
	flag.StringVar(&pg.Password, "pg-password", "", "PostgreSQL password")
	flag.StringVar(&pg.Database, "pg-database", pg.Database, "PostgreSQL database name")
	flag.StringVar(&pg.SSLMode, "pg-sslmode", pg.SSLMode, "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be copied without making changes")
	flag.Parse()

	log.Println("Visit journal migration: SQLite to PostgreSQL")

	if _, err := os.Stat(*sqlitePath); err != nil {
		log.Fatalf("SQLite journal not found: %v", err)
	}

	log.Printf("Opening SQLite journal: %s", *sqlitePath)
	src, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite journal: %v", err)
	}
	defer src.Close()

	// OpenWithConfig also creates the schema on the PostgreSQL side
	log.Printf("Opening PostgreSQL journal: %s@%s:%d/%s", pg.User, pg.Host, pg.Port, pg.Database)
	dst, err := database.OpenWithConfig(database.Config{
		Driver:   string(database.DialectPostgres),
		Postgres: pg,
	})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL journal: %v", err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	stats, err := database.CopyJournal(context.Background(), src, dst, *dryRun)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Printf("Sessions copied: %d", stats.Sessions)
	log.Printf("Visits copied:   %d", stats.Visits)
	log.Printf("Rows skipped:    %d (already present)", stats.Skipped)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Copies a SQLite visit journal into PostgreSQL, keeping ids.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
