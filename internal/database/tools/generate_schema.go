// Command generate_schema rewrites internal/database/schema.sql from the
// embedded migrations. Run it from the module root (see generate.go).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/thedeuce2/ProWriter/internal/database"
	"github.com/thedeuce2/ProWriter/internal/database/migrations"
)

func main() {
	if err := run(filepath.Join("internal", "database", "schema.sql")); err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}
}

func run(outPath string) error {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	schema, err := database.DumpSchema(db)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(schema), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Printf("Generated %s from migrations\n", outPath)
	return nil
}
