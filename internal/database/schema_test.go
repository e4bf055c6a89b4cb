package database

import (
	"testing"

	"github.com/thedeuce2/ProWriter/internal/database/migrations"
)

// schema.sql is checked in; it must describe exactly what the migrations build.
func TestSchemaMatchesMigrations(t *testing.T) {
	migrated, err := OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("OpenConnection() error = %v", err)
	}
	defer migrated.Close()
	if err := migrations.MigrateUp(migrated); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	loaded, err := OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("OpenConnection() error = %v", err)
	}
	defer loaded.Close()
	if _, err := loaded.Exec(Schema); err != nil {
		t.Fatalf("loading schema.sql: %v", err)
	}

	want, err := DumpSchema(migrated)
	if err != nil {
		t.Fatalf("DumpSchema(migrated) error = %v", err)
	}
	got, err := DumpSchema(loaded)
	if err != nil {
		t.Fatalf("DumpSchema(loaded) error = %v", err)
	}
	if got != want {
		t.Errorf("schema.sql is out of date; run go generate ./internal/database\n got:\n%s\nwant:\n%s", got, want)
	}
}
