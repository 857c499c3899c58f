package mysql

import (
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
)

func TestEmbeddedMigrations(t *testing.T) {
	if err := useMigrations(); err != nil {
		t.Fatalf("useMigrations: %v", err)
	}
	ms, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(ms) != 3 {
		t.Fatalf("got %d migrations want 3", len(ms))
	}
	for i, m := range ms {
		if m.Version != int64(i+1) {
			t.Fatalf("migration %d has version %d", i, m.Version)
		}
	}
}

func TestEmbeddedMigrationsHaveDown(t *testing.T) {
	ents, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read embedded: %v", err)
	}
	for _, e := range ents {
		b, err := migrations.ReadFile(migrationsDir + "/" + e.Name())
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		src := string(b)
		if !strings.HasPrefix(src, "-- +goose Up") || !strings.Contains(src, "-- +goose Down") {
			t.Errorf("%s is missing goose annotations", e.Name())
		}
	}
}
