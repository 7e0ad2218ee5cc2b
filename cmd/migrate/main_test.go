package main

import (
	"io/fs"
	"reflect"
	"testing"

	"goldwork/migrations"
)

func TestPendingSkipsAppliedAndSorts(t *testing.T) {
	got := pending([]string{"003_c.sql", "001_a.sql", "002_b.sql"}, map[string]bool{"002_b.sql": true})
	want := []string{"001_a.sql", "003_c.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("pending() = %v, want %v", got, want)
	}
	if got := pending([]string{"001_a.sql"}, map[string]bool{"001_a.sql": true}); len(got) != 0 {
		t.Fatalf("pending() = %v, want none", got)
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded migrations")
	}
}
