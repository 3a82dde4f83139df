package storage

import (
	"context"
	"os"
	"testing"
)

// TestPostgresKV exercises the Postgres backend when TRAILBOOK_TEST_POSTGRES_DSN is set.
func TestPostgresKV(t *testing.T) {
	dsn := os.Getenv("TRAILBOOK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TRAILBOOK_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	kv, err := Open(ctx, DriverPostgres, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer kv.Close()

	p := NewPersister(kv, "trailbook_test")
	t.Cleanup(func() { p.Clear(context.Background()) })

	want := sampleWorkouts()
	if err := p.SaveAll(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := p.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assertSameWorkouts(t, got, want)
}
