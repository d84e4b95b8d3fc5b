package store

import (
	"context"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// openPostgresStore starts a throwaway PostgreSQL container. The test is
// skipped in -short mode or when no container runtime is reachable.
func openPostgresStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in -short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var ctr *postgres.PostgresContainer
	func() {
		defer func() {
			// testcontainers panics when no Docker host can be found.
			if r := recover(); r != nil {
				t.Skipf("container runtime unavailable: %v", r)
			}
		}()
		var err error
		ctr, err = postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("eduai"),
			postgres.WithUsername("eduai"),
			postgres.WithPassword("eduai"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			t.Skipf("container runtime unavailable: %v", err)
		}
	}()
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	s, err := OpenContext(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStore(t *testing.T) {
	s := openPostgresStore(t)
	if s.Dialect() != dialect.Postgres {
		t.Fatalf("dialect = %q, want postgres", s.Dialect())
	}

	t.Run("materials", func(t *testing.T) { testMaterials(t, s.Records()) })
	t.Run("tests and submissions", func(t *testing.T) { testTestsAndSubmissions(t, s.Records()) })
	t.Run("llm events", func(t *testing.T) { testLLMEvents(t, s.EventRepo()) })
}
