package itf

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetdesk/fleetdesk/migrations"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
)

// DSNEnv names the admin connection string used by repository tests.
const DSNEnv = "FLEETDESK_TEST_DSN"

const maxDBNameLength = 63

type TestEnvironment struct {
	Ctx  context.Context
	Pool *pgxpool.Pool
	Tx   pgx.Tx
}

// Setup creates a fresh database named after the test, migrates it and
// returns a context bound to a transaction rolled back on cleanup. The test
// is skipped when FLEETDESK_TEST_DSN is unset.
func Setup(tb testing.TB, u user.User) *TestEnvironment {
	tb.Helper()
	dsn := strings.TrimSpace(os.Getenv(DSNEnv))
	if dsn == "" {
		tb.Skipf("%s not set", DSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := sanitizeDBName(tb.Name())
	if err := recreateDB(ctx, dsn, name); err != nil {
		tb.Fatal(err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		tb.Fatal(err)
	}
	cfg.ConnConfig.Database = name
	cfg.MaxConns = 4
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(pool.Close)

	if err := migrations.Up(ctx, pool); err != nil {
		tb.Fatal(err)
	}

	tx, err := pool.Begin(context.Background())
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() {
		if err := tx.Rollback(context.Background()); err != nil && err != pgx.ErrTxClosed {
			tb.Logf("rollback: %v", err)
		}
	})

	out := composables.WithPool(context.Background(), pool)
	out = composables.WithTx(out, tx)
	out = composables.WithLogger(out, SilentLogger())
	out = composables.WithParams(out, DefaultParams())
	if u != nil {
		out = composables.WithUser(out, u)
	}
	return &TestEnvironment{Ctx: out, Pool: pool, Tx: tx}
}

func recreateDB(ctx context.Context, dsn, name string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect admin database: %w", err)
	}
	defer func() { _ = conn.Close(context.Background()) }()

	ident := pgx.Identifier{name}.Sanitize()
	if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+ident+" WITH (FORCE)"); err != nil {
		return err
	}
	_, err = conn.Exec(ctx, "CREATE DATABASE "+ident)
	return err
}

// sanitizeDBName lower-cases the test name, keeps [a-z0-9_] and truncates
// long names with a hash suffix so sibling subtests stay distinct.
func sanitizeDBName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	out = strings.Trim(out, "_")
	if out == "" {
		out = "test_db"
	}
	if len(out) <= maxDBNameLength {
		return out
	}
	sum := fmt.Sprintf("%x", sha256.Sum256([]byte(name)))[:8]
	return out[:maxDBNameLength-9] + "_" + sum
}

// Savepoint runs fn inside a savepoint of the test transaction and rolls
// it back when fn fails, so a constraint violation does not abort the
// rest of the test.
func (e *TestEnvironment) Savepoint(fn func(ctx context.Context) error) error {
	sp, err := e.Tx.Begin(e.Ctx)
	if err != nil {
		return err
	}
	if err := fn(composables.WithTx(e.Ctx, sp)); err != nil {
		if rErr := sp.Rollback(e.Ctx); rErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rErr)
		}
		return err
	}
	return sp.Commit(e.Ctx)
}
