// Package itf holds test helpers: in-memory transaction fakes for service
// tests and per-test Postgres databases for repository tests.
package itf

import (
	"context"
	"io"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
)

// FakeTx records commits, rollbacks and Exec statements. Methods not
// overridden panic through the nil embedded interface.
type FakeTx struct {
	pgx.Tx

	mu         sync.Mutex
	committed  bool
	rolledBack bool
	execs      []string
}

func (t *FakeTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.committed = true
	return nil
}

func (t *FakeTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

func (t *FakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.mu.Lock()
	t.execs = append(t.execs, sql)
	t.mu.Unlock()
	return pgconn.NewCommandTag("OK"), nil
}

func (t *FakeTx) Committed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.committed
}

func (t *FakeTx) RolledBack() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rolledBack
}

func (t *FakeTx) Execs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.execs...)
}

// FakeDB hands out FakeTx values and satisfies composables.TxBeginner.
type FakeDB struct {
	BeginErr error

	mu  sync.Mutex
	txs []*FakeTx
}

func (d *FakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if d.BeginErr != nil {
		return nil, d.BeginErr
	}
	tx := &FakeTx{}
	d.mu.Lock()
	d.txs = append(d.txs, tx)
	d.mu.Unlock()
	return tx, nil
}

func (d *FakeDB) Txs() []*FakeTx {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*FakeTx(nil), d.txs...)
}

func (d *FakeDB) LastTx() *FakeTx {
	txs := d.Txs()
	if len(txs) == 0 {
		return nil
	}
	return txs[len(txs)-1]
}

// Ctx returns a context with a FakeDB, a silent logger and, when u is
// not nil, the current user.
func Ctx(u user.User) (context.Context, *FakeDB) {
	db := &FakeDB{}
	ctx := composables.WithPool(context.Background(), db)
	ctx = composables.WithLogger(ctx, SilentLogger())
	ctx = composables.WithParams(ctx, DefaultParams())
	if u != nil {
		ctx = composables.WithUser(ctx, u)
	}
	return ctx, db
}

func SilentLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func DefaultParams() *composables.Params {
	return &composables.Params{
		IP:            "127.0.0.1",
		UserAgent:     "itf",
		RequestID:     "test-request",
		Authenticated: true,
	}
}

// User builds an active user with the given role.
func User(role user.Role) user.User {
	return user.New(string(role)+"@fleetdesk.test", "Test", string(role), role)
}
