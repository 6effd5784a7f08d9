package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/nssf"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/google/uuid"
)

// Store keeps all payroll data in process memory. Writers are serialized,
// either for a single call or for the whole of WithinTransaction, and a
// failed transaction restores the state it started from. Reads outside a
// transaction wait for any running transaction, so they only see committed
// state.
type Store struct {
	txMu sync.RWMutex
	mu   sync.RWMutex

	employees     map[string]employee.Employee
	periods       map[string]payroll.Period
	items         map[string]payroll.Item
	contributions map[string]nssf.Contribution
}

func NewStore() *Store {
	return &Store{
		employees:     make(map[string]employee.Employee),
		periods:       make(map[string]payroll.Period),
		items:         make(map[string]payroll.Item),
		contributions: make(map[string]nssf.Contribution),
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

type snapshot struct {
	employees     map[string]employee.Employee
	periods       map[string]payroll.Period
	items         map[string]payroll.Item
	contributions map[string]nssf.Contribution
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		employees:     maps.Clone(s.employees),
		periods:       maps.Clone(s.periods),
		items:         maps.Clone(s.items),
		contributions: maps.Clone(s.contributions),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = snap.employees
	s.periods = snap.periods
	s.items = snap.items
	s.contributions = snap.contributions
}

// WithinTransaction implements database.Transactor. Nested calls join the
// outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// write runs fn under the data lock, taking the writer lock too when the
// caller is not already inside a transaction.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// read runs fn under the data read lock. Outside a transaction it also holds
// the writer lock shared, which keeps uncommitted writes out of view.
func (s *Store) read(ctx context.Context, fn func()) {
	if !inTx(ctx) {
		s.txMu.RLock()
		defer s.txMu.RUnlock()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// PutEmployee adds or replaces an employee in the directory.
func (s *Store) PutEmployee(e employee.Employee) {
	_ = s.write(context.Background(), func() error {
		if e.ID == "" {
			e.ID = newID()
		}
		s.employees[e.ID] = e
		return nil
	})
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
