// Package memory provides an in-process Ledger with the same locking contract
// as the PostgreSQL store: exclusive per-entity locks with a bounded wait,
// writes staged until commit, nothing visible on rollback.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

// subscriptionKind only keys the lock table; subscriptions are never transfer endpoints.
const subscriptionKind domain.EntityKind = "subscription"

type lockKey struct {
	kind domain.EntityKind
	id   int32
}

type shareKey struct {
	accountID int32
	userID    int32
}

type Ledger struct {
	sync.RWMutex
	lockTimeout time.Duration
	locks       map[lockKey]chan struct{}

	accounts      map[int32]domain.Account
	objectives    map[int32]domain.Objective
	debts         map[int32]domain.Debt
	subscriptions map[int32]domain.Subscription
	shares        map[shareKey]domain.ShareRole
	transfers     []domain.Transfer
	contributions []domain.Contribution
	repayments    []domain.Repayment
	postings      []domain.Posting

	seq atomic.Int32
	now func() time.Time
}

var _ repository.Ledger = (*Ledger)(nil)

func NewLedger(lockTimeout time.Duration) *Ledger {
	if lockTimeout <= 0 {
		lockTimeout = time.Second
	}
	return &Ledger{
		lockTimeout:   lockTimeout,
		locks:         make(map[lockKey]chan struct{}),
		accounts:      make(map[int32]domain.Account),
		objectives:    make(map[int32]domain.Objective),
		debts:         make(map[int32]domain.Debt),
		subscriptions: make(map[int32]domain.Subscription),
		shares:        make(map[shareKey]domain.ShareRole),
		now:           time.Now,
	}
}

func (l *Ledger) nextID() int32 {
	return l.seq.Add(1)
}

func (l *Ledger) lockFor(k lockKey) chan struct{} {
	l.Lock()
	defer l.Unlock()
	ch, ok := l.locks[k]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[k] = ch
	}
	return ch
}

func (l *Ledger) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.LedgerTx) error) error {
	tx := &ledgerTx{
		store:      l,
		held:       make(map[lockKey]chan struct{}),
		accounts:   make(map[int32]*domain.Account),
		objectives: make(map[int32]*domain.Objective),
		debts:      make(map[int32]*domain.Debt),
		dueDates:   make(map[int32]time.Time),
	}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.commit(tx)
}

func (l *Ledger) commit(tx *ledgerTx) error {
	l.Lock()
	defer l.Unlock()

	for _, t := range tx.transfers {
		if t.IdempotencyKey == "" {
			continue
		}
		for _, existing := range l.transfers {
			if existing.ActorUserID == t.ActorUserID && existing.IdempotencyKey == t.IdempotencyKey {
				return fmt.Errorf("%w: duplicate idempotency key", domain.ErrContention)
			}
		}
	}

	for id, a := range tx.accounts {
		if tx.dirty[lockKey{domain.EntityAccount, id}] {
			l.accounts[id] = *a
		}
	}
	for id, o := range tx.objectives {
		if tx.dirty[lockKey{domain.EntityObjective, id}] {
			l.objectives[id] = *o
		}
	}
	for id, d := range tx.debts {
		if tx.dirty[lockKey{domain.EntityDebt, id}] {
			l.debts[id] = *d
		}
	}
	for id, next := range tx.dueDates {
		sub := l.subscriptions[id]
		sub.NextDueDate = next
		l.subscriptions[id] = sub
	}
	l.transfers = append(l.transfers, tx.transfers...)
	l.contributions = append(l.contributions, tx.contributions...)
	l.repayments = append(l.repayments, tx.repayments...)
	l.postings = append(l.postings, tx.postings...)
	return nil
}

type ledgerTx struct {
	store *Ledger
	held  map[lockKey]chan struct{}
	dirty map[lockKey]bool

	accounts   map[int32]*domain.Account
	objectives map[int32]*domain.Objective
	debts      map[int32]*domain.Debt
	dueDates   map[int32]time.Time

	transfers     []domain.Transfer
	contributions []domain.Contribution
	repayments    []domain.Repayment
	postings      []domain.Posting
}

func (t *ledgerTx) acquire(ctx context.Context, k lockKey) error {
	if _, ok := t.held[k]; ok {
		return nil
	}
	ch := t.store.lockFor(k)
	select {
	case ch <- struct{}{}:
		t.held[k] = ch
		return nil
	default:
	}

	timer := time.NewTimer(t.store.lockTimeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		t.held[k] = ch
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: %s %d is locked", domain.ErrContention, k.kind, k.id)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *ledgerTx) release() {
	for _, ch := range t.held {
		<-ch
	}
	t.held = nil
}

func (t *ledgerTx) markDirty(k lockKey) error {
	if _, ok := t.held[k]; !ok {
		return fmt.Errorf("%s %d written without holding its lock", k.kind, k.id)
	}
	if t.dirty == nil {
		t.dirty = make(map[lockKey]bool)
	}
	t.dirty[k] = true
	return nil
}

func (t *ledgerTx) LockAccount(ctx context.Context, id int32) (*domain.Account, error) {
	if err := t.acquire(ctx, lockKey{domain.EntityAccount, id}); err != nil {
		return nil, err
	}
	if a, ok := t.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	t.store.RLock()
	a, ok := t.store.accounts[id]
	t.store.RUnlock()
	if !ok {
		return nil, fmt.Errorf("lock account %d: %w", id, domain.ErrNotFound)
	}
	t.accounts[id] = &a
	cp := a
	return &cp, nil
}

func (t *ledgerTx) LockObjective(ctx context.Context, id int32) (*domain.Objective, error) {
	if err := t.acquire(ctx, lockKey{domain.EntityObjective, id}); err != nil {
		return nil, err
	}
	if o, ok := t.objectives[id]; ok {
		cp := *o
		return &cp, nil
	}
	t.store.RLock()
	o, ok := t.store.objectives[id]
	t.store.RUnlock()
	if !ok {
		return nil, fmt.Errorf("lock objective %d: %w", id, domain.ErrNotFound)
	}
	t.objectives[id] = &o
	cp := o
	return &cp, nil
}

func (t *ledgerTx) LockDebt(ctx context.Context, id int32) (*domain.Debt, error) {
	if err := t.acquire(ctx, lockKey{domain.EntityDebt, id}); err != nil {
		return nil, err
	}
	if d, ok := t.debts[id]; ok {
		cp := *d
		return &cp, nil
	}
	t.store.RLock()
	d, ok := t.store.debts[id]
	t.store.RUnlock()
	if !ok {
		return nil, fmt.Errorf("lock debt %d: %w", id, domain.ErrNotFound)
	}
	t.debts[id] = &d
	cp := d
	return &cp, nil
}

func (t *ledgerTx) ShareRole(_ context.Context, accountID, userID int32) (domain.ShareRole, error) {
	t.store.RLock()
	defer t.store.RUnlock()
	return t.store.shares[shareKey{accountID, userID}], nil
}

func (t *ledgerTx) UpdateAccountBalance(_ context.Context, id int32, balance decimal.Decimal) error {
	if err := t.markDirty(lockKey{domain.EntityAccount, id}); err != nil {
		return err
	}
	a := t.accounts[id]
	a.Balance = balance
	a.UpdatedOn = t.store.now()
	return nil
}

func (t *ledgerTx) UpdateObjectiveProgress(_ context.Context, id int32, current decimal.Decimal, status domain.ObjectiveStatus) error {
	if err := t.markDirty(lockKey{domain.EntityObjective, id}); err != nil {
		return err
	}
	o := t.objectives[id]
	o.CurrentAmount = current
	o.Status = status
	o.Progress = domain.ObjectiveProgress(current, o.TargetAmount)
	o.UpdatedOn = t.store.now()
	return nil
}

func (t *ledgerTx) UpdateDebtProgress(_ context.Context, id int32, remaining decimal.Decimal, status domain.DebtStatus) error {
	if err := t.markDirty(lockKey{domain.EntityDebt, id}); err != nil {
		return err
	}
	d := t.debts[id]
	d.RemainingAmount = remaining
	d.Status = status
	d.UpdatedOn = t.store.now()
	return nil
}

func (t *ledgerTx) FindTransferByKey(_ context.Context, actorID int32, key string) (*domain.Transfer, error) {
	t.store.RLock()
	defer t.store.RUnlock()
	for _, tr := range t.store.transfers {
		if tr.ActorUserID == actorID && tr.IdempotencyKey == key {
			cp := tr
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("transfer with key %q: %w", key, domain.ErrNotFound)
}

func (t *ledgerTx) InsertTransfer(_ context.Context, tr *domain.Transfer) error {
	tr.ID = t.store.nextID()
	tr.CreatedOn = t.store.now()
	t.transfers = append(t.transfers, *tr)
	return nil
}

func (t *ledgerTx) InsertContribution(_ context.Context, c *domain.Contribution) error {
	c.ID = t.store.nextID()
	t.contributions = append(t.contributions, *c)
	return nil
}

func (t *ledgerTx) InsertRepayment(_ context.Context, r *domain.Repayment) error {
	r.ID = t.store.nextID()
	t.repayments = append(t.repayments, *r)
	return nil
}

func (t *ledgerTx) InsertPosting(_ context.Context, p *domain.Posting) error {
	p.ID = t.store.nextID()
	p.CreatedOn = t.store.now()
	t.postings = append(t.postings, *p)
	return nil
}

func (t *ledgerTx) AdvanceSubscription(ctx context.Context, id int32, from, to time.Time) error {
	if err := t.acquire(ctx, lockKey{subscriptionKind, id}); err != nil {
		return err
	}
	t.store.RLock()
	sub, ok := t.store.subscriptions[id]
	t.store.RUnlock()
	if !ok {
		return fmt.Errorf("advance subscription %d: %w", id, domain.ErrNotFound)
	}
	current := sub.NextDueDate
	if staged, ok := t.dueDates[id]; ok {
		current = staged
	}
	if !sub.Active || !current.Equal(from) {
		return fmt.Errorf("%w: subscription %d is no longer due on %s", domain.ErrConflict, id, from.Format(time.DateOnly))
	}
	t.dueDates[id] = to
	return nil
}
