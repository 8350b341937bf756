package memory

import "github.com/thonny3/suivi-buget-perso-sub000/internal/domain"

// PutAccount stores a, assigning an id when a.ID is zero.
func (l *Ledger) PutAccount(a domain.Account) domain.Account {
	if a.ID == 0 {
		a.ID = l.nextID()
	}
	l.Lock()
	defer l.Unlock()
	l.accounts[a.ID] = a
	return a
}

func (l *Ledger) PutObjective(o domain.Objective) domain.Objective {
	if o.ID == 0 {
		o.ID = l.nextID()
	}
	l.Lock()
	defer l.Unlock()
	l.objectives[o.ID] = o
	return o
}

func (l *Ledger) PutDebt(d domain.Debt) domain.Debt {
	if d.ID == 0 {
		d.ID = l.nextID()
	}
	l.Lock()
	defer l.Unlock()
	l.debts[d.ID] = d
	return d
}

func (l *Ledger) PutSubscription(s domain.Subscription) domain.Subscription {
	if s.ID == 0 {
		s.ID = l.nextID()
	}
	l.Lock()
	defer l.Unlock()
	l.subscriptions[s.ID] = s
	return s
}

func (l *Ledger) Subscription(id int32) (domain.Subscription, bool) {
	l.RLock()
	defer l.RUnlock()
	s, ok := l.subscriptions[id]
	return s, ok
}

func (l *Ledger) Grant(accountID, userID int32, role domain.ShareRole) {
	l.Lock()
	defer l.Unlock()
	l.shares[shareKey{accountID, userID}] = role
}

func (l *Ledger) Account(id int32) (domain.Account, bool) {
	l.RLock()
	defer l.RUnlock()
	a, ok := l.accounts[id]
	return a, ok
}

func (l *Ledger) Objective(id int32) (domain.Objective, bool) {
	l.RLock()
	defer l.RUnlock()
	o, ok := l.objectives[id]
	return o, ok
}

func (l *Ledger) Debt(id int32) (domain.Debt, bool) {
	l.RLock()
	defer l.RUnlock()
	d, ok := l.debts[id]
	return d, ok
}

func (l *Ledger) Transfers() []domain.Transfer {
	l.RLock()
	defer l.RUnlock()
	return append([]domain.Transfer(nil), l.transfers...)
}

func (l *Ledger) Contributions() []domain.Contribution {
	l.RLock()
	defer l.RUnlock()
	return append([]domain.Contribution(nil), l.contributions...)
}

func (l *Ledger) Repayments() []domain.Repayment {
	l.RLock()
	defer l.RUnlock()
	return append([]domain.Repayment(nil), l.repayments...)
}

func (l *Ledger) Postings() []domain.Posting {
	l.RLock()
	defer l.RUnlock()
	return append([]domain.Posting(nil), l.postings...)
}
