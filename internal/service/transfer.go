package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/config"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type transferService struct {
	ledger       repository.Ledger
	transferRepo repository.TransferRepository
	userRepo     repository.UserRepository
	noteSvc      NotificationService
	emailSvc     EmailService
	policy       config.LedgerConfig
	now          func() time.Time
}

func NewTransferService(
	ledger repository.Ledger,
	transferRepo repository.TransferRepository,
	userRepo repository.UserRepository,
	noteSvc NotificationService,
	emailSvc EmailService,
	policy config.LedgerConfig,
) TransferService {
	return &transferService{
		ledger:       ledger,
		transferRepo: transferRepo,
		userRepo:     userRepo,
		noteSvc:      noteSvc,
		emailSvc:     emailSvc,
		policy:       policy,
		now:          time.Now,
	}
}

// lockedEndpoints holds the rows locked for one transfer, keyed by kind.
type lockedEndpoints struct {
	accounts  map[int32]*domain.Account
	objective *domain.Objective
	debt      *domain.Debt
}

type endpointRef struct {
	kind domain.EntityKind
	id   int32
}

// outcome is what one committed unit produced, including what the
// post-commit notifications need.
type outcome struct {
	result  *domain.TransferResult
	reached *domain.Objective
}

func (s *transferService) Apply(ctx context.Context, req domain.TransferRequest) (*domain.TransferResult, error) {
	logger.EnterMethod("transferService.Apply", "type", req.Type, "actorID", req.ActorUserID,
		"sourceID", req.SourceID, "targetID", req.TargetID, "amount", req.Amount.String())

	if err := req.Validate(); err != nil {
		logger.ExitMethodWithError("transferService.Apply", err, "type", req.Type)
		return nil, err
	}

	var out *outcome
	err := withRetry(ctx, s.policy, "transferService.Apply", func() error {
		var err error
		out, err = s.applyOnce(ctx, req)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("transferService.Apply", err, "type", req.Type, "actorID", req.ActorUserID)
		return nil, err
	}

	if out.reached != nil {
		s.notifyObjectiveReached(ctx, out.reached)
	}

	logger.ExitMethod("transferService.Apply", "transferID", out.result.Transfer.ID, "replayed", out.result.Replayed)
	return out.result, nil
}

func (s *transferService) applyOnce(ctx context.Context, req domain.TransferRequest) (*outcome, error) {
	var out *outcome
	err := s.ledger.WithinTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		if req.IdempotencyKey != "" {
			prior, err := tx.FindTransferByKey(ctx, req.ActorUserID, req.IdempotencyKey)
			if err == nil {
				out, err = s.replay(ctx, tx, req, prior)
				return err
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}

		ep, err := lockEndpoints(ctx, tx, req.Type, req.SourceID, req.TargetID)
		if err != nil {
			return err
		}
		if err := authorize(ctx, tx, req.ActorUserID, ep); err != nil {
			return err
		}
		out, err = s.move(ctx, tx, req, ep)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// lockEndpoints locks both sides of a transfer ordered by (kind rank, id), the
// same order for every transfer, so opposite-direction transfers cannot deadlock.
func lockEndpoints(ctx context.Context, tx repository.LedgerTx, typ domain.TransferType, sourceID, targetID int32) (*lockedEndpoints, error) {
	sourceKind, targetKind, err := typ.Endpoints()
	if err != nil {
		return nil, err
	}
	refs := []endpointRef{{sourceKind, sourceID}, {targetKind, targetID}}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].kind.Rank() != refs[j].kind.Rank() {
			return refs[i].kind.Rank() < refs[j].kind.Rank()
		}
		return refs[i].id < refs[j].id
	})

	ep := &lockedEndpoints{accounts: make(map[int32]*domain.Account, 2)}
	for _, ref := range refs {
		switch ref.kind {
		case domain.EntityAccount:
			a, err := tx.LockAccount(ctx, ref.id)
			if err != nil {
				return nil, err
			}
			ep.accounts[a.ID] = a
		case domain.EntityObjective:
			o, err := tx.LockObjective(ctx, ref.id)
			if err != nil {
				return nil, err
			}
			ep.objective = o
		case domain.EntityDebt:
			d, err := tx.LockDebt(ctx, ref.id)
			if err != nil {
				return nil, err
			}
			ep.debt = d
		}
	}
	return ep, nil
}

func authorize(ctx context.Context, tx repository.LedgerTx, actorID int32, ep *lockedEndpoints) error {
	for _, a := range ep.accounts {
		var granted domain.ShareRole
		if a.OwnerID != actorID {
			role, err := tx.ShareRole(ctx, a.ID, actorID)
			if err != nil {
				return err
			}
			granted = role
		}
		if !a.AccessRole(actorID, granted).CanWrite() {
			return fmt.Errorf("%w: no write access to account %d", domain.ErrForbidden, a.ID)
		}
	}
	if ep.objective != nil && ep.objective.UserID != actorID {
		return fmt.Errorf("%w: objective %d belongs to another user", domain.ErrForbidden, ep.objective.ID)
	}
	if ep.debt != nil && ep.debt.UserID != actorID {
		return fmt.Errorf("%w: debt %d belongs to another user", domain.ErrForbidden, ep.debt.ID)
	}
	return nil
}

func (s *transferService) move(ctx context.Context, tx repository.LedgerTx, req domain.TransferRequest, ep *lockedEndpoints) (*outcome, error) {
	now := s.now()
	effective := req.Date
	if effective.IsZero() {
		effective = now
	}

	record := &domain.Transfer{
		Type:           req.Type,
		SourceID:       req.SourceID,
		TargetID:       req.TargetID,
		Amount:         req.Amount,
		ActorUserID:    req.ActorUserID,
		IdempotencyKey: req.IdempotencyKey,
		Description:    req.Description,
	}
	out := &outcome{result: &domain.TransferResult{}}
	res := out.result

	switch req.Type {
	case domain.TransferAccountToAccount:
		src, dst := ep.accounts[req.SourceID], ep.accounts[req.TargetID]
		if src.Currency != dst.Currency {
			return nil, fmt.Errorf("%w: currency mismatch %s/%s", domain.ErrValidation, src.Currency, dst.Currency)
		}
		if err := s.debit(ctx, tx, src, req.Amount); err != nil {
			return nil, err
		}
		if err := credit(ctx, tx, dst, req.Amount); err != nil {
			return nil, err
		}
		if err := tx.InsertTransfer(ctx, record); err != nil {
			return nil, err
		}
		res.Source, res.Target = accountState(src), accountState(dst)

	case domain.TransferAccountToObjective:
		acc, obj := ep.accounts[req.SourceID], ep.objective
		current := obj.CurrentAmount.Add(req.Amount)
		if s.policy.ObjectiveOverflow == config.ObjectiveOverflowReject && current.GreaterThan(obj.TargetAmount) {
			return nil, fmt.Errorf("%w: contribution exceeds the remaining %s of objective %d",
				domain.ErrValidation, obj.TargetAmount.Sub(obj.CurrentAmount).String(), obj.ID)
		}
		if err := s.debit(ctx, tx, acc, req.Amount); err != nil {
			return nil, err
		}
		change, err := updateObjective(ctx, tx, obj, current, now)
		if err != nil {
			return nil, err
		}
		if err := tx.InsertTransfer(ctx, record); err != nil {
			return nil, err
		}
		contribution := &domain.Contribution{
			ObjectiveID:   obj.ID,
			AccountID:     acc.ID,
			UserID:        req.ActorUserID,
			TransferID:    record.ID,
			Amount:        req.Amount,
			ContributedOn: effective,
		}
		if err := tx.InsertContribution(ctx, contribution); err != nil {
			return nil, err
		}
		res.Source, res.Target = accountState(acc), objectiveState(obj)
		res.StatusChange = change
		res.Contribution = contribution
		if change != nil && obj.Status == domain.ObjectiveStatusReached {
			res.ObjectiveReached = true
			out.reached = obj
		}

	case domain.TransferObjectiveToAccount:
		obj, acc := ep.objective, ep.accounts[req.TargetID]
		if req.Amount.GreaterThan(obj.CurrentAmount) {
			return nil, fmt.Errorf("%w: objective %d holds %s", domain.ErrInsufficientObjectiveFunds, obj.ID, obj.CurrentAmount.String())
		}
		change, err := updateObjective(ctx, tx, obj, obj.CurrentAmount.Sub(req.Amount), now)
		if err != nil {
			return nil, err
		}
		if err := credit(ctx, tx, acc, req.Amount); err != nil {
			return nil, err
		}
		if err := tx.InsertTransfer(ctx, record); err != nil {
			return nil, err
		}
		res.Source, res.Target = objectiveState(obj), accountState(acc)
		res.StatusChange = change

	case domain.TransferDebtRepayment:
		acc, debt := ep.accounts[req.SourceID], ep.debt
		if !debt.RemainingAmount.IsPositive() {
			return nil, fmt.Errorf("%w: debt %d is already settled", domain.ErrValidation, debt.ID)
		}
		applied := req.Amount
		if applied.GreaterThan(debt.RemainingAmount) {
			if s.policy.DebtOverpayment != config.DebtOverpaymentClamp {
				return nil, fmt.Errorf("%w: %s requested, %s remaining", domain.ErrRepaymentExceedsDebt,
					applied.String(), debt.RemainingAmount.String())
			}
			applied = debt.RemainingAmount
		}
		// Repaying a borrowed debt spends money; a lent debt being repaid brings it back.
		if debt.Direction == domain.DebtDirectionLent {
			if err := credit(ctx, tx, acc, applied); err != nil {
				return nil, err
			}
		} else if err := s.debit(ctx, tx, acc, applied); err != nil {
			return nil, err
		}
		change, err := updateDebt(ctx, tx, debt, debt.RemainingAmount.Sub(applied), now)
		if err != nil {
			return nil, err
		}
		record.Amount = applied
		if err := tx.InsertTransfer(ctx, record); err != nil {
			return nil, err
		}
		repayment := &domain.Repayment{
			DebtID:     debt.ID,
			AccountID:  acc.ID,
			UserID:     req.ActorUserID,
			TransferID: record.ID,
			Amount:     applied,
			PaidOn:     effective,
		}
		if err := tx.InsertRepayment(ctx, repayment); err != nil {
			return nil, err
		}
		res.Source, res.Target = accountState(acc), debtState(debt)
		res.StatusChange = change
		res.Repayment = repayment
	}

	res.Transfer = *record
	return out, nil
}

// replay answers a request whose idempotency key already committed, without
// applying it again.
func (s *transferService) replay(ctx context.Context, tx repository.LedgerTx, req domain.TransferRequest, prior *domain.Transfer) (*outcome, error) {
	if prior.Type != req.Type || prior.SourceID != req.SourceID || prior.TargetID != req.TargetID {
		return nil, fmt.Errorf("%w: idempotency key %q was used for a different transfer", domain.ErrConflict, req.IdempotencyKey)
	}
	if !prior.Amount.Equal(req.Amount) && !s.wasClamped(prior, req) {
		return nil, fmt.Errorf("%w: idempotency key %q was used for %s, not %s", domain.ErrConflict,
			req.IdempotencyKey, prior.Amount.String(), req.Amount.String())
	}
	ep, err := lockEndpoints(ctx, tx, prior.Type, prior.SourceID, prior.TargetID)
	if err != nil {
		return nil, err
	}
	res := &domain.TransferResult{Transfer: *prior, Replayed: true}
	res.Source = endpointState(ep, prior.Type, prior.SourceID, true)
	res.Target = endpointState(ep, prior.Type, prior.TargetID, false)
	logger.Info("Replayed idempotent transfer", "transferID", prior.ID, "actorID", prior.ActorUserID)
	return &outcome{result: res}, nil
}

// wasClamped reports whether prior is req recorded at the remaining debt.
func (s *transferService) wasClamped(prior *domain.Transfer, req domain.TransferRequest) bool {
	return prior.Type == domain.TransferDebtRepayment &&
		s.policy.DebtOverpayment == config.DebtOverpaymentClamp &&
		prior.Amount.LessThan(req.Amount)
}

func (s *transferService) debit(ctx context.Context, tx repository.LedgerTx, acc *domain.Account, amount decimal.Decimal) error {
	balance := acc.Balance.Sub(amount)
	if balance.IsNegative() && !s.policy.AllowsOverdraft(string(acc.Type)) {
		return fmt.Errorf("%w: account %d holds %s", domain.ErrInsufficientFunds, acc.ID, acc.Balance.String())
	}
	if err := tx.UpdateAccountBalance(ctx, acc.ID, balance); err != nil {
		return err
	}
	acc.Balance = balance
	return nil
}

func credit(ctx context.Context, tx repository.LedgerTx, acc *domain.Account, amount decimal.Decimal) error {
	balance := acc.Balance.Add(amount)
	if err := tx.UpdateAccountBalance(ctx, acc.ID, balance); err != nil {
		return err
	}
	acc.Balance = balance
	return nil
}

func updateObjective(ctx context.Context, tx repository.LedgerTx, obj *domain.Objective, current decimal.Decimal, today time.Time) (*domain.StatusChange, error) {
	from := obj.Status
	status := domain.DeriveObjectiveStatus(current, obj.TargetAmount, obj.Deadline, today)
	if err := tx.UpdateObjectiveProgress(ctx, obj.ID, current, status); err != nil {
		return nil, err
	}
	obj.CurrentAmount = current
	obj.Status = status
	obj.Progress = domain.ObjectiveProgress(current, obj.TargetAmount)
	if from == status {
		return nil, nil
	}
	return &domain.StatusChange{Kind: domain.EntityObjective, ID: obj.ID, From: string(from), To: string(status)}, nil
}

func updateDebt(ctx context.Context, tx repository.LedgerTx, debt *domain.Debt, remaining decimal.Decimal, today time.Time) (*domain.StatusChange, error) {
	from := debt.Status
	status := domain.DeriveDebtStatus(remaining, debt.DueDate, today)
	if err := tx.UpdateDebtProgress(ctx, debt.ID, remaining, status); err != nil {
		return nil, err
	}
	debt.RemainingAmount = remaining
	debt.Status = status
	if from == status {
		return nil, nil
	}
	return &domain.StatusChange{Kind: domain.EntityDebt, ID: debt.ID, From: string(from), To: string(status)}, nil
}

func accountState(a *domain.Account) domain.EndpointState {
	return domain.EndpointState{Kind: domain.EntityAccount, ID: a.ID, Amount: a.Balance}
}

func objectiveState(o *domain.Objective) domain.EndpointState {
	return domain.EndpointState{Kind: domain.EntityObjective, ID: o.ID, Amount: o.CurrentAmount, Status: string(o.Status)}
}

func debtState(d *domain.Debt) domain.EndpointState {
	return domain.EndpointState{Kind: domain.EntityDebt, ID: d.ID, Amount: d.RemainingAmount, Status: string(d.Status)}
}

func endpointState(ep *lockedEndpoints, typ domain.TransferType, id int32, source bool) domain.EndpointState {
	sourceKind, targetKind, _ := typ.Endpoints()
	kind := targetKind
	if source {
		kind = sourceKind
	}
	switch kind {
	case domain.EntityObjective:
		return objectiveState(ep.objective)
	case domain.EntityDebt:
		return debtState(ep.debt)
	default:
		return accountState(ep.accounts[id])
	}
}

func (s *transferService) notifyObjectiveReached(ctx context.Context, obj *domain.Objective) {
	note := &domain.Notification{
		UserID:  obj.UserID,
		Title:   "Objectif atteint",
		Message: fmt.Sprintf("Félicitations, l'objectif %s a atteint %s.", obj.Name, obj.TargetAmount.StringFixed(2)),
		Attributes: map[string]string{
			"type":         "OBJECTIVE_REACHED",
			"objective_id": fmt.Sprintf("%d", obj.ID),
		},
	}
	if err := s.noteSvc.Notify(ctx, note); err != nil {
		logger.Warn("Failed to record objective notification", "objectiveID", obj.ID, "error", err)
	}

	user, err := s.userRepo.GetByID(ctx, obj.UserID)
	if err != nil {
		logger.Warn("Failed to load objective owner for email", "objectiveID", obj.ID, "error", err)
		return
	}
	if err := s.emailSvc.SendObjectiveReached(ctx, user.Email, user.Name, obj.Name, obj.TargetAmount.StringFixed(2)); err != nil {
		logger.Warn("Failed to send objective reached email", "objectiveID", obj.ID, "error", err)
	}
}

func (s *transferService) History(ctx context.Context, userID int32, limit, offset int32) ([]domain.Transfer, int32, error) {
	logger.EnterMethod("transferService.History", "userID", userID, "limit", limit, "offset", offset)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	transfers, total, err := s.transferRepo.ListForUser(ctx, userID, limit, offset)
	if err != nil {
		logger.ExitMethodWithError("transferService.History", err, "userID", userID)
		return nil, 0, err
	}
	logger.ExitMethod("transferService.History", "userID", userID, "count", len(transfers), "total", total)
	return transfers, total, nil
}
