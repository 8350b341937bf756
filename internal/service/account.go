package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/config"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

type accountService struct {
	accountRepo repository.AccountRepository
	shareRepo   repository.ShareRepository
	postingRepo repository.PostingRepository
	policy      config.LedgerConfig
}

func NewAccountService(
	accountRepo repository.AccountRepository,
	shareRepo repository.ShareRepository,
	postingRepo repository.PostingRepository,
	policy config.LedgerConfig,
) AccountService {
	return &accountService{
		accountRepo: accountRepo,
		shareRepo:   shareRepo,
		postingRepo: postingRepo,
		policy:      policy,
	}
}

// resolveRole returns the effective role of userID on the account, or
// ErrForbidden when the user has no access at all.
func resolveRole(ctx context.Context, shareRepo repository.ShareRepository, account *domain.Account, userID int32) (domain.ShareRole, error) {
	var granted domain.ShareRole
	if account.OwnerID != userID {
		role, err := shareRepo.GetRole(ctx, account.ID, userID)
		if err != nil {
			return "", err
		}
		granted = role
	}
	role := account.AccessRole(userID, granted)
	if !role.Valid() {
		return "", fmt.Errorf("%w: no access to account %d", domain.ErrForbidden, account.ID)
	}
	return role, nil
}

func (s *accountService) CreateAccount(ctx context.Context, userID int32, account *domain.Account) error {
	logger.EnterMethod("accountService.CreateAccount", "userID", userID, "type", account.Type)

	account.Name = strings.TrimSpace(account.Name)
	if account.Name == "" {
		return fmt.Errorf("%w: account name is required", domain.ErrValidation)
	}
	if !account.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", domain.ErrValidation, account.Type)
	}
	if err := domain.CheckAmount("opening balance", account.Balance); err != nil {
		return err
	}
	if account.Balance.IsNegative() && !s.policy.AllowsOverdraft(string(account.Type)) {
		return fmt.Errorf("%w: opening balance cannot be negative", domain.ErrValidation)
	}
	account.Currency = strings.ToUpper(strings.TrimSpace(account.Currency))
	if account.Currency == "" {
		account.Currency = s.policy.DefaultCurrency
	}
	account.OwnerID = userID

	if err := s.accountRepo.Create(ctx, account); err != nil {
		logger.ExitMethodWithError("accountService.CreateAccount", err, "userID", userID)
		return err
	}
	account.Role = domain.ShareRoleOwner
	logger.ExitMethod("accountService.CreateAccount", "accountID", account.ID)
	return nil
}

func (s *accountService) GetAccount(ctx context.Context, userID, accountID int32) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	role, err := resolveRole(ctx, s.shareRepo, account, userID)
	if err != nil {
		return nil, err
	}
	account.Role = role
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, userID int32) ([]domain.Account, error) {
	return s.accountRepo.ListAccessible(ctx, userID)
}

// UpdateAccount renames or retypes an account. Balance is never touched here.
func (s *accountService) UpdateAccount(ctx context.Context, userID int32, changes *domain.Account) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, changes.ID)
	if err != nil {
		return nil, err
	}
	role, err := resolveRole(ctx, s.shareRepo, account, userID)
	if err != nil {
		return nil, err
	}
	if !role.CanManage() {
		return nil, fmt.Errorf("%w: role %s cannot edit account %d", domain.ErrForbidden, role, account.ID)
	}

	if name := strings.TrimSpace(changes.Name); name != "" {
		account.Name = name
	}
	if changes.Type != "" {
		if !changes.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown account type %q", domain.ErrValidation, changes.Type)
		}
		account.Type = changes.Type
	}
	allowNegative := s.policy.AllowsOverdraft(string(account.Type))
	if account.Balance.IsNegative() && !allowNegative {
		return nil, fmt.Errorf("%w: account %d is overdrawn and type %s does not allow it", domain.ErrValidation, account.ID, account.Type)
	}
	if err := s.accountRepo.Update(ctx, account, allowNegative); err != nil {
		return nil, err
	}
	account.Role = role
	return account, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, userID, accountID int32) error {
	logger.EnterMethod("accountService.DeleteAccount", "userID", userID, "accountID", accountID)

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		logger.ExitMethodWithError("accountService.DeleteAccount", err, "accountID", accountID)
		return err
	}
	if account.OwnerID != userID {
		err := fmt.Errorf("%w: only the owner can delete account %d", domain.ErrForbidden, accountID)
		logger.ExitMethodWithError("accountService.DeleteAccount", err, "accountID", accountID)
		return err
	}
	if err := s.accountRepo.Delete(ctx, accountID); err != nil {
		logger.ExitMethodWithError("accountService.DeleteAccount", err, "accountID", accountID)
		return err
	}
	logger.ExitMethod("accountService.DeleteAccount", "accountID", accountID)
	return nil
}

func (s *accountService) ListOperations(ctx context.Context, userID, accountID int32, limit, offset int32) ([]domain.Posting, int32, error) {
	if _, err := s.GetAccount(ctx, userID, accountID); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.postingRepo.ListByAccount(ctx, accountID, limit, offset)
}
