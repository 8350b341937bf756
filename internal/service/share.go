package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/logger"
	"github.com/thonny3/suivi-buget-perso-sub000/internal/repository"
)

type shareService struct {
	accountRepo repository.AccountRepository
	shareRepo   repository.ShareRepository
	userRepo    repository.UserRepository
	noteSvc     NotificationService
	emailSvc    EmailService
}

func NewShareService(
	accountRepo repository.AccountRepository,
	shareRepo repository.ShareRepository,
	userRepo repository.UserRepository,
	noteSvc NotificationService,
	emailSvc EmailService,
) ShareService {
	return &shareService{
		accountRepo: accountRepo,
		shareRepo:   shareRepo,
		userRepo:    userRepo,
		noteSvc:     noteSvc,
		emailSvc:    emailSvc,
	}
}

// manageable loads the account and checks actorID may grant or revoke on it.
func (s *shareService) manageable(ctx context.Context, actorID, accountID int32) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	role, err := resolveRole(ctx, s.shareRepo, account, actorID)
	if err != nil {
		return nil, err
	}
	if !role.CanManage() {
		return nil, fmt.Errorf("%w: role %s cannot manage sharing of account %d", domain.ErrForbidden, role, accountID)
	}
	return account, nil
}

func (s *shareService) GrantAccess(ctx context.Context, actorID, accountID int32, email string, role domain.ShareRole) (*domain.ShareGrant, error) {
	logger.EnterMethod("shareService.GrantAccess", "actorID", actorID, "accountID", accountID, "role", role)

	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	account, err := s.manageable(ctx, actorID, accountID)
	if err != nil {
		logger.ExitMethodWithError("shareService.GrantAccess", err, "accountID", accountID)
		return nil, err
	}

	invitee, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("no user registered with email %s: %w", email, domain.ErrNotFound)
		}
		logger.ExitMethodWithError("shareService.GrantAccess", err, "accountID", accountID)
		return nil, err
	}
	if invitee.ID == account.OwnerID {
		return nil, fmt.Errorf("%w: the owner already has full access", domain.ErrValidation)
	}

	grant := &domain.ShareGrant{
		AccountID: accountID,
		UserID:    invitee.ID,
		Email:     invitee.Email,
		Name:      invitee.Name,
		Role:      role,
	}
	if err := s.shareRepo.Upsert(ctx, grant); err != nil {
		logger.ExitMethodWithError("shareService.GrantAccess", err, "accountID", accountID)
		return nil, err
	}

	note := &domain.Notification{
		UserID:  invitee.ID,
		Title:   "Compte partagé",
		Message: fmt.Sprintf("Le compte %s est partagé avec vous (%s)", account.Name, role),
		Attributes: map[string]string{
			"type":       "ACCOUNT_SHARED",
			"account_id": fmt.Sprintf("%d", accountID),
		},
	}
	if err := s.noteSvc.Notify(ctx, note); err != nil {
		logger.Warn("Failed to record share notification", "accountID", accountID, "error", err)
	}
	if owner, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		if err := s.emailSvc.SendShareInvitation(ctx, invitee.Email, invitee.Name, owner.Name, account.Name, role); err != nil {
			logger.Warn("Failed to send share invitation", "accountID", accountID, "error", err)
		}
	}

	logger.ExitMethod("shareService.GrantAccess", "accountID", accountID, "userID", invitee.ID)
	return grant, nil
}

func (s *shareService) ListGrants(ctx context.Context, actorID, accountID int32) ([]domain.ShareGrant, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if _, err := resolveRole(ctx, s.shareRepo, account, actorID); err != nil {
		return nil, err
	}
	return s.shareRepo.ListByAccount(ctx, accountID)
}

func (s *shareService) RevokeAccess(ctx context.Context, actorID, accountID, userID int32) error {
	logger.EnterMethod("shareService.RevokeAccess", "actorID", actorID, "accountID", accountID, "userID", userID)

	// Anyone may leave an account shared with them.
	if actorID != userID {
		if _, err := s.manageable(ctx, actorID, accountID); err != nil {
			logger.ExitMethodWithError("shareService.RevokeAccess", err, "accountID", accountID)
			return err
		}
	}
	if err := s.shareRepo.Delete(ctx, accountID, userID); err != nil {
		logger.ExitMethodWithError("shareService.RevokeAccess", err, "accountID", accountID)
		return err
	}
	logger.ExitMethod("shareService.RevokeAccess", "accountID", accountID, "userID", userID)
	return nil
}
