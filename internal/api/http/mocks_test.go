package http_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

// MockAuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, string, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*domain.User), args.String(1), args.String(2), args.Error(3)
}
func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*domain.User), args.String(1), args.String(2), args.Error(3)
}
func (m *MockAuthService) RefreshToken(ctx context.Context, refresh string) (string, string, error) {
	args := m.Called(ctx, refresh)
	return args.String(0), args.String(1), args.Error(2)
}

// MockTransferService
type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Apply(ctx context.Context, req domain.TransferRequest) (*domain.TransferResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransferResult), args.Error(1)
}
func (m *MockTransferService) History(ctx context.Context, userID int32, limit, offset int32) ([]domain.Transfer, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Transfer), args.Get(1).(int32), args.Error(2)
}

// MockAccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, userID int32, account *domain.Account) error {
	args := m.Called(ctx, userID, account)
	return args.Error(0)
}
func (m *MockAccountService) GetAccount(ctx context.Context, userID, accountID int32) (*domain.Account, error) {
	args := m.Called(ctx, userID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, userID int32) ([]domain.Account, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, userID int32, account *domain.Account) (*domain.Account, error) {
	args := m.Called(ctx, userID, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, userID, accountID int32) error {
	args := m.Called(ctx, userID, accountID)
	return args.Error(0)
}
func (m *MockAccountService) ListOperations(ctx context.Context, userID, accountID int32, limit, offset int32) ([]domain.Posting, int32, error) {
	args := m.Called(ctx, userID, accountID, limit, offset)
	return args.Get(0).([]domain.Posting), args.Get(1).(int32), args.Error(2)
}

// MockShareService
type MockShareService struct {
	mock.Mock
}

func (m *MockShareService) GrantAccess(ctx context.Context, actorID, accountID int32, email string, role domain.ShareRole) (*domain.ShareGrant, error) {
	args := m.Called(ctx, actorID, accountID, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShareGrant), args.Error(1)
}
func (m *MockShareService) ListGrants(ctx context.Context, actorID, accountID int32) ([]domain.ShareGrant, error) {
	args := m.Called(ctx, actorID, accountID)
	return args.Get(0).([]domain.ShareGrant), args.Error(1)
}
func (m *MockShareService) RevokeAccess(ctx context.Context, actorID, accountID, userID int32) error {
	args := m.Called(ctx, actorID, accountID, userID)
	return args.Error(0)
}

// MockPostingService
type MockPostingService struct {
	mock.Mock
}

func (m *MockPostingService) Record(ctx context.Context, p *domain.Posting) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPostingService) ChargeSubscription(ctx context.Context, sub domain.Subscription) (*domain.Posting, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Posting), args.Error(1)
}
