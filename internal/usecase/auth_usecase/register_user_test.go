package auth_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	auth "app/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

type hasherMock struct{ mock.Mock }

func (m *hasherMock) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

func TestRegisterUser_OK(t *testing.T) {
	repo := new(userRepoMock)
	hasher := new(hasherMock)
	uc := auth.NewRegisterUserUsecase(repo, hasher)

	repo.On("FindByEmail", mock.Anything, "new@example.com").
		Return(nil, repository.ErrUserNotFound)
	hasher.On("Hash", "correct horse battery").Return("hashed-value", nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "new@example.com" &&
			u.PasswordHash == "hashed-value" &&
			u.Role == model.RoleUser &&
			u.IsActive
	})).Return(nil)

	out, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "  New@Example.com ",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", out.User.Email)
	assert.Equal(t, "USER", out.User.Role)

	repo.AssertExpectations(t)
}

func TestRegisterUser_InvalidEmail(t *testing.T) {
	uc := auth.NewRegisterUserUsecase(new(userRepoMock), new(hasherMock))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "not-an-email",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidEmailFormat)
}

// 12文字未満は拒否
func TestRegisterUser_PasswordTooShort(t *testing.T) {
	uc := auth.NewRegisterUserUsecase(new(userRepoMock), new(hasherMock))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "a@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestRegisterUser_WeakPassword(t *testing.T) {
	uc := auth.NewRegisterUserUsecase(new(userRepoMock), new(hasherMock))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "a@example.com",
		Password: "123456789012",
	})
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	repo := new(userRepoMock)
	uc := auth.NewRegisterUserUsecase(repo, new(hasherMock))

	repo.On("FindByEmail", mock.Anything, "taken@example.com").
		Return(&model.User{ID: 1, Email: "taken@example.com"}, nil)

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "taken@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBcryptHasherAndVerifier(t *testing.T) {
	hasher := auth.NewBcryptPasswordHasher(4)
	verifier := auth.NewBcryptPasswordVerifier()

	hashed, err := hasher.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hashed)

	assert.True(t, verifier.Verify("correct horse battery", hashed))
	assert.False(t, verifier.Verify("wrong password!!", hashed))
}
