package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunu-rekolt/marketplace/internal/domain/cart"
	"github.com/sunu-rekolt/marketplace/internal/models"
	"github.com/sunu-rekolt/marketplace/internal/repo"
	"github.com/sunu-rekolt/marketplace/internal/repo/repotest"
)

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	return &AuthService{
		Repo:          repo.New(repotest.NewDB(t)),
		Carts:         cart.NewSessions(),
		JWTSecret:     []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
	}
}

func farmerSignup() RegisterInput {
	return RegisterInput{
		FullName:        "Moussa Diop",
		Phone:           "77 123 45 67",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            models.RoleFarmer,
		Location:        "Thiès",
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		msg    string
	}{
		{"missing name", func(in *RegisterInput) { in.FullName = " " }, msgFillRequired},
		{"short password", func(in *RegisterInput) { in.Password, in.ConfirmPassword = "abc", "abc" }, msgShortPassword},
		{"confirm differs", func(in *RegisterInput) { in.ConfirmPassword = "secret2" }, msgPasswordsDiffer},
		{"unknown role", func(in *RegisterInput) { in.Role = models.RoleAdmin }, msgInvalidRole},
		{"farmer without location", func(in *RegisterInput) { in.Location = "" }, msgFarmerLocation},
		{"foreign phone", func(in *RegisterInput) { in.Phone = "+33 6 12 34 56 78" }, msgInvalidPhone},
	}

	s := newAuth(t)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			in := farmerSignup()
			tt.mutate(&in)
			_, err := s.Register(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.msg, Message(err))
		})
	}
}

func TestRegister_NormalizesPhoneAndRejectsDuplicate(t *testing.T) {
	t.Parallel()

	s := newAuth(t)
	ctx := context.Background()

	p, err := s.Register(ctx, farmerSignup())
	require.NoError(t, err)
	assert.Equal(t, "+221771234567", p.Phone)
	assert.NotEqual(t, "secret1", p.PasswordHash)

	again := farmerSignup()
	again.Phone = "+221 77 123 45 67"
	_, err = s.Register(ctx, again)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, msgPhoneTaken, Message(err))

	buyer := farmerSignup()
	buyer.Phone = "78 000 00 01"
	buyer.Role = models.RoleBuyer
	buyer.Location = ""
	_, err = s.Register(ctx, buyer)
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	s := newAuth(t)
	ctx := context.Background()
	in := farmerSignup()
	in.Role = models.RoleBuyer
	p, err := s.Register(ctx, in)
	require.NoError(t, err)

	_, err = s.Login(ctx, "771234567", "wrong-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, msgBadCredentials, Message(err))

	_, err = s.Login(ctx, "70 999 99 99", "secret1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = s.Login(ctx, "", "")
	assert.Equal(t, msgFillAll, Message(err))

	_, err = s.Login(ctx, "12", "secret1")
	assert.Equal(t, msgInvalidPhone, Message(err))

	res, err := s.Login(ctx, "0771234567", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, p.ID, res.Profile.ID)
	assert.True(t, res.RefreshExp.After(res.AccessExp))

	_, open := s.Carts.Get(p.ID)
	assert.True(t, open, "buyer login opens a cart session")

	require.NoError(t, s.Logout(ctx, p.ID, res.RefreshToken))
	_, open = s.Carts.Get(p.ID)
	assert.False(t, open)

	_, err = s.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefresh_RotatesAndRejectsReplay(t *testing.T) {
	t.Parallel()

	s := newAuth(t)
	ctx := context.Background()
	_, err := s.Register(ctx, farmerSignup())
	require.NoError(t, err)
	first, err := s.Login(ctx, "771234567", "secret1")
	require.NoError(t, err)

	second, err := s.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = s.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, msgSessionExpired, Message(err))

	_, err = s.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)

	_, err = s.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = s.Refresh(ctx, first.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
