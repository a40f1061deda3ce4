package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sunu-rekolt/marketplace/internal/domain/cart"
	"github.com/sunu-rekolt/marketplace/internal/domain/phone"
	"github.com/sunu-rekolt/marketplace/internal/models"
	"github.com/sunu-rekolt/marketplace/internal/repo"
	pkghash "github.com/sunu-rekolt/marketplace/pkg/hash"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
	"github.com/sunu-rekolt/marketplace/pkg/tokens"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour

	minPasswordLen = 6

	msgFillRequired    = "Veuillez remplir tous les champs obligatoires."
	msgFillAll         = "Veuillez remplir tous les champs"
	msgInvalidPhone    = "Veuillez entrer un numéro de téléphone sénégalais valide (ex: 77 123 45 67)"
	msgShortPassword   = "Le mot de passe doit contenir au moins 6 caractères"
	msgPasswordsDiffer = "Les mots de passe ne correspondent pas."
	msgFarmerLocation  = "La localisation est requise pour les agriculteurs."
	msgInvalidRole     = "Le rôle doit être agriculteur ou acheteur."
	msgPhoneTaken      = "Ce numéro de téléphone est déjà utilisé."
	msgBadCredentials  = "Numéro de téléphone ou mot de passe incorrect. Veuillez vérifier vos informations."
	msgSessionExpired  = "Votre session a expiré. Veuillez vous reconnecter."
)

type AuthService struct {
	Repo          *repo.GormRepo
	Carts         *cart.Sessions
	JWTSecret     []byte
	RefreshSecret []byte
	Now           func() time.Time
}

type RegisterInput struct {
	FullName        string
	Phone           string
	Password        string
	ConfirmPassword string
	Role            string
	Location        string
	FarmSize        string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	Profile      *models.Profile
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in.FullName = strings.TrimSpace(in.FullName)
	in.Location = strings.TrimSpace(in.Location)
	if in.FullName == "" || strings.TrimSpace(in.Phone) == "" || in.Password == "" {
		return nil, fail(ErrValidation, msgFillRequired)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fail(ErrValidation, msgShortPassword)
	}
	if in.Password != in.ConfirmPassword {
		return nil, fail(ErrValidation, msgPasswordsDiffer)
	}
	if in.Role != models.RoleFarmer && in.Role != models.RoleBuyer {
		return nil, fail(ErrValidation, msgInvalidRole)
	}
	if in.Role == models.RoleFarmer && in.Location == "" {
		return nil, fail(ErrValidation, msgFarmerLocation)
	}
	normalized, err := phone.Normalize(in.Phone)
	if err != nil {
		return nil, failWrap(ErrValidation, msgInvalidPhone, err)
	}

	pwHash, err := pkghash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	p := &models.Profile{
		Phone:        normalized,
		PasswordHash: pwHash,
		Role:         in.Role,
		FullName:     in.FullName,
		Location:     in.Location,
		FarmSize:     strings.TrimSpace(in.FarmSize),
	}
	if err := s.Repo.CreateProfile(ctx, p); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			l.Warn("register_error", "status", 409, "reason", "phone already registered")
			return nil, failWrap(ErrConflict, msgPhoneTaken, err)
		}
		l.Error("register_error", "status", 500, "reason", "cannot create profile", "error", err)
		return nil, err
	}
	return p, nil
}

func (s *AuthService) Login(ctx context.Context, rawPhone, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if strings.TrimSpace(rawPhone) == "" || password == "" {
		return nil, fail(ErrValidation, msgFillAll)
	}
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, failWrap(ErrValidation, msgInvalidPhone, err)
	}
	if len(password) < minPasswordLen {
		return nil, fail(ErrValidation, msgShortPassword)
	}

	p, err := s.Repo.GetProfileByPhone(ctx, normalized)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown phone")
			return nil, fail(ErrUnauthorized, msgBadCredentials)
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !pkghash.CheckPassword(p.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password", "user_id", p.ID)
		return nil, fail(ErrUnauthorized, msgBadCredentials)
	}

	res, err := s.issue(ctx, p)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if p.Role == models.RoleBuyer && s.Carts != nil {
		s.Carts.Open(p.ID)
	}
	return res, nil
}

func (s *AuthService) issue(ctx context.Context, p *models.Profile) (*LoginResult, error) {
	access, refresh, accessExp, refreshExp, jti, err := s.sign(p)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SaveRefreshToken(ctx, &models.RefreshToken{
		JTI:       jti,
		Token:     tokens.Sha256Hex(refresh),
		UserID:    p.ID,
		ExpiresAt: refreshExp,
	}); err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: access, RefreshToken: refresh, AccessExp: accessExp, RefreshExp: refreshExp, Profile: p}, nil
}

func (s *AuthService) sign(p *models.Profile) (access, refresh string, accessExp, refreshExp time.Time, jti string, err error) {
	now := s.now()
	accessExp = now.Add(AccessTTL)
	refreshExp = now.Add(RefreshTTL)

	access, err = tokens.NewAccessToken(p.ID.String(), p.Role, accessExp, s.JWTSecret)
	if err != nil {
		return
	}
	refresh, jti, err = tokens.NewRefreshToken(p.ID.String(), refreshExp, s.RefreshSecret)
	return
}

// Refresh trades a live refresh token for a new pair. The old token stops
// working even if the new pair is never used.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid refresh token", "error", err)
		return nil, failWrap(ErrUnauthorized, msgSessionExpired, err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, failWrap(ErrUnauthorized, msgSessionExpired, err)
	}

	p, err := s.Repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, failWrap(ErrUnauthorized, msgSessionExpired, err)
		}
		return nil, err
	}

	access, refresh, accessExp, refreshExp, jti, err := s.sign(p)
	if err != nil {
		return nil, err
	}
	next := &models.RefreshToken{JTI: jti, Token: tokens.Sha256Hex(refresh), UserID: p.ID, ExpiresAt: refreshExp}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, tokens.Sha256Hex(refreshToken), next); err != nil {
		if errors.Is(err, repo.ErrConflict) || errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "refresh token used, revoked or expired", "user_id", p.ID)
			return nil, failWrap(ErrUnauthorized, msgSessionExpired, err)
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	return &LoginResult{AccessToken: access, RefreshToken: refresh, AccessExp: accessExp, RefreshExp: refreshExp, Profile: p}, nil
}

// Logout revokes the refresh token, if given, and tears down the cart
// session of the user.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if refreshToken != "" {
		if err := s.Repo.RevokeRefreshToken(ctx, tokens.Sha256Hex(refreshToken)); err != nil {
			return err
		}
	}
	if s.Carts != nil {
		s.Carts.Close(userID)
	}
	return nil
}
