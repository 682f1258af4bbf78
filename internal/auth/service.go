package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgAuth "github.com/smartcart/smartcart-backend/pkg/auth"
	"github.com/smartcart/smartcart-backend/pkg/auth/session"
	"github.com/smartcart/smartcart-backend/pkg/config"
	"github.com/smartcart/smartcart-backend/pkg/db"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"github.com/smartcart/smartcart-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service is the storefront's auth provider.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Logout(ctx context.Context, sessionKey, accessToken string) error
	Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error)
	// Session returns nil without error when the token does not map to a
	// live session.
	Session(ctx context.Context, accessToken string) (*SessionInfo, error)
	// OnAuthChange registers l and returns a func that removes it.
	OnAuthChange(l Listener) func()
}

type accountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, email, passwordHash string) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string, accountID uuid.UUID) (string, error)
	Rotate(ctx context.Context, oldAccessID string, accountID uuid.UUID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Accounts       accountRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	accounts  accountRepository
	session   sessionManager
	jwtCfg    config.JWTConfig
	pwCfg     config.PasswordConfig
	logg      *logger.Logger
	now       func() time.Time
	listeners listeners
}

func NewService(params ServiceParams) (Service, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		accounts: params.Accounts,
		session:  params.SessionManager,
		jwtCfg:   params.JWTConfig,
		pwCfg:    params.PasswordConfig,
		logg:     params.Logger,
		now:      params.Now,
	}, nil
}

func (s *service) OnAuthChange(l Listener) func() {
	return s.listeners.add(l)
}

func (s *service) Signup(ctx context.Context, req SignupRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := security.CheckPasswordPolicy(req.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check account email")
	}

	hash, err := security.HashPassword(req.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	account, err := s.accounts.Create(ctx, email, hash)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
	}
	return s.signIn(ctx, req.SessionKey, account)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	account, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, req.SessionKey, account)
}

func (s *service) Logout(ctx context.Context, sessionKey, accessToken string) error {
	if token := strings.TrimSpace(accessToken); token != "" {
		claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, token)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
		}
		if err := s.session.Revoke(ctx, claims.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
		}
	}
	s.listeners.notify(ctx, Event{Type: EventSignedOut, SessionKey: sessionKey})
	return nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, strings.TrimSpace(req.AccessToken))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	accessID, refreshToken, err := s.session.Rotate(ctx, claims.ID, claims.AccountID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate refresh token")
	}

	identity := Identity{AccountID: claims.AccountID, Email: claims.Email}
	resp, err := s.issue(identity, accessID, refreshToken)
	if err != nil {
		return nil, err
	}
	s.listeners.notify(ctx, Event{Type: EventTokenRefreshed, SessionKey: req.SessionKey, Identity: identity})
	return resp, nil
}

func (s *service) Session(ctx context.Context, accessToken string) (*SessionInfo, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, nil
	}
	claims, err := pkgAuth.ParseAccessToken(s.jwtCfg, token)
	if err != nil {
		return nil, nil
	}
	live, err := s.session.HasSession(ctx, claims.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check session")
	}
	if !live {
		return nil, nil
	}
	info := &SessionInfo{
		Identity: Identity{AccountID: claims.AccountID, Email: claims.Email},
		AccessID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

func (s *service) signIn(ctx context.Context, sessionKey string, account *models.Account) (*TokenResponse, error) {
	now := s.now().UTC()
	if err := s.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	account.LastLoginAt = &now

	accessID := session.NewAccessID()
	refreshToken, err := s.session.Generate(ctx, accessID, account.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}

	identity := Identity{AccountID: account.ID, Email: account.Email}
	resp, err := s.issue(identity, accessID, refreshToken)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithUserID(ctx, account.ID.String())
	s.logg.Info(ctx, "auth.signed_in")
	s.listeners.notify(ctx, Event{Type: EventSignedIn, SessionKey: sessionKey, Identity: identity})
	return resp, nil
}

func (s *service) issue(identity Identity, accessID, refreshToken string) (*TokenResponse, error) {
	now := s.now().UTC()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		AccountID: identity.AccountID,
		Email:     identity.Email,
		JTI:       accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		Identity:     identity,
	}, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	account, err := s.accounts.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	valid, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return account, nil
}
