package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/repository"
)

const minPasswordLength = 6

// Config controls token signing and session lifetime.
type Config struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Now        func() time.Time
}

// Result is a signed-in session with its user and bearer token.
type Result struct {
	Session *domain.Session `json:"session"`
	User    *domain.User    `json:"user"`
	Token   string          `json:"token,omitempty"`
}

type UseCase struct {
	users       repository.UserRepository
	credentials repository.CredentialRepository
	sessions    repository.SessionRepository
	tokens      tokenIssuer
	ttl         time.Duration
	cost        int
	now         func() time.Time
	listeners   listeners
	logger      *zap.Logger
}

func New(
	users repository.UserRepository,
	credentials repository.CredentialRepository,
	sessions repository.SessionRepository,
	cfg Config,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &UseCase{
		users:       users,
		credentials: credentials,
		sessions:    sessions,
		tokens:      tokenIssuer{secret: []byte(cfg.Secret), issuer: cfg.Issuer},
		ttl:         cfg.SessionTTL,
		cost:        cfg.BcryptCost,
		now:         cfg.Now,
		logger:      logger,
	}
}

// Subscribe registers fn for sign-in and sign-out events and returns a
// function that removes it.
func (uc *UseCase) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	return uc.listeners.add(fn)
}

// SignUp creates a TEAM user with the given password.
func (uc *UseCase) SignUp(ctx context.Context, email, password, name string) (*domain.User, error) {
	return uc.Register(ctx, domain.User{
		Name:  strings.TrimSpace(name),
		Email: email,
		Role:  domain.RoleTeam,
	}, password)
}

// Register stores a user of any role together with its password hash.
// If the hash cannot be saved the user is removed again.
func (uc *UseCase) Register(ctx context.Context, user domain.User, password string) (*domain.User, error) {
	email, err := domain.NormalizeEmail(user.Email)
	if err != nil {
		return nil, err
	}
	user.Email = email
	if len(password) < minPasswordLength {
		return nil, domain.Invalidf("password must have at least %d characters", minPasswordLength)
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.RepositoryError("look up user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	user.ID = ""
	created, err := uc.users.Create(ctx, &user)
	if err != nil {
		return nil, domain.RepositoryError("create user", err)
	}

	if err := uc.credentials.SaveCredentials(ctx, domain.Credentials{
		UserID:       created.ID,
		Email:        created.Email,
		PasswordHash: string(hash),
	}); err != nil {
		if delErr := uc.users.Delete(ctx, created.ID); delErr != nil {
			uc.logger.Error("failed to remove user without credentials", zap.String("user_id", created.ID), zap.Error(delErr))
		}
		return nil, domain.RepositoryError("save credentials", err)
	}

	uc.logger.Info("user registered", zap.String("user_id", created.ID), zap.String("role", string(created.Role)))
	return created, nil
}

// SignIn verifies the password and opens a new session.
func (uc *UseCase) SignIn(ctx context.Context, email, password string, metadata map[string]string) (*Result, error) {
	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	creds, err := uc.credentials.GetCredentials(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.RepositoryError("load credentials", err)
	}
	if creds.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.users.GetByID(ctx, creds.UserID)
	if err != nil {
		return nil, domain.RepositoryError("load user", err)
	}

	session := domain.NewSession(user.ID, uc.now(), uc.ttl, metadata)
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, domain.RepositoryError("save session", err)
	}

	token, err := uc.tokens.issue(session, user.Role)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}

	uc.logger.Info("user signed in", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	uc.listeners.publish(EventSignedIn, session)
	return &Result{Session: session, User: user, Token: token}, nil
}

// SignOut revokes the session. Unknown sessions are treated as signed out.
func (uc *UseCase) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrUnauthorized
	}
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return domain.RepositoryError("delete session", err)
	}
	uc.logger.Info("session revoked", zap.String("session_id", sessionID))
	uc.listeners.publish(EventSignedOut, nil)
	return nil
}

// CurrentSession returns the live session and its user.
func (uc *UseCase) CurrentSession(ctx context.Context, sessionID string) (*Result, error) {
	session, err := uc.liveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.RepositoryError("load user", err)
	}
	return &Result{Session: session, User: user}, nil
}

// Refresh extends the session by the configured TTL and issues a new token.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string) (*Result, error) {
	current, err := uc.CurrentSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session := current.Session
	session.Renew(uc.now(), uc.ttl)
	if err := uc.sessions.Extend(ctx, session); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.RepositoryError("extend session", err)
	}

	token, err := uc.tokens.issue(session, current.User.Role)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	current.Token = token
	return current, nil
}

// Authenticate verifies a bearer token and that its session is still live.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := uc.tokens.parse(token, uc.now())
	if err != nil {
		return nil, err
	}
	session, err := uc.liveSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// RevokeUser ends every session of userID.
func (uc *UseCase) RevokeUser(ctx context.Context, userID string) error {
	if err := uc.sessions.DeleteByUser(ctx, userID); err != nil {
		return domain.RepositoryError("revoke sessions", err)
	}
	return nil
}

// ChangePassword replaces the stored hash after verifying the current password.
func (uc *UseCase) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return domain.RepositoryError("load user", err)
	}
	creds, err := uc.credentials.GetCredentials(ctx, user.Email)
	if err != nil {
		return domain.RepositoryError("load credentials", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}
	if len(next) < minPasswordLength {
		return domain.Invalidf("password must have at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), uc.cost)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}
	creds.PasswordHash = string(hash)
	if err := uc.credentials.SaveCredentials(ctx, *creds); err != nil {
		return domain.RepositoryError("save credentials", err)
	}
	return nil
}

func (uc *UseCase) liveSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthorized
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.RepositoryError("load session", err)
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}
