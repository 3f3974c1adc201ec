package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
	repo "github.com/aurora-mobile/aurora-auth/internal/domain/repository"
	"github.com/aurora-mobile/aurora-auth/pkg/helpers"
	"github.com/aurora-mobile/aurora-auth/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidSession     = errors.New("invalid session")
	ErrSessionCreation    = errors.New("session creation failed")
)

// AuthService implements signup, OTP verification, login and session
// bookkeeping for the auth API.
type AuthService struct {
	Principals repo.PrincipalRepository
	JWT        *helpers.JWTManager
	Redis      *redis.Client
	Publisher  *helpers.RabbitPublisher
	Logger     *logrus.Logger
	AppName    string
	OTPTTL     time.Duration
	SessionTTL time.Duration
}

// TokenResult is the session issued after verification or login.
type TokenResult struct {
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// SignUp registers a new principal and mails a verification code. The
// principal stays unverified until the code is confirmed.
func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (*entity.PendingSignup, error) {
	if existing, err := s.Principals.GetByEmail(email); err == nil && existing != nil {
		if existing.Verified {
			return nil, ErrEmailTaken
		}
		// Unverified leftover from an abandoned signup: reissue the code.
		if err := s.issueOTP(ctx, existing, fullName); err != nil {
			return nil, err
		}
		return &entity.PendingSignup{Email: existing.Email, UserID: existing.ID}, nil
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	p := &entity.Principal{Email: email, PasswordHash: hash, FullName: fullName}
	if err := s.Principals.Create(p); err != nil {
		s.Logger.WithError(err).WithField("email", email).Error("create principal failed")
		return nil, err
	}
	if err := s.issueOTP(ctx, p, fullName); err != nil {
		return nil, err
	}
	return &entity.PendingSignup{Email: p.Email, UserID: p.ID}, nil
}

func (s *AuthService) issueOTP(ctx context.Context, p *entity.Principal, fullName string) error {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return err
	}
	if err := s.Redis.Set(ctx, helpers.KeySignupOTP(p.Email), code, s.OTPTTL).Err(); err != nil {
		s.Logger.WithError(err).WithField("email", p.Email).Error("store otp failed")
		return err
	}
	if s.Publisher != nil {
		name := fullName
		if name == "" {
			name = p.FullName
		}
		job := mailer.EmailJob{
			To:       p.Email,
			Template: "verify_code",
			Data: map[string]any{
				"Name":      name,
				"AppName":   s.AppName,
				"Code":      code,
				"ExpiresIn": s.OTPTTL.String(),
			},
		}
		if err := s.Publisher.PublishJSON(ctx, job); err != nil {
			s.Logger.WithError(err).WithField("email", p.Email).Warn("publish email job failed")
		}
	}
	return nil
}

// VerifyCode confirms the emailed code, marks the principal verified and
// issues a session.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (*TokenResult, error) {
	stored, err := s.Redis.Get(ctx, helpers.KeySignupOTP(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		s.Logger.WithError(err).WithField("email", email).Error("otp lookup failed")
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return nil, ErrInvalidCode
	}

	p, err := s.Principals.GetByEmail(email)
	if err != nil || p == nil {
		return nil, ErrInvalidCode
	}
	if err := s.Principals.SetVerified(p.ID); err != nil {
		s.Logger.WithError(err).WithField("user_id", p.ID).Error("mark verified failed")
		return nil, err
	}
	_ = s.Redis.Del(ctx, helpers.KeySignupOTP(email)).Err()

	return s.issueSession(ctx, p)
}

// Login validates email/password against a verified principal and issues
// a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	p, err := s.Principals.GetByEmail(email)
	if err != nil || p == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(p.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !p.Verified {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(ctx, p)
}

func (s *AuthService) issueSession(ctx context.Context, p *entity.Principal) (*TokenResult, error) {
	sid := uuid.NewString()
	token, exp, err := s.JWT.GenerateToken(p.ID, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", p.ID).Error("generate token failed")
		return nil, ErrSessionCreation
	}

	key := sessionKey(p.ID)
	fields := map[string]any{
		"user_id":    p.ID,
		"email":      p.Email,
		"sid":        sid,
		"created_at": nowRFC3339(),
	}
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, s.SessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.Logger.WithError(err).WithField("key", key).Error("record session failed")
		return nil, ErrSessionCreation
	}

	return &TokenResult{UserID: p.ID, AccessToken: token, ExpiresAt: exp}, nil
}

// SessionUser resolves a bearer token to its user id, checking the token's
// session id against the one recorded in Redis.
func (s *AuthService) SessionUser(ctx context.Context, token string) (string, error) {
	claims, err := s.JWT.ParseToken(token)
	if err != nil {
		return "", ErrInvalidSession
	}
	data, err := s.Redis.HGetAll(ctx, sessionKey(claims.UserID)).Result()
	if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
		return "", ErrInvalidSession
	}
	return claims.UserID, nil
}

// Logout drops the session referenced by the token. Unknown or expired
// tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.JWT.ParseToken(token)
	if err != nil {
		return nil
	}
	if err := s.Redis.Del(ctx, sessionKey(claims.UserID)).Err(); err != nil {
		s.Logger.WithError(err).WithField("user_id", claims.UserID).Warn("delete session failed")
	}
	return nil
}
