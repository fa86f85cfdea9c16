package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/infrastructure"
	"github.com/codeladder/dashboard/internal/ledger"
)

// SessionService exchanges ledger credentials for local access tokens.
// The upstream ledger token is never handed back to the browser directly;
// it is stored against a session row and forwarded on each ledger call.
type SessionService struct {
	sessionRepo domain.SessionRepository
	ledger      *ledger.Client
	jwtConfig   *infrastructure.JWTConfig
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo domain.SessionRepository,
	ledgerClient *ledger.Client,
	jwtConfig *infrastructure.JWTConfig,
	tracer trace.Tracer,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		ledger:      ledgerClient,
		jwtConfig:   jwtConfig,
		tracer:      tracer,
		logger:      logger,
	}
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Login verifies the username and upstream token against the ledger and,
// on success, persists a session and issues a token pair for it.
func (s *SessionService) Login(ctx context.Context, username, upstreamToken string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "SessionService.Login")
	defer span.End()

	span.SetAttributes(attribute.String("user.name", username))

	if username == "" || upstreamToken == "" {
		return nil, domain.ErrInvalidCredentials
	}

	// The ledger has no dedicated verification endpoint, so a fetch of the
	// tracked problemset doubles as the credential check.
	candidate := domain.Session{Username: username, UpstreamToken: upstreamToken}
	if _, err := s.ledger.FetchProblemset(ctx, candidate); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error("Ledger credential check failed", zap.Error(err))
		return nil, domain.ErrLedgerUnavailable
	}

	now := time.Now()
	record := &domain.SessionRecord{
		Username:      username,
		UpstreamToken: upstreamToken,
		CreatedAt:     now,
		LastSeenAt:    now,
	}
	if err := s.sessionRepo.Create(record); err != nil {
		s.logger.Error("Failed to persist session", zap.Error(err))
		return nil, err
	}

	tokens, err := s.generateTokenPair(record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Session created",
		zap.String("session_id", record.ID.String()),
		zap.String("username", username),
	)

	span.SetAttributes(attribute.String("session.id", record.ID.String()))
	return tokens, nil
}

// RefreshToken generates a new token pair from a refresh token
func (s *SessionService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "SessionService.RefreshToken")
	defer span.End()

	record, err := s.lookupSession(refreshToken, "refresh")
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Touch(record.ID, time.Now()); err != nil {
		s.logger.Warn("Failed to touch session", zap.Error(err))
	}

	span.SetAttributes(attribute.String("session.id", record.ID.String()))
	return s.generateTokenPair(record)
}

// ResolveAccessToken validates an access token and resolves its session.
func (s *SessionService) ResolveAccessToken(ctx context.Context, tokenString string) (domain.Session, error) {
	record, err := s.lookupSession(tokenString, "access")
	if err != nil {
		return domain.Session{}, err
	}

	if err := s.sessionRepo.Touch(record.ID, time.Now()); err != nil {
		s.logger.Warn("Failed to touch session", zap.Error(err))
	}

	return domain.Session{
		Username:      record.Username,
		UpstreamToken: record.UpstreamToken,
	}, nil
}

// Logout removes the session behind an access token. An already-missing
// session is treated as success.
func (s *SessionService) Logout(ctx context.Context, tokenString string) error {
	ctx, span := s.tracer.Start(ctx, "SessionService.Logout")
	defer span.End()

	record, err := s.lookupSession(tokenString, "access")
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	if err := s.sessionRepo.Delete(record.ID); err != nil {
		s.logger.Error("Failed to delete session", zap.Error(err))
		return err
	}

	s.logger.Info("Session deleted", zap.String("session_id", record.ID.String()))
	span.SetAttributes(attribute.String("session.id", record.ID.String()))
	return nil
}

// lookupSession validates a token of the given type and loads its session row
func (s *SessionService) lookupSession(tokenString, wantType string) (*domain.SessionRecord, error) {
	claims, err := s.validateToken(tokenString)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != wantType {
		return nil, domain.ErrInvalidToken
	}

	sessionIDStr, ok := claims["sub"].(string)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	return s.sessionRepo.FindByID(sessionID)
}

// generateTokenPair creates access and refresh tokens bound to a session row
func (s *SessionService) generateTokenPair(record *domain.SessionRecord) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.jwtConfig.AccessTokenExpiry)
	refreshExpiry := now.Add(s.jwtConfig.RefreshTokenExpiry)

	accessClaims := jwt.MapClaims{
		"sub":      record.ID.String(),
		"username": record.Username,
		"type":     "access",
		"iat":      now.Unix(),
		"exp":      accessExpiry.Unix(),
		"iss":      s.jwtConfig.Issuer,
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.jwtConfig.SecretKey))
	if err != nil {
		return nil, err
	}

	refreshClaims := jwt.MapClaims{
		"sub":  record.ID.String(),
		"type": "refresh",
		"iat":  now.Unix(),
		"exp":  refreshExpiry.Unix(),
		"iss":  s.jwtConfig.Issuer,
	}
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.jwtConfig.SecretKey))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresAt:    accessExpiry,
	}, nil
}

// validateToken validates a JWT token and returns its claims
func (s *SessionService) validateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(s.jwtConfig.SecretKey), nil
	})

	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
