package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/evalhub/evalhub-backend/internal/config"
	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionAlreadyActive = errors.New("another session is already active")
	ErrEmailTaken           = errors.New("email already registered")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID  `json:"user_id"`
	Role   model.Role `json:"role"`
	Name   string     `json:"name"`
}

// AuthService handles registration, authentication, JWT and session management.
type AuthService struct {
	cfg   *config.Config
	rdb   *redis.Client
	users *repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, users *repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, users: users}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Register creates a new account with the chosen role.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a JWT. Examinee tokens are bound to
// a single device: a second login while a session is active is rejected.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := s.CheckPassword(u.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(ctx, u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *AuthService) generateToken(ctx context.Context, u *model.User) (string, error) {
	jti := uuid.New().String()
	now := time.Now()

	if u.Role == model.RoleExaminee {
		sessionKey := config.CacheKey.UserSessionKey(u.ID.String())

		existing, err := s.rdb.Get(ctx, sessionKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("check session: %w", err)
		}
		if existing != "" {
			return "", ErrSessionAlreadyActive
		}

		if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
			return "", fmt.Errorf("store session: %w", err)
		}
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: u.ID,
		Role:   u.Role,
		Name:   u.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ValidateExamineeSession checks that the token's JTI matches the active
// session in Redis.
func (s *AuthService) ValidateExamineeSession(ctx context.Context, userID uuid.UUID, jti string) error {
	stored, err := s.rdb.Get(ctx, config.CacheKey.UserSessionKey(userID.String())).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("no active session")
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return errors.New("session invalidated")
	}
	return nil
}

// ResetExamineeSession removes an examinee's device binding, allowing a new login.
func (s *AuthService) ResetExamineeSession(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Del(ctx, config.CacheKey.UserSessionKey(userID.String())).Err()
}
