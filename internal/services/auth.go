package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/assignment-backend/internal/data/repos/user"
	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/ctxutil"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

type JWTClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	AdminRole string `json:"admin_role,omitempty"`
	jwt.RegisteredClaims
}

// AuthService verifies bearer tokens issued by the account service. IssueToken
// signs tokens with the same contract for operator tooling and tests.
type AuthService interface {
	IssueToken(ctx context.Context, u *types.User) (string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	users        user.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(log *logger.Logger, users user.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		users:        users,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) IssueToken(ctx context.Context, u *types.User) (string, error) {
	if u == nil || u.ID == uuid.Nil {
		return "", fmt.Errorf("issue token: user is required")
	}
	now := time.Now()
	claims := JWTClaims{
		UserID:    u.ID.String(),
		Role:      u.Role,
		AdminRole: u.AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken attaches the token's principal to ctx. The role comes from
// the stored user when present so that revoked operator roles apply at once.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, nil
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired JWT token")
	}
	rawID := claims.UserID
	if rawID == "" {
		rawID = claims.Subject
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}

	rd := &ctxutil.RequestData{
		UserID:    userID,
		Role:      claims.Role,
		AdminRole: claims.AdminRole,
	}
	u, err := as.users.GetByID(dbctx.With(ctx), userID)
	if err != nil {
		as.log.Warn("token user lookup failed", "user_id", userID, "error", err)
		return ctx, fmt.Errorf("failed to load token user: %w", err)
	}
	if u == nil {
		return ctx, fmt.Errorf("token user no longer exists")
	}
	rd.Email = u.Email
	rd.Role = u.Role
	rd.AdminRole = u.AdminRole
	return ctxutil.WithRequestData(ctx, rd), nil
}
