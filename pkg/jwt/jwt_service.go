package jwt

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/internal/utils"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const sessionDuration = 12 * time.Hour

type (
	JWTService interface {
		GenerateRoleToken(role domain.UserRole) (string, error)
		ValidateToken(token string) (*jwt.Token, error)
		GetRoleByToken(token string) (domain.UserRole, string, error)
	}

	jwtRoleClaim struct {
		SessionID string `json:"session_id"`
		Role      string `json:"role"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
	}
)

func NewJWTService() JWTService {
	return NewJWTServiceWithSecret(utils.GetConfig("JWT_SECRET"))
}

func NewJWTServiceWithSecret(secretKey string) JWTService {
	return &jwtService{
		secretKey: secretKey,
		issuer:    "SMARTCANTEEN",
	}
}

func (j *jwtService) GenerateRoleToken(role domain.UserRole) (string, error) {
	if !role.Valid() {
		return "", domain.ErrInvalidRole
	}
	now := time.Now()
	claims := jwtRoleClaim{
		uuid.New().String(),
		string(role),
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionDuration)),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) ValidateToken(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &jwtRoleClaim{}, j.parseToken)
}

// GetRoleByToken returns the role and session id carried by a valid token.
func (j *jwtService) GetRoleByToken(token string) (domain.UserRole, string, error) {
	t_Token, err := j.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", domain.ErrTokenExpired
		}
		return "", "", domain.ErrTokenInvalid
	}
	if !t_Token.Valid {
		return "", "", domain.ErrTokenInvalid
	}

	claims := t_Token.Claims.(*jwtRoleClaim)
	role := domain.UserRole(claims.Role)
	if !role.Valid() {
		return "", "", domain.ErrTokenInvalid
	}
	return role, claims.SessionID, nil
}
