package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/SeakMengs/EventHub/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	JWT_TYPE_ACCESS = "access"

	AccessTokenTTL = 15 * time.Minute

	// gin context key holding the verified JWTPayload
	ContextUserKey = "user"
)

type JWT struct {
	logger    *zap.SugaredLogger
	jwtSecret string
}

// Login lives in the identity service; this service only issues short lived service tokens
// and verifies bearer tokens.
type JWTInterface interface {
	GenerateAccessToken(payload JWTPayload, ttl time.Duration) (string, error)
	VerifyJwtToken(token string) (*JWTClaims, error)
}

func NewJwt(cfg config.AuthConfig, logger *zap.SugaredLogger) *JWT {
	// For unit test
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &JWT{
		jwtSecret: cfg.JWT_SECRET,
		logger:    logger,
	}
}

type JWTPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	// organizer or admin
	Role string `json:"role"`
}

type JWTClaims struct {
	User JWTPayload `json:"user"`
	Type string     `json:"type"`
	IAT  int64      `json:"iat"`
	EXP  int64      `json:"exp"`
}

func (j JWT) GenerateAccessToken(payload JWTPayload, ttl time.Duration) (string, error) {
	j.logger.Debugf("Generate access token with payload: %v", payload)

	if ttl <= 0 {
		ttl = AccessTokenTTL
	}

	claims := jwt.MapClaims{
		"user": payload,
		"type": JWT_TYPE_ACCESS,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.jwtSecret))
}

func (j JWT) VerifyJwtToken(token string) (*JWTClaims, error) {
	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(j.jwtSecret), nil
	})
	if err != nil {
		j.logger.Debugf("Failed to verify jwt token. Error: %v", err)
		return nil, err
	}

	if !parsedToken.Valid {
		j.logger.Debug("Jwt token is not valid")
		return nil, errors.New("jwt token is not valid")
	}

	user, ok := claims["user"].(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid token: user field is missing or malformed")
	}

	id, _ := user["id"].(string)
	if id == "" {
		return nil, errors.New("invalid token: user id is missing")
	}
	email, _ := user["email"].(string)
	name, _ := user["name"].(string)
	role, _ := user["role"].(string)
	tokenType, _ := claims["type"].(string)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)

	return &JWTClaims{
		User: JWTPayload{
			ID:    id,
			Email: email,
			Name:  name,
			Role:  role,
		},
		Type: tokenType,
		IAT:  int64(iat),
		EXP:  int64(exp),
	}, nil
}
