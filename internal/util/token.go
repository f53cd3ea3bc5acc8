package util

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	ErrNoAuthorizationHeader = errors.New("no authorization header specified")
	ErrMalformedHeader       = errors.New("wrong authorization header format")
	ErrNotBearer             = errors.New("invalid token type; expected 'Bearer'")
)

// Query parameter accepted in place of the header, for links opened directly by a browser
const AccessTokenQuery = "token"

// ReadAuthorizationHeader splits the Authorization header into its upper cased scheme and credentials.
func ReadAuthorizationHeader(ctx *gin.Context) (string, string, error) {
	header := strings.TrimSpace(ctx.GetHeader("Authorization"))
	if header == "" {
		return "", "", ErrNoAuthorizationHeader
	}

	scheme, credentials, ok := strings.Cut(header, " ")
	credentials = strings.TrimSpace(credentials)
	if !ok || credentials == "" {
		return "", "", ErrMalformedHeader
	}

	return strings.ToUpper(scheme), credentials, nil
}

func ReadBearerToken(ctx *gin.Context) (string, error) {
	scheme, token, err := ReadAuthorizationHeader(ctx)
	if err != nil {
		return "", err
	}
	if scheme != "BEARER" {
		return "", ErrNotBearer
	}
	return token, nil
}

// ReadAccessToken prefers the bearer header and falls back to the token query parameter.
func ReadAccessToken(ctx *gin.Context) (string, error) {
	token, err := ReadBearerToken(ctx)
	if errors.Is(err, ErrNoAuthorizationHeader) {
		if q := strings.TrimSpace(ctx.Query(AccessTokenQuery)); q != "" {
			return q, nil
		}
	}
	return token, err
}
