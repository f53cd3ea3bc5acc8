package middleware

import (
	"errors"
	"net/http"

	"github.com/SeakMengs/EventHub/internal/auth"
	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/gin-gonic/gin"
)

var errInvalidTokenType = errors.New("invalid token type")

func unauthorized(ctx *gin.Context, message string, err error) {
	util.ResponseFailed(ctx, http.StatusUnauthorized, message, util.GenerateErrorMessages(err, "unauthorized"), nil)
	ctx.Abort()
}

// AuthMiddleware accepts access tokens only, from the bearer header or the token query parameter.
func (m Middleware) AuthMiddleware(ctx *gin.Context) {
	token, err := util.ReadAccessToken(ctx)
	if err != nil {
		m.app.Logger.Debugf("Failed to read token: %v", err)
		unauthorized(ctx, "Unauthorized", err)
		return
	}

	claim, err := m.app.JWTService.VerifyJwtToken(token)
	if err != nil {
		m.app.Logger.Debugf("Failed to verify token: %v", err)
		unauthorized(ctx, "Invalid token", err)
		return
	}

	if claim.Type != auth.JWT_TYPE_ACCESS {
		m.app.Logger.Debugf("Rejected %s token of user %s", claim.Type, claim.User.ID)
		unauthorized(ctx, "Invalid access token type", errInvalidTokenType)
		return
	}

	ctx.Set(auth.ContextUserKey, claim.User)
	ctx.Next()
}
