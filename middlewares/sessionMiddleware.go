package middlewares

import (
	"net/http"

	"github.com/buddybudget/wealth_backend/config"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/gin-gonic/gin"
)

// Session is what the auth service caches under "Token:<token>".
type Session struct {
	UserId          string `json:"userId"`
	Username        string `json:"username"`
	PrimaryCurrency string `json:"primaryCurrency"`
}

func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		var session Session
		exists, err := config.GetRedisObject("Token:"+token, &session)
		if err != nil || !exists || session.UserId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUserIdInContext(ctx, session.UserId)
		ctx = utils.SetUsernameInContext(ctx, session.Username)
		if session.PrimaryCurrency != "" {
			ctx = utils.SetPrimaryCurrencyInContext(ctx, session.PrimaryCurrency)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
