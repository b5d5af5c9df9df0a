package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionUserKey = "user_id"

// Login 处理用户登录请求
func (a *API) Login(c *gin.Context) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &credentials, "invalid login payload") {
		return
	}

	identity, ok := a.users.Authenticate(credentials.Username, credentials.Password)
	if !ok {
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, identity.UserID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	log.Info().Str("user", identity.Username).Msg("admin login")
	c.JSON(http.StatusOK, gin.H{"username": identity.Username})
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AuthRequired guards admin routes. The session holds only a credential; the
// verifier decides whether it still maps to an admin identity, and every
// non-valid result is a uniform 401.
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(sessionUserKey)
		if raw == nil {
			respondError(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}

		identity, ok := a.verifier.Verify(fmt.Sprint(raw))
		if !ok || !identity.Admin {
			respondError(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}

		c.Set("identity", identity)
		c.Next()
	}
}
