package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/wavesignals/internal/db"
	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader 是管理接口使用的密钥请求头。
const AdminKeyHeader = "X-Admin-Key"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Key      string `json:"key"`
}

// Login 校验管理员账号或密钥，并写入会话。
func (a *API) Login(c *gin.Context) {
	var payload loginRequest
	if !bindJSON(c, &payload, "invalid login payload") {
		return
	}

	session, enabled := currentSession(c)
	if !enabled {
		respondError(c, http.StatusForbidden, "session login disabled: SESSION_SECRET not configured")
		return
	}

	username, ok := a.authenticate(c, payload)
	if !ok {
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	session.Set("user_id", username)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": true, "username": username})
}

func (a *API) authenticate(c *gin.Context, payload loginRequest) (string, bool) {
	if key := strings.TrimSpace(payload.Key); key != "" {
		return "admin", a.keyMatches(key)
	}

	username := strings.TrimSpace(payload.Username)
	if username == "" || payload.Password == "" || a.db == nil {
		return "", false
	}

	var user db.User
	if err := a.db.WithContext(c.Request.Context()).Where("username = ?", username).First(&user).Error; err != nil {
		return "", false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		return "", false
	}
	return user.Username, true
}

// Logout 清除会话。
func (a *API) Logout(c *gin.Context) {
	session, enabled := currentSession(c)
	if !enabled {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to clear session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

// VerifyAdmin 在通过 AdminRequired 后直接返回成功。
func (a *API) VerifyAdmin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// AdminRequired 接受 X-Admin-Key 请求头或已登录的会话。
func (a *API) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := strings.TrimSpace(c.GetHeader(AdminKeyHeader)); key != "" {
			if a.keyMatches(key) {
				c.Next()
				return
			}
			respondError(c, http.StatusUnauthorized, "invalid admin key")
			c.Abort()
			return
		}

		session, enabled := currentSession(c)
		if !enabled || session.Get("user_id") == nil {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentSession 在未挂载会话中间件时返回 false。
func currentSession(c *gin.Context) (sessions.Session, bool) {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil, false
	}
	return sessions.Default(c), true
}

func (a *API) keyMatches(key string) bool {
	if a.adminKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(a.adminKey)) == 1
}
