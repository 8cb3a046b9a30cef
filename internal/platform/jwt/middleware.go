package jwtmw

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextWorkspaceID はGinコンテキストに保存するWorkspace IDのキーです。
	ContextWorkspaceID = "workspaceID"
	// CookieName はWorkspaceトークンを保存するCookie名です。
	CookieName = "dental_workspace"
)

// WorkspaceCookie returns a Gin middleware that resolves the caller's workspace.
// A valid cookie is reused; otherwise a new workspace ID is issued and the cookie is (re)set.
func WorkspaceCookie(g Generator, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 既存のCookieを検証
		if tokenStr, err := c.Cookie(CookieName); err == nil && tokenStr != "" {
			if id, err := g.ParseToken(tokenStr); err == nil {
				c.Set(ContextWorkspaceID, id)
				c.Next()
				return
			}
		}

		// 2. 新しいWorkspaceを発行
		id := uuid.NewString()
		token, err := g.GenerateToken(id)
		if err != nil {
			slog.Error("Workspaceトークンの生成に失敗", "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, token, int(ttl.Seconds()), "/", "", c.Request.TLS != nil, true)
		c.Set(ContextWorkspaceID, id)
		c.Next()
	}
}

// WorkspaceID returns the workspace ID set by WorkspaceCookie, or "" if absent.
func WorkspaceID(c *gin.Context) string {
	return c.GetString(ContextWorkspaceID)
}
