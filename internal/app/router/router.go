package router

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	secondopinionhandler "dental_backend/internal/feature/secondopinion/transport/handler"
	workspacehandler "dental_backend/internal/feature/workspace/transport/handler"
	"dental_backend/internal/feature/workspace/transport/view"
	"dental_backend/internal/platform/http/handler"
	jwtmw "dental_backend/internal/platform/jwt"
)

// Config はルーターの設定です。
type Config struct {
	Tokens         jwtmw.Generator
	WorkspaceTTL   time.Duration
	AllowedOrigins []string // 空の場合はすべてのオリジンを許可
}

// ParseOrigins はカンマ区切りのオリジン一覧を分割します。
func ParseOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func NewRouter(cfg Config, workspace *workspacehandler.WorkspaceHandler,
	secondOpinion *secondopinionhandler.SecondOpinionHandler, store handler.Pinger) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(view.Templates())

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.OPTIONS("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(store))

	// ブラウザ向け画面
	// Cookieで識別したWorkspaceに状態を保存する
	ui := r.Group("/")
	ui.Use(jwtmw.WorkspaceCookie(cfg.Tokens, cfg.WorkspaceTTL))
	{
		ui.GET("/", workspace.Index)
		ui.POST("/file", workspace.SelectFile)
		ui.POST("/analyze", workspace.Analyze)
	}

	// 他のクライアント向けのJSON API（状態を持たない）
	api := r.Group("/v1")
	api.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	{
		api.POST("/second-opinion", secondOpinion.Analyze)
		api.OPTIONS("/second-opinion", func(c *gin.Context) { c.Status(204) })
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowMethods = []string{"POST", "OPTIONS"}
	c.MaxAge = 12 * time.Hour
	return c
}
