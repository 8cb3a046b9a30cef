package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"dental_backend/internal/app/di"
	"dental_backend/internal/app/router"
	secondopinionhandler "dental_backend/internal/feature/secondopinion/transport/handler"
	secondopinionusecase "dental_backend/internal/feature/secondopinion/usecase"
	workspaceadapters "dental_backend/internal/feature/workspace/adapters"
	workspacehandler "dental_backend/internal/feature/workspace/transport/handler"
	workspaceusecase "dental_backend/internal/feature/workspace/usecase"
	infradb "dental_backend/internal/platform/db"
	jwtmw "dental_backend/internal/platform/jwt"
	infraredis "dental_backend/internal/platform/redis"
)

// sweepInterval は期限切れWorkspaceを削除する間隔です（Redis以外の保存先のみ）。
const sweepInterval = 5 * time.Minute

func main() {
	// .envを読み込む
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Gemini
	analyzer, err := di.NewAnalyzer(ctx)
	if err != nil {
		log.Fatal(err)
	}

	tokenCfg := jwtmw.LoadConfig()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfig()); err != nil {
		slog.Warn("Redis unavailable. Falling back to another workspace store.", "error", err)
	} else if tmp != nil {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("Failed to close Redis client", "error", err)
			}
		}()
	}

	// DB（Redisが使えない場合のみ）
	var db *gorm.DB
	if dbCfg := infradb.LoadConfigFromEnv(); rdb == nil && dbCfg.Enabled() {
		db, err = infradb.OpenDB(dbCfg, &workspaceadapters.WorkspaceModel{})
		if err != nil {
			log.Fatal(err)
		}
	}

	// Repository
	store := di.NewWorkspaceRepository(rdb, db, tokenCfg.TTL)
	di.StartExpirySweeper(ctx, store, sweepInterval)

	// Usecase
	secondOpinionUC := secondopinionusecase.NewSecondOpinionUsecase(analyzer)
	workspaceUC := workspaceusecase.NewWorkspaceUsecase(store, secondOpinionUC)

	// Handler
	secondOpinionH := secondopinionhandler.NewSecondOpinionHandler(secondOpinionUC)
	workspaceH := workspacehandler.NewWorkspaceHandler(workspaceUC)

	// ルータ生成
	r := router.NewRouter(router.Config{
		Tokens:         jwtmw.NewGenerator(tokenCfg.Secret, tokenCfg.TTL),
		WorkspaceTTL:   tokenCfg.TTL,
		AllowedOrigins: router.ParseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}, workspaceH, secondOpinionH, store)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
