package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/linearflow/linearflow/pkg/fsx"
	"github.com/linearflow/linearflow/pkg/fsx/fsxs3"
	"github.com/linearflow/linearflow/pkg/iam/auth"
	"github.com/linearflow/linearflow/pkg/iam/auth/authinfra"
	"github.com/linearflow/linearflow/pkg/iam/user/userinfra"
	"github.com/linearflow/linearflow/pkg/logx"
	"github.com/linearflow/linearflow/tracker/board/boardapi"
	"github.com/linearflow/linearflow/tracker/board/boardsrv"
	"github.com/linearflow/linearflow/tracker/metrics/metricsapi"
	"github.com/linearflow/linearflow/tracker/metrics/metricssrv"
	"github.com/linearflow/linearflow/tracker/pipeline/pipelineinfra"
	"github.com/linearflow/linearflow/tracker/record/recordapi"
	"github.com/linearflow/linearflow/tracker/record/recordinfra"
	"github.com/linearflow/linearflow/tracker/record/recordsrv"
)

const (
	persistenceTimeout = 5 * time.Second
	dashboardCacheTTL  = 2 * time.Minute
	dashboardWindow    = 6 // months of history on the dashboard
)

// Container holds all application dependencies
type Container struct {
	// Config
	AuthConfig auth.Config

	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client

	// Services
	TokenService     auth.TokenService
	RecordService    *recordsrv.RecordService
	DashboardService *metricssrv.DashboardService
	BoardService     *boardsrv.BoardService

	// API Handlers
	AuthHandlers    *auth.AuthHandlers
	RecordHandlers  *recordapi.Handlers
	MetricsHandlers *metricsapi.Handlers
	BoardHandlers   *boardapi.Handlers

	// Middleware
	AuthMiddleware *auth.TokenMiddleware
}

// NewContainer initializes the dependency injection container
func NewContainer() *Container {
	c := &Container{}
	c.initInfrastructure()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	// 1. Database Connection
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASS")
	dbName := os.Getenv("DB_NAME")
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPass, dbName)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	c.DB = db

	// 2. Redis Connection
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPass := os.Getenv("REDIS_PASS")
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPass,
		DB:       0,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}

	// 3. AWS S3 Configuration
	awsRegion := os.Getenv("AWS_REGION")
	awsBucket := os.Getenv("AWS_BUCKET")
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
	if err != nil {
		logx.Fatalf("unable to load SDK config, %v", err)
	}
	c.S3Client = s3.NewFromConfig(cfg)
	c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, awsBucket, "uploads")

	// 4. Auth Config
	c.AuthConfig = auth.DefaultConfig()
	c.AuthConfig.JWT.SecretKey = os.Getenv("JWT_SECRET")
	if c.AuthConfig.JWT.SecretKey == "" {
		logx.Warn("JWT_SECRET is not set, using default (unsafe for production)")
		c.AuthConfig.JWT.SecretKey = "super-secret-key-please-change-me-in-production"
	}
}

func (c *Container) initServices() {
	// --- Repositories ---
	userRepo := userinfra.NewPostgresUserRepository(c.DB)
	recordRepo := recordinfra.NewPostgresRecordRepository(c.DB)

	// --- Infrastructure Services ---
	passwordSvc := authinfra.NewBcryptPasswordService()

	c.TokenService = auth.NewJWTService(
		c.AuthConfig.JWT.SecretKey,
		c.AuthConfig.JWT.AccessTokenTTL,
		c.AuthConfig.JWT.Issuer,
	)

	// --- Domain Services ---
	c.DashboardService = metricssrv.NewDashboardService(recordRepo, c.Redis, dashboardCacheTTL, dashboardWindow)
	c.RecordService = recordsrv.NewRecordService(recordRepo, c.FileSystem, c.DashboardService)
	c.BoardService = boardsrv.NewBoardService(pipelineinfra.NewRepositoryClient(recordRepo), persistenceTimeout)

	// --- Handlers ---
	c.AuthHandlers = auth.NewAuthHandlers(userRepo, passwordSvc, c.TokenService)
	c.RecordHandlers = recordapi.NewHandlers(c.RecordService)
	c.MetricsHandlers = metricsapi.NewHandlers(c.DashboardService)
	c.BoardHandlers = boardapi.NewHandlers(c.BoardService)

	// --- Middleware ---
	c.AuthMiddleware = auth.NewAuthMiddleware(c.TokenService)
}
