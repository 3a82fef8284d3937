package main

import (
	"context"
	"log"
	"net/http"
	"time"

	v1 "go-parley/cmd/api/router/v1"
	cacheAdapter "go-parley/internal/infrastructure/cache/adapter"
	cport "go-parley/internal/infrastructure/cache/port"
	"go-parley/internal/infrastructure/crypto"
	"go-parley/internal/infrastructure/database"
	queueAdapter "go-parley/internal/infrastructure/queue/adapter"
	qport "go-parley/internal/infrastructure/queue/port"
	"go-parley/internal/infrastructure/realtime"
	"go-parley/internal/pkg/chat/application/task"
	httpHandler "go-parley/internal/pkg/chat/presentation/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("failed to apply database schema: %v", err)
	}

	// Message content is sealed at rest; a missing key is a hard startup
	// failure, never a fallback to plaintext storage.
	codec, err := crypto.NewCodecFromEnv()
	if err != nil {
		log.Fatalf("failed to initialize message codec: %v", err)
	}

	// Redis-backed pair cache and background queue are optional: the
	// service degrades to direct storage access when they are absent.
	var cache cport.Cache
	if rc, err := cacheAdapter.NewRedisAdapter(); err != nil {
		log.Printf("Warning: redis cache unavailable: %v", err)
	} else {
		cache = rc
		defer rc.Close()
	}

	var queue qport.Client
	if qc, err := queueAdapter.NewAsynqClientFromEnv(); err != nil {
		log.Printf("Warning: background queue unavailable: %v", err)
	} else {
		queue = qc
		defer qc.Close()
	}

	if queue != nil {
		startWorker(pool)
	}

	router := realtime.NewRouter()
	defer router.Close()

	limiter := realtime.NewFrameLimiter(20, 40, 10*time.Minute)

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, httpHandler.Dependencies{
		Pool:    pool,
		Codec:   codec,
		Router:  router,
		Cache:   cache,
		Queue:   queue,
		Limiter: limiter,
	})

	// Start HTTP server (blocks until shutdown)
	_ = r.Run()
}

// startWorker runs an in-process task worker consuming the chat queue.
// Worker failures are logged, never fatal: enqueue falls back to direct
// writes upstream when the queue path is broken.
func startWorker(pool *pgxpool.Pool) {
	srv, err := queueAdapter.NewAsynqServer()
	if err != nil {
		log.Printf("Warning: task worker unavailable: %v", err)
		return
	}
	task.RegisterPersistLastSeenTask(srv, pool)
	go func() {
		if err := srv.Run(context.Background()); err != nil {
			log.Printf("task worker stopped: %v", err)
		}
	}()
}
