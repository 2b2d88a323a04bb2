package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/pmorel/db-agent/internal/api"
	"github.com/pmorel/db-agent/internal/config"
	"github.com/pmorel/db-agent/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP chat API",
	Long: `The serve command starts the REST API over the hosted agent:
POST /api/chat for the conversational endpoint, conversation listing and
message history under /api, and agent maintenance under /admin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServer is the composition root of the HTTP front end: it loads
// configuration, initializes all services, injects dependencies and runs
// the server until interrupted.
func runServer() error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	buildInfo := GetBuildInfo()
	log.Printf("🚀 Starting db-agent | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("❌ FATAL: Configuration Error: %v", err)
	}
	log.Println("✅ Configuration loaded.")

	gw, def := newGateway(cfg)

	var store session.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Fatalf("❌ FATAL: Could not connect to Redis: %v", err)
		}
		store = session.NewRedisStore(gw, rdb)
		log.Println("✅ Redis conversation store connected.")
	} else {
		store = session.NewMemoryStore(gw, cfg.SessionCapacity)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	hosted, err := gw.EnsureAgent(ctx, def)
	cancel()
	if err != nil {
		log.Fatalf("❌ FATAL: Could not provision agent: %v", err)
	}
	log.Printf("✅ Agent ready: %s (%s) with %d tools.", hosted.Name, hosted.ID, def.Toolset.ToolCount())

	gin.SetMode(os.Getenv("GIN_MODE"))
	handler := api.NewHandler(gw, store, hosted.ID)
	engine := api.NewRouter(handler, cfg.AllowedOrigins)

	srv := &http.Server{Addr: cfg.Addr, Handler: engine}
	runServerWithGracefulShutdown(srv)
	return nil
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 Agent API is listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Listen error: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server shutdown failed:", err)
	}

	log.Println("👋 Server exited gracefully.")
}
