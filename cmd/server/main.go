package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hmasuda/todo-api/internal/auth"
	"github.com/hmasuda/todo-api/internal/config"
	"github.com/hmasuda/todo-api/internal/database"
	"github.com/hmasuda/todo-api/internal/handlers"
	"github.com/hmasuda/todo-api/internal/logging"
	"github.com/hmasuda/todo-api/internal/middleware"
	"github.com/hmasuda/todo-api/internal/repository"
	"github.com/hmasuda/todo-api/internal/services"
	"github.com/hmasuda/todo-api/internal/workers"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "todo-api",
		Short: "Todo API server with recurrence support",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Run schema migrations and normalize legacy rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe() error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.Init(cfg.LogFile)
	defer log.Sync()

	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	todoRepo := repository.NewTodoRepository(db)

	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)

	authService := services.NewAuthService(userRepo, tokens)
	todoService := services.NewTodoService(todoRepo)

	authHandler := handlers.NewAuthHandler(authService)
	todoHandler := handlers.NewTodoHandler(todoService)

	generator := workers.NewGenerator(todoRepo,
		time.Duration(cfg.GeneratorIntervalMinutes)*time.Minute, log)
	sweeper := workers.NewSweeper(todoRepo, cfg.SweeperHourUTC, log)

	generator.Start()
	sweeper.Start()

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Todo API is running",
		})
	})

	api := r.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("/register", authHandler.Register)
			users.POST("/login", authHandler.Login)
			users.GET("/profile", middleware.RequireAuth(tokens, userRepo), authHandler.GetProfile)
		}

		todos := api.Group("/todos")
		todos.Use(middleware.RequireAuth(tokens, userRepo))
		{
			todos.GET("", todoHandler.ListTodos)
			todos.POST("", todoHandler.CreateTodo)
			todos.PATCH("/reorder", todoHandler.ReorderTodos)
			todos.GET("/:id", todoHandler.GetTodo)
			todos.PUT("/:id", todoHandler.UpdateTodo)
			todos.DELETE("/:id", todoHandler.DeleteTodo)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		stopWorkers(log, generator, sweeper)
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig)
	}

	stopWorkers(log, generator, sweeper)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func stopWorkers(log *zap.SugaredLogger, generator *workers.Generator, sweeper *workers.Sweeper) {
	generator.Stop()
	sweeper.Stop()
	log.Info("background workers stopped")
}

func runMigrate() error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := database.Connect(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := database.NormalizeLegacyRows(database.GetDB()); err != nil {
		return fmt.Errorf("failed to normalize legacy rows: %w", err)
	}

	fmt.Println("Migration completed successfully")
	return nil
}
