package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/VitaminP8/discuss/api"
	"github.com/VitaminP8/discuss/internal/auth"
	"github.com/VitaminP8/discuss/internal/cache"
	"github.com/VitaminP8/discuss/internal/comment"
	"github.com/VitaminP8/discuss/internal/config"
	"github.com/VitaminP8/discuss/internal/discussion"
	"github.com/VitaminP8/discuss/internal/model"
	"github.com/VitaminP8/discuss/internal/post"
	"github.com/VitaminP8/discuss/internal/reaction"
	"github.com/VitaminP8/discuss/internal/storage/memory"
	"github.com/VitaminP8/discuss/internal/storage/postgres"
	"github.com/VitaminP8/discuss/internal/subscription"
	"github.com/VitaminP8/discuss/internal/user"
)

var (
	configPath  string
	storageType string
	httpAddr    string
	adminIDs    []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "discuss",
		Short: "Сервис обсуждений: посты, вложенные комментарии и реакции",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML-файл конфигурации")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP сервер",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&storageType, "storage", "", "Тип хранилища: memory или postgres")
	serveCmd.Flags().StringVar(&httpAddr, "addr", "", "Адрес HTTP сервера")
	serveCmd.Flags().StringSliceVar(&adminIDs, "admin", nil, "ID администраторов (только для memory)")

	rootCmd.AddCommand(serveCmd, newTokenCmd(), newUserCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig: .env, затем config.Load, затем флаги командной строки
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	// загружаем .env из нашего config.go
	config.LoadEnv()

	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("storage") {
		cfg.Storage = storageType
	}
	if cmd.Flags().Changed("addr") {
		cfg.HTTPAddr = httpAddr
	}
	return cfg, cfg.Validate()
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

type stores struct {
	posts     post.PostStorage
	comments  comment.CommentStorage
	reactions reaction.ReactionStorage
	roles     user.RoleStorage
}

func openStores(cfg config.Config) (stores, error) {
	switch cfg.Storage {
	case "postgres":
		if err := postgres.InitDB(*cfg.Database); err != nil {
			return stores{}, err
		}
		if err := postgres.Migrate(); err != nil {
			return stores{}, err
		}
		log.Println("Используется PostgreSQL хранилище")
		return stores{
			posts:     postgres.NewPostPostgresStorage(),
			comments:  postgres.NewCommentPostgresStorage(),
			reactions: postgres.NewReactionPostgresStorage(),
			roles:     postgres.NewUserPostgresStorage(),
		}, nil

	case "memory":
		log.Println("Используется in-memory хранилище")
		users := memory.NewUserMemoryStorage()
		for _, id := range adminIDs {
			users.PutUser(memory.UserRecord{ID: id, Name: "admin " + id, Role: model.RoleAdmin})
		}
		reactions := memory.NewReactionMemoryStorage()
		posts := memory.NewPostMemoryStorage(users, reactions)
		return stores{
			posts:     posts,
			comments:  memory.NewCommentMemoryStorage(posts, users, reactions),
			reactions: reactions,
			roles:     users,
		}, nil
	}
	return stores{}, fmt.Errorf("неизвестный тип хранилища: %s", cfg.Storage)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty, every request is anonymous")
	}

	st, err := openStores(cfg)
	if err != nil {
		return err
	}

	comments, err := cache.NewCommentCache(st.comments, cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		return err
	}
	events := subscription.NewSubscriptionManager()

	deps := discussion.Deps{
		Comments:  comments,
		Reactions: st.reactions,
		Posts:     st.posts,
		Roles:     st.roles,
		Identity:  auth.Identity{},
		Events:    events,
	}
	resolver := api.NewResolver(deps, logger,
		discussion.WithInvalidator(comments, events),
		discussion.WithMaxDepth(cfg.MaxDepth),
		discussion.WithMaxContentLength(cfg.MaxContentLength),
	)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// HTTP сервер
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(resolver, cfg.JWTSecret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ListenAndServe блокирует поток до server.Shutdown(), поэтому запускаем goroutine
	go func() {
		log.Printf("Сервер запущен на %s", cfg.HTTPAddr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Завершение...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при завершении сервера: %w", err)
	}

	if cfg.Storage == "postgres" {
		if err := postgres.CloseDB(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}

	log.Println("Сервер остановлен корректно")
	return nil
}
