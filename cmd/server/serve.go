package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/civicsight/internal/auth"
	"github.com/civicsight/internal/classifier"
	"github.com/civicsight/internal/config"
	"github.com/civicsight/internal/handlers"
	"github.com/civicsight/internal/repositories"
	"github.com/civicsight/internal/routes"
	"github.com/civicsight/internal/services"
	"github.com/civicsight/pkg/db"
	"github.com/civicsight/pkg/email"
	"github.com/civicsight/pkg/media"
)

var (
	servePort   string
	noSwagger   bool
	feedSiteURL string
)

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&noSwagger, "no-swagger", false, "Disable the /swagger UI")
	serveCmd.Flags().StringVar(&feedSiteURL, "site-url", "", "Public base URL used for links in the RSS feed and emails")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.AppConfig
		if servePort != "" {
			cfg.Server.Port = servePort
		}
		gin.SetMode(cfg.Server.Mode)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStores(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer st.close()

		router, err := buildRouter(cfg, st)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			log.Printf("Server starting on port %s...", cfg.Server.Port)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to run server: %w", err)
			}
		case <-ctx.Done():
			log.Println("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
		}
		return nil
	},
}

// buildRouter 组装分类客户端、服务和处理器
func buildRouter(cfg config.Configuration, st *stores) (*gin.Engine, error) {
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	policy := auth.NewStatusPolicy(cfg.Auth.StatusUpdateRoles)
	if len(cfg.Auth.StatusUpdateRoles) > 0 {
		log.Printf("[Auth] status updates restricted to roles %v", cfg.Auth.StatusUpdateRoles)
	}

	classifierClient := classifier.NewClient(cfg.Classifier.BaseURL, cfg.Classifier.ImageTimeout, cfg.Classifier.AudioTimeout)

	var notifier services.StatusNotifier
	if smtpCfg, err := email.LoadSMTPConfigFromEnv(); err == nil {
		linkBase := ""
		if feedSiteURL != "" {
			linkBase = feedSiteURL + "/api/v1/reports"
		}
		notifier = services.NewEmailNotifier(email.NewMailer(smtpCfg), linkBase)
		log.Printf("[Email] status notifications enabled via %s:%d", smtpCfg.Host, smtpCfg.Port)
	} else {
		log.Printf("[Email] status notifications disabled: %v", err)
	}

	store, err := media.NewLocalStore(cfg.Media.UploadDir, cfg.Media.PublicBaseURL, cfg.Media.MaxUploadMB<<20)
	if err != nil {
		return nil, err
	}

	reportService := services.NewReportService(st.reports, st.users, classifierClient, policy, notifier)
	commentService := services.NewCommentService(st.comments, st.reports, st.users)
	authService := services.NewAuthService(st.users, st.reports, tokens)

	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Reports:  handlers.NewReportHandler(reportService, store),
		Comments: handlers.NewCommentHandler(commentService),
		Feed:     handlers.NewFeedHandler(reportService, feedSiteURL),
	}
	return routes.NewRouter(h, tokens, routes.Options{
		UploadDir:   cfg.Media.UploadDir,
		MaxUploadMB: cfg.Media.MaxUploadMB,
		Swagger:     !noSwagger,
	}), nil
}

// stores 是按配置选择的一组仓库实现
type stores struct {
	reports  repositories.ReportRepository
	comments repositories.CommentRepository
	users    repositories.UserRepository
	close    func()
}

func openStores(ctx context.Context, cfg config.Database) (*stores, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch cfg.Driver {
	case "mongo":
		client, database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureMongoIndexes(ctx, database); err != nil {
			db.DisconnectMongo(context.Background(), client)
			return nil, err
		}
		return &stores{
			reports:  repositories.NewMongoReportRepository(database),
			comments: repositories.NewMongoCommentRepository(database),
			users:    repositories.NewMongoUserRepository(database),
			close:    func() { db.DisconnectMongo(context.Background(), client) },
		}, nil
	default:
		gormDB, err := db.OpenSQLite(cfg.SQLitePath, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		return &stores{
			reports:  repositories.NewGormReportRepository(gormDB),
			comments: repositories.NewGormCommentRepository(gormDB),
			users:    repositories.NewGormUserRepository(gormDB),
			close:    func() { db.CloseSQLite(gormDB) },
		}, nil
	}
}
