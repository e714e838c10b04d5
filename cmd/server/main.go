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

	"breadit/internal/config"
	"breadit/internal/db"
	"breadit/internal/feedclient"
	"breadit/internal/logging"
	"breadit/internal/metrics"
	"breadit/internal/router"
	"breadit/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "breadit",
		Short: "Breadit community forum API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
	setupFlags(rootCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	})
	rootCmd.AddCommand(newFeedCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-driver", defaults.GetString("database.driver"), "Database driver (postgres, sqlite)")
	cmd.PersistentFlags().String("database-dsn", defaults.GetString("database.dsn"), "Database connection string")
	cmd.PersistentFlags().String("session-secret", "", "Cookie session secret (overrides env)")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", defaults.GetString("log.format"), "Log encoding (json, console)")
	cmd.PersistentFlags().Int("page-size", defaults.GetInt("feed.page_size"), "Default feed page size")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.driver", "database-driver")
	bindFlag(cmd, "database.dsn", "database-dsn")
	bindFlag(cmd, "session.secret", "session-secret")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.format", "log-format")
	bindFlag(cmd, "feed.page_size", "page-size")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	config.LoadDotEnv()
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}
	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.Options{Level: appConfig.LogLevel, Format: appConfig.LogFormat})
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if appConfig.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.Open(db.Options{Driver: appConfig.DatabaseDriver, DSN: appConfig.DatabaseDSN}, logger)
	if err != nil {
		return err
	}
	defer db.Close(conn) //nolint:errcheck

	collector := metrics.New()
	deps, err := buildServices(conn, logger, collector, appConfig)
	if err != nil {
		return err
	}
	engine, err := router.NewEngine(deps)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              appConfig.HTTPAddress,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func buildServices(conn *gorm.DB, logger *zap.Logger, collector *metrics.Collector, appConfig config.AppConfig) (router.Dependencies, error) {
	deps := router.Dependencies{
		Metrics:       collector,
		Logger:        logger,
		SessionName:   appConfig.SessionName,
		SessionSecret: appConfig.SessionSecret,
		AllowOrigins:  appConfig.AllowOrigins,
		PageSize:      appConfig.PageSize,
	}
	var err error
	if deps.Votes, err = services.NewVoteService(services.VoteServiceConfig{Database: conn, Logger: logger, Metrics: collector}); err != nil {
		return deps, err
	}
	if deps.Comments, err = services.NewCommentService(services.CommentServiceConfig{Database: conn, Logger: logger, Metrics: collector}); err != nil {
		return deps, err
	}
	if deps.Feed, err = services.NewFeedService(services.FeedServiceConfig{Database: conn, Logger: logger, MaxPageSize: appConfig.MaxPageSize}); err != nil {
		return deps, err
	}
	if deps.Posts, err = services.NewPostService(services.PostServiceConfig{Database: conn, Logger: logger, Metrics: collector}); err != nil {
		return deps, err
	}
	if deps.Subscriptions, err = services.NewSubscriptionService(services.SubscriptionServiceConfig{Database: conn, Logger: logger}); err != nil {
		return deps, err
	}
	if deps.Communities, err = services.NewCommunityService(services.CommunityServiceConfig{Database: conn, Logger: logger}); err != nil {
		return deps, err
	}
	if deps.Users, err = services.NewUserService(services.UserServiceConfig{Database: conn, Logger: logger}); err != nil {
		return deps, err
	}
	if deps.Accounts, err = services.NewAccountService(services.AccountServiceConfig{Database: conn, Logger: logger}); err != nil {
		return deps, err
	}
	return deps, nil
}

func newFeedCommand() *cobra.Command {
	var (
		baseURL    string
		subbreadit string
		pages      int
		pageSize   int
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print the feed of a running server, one page at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			pager, err := feedclient.New(feedclient.Config{
				BaseURL:        baseURL,
				PageSize:       pageSize,
				SubbreaditName: subbreadit,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printed := 0
			for i := 0; i < pages && !pager.Exhausted(); i++ {
				if _, err := pager.Next(cmd.Context()); err != nil {
					return err
				}
				posts := pager.Posts()
				for _, post := range posts[printed:] {
					fmt.Fprintf(out, "%4d  %-24s  %s\n", post.Score, post.Subbreadit.Name, post.Title)
				}
				printed = len(posts)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8080", "Server base URL")
	cmd.Flags().StringVar(&subbreadit, "subbreadit", "", "Limit the feed to one community")
	cmd.Flags().IntVar(&pages, "pages", 3, "Maximum number of pages to load")
	cmd.Flags().IntVar(&pageSize, "limit", 10, "Posts per page")
	return cmd
}
