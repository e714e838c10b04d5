package db

import (
	"fmt"
	"strings"
	"time"

	"breadit/internal/logging"
	"breadit/internal/models"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Options selects the store backing the forum.
type Options struct {
	Driver string // "postgres" or "sqlite"
	DSN    string
	Quiet  bool
}

// Open connects to the configured store and migrates the schema.
func Open(opts Options, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, fmt.Errorf("db: dsn is required")
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres", "":
		dialector = postgres.Open(opts.DSN)
	case "sqlite":
		dialector = sqlite.Open(withForeignKeys(opts.DSN))
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", opts.Driver)
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logging.NewGormLogger(logger, slowQueryThreshold),
	}
	if opts.Quiet {
		gormCfg.Logger = gormCfg.Logger.LogMode(gormlogger.Silent)
	}

	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}

	if opts.Driver == "sqlite" {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		// sqlite serialises writers anyway; one connection keeps in-memory databases shared.
		sqlDB.SetMaxOpenConns(1)
	}
	logger.Info("database connection established", zap.String("driver", opts.Driver))

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("db: migrate: %w", err)
	}
	logger.Info("database migration completed")
	return conn, nil
}

// Migrate creates or updates every table the forum needs.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Subbreadit{},
		&models.Subscription{},
		&models.Post{},
		&models.Comment{},
		&models.PostVote{},
		&models.CommentVote{},
	)
}

// Close releases the underlying connection pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}
