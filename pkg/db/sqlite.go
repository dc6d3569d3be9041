package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/civicsight/internal/models"
)

// sqliteDSNParams 开启 WAL，写事务立即加锁，并在锁竞争时等待而不是立刻报错
const sqliteDSNParams = "_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"

// MemoryPath 表示使用进程内的内存数据库
const MemoryPath = ":memory:"

// sqliteDSN 生成连接串。内存数据库使用带唯一名称的共享缓存，
// 连接池中的所有连接看到同一个库，不同的 OpenSQLite 调用互不影响。
func sqliteDSN(path string) string {
	if path == MemoryPath {
		return "file:civicsight-" + uuid.NewString() + "?mode=memory&cache=shared&" + sqliteDSNParams
	}
	if strings.Contains(path, "?") {
		return path + "&" + sqliteDSNParams
	}
	return path + "?" + sqliteDSNParams
}

// ParseLogLevel 将配置中的日志级别转换为 GORM 的日志级别
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// OpenSQLite 打开 SQLite 数据库并执行自动迁移。
// path 为 ":memory:" 以外的值时会确保数据库文件所在目录存在。
func OpenSQLite(path string, logLevel string) (*gorm.DB, error) {
	if path != MemoryPath {
		// 确保数据库文件所在的目录存在
		dbDir := filepath.Dir(path)
		if _, err := os.Stat(dbDir); os.IsNotExist(err) {
			log.Printf("Database directory %s does not exist, creating it...", dbDir)
			if mkErr := os.MkdirAll(dbDir, 0755); mkErr != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dbDir, mkErr)
			}
		}
	}

	// 配置 GORM 日志级别
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // 慢 SQL 阈值
			LogLevel:                  ParseLogLevel(logLevel),
			IgnoreRecordNotFoundError: true, // 忽略ErrRecordNotFound（记录未找到）错误
			Colorful:                  false,
		},
	)

	gormDB, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, fmt.Errorf("connect to database %s: %w", path, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}

	// SQLite 只允许一个写者，连接池不宜过大
	sqlDB.SetMaxIdleConns(4)
	sqlDB.SetMaxOpenConns(8)
	if path == MemoryPath {
		// 最后一个连接关闭时内存库即被销毁，连接不能过期
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Printf("Successfully connected to database using GORM: %s", path)

	if err := AutoMigrate(gormDB); err != nil {
		return nil, err
	}
	return gormDB, nil
}

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(gormDB *gorm.DB) error {
	err := gormDB.AutoMigrate(
		&models.User{},
		&models.Report{},
		&models.ReportUpvote{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate database tables: %w", err)
	}
	log.Println("Database tables migrated successfully.")
	return nil
}

// CloseSQLite 关闭 GORM 数据库连接 (通常在应用退出时调用)
func CloseSQLite(gormDB *gorm.DB) {
	if gormDB == nil {
		return
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB for closing: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
	log.Println("Database connection closed.")
}
