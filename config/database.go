package config

import (
	"InnerCompassGo/models"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// OpenDB 按配置打开数据库，mysql 用于线上，sqlite 用于本地开发
func OpenDB(config Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(config.SQLitePath)
	case "mysql", "":
		dialector = mysql.Open(config.GetDBConnString())
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.DBDriver)
	}

	level := logger.Info
	if config.Environment == "production" {
		level = logger.Warn
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
}

// InitDB 初始化数据库连接
func InitDB(config Config) error {
	var err error
	DB, err = OpenDB(config)
	if err != nil {
		return err
	}

	// 设置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if config.DBDriver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	}

	return MigrateDB(DB)
}

// MigrateDB 进行数据库表结构迁移
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.JournalEntry{},
		&models.Task{},
		&models.ScoreSnapshot{},
	)
	if err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}
