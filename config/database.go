package config

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector builds the gorm dialector for the configured driver.
func (d DatabaseConfig) Dialector() (gorm.Dialector, error) {
	switch d.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.DBName)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(d.Path), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}
}

// GormConfig is shared by the server and the tests so that timestamps are
// always written in UTC and duplicate keys surface as gorm.ErrDuplicatedKey.
func GormConfig(silent bool) *gorm.Config {
	cfg := &gorm.Config{
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	return cfg
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dialector, err := cfg.Database.Dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, GormConfig(cfg.Server.Mode == "release"))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Database.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "sqlite" {
		// sqlite hanya mengizinkan satu penulis
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
