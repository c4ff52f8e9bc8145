package db

import (
	"fmt"
	"os"

	"app/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect() (*gorm.DB, error) {
	// DATABASE_URL があれば最優先で使う
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return open(dsn)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return ConnectWith(cfg)
}

// ConnectWith は設定からDSNを組み立てて接続する。
func ConnectWith(cfg config.Config) (*gorm.DB, error) {
	ssl := os.Getenv("POSTGRES_SSLMODE")
	if ssl == "" {
		ssl = "disable"
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, ssl,
	)
	return open(dsn)
}

func open(dsn string) (*gorm.DB, error) {
	// TranslateErrorで一意制約違反をgorm.ErrDuplicatedKeyに寄せる
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}
