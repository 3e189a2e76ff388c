package db

import (
	"time"

	"github.com/smallbiznis/atelier/internal/config"
)

// PoolConfig sizes the shared connection pool. MaxOpenConn also bounds how
// many registrations can hold a transaction at once.
type PoolConfig struct {
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func poolConfigFrom(cfg config.Config) PoolConfig {
	pool := PoolConfig{
		MaxIdleConn:     cfg.DBMaxIdleConn,
		MaxOpenConn:     cfg.DBMaxOpenConn,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.DBConnMaxIdleTime) * time.Second,
	}
	if pool.MaxOpenConn <= 0 {
		pool.MaxOpenConn = 20
	}
	if pool.MaxIdleConn <= 0 || pool.MaxIdleConn > pool.MaxOpenConn {
		pool.MaxIdleConn = pool.MaxOpenConn / 4
		if pool.MaxIdleConn == 0 {
			pool.MaxIdleConn = 1
		}
	}
	// SQLite serialises writers anyway.
	if cfg.DBType == "sqlite" {
		pool.MaxOpenConn = 1
		pool.MaxIdleConn = 1
	}
	return pool
}
