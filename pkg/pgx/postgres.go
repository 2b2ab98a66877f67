package pgx

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const ProviderName = "pgx"

// ErrNotConnected is returned before Start and after Shutdown.
var ErrNotConnected = errors.New("database is not connected")

type Postgres struct {
	mu      sync.RWMutex
	conn    *sqlx.DB
	config  *Config
	watcher atomic.Bool
	done    chan struct{}
}

func NewPostgres(ctx context.Context, config *Config) (*Postgres, error) {
	if config == nil {
		return nil, errors.New("invalid passed options pointer")
	}

	return &Postgres{config: config.SetDefault()}, nil
}

func (p *Postgres) GetConn() *sqlx.DB {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.conn
}

func (p *Postgres) GetConfig() *Config {
	return p.config
}

// Start connects and, when configured, launches the connection watcher on the runner.
func (p *Postgres) Start(ctx context.Context, runner *errgroup.Group) error {
	logger := p.GetLogger(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		return nil
	}

	logger.Info().Msg("establishing connection...")
	conn, err := sqlx.ConnectContext(ctx, ProviderName, p.config.DSN)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	logger.Info().Msg("connection established")

	conn.SetConnMaxLifetime(p.config.MaxConnectionLifetime)
	conn.SetMaxIdleConns(p.config.MaxIdleConnections)
	conn.SetMaxOpenConns(p.config.MaxOpenedConnections)
	p.conn = conn

	if p.config.StartWatcher && p.watcher.CompareAndSwap(false, true) {
		p.done = make(chan struct{})
		runner.Go(func() error {
			return p.watch(ctx)
		})
	}

	return nil
}

func (p *Postgres) GetLogger(ctx context.Context) *zerolog.Logger {
	logger := zerolog.Ctx(ctx).With().Str("name", "pgx").Logger()
	return &logger
}

func (p *Postgres) watch(ctx context.Context) error {
	logger := p.GetLogger(ctx)
	logger.Info().Msg("starting connection watcher")

	ticker := time.NewTicker(p.config.Timeout)
	defer func() {
		ticker.Stop()
		p.watcher.Store(false)
		close(p.done)
		logger.Info().Msg("connection watcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.Ping(ctx); err != nil {
				logger.Error().Err(err).Msg("connection lost")
			}
		}
	}
}

// Shutdown waits for the watcher to exit and closes the pool.
func (p *Postgres) Shutdown(ctx context.Context) error {
	logger := p.GetLogger(ctx)
	logger.Info().Msg("shutting down")

	if p.watcher.Load() && p.done != nil {
		select {
		case <-p.done:
		case <-time.After(p.config.Timeout):
			logger.Warn().Msg("connection watcher did not stop in time")
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	if err := p.conn.Close(); err != nil {
		return errors.Wrap(err, "close connection")
	}
	p.conn = nil

	logger.Info().Msg("shut down")
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	conn := p.GetConn()
	if conn == nil {
		return ErrNotConnected
	}

	pctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	if err := conn.PingContext(pctx); err != nil {
		return errors.Wrap(err, "ping connection")
	}
	return nil
}

// WithTx runs fn inside a transaction and commits when it returns nil.
func (p *Postgres) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	conn := p.GetConn()
	if conn == nil {
		return ErrNotConnected
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			p.GetLogger(ctx).Error().Err(rbErr).Msg("rollback")
		}
		return err
	}

	return errors.Wrap(tx.Commit(), "commit tx")
}
