// Package database contains the logic for establishing
// connections to the backing store of the person records.
//
// Depending on the configured driver it opens either a MongoDB client or a
// PostgreSQL connection pool (pgxpool), and wires the driver's logging and
// New Relic instrumentation. The memory driver opens nothing.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/phonebook/internal/config"
	loggerConfig "github.com/deppfellow/phonebook/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Database holds whichever driver handle the configured store needs.
//
// Exactly one of Mongo and Pool is set for the mongo and postgres drivers;
// both are nil for the memory driver.
type Database struct {
	Driver string

	Mongo   *mongo.Client
	MongoDB *mongo.Database

	Pool *pgxpool.Pool

	log *zerolog.Logger
}

// multiTracer allows chaining multiple pgx tracers.
//
// pgx supports a single Tracer in ConnConfig, so New Relic and the local
// query logger are combined through this adapter.
type multiTracer struct {
	tracers []any
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// DatabasePingTimeout is the number of seconds to wait for the startup ping.
const DatabasePingTimeout = 10

// New connects to the store selected by cfg.Database.Driver.
//
// Connection failures are returned, never retried: the caller decides
// whether the process can run without a database.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	db := &Database{Driver: cfg.Database.Driver, log: logger}

	var err error
	switch cfg.Database.Driver {
	case config.DriverMongo:
		err = db.connectMongo(cfg)
	case config.DriverPostgres:
		err = db.connectPostgres(cfg, loggerService)
	case config.DriverMemory:
		logger.Warn().Msg("using in-memory person store, data is lost on restart")
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("driver", db.Driver).Msg("connected to the database")

	return db, nil
}

func (db *Database) connectMongo(cfg *config.Config) error {
	clientOptions := options.Client().
		ApplyURI(cfg.Database.URI).
		SetConnectTimeout(cfg.Database.ConnectTimeout).
		SetServerSelectionTimeout(cfg.Database.ConnectTimeout)

	if cfg.Database.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(uint64(cfg.Database.MaxPoolSize))
	}

	// Commands are very noisy, so they are only logged in local env.
	if cfg.Primary.Env == "local" {
		clientOptions.SetMonitor(newCommandMonitor(db.log))
	}

	client, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	db.Mongo = client
	db.MongoDB = client.Database(cfg.Database.Name)
	return nil
}

// newCommandMonitor logs every command the mongo driver finishes.
func newCommandMonitor(logger *zerolog.Logger) *event.CommandMonitor {
	mongoLogger := logger.With().Str("component", "database").Logger()

	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			mongoLogger.Debug().
				Str("command", e.CommandName).
				Int64("request_id", e.RequestID).
				Dur("duration", e.Duration).
				Msg("mongo command succeeded")
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			mongoLogger.Warn().
				Str("command", e.CommandName).
				Int64("request_id", e.RequestID).
				Dur("duration", e.Duration).
				Str("failure", e.Failure).
				Msg("mongo command failed")
		},
	}
}

func (db *Database) connectPostgres(cfg *config.Config, loggerService *loggerConfig.LoggerService) error {
	pgxPoolConfig, err := pgxpool.ParseConfig(cfg.Database.URI)
	if err != nil {
		return fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	if cfg.Database.MaxPoolSize > 0 {
		pgxPoolConfig.MaxConns = int32(cfg.Database.MaxPoolSize)
	}
	pgxPoolConfig.ConnConfig.ConnectTimeout = cfg.Database.ConnectTimeout

	if loggerService != nil && loggerService.GetApplication() != nil {
		pgxPoolConfig.ConnConfig.Tracer = nrpgx5.NewTracer()
	}

	// SQL query logging is only enabled in local env.
	if cfg.Primary.Env == "local" {
		globalLevel := db.log.GetLevel()
		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(loggerConfig.NewPgxLogger(globalLevel)),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(globalLevel)),
		}

		if pgxPoolConfig.ConnConfig.Tracer != nil {
			pgxPoolConfig.ConnConfig.Tracer = &multiTracer{
				tracers: []any{pgxPoolConfig.ConnConfig.Tracer, localTracer},
			}
		} else {
			pgxPoolConfig.ConnConfig.Tracer = localTracer
		}
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}

	db.Pool = pool
	return nil
}

// Ping checks that the backing store is reachable.
func (db *Database) Ping(ctx context.Context) error {
	switch {
	case db.Mongo != nil:
		return db.Mongo.Ping(ctx, readpref.Primary())
	case db.Pool != nil:
		return db.Pool.Ping(ctx)
	default:
		return nil
	}
}

// Close releases the driver handle.
func (db *Database) Close() error {
	switch {
	case db.Mongo != nil:
		db.log.Info().Msg("closing mongodb client")
		ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
		defer cancel()
		return db.Mongo.Disconnect(ctx)
	case db.Pool != nil:
		db.log.Info().Msg("closing database connection pool")
		db.Pool.Close()
	}
	return nil
}
