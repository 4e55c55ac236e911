package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/emrgen/metadata/internal/cache"
	"github.com/emrgen/metadata/internal/compress"
	"github.com/emrgen/metadata/internal/config"
	"github.com/emrgen/metadata/internal/jobs"
	"github.com/emrgen/metadata/internal/lookup"
	"github.com/emrgen/metadata/internal/metadata"
	"github.com/emrgen/metadata/internal/queue"
	"github.com/emrgen/metadata/internal/service"
	"github.com/emrgen/metadata/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Runtime holds the components wired from a Config.
type Runtime struct {
	Config   *config.Config
	Store    *store.GormStore
	Registry *lookup.Registry
	Resolver *metadata.Resolver
	Service  *service.MetadataService
	// Cache is nil when no redis address is configured.
	Cache *lookup.CachedEvaluator

	closers []io.Closer
}

// NewRuntime opens the database and, when configured, the kafka producer
// and the redis lookup cache.
func NewRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	r := &Runtime{Config: cfg}

	db, err := config.GetDb(cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		r.closers = append(r.closers, sqlDB)
	}

	var events queue.EventQueue = queue.NewNop()
	if cfg.Kafka.Brokers != "" {
		kafka, err := queue.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("kafka: %w", err)
		}
		events = kafka
		r.closers = append(r.closers, kafka)
		logrus.Infof("publishing audit events to %v", cfg.Kafka.Topic)
	}
	r.Store = store.NewGormStore(db, store.WithEventQueue(events))

	r.Registry = lookup.NewRegistry()
	for name, value := range cfg.Lookup.Values {
		r.Registry.RegisterValue(name, "Configured value", value)
	}

	var evaluator lookup.Evaluator = lookup.NewTemplateEvaluator(r.Registry)
	if cfg.Redis.Addr != "" {
		codec, err := compress.New(cfg.Lookup.Compression)
		if err != nil {
			r.Close()
			return nil, err
		}

		redis := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, codec)
		r.closers = append(r.closers, redis)
		if err := redis.Ping(ctx); err != nil {
			r.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}

		r.Cache = lookup.NewCachedEvaluator(evaluator, redis, cfg.Lookup.CacheTTL)
		evaluator = r.Cache
		logrus.Infof("caching lookup choices in redis %v", cfg.Redis.Addr)
	}

	r.Resolver = metadata.NewResolver(r.Store, evaluator, nil)
	r.Service = service.NewMetadataService(r.Store, r.Resolver, r.Registry)
	r.Service.RegisterLookups(r.Registry)

	return r, nil
}

// Close releases the connections in reverse opening order.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil

	return errors.Join(errs...)
}

// Work runs the lookup cache warmer until an interrupt signal arrives.
func (r *Runtime) Work() error {
	if r.Cache == nil {
		return errors.New("lookup cache is not configured, set REDIS_ADDR")
	}

	executor := jobs.NewTaskExecutor(jobs.NewLookupRefreshTask(r.Config.Lookup.Refresh, r.Store, r.Cache))
	if err := executor.Run(); err != nil {
		return err
	}

	logrus.Infof("refreshing lookups %v, press Ctrl+C to stop", r.Config.Lookup.Refresh)

	// listen for interrupt signal to gracefully stop the worker
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	executor.Stop()

	return nil
}
