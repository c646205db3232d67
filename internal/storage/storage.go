package storage

import (
	"context"
	"fmt"
	"strings"

	"jobai-go/internal/config"
	"jobai-go/internal/logger"
)

// Storage aggregates the optional persistence backends. A nil field means the backend is
// disabled or failed to initialise.
type Storage struct {
	MinIO    *MinIO
	RabbitMQ *RabbitMQ
	MySQL    *MySQL
	Redis    *Redis
	JSONSink *JSONSink
}

// NewStorage initialises every enabled backend. Individual failures are logged and the
// backend left nil; an error is returned only when every enabled backend failed.
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	s := &Storage{}
	var enabled int
	var initErrors []string
	var err error

	fail := func(name string, err error) {
		logger.Warn().Err(err).Str("backend", name).Msg("storage backend initialisation failed")
		initErrors = append(initErrors, fmt.Sprintf("%s: %v", name, err))
	}

	if cfg.MinIO.Enabled {
		enabled++
		if s.MinIO, err = NewMinIO(ctx, &cfg.MinIO); err != nil {
			fail("minio", err)
			s.MinIO = nil
		}
	}

	if cfg.RabbitMQ.Enabled {
		enabled++
		if s.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ); err != nil {
			fail("rabbitmq", err)
			s.RabbitMQ = nil
		} else if err = s.RabbitMQ.EnsureTopology(); err != nil {
			fail("rabbitmq", err)
			s.RabbitMQ.Close()
			s.RabbitMQ = nil
		}
	}

	if cfg.MySQL.Enabled {
		enabled++
		if s.MySQL, err = NewMySQL(&cfg.MySQL); err != nil {
			fail("mysql", err)
			s.MySQL = nil
		}
	}

	if cfg.Redis.Enabled {
		enabled++
		if s.Redis, err = NewRedis(&cfg.Redis); err != nil {
			fail("redis", err)
			s.Redis = nil
		}
	}

	if cfg.Output.Enabled {
		enabled++
		if s.JSONSink, err = NewJSONSink(cfg.Output.Dir); err != nil {
			fail("json_sink", err)
			s.JSONSink = nil
		}
	}

	if enabled > 0 && len(initErrors) == enabled {
		return nil, fmt.Errorf("all storage backends failed: %s", strings.Join(initErrors, "; "))
	}
	return s, nil
}

// Status reports which backends are available, for the health endpoint.
func (s *Storage) Status() map[string]bool {
	if s == nil {
		s = &Storage{}
	}
	return map[string]bool{
		"minio":     s.MinIO != nil,
		"rabbitmq":  s.RabbitMQ != nil && !s.RabbitMQ.IsClosed(),
		"mysql":     s.MySQL != nil,
		"redis":     s.Redis != nil,
		"json_sink": s.JSONSink != nil,
	}
}

// Check pings every available backend and reports "ok", "disabled" or the error text.
func (s *Storage) Check(ctx context.Context) map[string]string {
	result := map[string]string{
		"minio":     "disabled",
		"rabbitmq":  "disabled",
		"mysql":     "disabled",
		"redis":     "disabled",
		"json_sink": "disabled",
	}
	if s == nil {
		return result
	}

	report := func(name string, err error) {
		if err != nil {
			result[name] = err.Error()
			return
		}
		result[name] = "ok"
	}
	if s.MinIO != nil {
		report("minio", s.MinIO.Ping(ctx))
	}
	if s.RabbitMQ != nil {
		var err error
		if s.RabbitMQ.IsClosed() {
			err = fmt.Errorf("connection closed")
		}
		report("rabbitmq", err)
	}
	if s.MySQL != nil {
		report("mysql", s.MySQL.Ping(ctx))
	}
	if s.Redis != nil {
		report("redis", s.Redis.Ping(ctx))
	}
	if s.JSONSink != nil {
		report("json_sink", nil)
	}
	return result
}

// Close releases every open connection.
func (s *Storage) Close() {
	if s == nil {
		return
	}
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close RabbitMQ")
		}
	}
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close MySQL")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close Redis")
		}
	}
}
