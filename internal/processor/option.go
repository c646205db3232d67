package processor

import (
	"time"

	"github.com/rs/zerolog"

	"jobai-go/internal/storage"
)

// ComponentOpt changes a field of Components.
type ComponentOpt func(*Components)

// SettingOpt changes a field of Settings.
type SettingOpt func(*Settings)

// ----- components -----

// WithcompPdfextractor sets the PDF text extractor.
func WithcompPdfextractor(extractor PDFExtractor) ComponentOpt {
	return func(c *Components) {
		c.PDFExtractor = extractor
	}
}

// WithcompCache sets the result cache.
func WithcompCache(cache ResultCache) ComponentOpt {
	return func(c *Components) {
		c.Cache = cache
	}
}

// WithcompFiles sets the object store.
func WithcompFiles(files FileStore) ComponentOpt {
	return func(c *Components) {
		c.Files = files
	}
}

// WithcompRecords sets the audit store.
func WithcompRecords(records RecordStore) ComponentOpt {
	return func(c *Components) {
		c.Records = records
	}
}

// WithcompEvents sets the event publisher.
func WithcompEvents(events EventPublisher) ComponentOpt {
	return func(c *Components) {
		c.Events = events
	}
}

// WithcompSink sets the local result sink.
func WithcompSink(sink ResultSink) ComponentOpt {
	return func(c *Components) {
		c.Sink = sink
	}
}

// WithcompStorage wires every available backend of s. Nil backends stay unset so the
// interfaces never hold typed nils.
func WithcompStorage(s *storage.Storage) ComponentOpt {
	return func(c *Components) {
		if s == nil {
			return
		}
		if s.Redis != nil {
			c.Cache = s.Redis
		}
		if s.MinIO != nil {
			c.Files = s.MinIO
		}
		if s.MySQL != nil {
			c.Records = s.MySQL
		}
		if s.RabbitMQ != nil {
			c.Events = s.RabbitMQ
		}
		if s.JSONSink != nil {
			c.Sink = s.JSONSink
		}
	}
}

// ----- settings -----

// WithsetParallel toggles concurrent field extraction.
func WithsetParallel(parallel bool) SettingOpt {
	return func(s *Settings) {
		s.Parallel = parallel
	}
}

// WithsetMaxUploadBytes sets the upload size limit.
func WithsetMaxUploadBytes(n int64) SettingOpt {
	return func(s *Settings) {
		s.MaxUploadBytes = n
	}
}

// WithsetTimeout sets the overall per-request deadline; zero disables it.
func WithsetTimeout(d time.Duration) SettingOpt {
	return func(s *Settings) {
		s.Timeout = d
	}
}

// WithsetPDFEngine records the engine name on audit rows.
func WithsetPDFEngine(engine string) SettingOpt {
	return func(s *Settings) {
		s.PDFEngine = engine
	}
}

// WithsetClock overrides "now" for date ranges and timestamps.
func WithsetClock(now func() time.Time) SettingOpt {
	return func(s *Settings) {
		if now != nil {
			s.Clock = now
		}
	}
}

// WithsetLogger sets the component logger.
func WithsetLogger(l *zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		if l != nil {
			s.Logger = l
		} else {
			nop := zerolog.Nop()
			s.Logger = &nop
		}
	}
}
