package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Config задаёт параметры глобального логгера.
type Config struct {
	Level   string
	Output  io.Writer // по умолчанию os.Stdout
	Service string
}

var (
	mu   sync.RWMutex
	base = newLogger(Config{})
)

func newLogger(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stdout
	}
	service := cfg.Service
	if service == "" {
		service = "ecoshop"
	}
	return zerolog.New(writer).Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// Configure replaces the base logger and the zerolog global logger. Call it
// once from main before any component logger is derived.
func Configure(cfg Config) {
	l := newLogger(cfg)
	mu.Lock()
	base = l
	zlog.Logger = l
	mu.Unlock()
}

func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
