package shared

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger used by every object in this module.
type Logger = logiface.Logger[logiface.Event]

var (
	defaultLogger struct {
		sync.RWMutex
		logger *Logger
	}

	// misuse diagnostics (e.g. unlock by a non-holder) are rate limited per
	// object, since a buggy caller tends to repeat them in a tight loop
	misuseLimiter = catrate.NewLimiter(map[time.Duration]int{
		time.Second: 5,
		time.Minute: 60,
	})
)

func init() {
	defaultLogger.logger = NewLogger(os.Stderr, logiface.LevelTrace)
}

// NewLogger returns a JSON logger writing to w, filtering events above level.
// Extra stumpy options (e.g. stumpy.WithTimeField) are applied after the writer.
func NewLogger(w io.Writer, level logiface.Level, opts ...stumpy.Option) *Logger {
	options := append([]stumpy.Option{stumpy.WithWriter(w)}, opts...)
	return stumpy.L.New(
		stumpy.L.WithStumpy(options...),
		stumpy.L.WithLevel(level),
	).Logger()
}

// SetDefaultLogger replaces the logger used by objects that were not given
// one via [WithLogger]. A nil logger disables output.
func SetDefaultLogger(l *Logger) {
	defaultLogger.Lock()
	defer defaultLogger.Unlock()
	defaultLogger.logger = l
}

// DefaultLogger returns the current package default logger.
func DefaultLogger() *Logger {
	defaultLogger.RLock()
	defer defaultLogger.RUnlock()
	return defaultLogger.logger
}

func allowMisuseLog(category any) bool {
	_, ok := misuseLimiter.Allow(category)
	return ok
}

type logiBuilder = logiface.Builder[logiface.Event]
