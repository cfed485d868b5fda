package publish

import (
	"time"

	"go.uber.org/zap"

	"github.com/NVIDIA/nsmd-sub002/pkg/log"
)

// LoggingSurface writes every call through pkg/log instead of a bus,
// for nsmd's --publish-log flag and for exercising sensors/Build without
// a real adapter wired up.
type LoggingSurface struct {
	logger *zap.SugaredLogger
}

var _ Surface = (*LoggingSurface)(nil)

// NewLoggingSurface builds a LoggingSurface over the process-wide
// logger, or over logger if non-nil (tests can pass an observed logger).
func NewLoggingSurface(logger *zap.SugaredLogger) *LoggingSurface {
	if logger == nil {
		logger = log.Logger
	}
	return &LoggingSurface{logger: logger}
}

func (s *LoggingSurface) SetReading(path string, value float64, unit string, timestamp time.Time) {
	s.logger.Infow("reading", "path", path, "value", value, "unit", unit, "timestamp", timestamp)
}

func (s *LoggingSurface) SetAvailable(path string, available bool) {
	s.logger.Infow("available", "path", path, "available", available)
}

func (s *LoggingSurface) SetFunctional(path string, functional bool) {
	s.logger.Infow("functional", "path", path, "functional", functional)
}

func (s *LoggingSurface) SetProperty(path, iface, prop string, value any) {
	s.logger.Infow("property", "path", path, "interface", iface, "property", prop, "value", value)
}

func (s *LoggingSurface) AddAssociation(path, forward, backward, absolute string) {
	s.logger.Infow("association", "path", path, "forward", forward, "backward", backward, "absolute", absolute)
}
