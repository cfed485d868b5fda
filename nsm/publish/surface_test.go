package publish

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNoopSurfaceDiscardsEverything(t *testing.T) {
	var s Surface = NoopSurface{}
	s.SetReading("/gpu0/temp", 42.0, "celsius", time.Now())
	s.SetAvailable("/gpu0", true)
	s.SetFunctional("/gpu0", true)
	s.SetProperty("/gpu0", "com.nvidia.NSM.Device", "UUID", "GPU-0000")
	s.AddAssociation("/gpu0", "chassis", "gpu", "/baseboard0")
}

func TestLoggingSurfaceWritesThroughLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	surface := NewLoggingSurface(zap.New(core).Sugar())

	surface.SetReading("/gpu0/temp", 42.5, "celsius", time.Unix(0, 0))
	surface.SetAvailable("/gpu0", true)
	surface.SetFunctional("/gpu0", false)
	surface.SetProperty("/gpu0", "com.nvidia.NSM.Device", "UUID", "GPU-0000")
	surface.AddAssociation("/gpu0", "chassis", "gpu", "/baseboard0")

	if got := logs.Len(); got != 5 {
		t.Fatalf("logs.Len() = %d, want 5", got)
	}
	messages := []string{"reading", "available", "functional", "property", "association"}
	for i, want := range messages {
		if got := logs.All()[i].Message; got != want {
			t.Fatalf("logs.All()[%d].Message = %q, want %q", i, got, want)
		}
	}
}

func TestNewLoggingSurfaceDefaultsToPackageLogger(t *testing.T) {
	s := NewLoggingSurface(nil)
	if s.logger == nil {
		t.Fatalf("NewLoggingSurface(nil) left logger nil")
	}
}
