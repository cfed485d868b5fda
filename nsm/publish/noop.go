package publish

import "time"

// NoopSurface discards every call. It satisfies Surface for tests and
// for any code path that runs with no bus adapter configured.
type NoopSurface struct{}

var _ Surface = NoopSurface{}

func (NoopSurface) SetReading(string, float64, string, time.Time) {}
func (NoopSurface) SetAvailable(string, bool)                     {}
func (NoopSurface) SetFunctional(string, bool)                    {}
func (NoopSurface) SetProperty(string, string, string, any)       {}
func (NoopSurface) AddAssociation(string, string, string, string) {}
