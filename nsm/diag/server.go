// Package diag exposes a small operator-facing HTTP surface over the
// running daemon's registered devices: liveness, prometheus metrics,
// and a debug JSON dump. It is not the object bus spec.md §6 names --
// see nsm/publish for that contract -- this package exists purely for
// local operability, the same posture every gpud-style daemon in this
// tree takes.
package diag

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NVIDIA/nsmd-sub002/nsm/sensor"
	"github.com/NVIDIA/nsmd-sub002/pkg/log"
)

// Server wraps a gin engine bound to a device registry and a prometheus
// registry, ready to ListenAndServe.
type Server struct {
	engine *gin.Engine
	reg    *sensor.Registry
	http   *http.Server
}

// New builds a Server exposing /healthz, /metrics (backed by promReg)
// and /devices (dumping reg's registered devices).
func New(reg *sensor.Registry, promReg *prometheus.Registry) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	zapLogger := log.Logger.Desugar()
	engine.Use(
		requestid.New(),
		ginzap.Ginzap(zapLogger, time.RFC3339, true),
		ginzap.RecoveryWithZap(zapLogger, true),
		gzip.Gzip(gzip.DefaultCompression),
	)

	s := &Server{engine: engine, reg: reg}
	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/devices", s.handleDevices)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))
	return s
}

// Engine exposes the underlying gin engine, mainly for tests that want
// to drive requests through httptest without a real listener.
func (s *Server) Engine() http.Handler { return s.engine }

// ListenAndServe starts the HTTP surface on addr. It blocks until
// Shutdown is called or the listener errors.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.engine}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops a running ListenAndServe, honoring ctx's
// deadline for in-flight requests. It is a no-op if the server never
// started listening.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// deviceView is the JSON shape one device's debug dump takes.
type deviceView struct {
	UUID             string   `json:"uuid"`
	EID              uint8    `json:"eid"`
	EventMode        uint8    `json:"event_mode"`
	PrioritySensors  []string `json:"priority_sensors"`
	RoundRobinSensors []string `json:"round_robin_sensors"`
}

func (s *Server) handleDevices(c *gin.Context) {
	devices := s.reg.All()
	views := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, deviceView{
			UUID:              d.UUID,
			EID:               d.EID,
			EventMode:         d.EventMode(),
			PrioritySensors:   sensorNames(d.PrioritySensors()),
			RoundRobinSensors: sensorNames(d.RoundRobinSensors()),
		})
	}
	c.JSON(http.StatusOK, gin.H{"devices": views})
}

func sensorNames(sensors []sensor.Sensor) []string {
	names := make([]string, len(sensors))
	for i, sn := range sensors {
		names[i] = sn.Name()
	}
	return names
}
