// Package webapi serves operational endpoints: host and process
// health for dashboards plus the recent proof audit trail.
package webapi

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"tarotvision-server-go/internal/domain/audit"
	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/errors"
	"tarotvision-server-go/internal/platform/logging"
	httptransport "tarotvision-server-go/internal/transport/http"
)

// Service exposes the operational API.
type Service struct {
	config  *config.Config
	logger  *logging.Logger
	audit   *audit.Recorder
	started time.Time
}

// NewService builds the operational API service. The audit recorder
// may be nil when auditing is disabled.
func NewService(cfg *config.Config, logger *logging.Logger, recorder *audit.Recorder) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "webapi.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "webapi.new", "logger is required")
	}
	return &Service{
		config:  cfg,
		logger:  logger,
		audit:   recorder,
		started: time.Now(),
	}, nil
}

// Register mounts the operational routes on the API group.
func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	router.GET("/system", s.handleSystem)
	router.GET("/audit", s.handleAudit)

	s.logger.InfoTag("HTTP", "webapi routes registered")
	return nil
}

// SystemData is the health snapshot returned by GET /api/system.
type SystemData struct {
	Uptime     string  `json:"uptime"`
	Goroutines int     `json:"goroutines"`
	CPUPercent float64 `json:"cpu_percent"`
	MemUsedPct float64 `json:"mem_used_percent"`
	Hostname   string  `json:"hostname"`
	Platform   string  `json:"platform"`
	GoVersion  string  `json:"go_version"`
}

func (s *Service) handleSystem(c *gin.Context) {
	data := SystemData{
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		data.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		data.MemUsedPct = vm.UsedPercent
	}
	if info, err := host.Info(); err == nil {
		data.Hostname = info.Hostname
		data.Platform = info.Platform
	}

	httptransport.RespondSuccess(c, http.StatusOK, data, "")
}

func (s *Service) handleAudit(c *gin.Context) {
	if s.audit == nil {
		httptransport.RespondError(c, http.StatusNotFound, "audit log is disabled", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := s.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		s.logger.ErrorTag("HTTP", "audit query failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "audit query failed", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, rows, "")
}
