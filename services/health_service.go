// Package services contains the health aggregator, the composite check that
// backs the liveness and readiness endpoints.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/zap"

	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/config"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/errors"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/logger"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/types"
)

const bytesPerMB = 1024 * 1024

// PingPooler is the slice of pgxpool.Pool the database probe needs.
type PingPooler interface {
	Ping(ctx context.Context) error
}

// RegulatoryPinger is the slice of the openFDA client the external-api probe
// needs.
type RegulatoryPinger interface {
	Configured() bool
	Ping(ctx context.Context) error
}

type diskUsageFunc func(ctx context.Context, path string) (*disk.UsageStat, error)
type memoryStatFunc func(ctx context.Context) (*mem.VirtualMemoryStat, error)

// HealthService runs the fixed set of dependency probes and folds them into
// a single HealthReport. It holds no mutable state between calls; every
// report is built fresh.
type HealthService struct {
	cfg         config.HealthConfig
	dbPool      PingPooler
	redisClient *redis.Client
	fdaClient   RegulatoryPinger
	version     string
	startTime   time.Time
	log         *zap.SugaredLogger
	metrics     *healthMetrics

	// OS stat functions, swappable in tests.
	diskUsage  diskUsageFunc
	memoryStat memoryStatFunc
}

// Option configures a HealthService.
type Option func(*HealthService)

// NewHealthService creates a health aggregator over the given collaborators.
// redisClient may be nil (cache not configured) and fdaClient may be nil or
// unconfigured (external API check disabled); both are reported healthy with
// a "not-configured" status rather than as failures.
func NewHealthService(cfg config.HealthConfig, dbPool PingPooler, redisClient *redis.Client, fdaClient RegulatoryPinger, version string, opts ...Option) *HealthService {
	h := &HealthService{
		cfg:         cfg,
		dbPool:      dbPool,
		redisClient: redisClient,
		fdaClient:   fdaClient,
		version:     version,
		startTime:   time.Now(),
		log:         logger.GetLogger().Named("health"),
		diskUsage:   disk.UsageWithContext,
		memoryStat:  mem.VirtualMemoryWithContext,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// SetDiskUsageFunc swaps the disk stat source. Used in tests to exercise
// threshold boundaries without touching the real filesystem.
func (h *HealthService) SetDiskUsageFunc(fn func(ctx context.Context, path string) (*disk.UsageStat, error)) {
	h.diskUsage = fn
}

// SetMemoryStatFunc swaps the memory stat source.
func (h *HealthService) SetMemoryStatFunc(fn func(ctx context.Context) (*mem.VirtualMemoryStat, error)) {
	h.memoryStat = fn
}

// CheckAll runs the requested checks (default: all known checks) and returns
// the aggregate report. Probe failures are captured in the report, never
// returned as errors; the only error case is a request naming an unknown
// check.
func (h *HealthService) CheckAll(ctx context.Context, subset ...types.CheckName) (types.HealthReport, error) {
	requested := subset
	if len(requested) == 0 {
		requested = types.KnownChecks()
	}

	seen := make(map[types.CheckName]bool, len(requested))
	names := make([]types.CheckName, 0, len(requested))
	for _, name := range requested {
		if !types.IsKnownCheck(name) {
			return types.HealthReport{}, errors.UnknownCheck(string(name))
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, h.cfg.AggregateTimeout())
	defer cancel()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[types.CheckName]types.CheckResult, len(names))
	)

	for _, name := range names {
		wg.Add(1)
		go func(name types.CheckName) {
			defer wg.Done()
			result := h.runCheck(ctx, name)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name)
	}

	wg.Wait()

	healthy := true
	for _, result := range results {
		if !result.Healthy {
			healthy = false
			h.log.Warnw("Health check failed",
				"check", result.Name,
				"status", result.Status,
				"latency", result.Latency,
			)
		}
	}

	return types.HealthReport{
		Healthy:     healthy,
		Checks:      results,
		GeneratedAt: time.Now().UTC(),
		Version:     h.version,
		Uptime:      time.Since(h.startTime).Truncate(time.Second).String(),
	}, nil
}

// runCheck executes one probe under the per-probe timeout. A probe that is
// still running when its deadline passes is abandoned and reported as timed
// out, so one hung dependency cannot stall the whole report. A panicking
// probe is reported as unhealthy with status "error".
func (h *HealthService) runCheck(ctx context.Context, name types.CheckName) types.CheckResult {
	start := time.Now()

	probeCtx, cancel := context.WithTimeout(ctx, h.cfg.ProbeTimeout())
	defer cancel()

	resultCh := make(chan types.CheckResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- types.CheckResult{
					Name:    name,
					Healthy: false,
					Status:  types.StatusError,
					Detail:  map[string]interface{}{"error": fmt.Sprintf("probe panic: %v", r)},
				}
			}
		}()
		resultCh <- h.probe(probeCtx, name)
	}()

	var result types.CheckResult
	select {
	case result = <-resultCh:
	case <-probeCtx.Done():
		result = types.CheckResult{
			Name:    name,
			Healthy: false,
			Status:  types.StatusTimeout,
			Detail:  map[string]interface{}{"error": "check did not complete in time"},
		}
	}

	result.Latency = time.Since(start)
	if h.metrics != nil {
		h.metrics.observe(result)
	}
	return result
}

func (h *HealthService) probe(ctx context.Context, name types.CheckName) types.CheckResult {
	switch name {
	case types.CheckDatabase:
		return h.CheckDatabase(ctx)
	case types.CheckCache:
		return h.CheckCache(ctx)
	case types.CheckExternalAPI:
		return h.CheckExternalAPI(ctx)
	case types.CheckDiskSpace:
		return h.CheckDiskSpace(ctx)
	case types.CheckMemory:
		return h.CheckMemory(ctx)
	default:
		// Names are validated in CheckAll before dispatch.
		return types.CheckResult{
			Name:    name,
			Healthy: false,
			Status:  types.StatusError,
			Detail:  map[string]interface{}{"error": "unknown check"},
		}
	}
}

// CheckDatabase verifies the connection pool answers a ping.
func (h *HealthService) CheckDatabase(ctx context.Context) types.CheckResult {
	if err := h.dbPool.Ping(ctx); err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.CheckResult{
			Name:    types.CheckDatabase,
			Healthy: false,
			Status:  types.StatusUnreachable,
			Detail:  map[string]interface{}{"error": err.Error()},
		}
	}

	return types.CheckResult{
		Name:    types.CheckDatabase,
		Healthy: true,
		Status:  types.StatusOK,
	}
}

// CheckCache verifies the Redis client answers a ping. A deployment without
// a cache is healthy, not degraded.
func (h *HealthService) CheckCache(ctx context.Context) types.CheckResult {
	if h.redisClient == nil {
		return types.CheckResult{
			Name:    types.CheckCache,
			Healthy: true,
			Status:  types.StatusNotConfigured,
			Detail:  map[string]interface{}{"note": "no cache configured"},
		}
	}

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Cache health check failed", "error", err)
		return types.CheckResult{
			Name:    types.CheckCache,
			Healthy: false,
			Status:  types.StatusUnreachable,
			Detail:  map[string]interface{}{"error": err.Error()},
		}
	}

	return types.CheckResult{
		Name:    types.CheckCache,
		Healthy: true,
		Status:  types.StatusOK,
	}
}

// CheckExternalAPI verifies the openFDA device API answers a lightweight
// query. Running without openFDA credentials is healthy with a note.
func (h *HealthService) CheckExternalAPI(ctx context.Context) types.CheckResult {
	if h.fdaClient == nil || !h.fdaClient.Configured() {
		return types.CheckResult{
			Name:    types.CheckExternalAPI,
			Healthy: true,
			Status:  types.StatusNotConfigured,
			Detail:  map[string]interface{}{"note": "openFDA client not configured"},
		}
	}

	if err := h.fdaClient.Ping(ctx); err != nil {
		h.log.Errorw("External API health check failed", "error", err)
		return types.CheckResult{
			Name:    types.CheckExternalAPI,
			Healthy: false,
			Status:  types.StatusUnreachable,
			Detail:  map[string]interface{}{"error": err.Error()},
		}
	}

	return types.CheckResult{
		Name:    types.CheckExternalAPI,
		Healthy: true,
		Status:  types.StatusOK,
	}
}

// CheckDiskSpace verifies free space on the configured volume meets the
// minimum. Free space exactly at the threshold is healthy.
func (h *HealthService) CheckDiskSpace(ctx context.Context) types.CheckResult {
	usage, err := h.diskUsage(ctx, h.cfg.DiskPath)
	if err != nil {
		h.log.Errorw("Disk health check failed", "path", h.cfg.DiskPath, "error", err)
		return types.CheckResult{
			Name:    types.CheckDiskSpace,
			Healthy: false,
			Status:  types.StatusError,
			Detail:  map[string]interface{}{"error": "disk usage query failed"},
		}
	}

	freeMB := usage.Free / bytesPerMB
	detail := map[string]interface{}{
		"path":        h.cfg.DiskPath,
		"free_mb":     freeMB,
		"total_mb":    usage.Total / bytesPerMB,
		"min_free_mb": h.cfg.MinFreeDiskMB,
	}

	if freeMB < h.cfg.MinFreeDiskMB {
		return types.CheckResult{
			Name:    types.CheckDiskSpace,
			Healthy: false,
			Status:  types.StatusLowDisk,
			Detail:  detail,
		}
	}

	return types.CheckResult{
		Name:    types.CheckDiskSpace,
		Healthy: true,
		Status:  types.StatusOK,
		Detail:  detail,
	}
}

// CheckMemory verifies available system memory meets the minimum. Available
// memory exactly at the threshold is healthy.
func (h *HealthService) CheckMemory(ctx context.Context) types.CheckResult {
	vm, err := h.memoryStat(ctx)
	if err != nil {
		h.log.Errorw("Memory health check failed", "error", err)
		return types.CheckResult{
			Name:    types.CheckMemory,
			Healthy: false,
			Status:  types.StatusError,
			Detail:  map[string]interface{}{"error": "memory stats query failed"},
		}
	}

	availableMB := vm.Available / bytesPerMB
	detail := map[string]interface{}{
		"available_mb":     availableMB,
		"total_mb":         vm.Total / bytesPerMB,
		"min_available_mb": h.cfg.MinAvailableMemoryMB,
	}

	if availableMB < h.cfg.MinAvailableMemoryMB {
		return types.CheckResult{
			Name:    types.CheckMemory,
			Healthy: false,
			Status:  types.StatusLowMemory,
			Detail:  detail,
		}
	}

	return types.CheckResult{
		Name:    types.CheckMemory,
		Healthy: true,
		Status:  types.StatusOK,
		Detail:  detail,
	}
}
