package types

import "time"

// CheckName identifies one of the fixed set of health probes.
type CheckName string

const (
	CheckDatabase    CheckName = "database"
	CheckCache       CheckName = "cache"
	CheckExternalAPI CheckName = "external-api"
	CheckDiskSpace   CheckName = "disk-space"
	CheckMemory      CheckName = "memory"
)

// KnownChecks returns every check name the aggregator understands, in a
// stable order.
func KnownChecks() []CheckName {
	return []CheckName{
		CheckDatabase,
		CheckCache,
		CheckExternalAPI,
		CheckDiskSpace,
		CheckMemory,
	}
}

// IsKnownCheck reports whether name is one of the fixed check names.
func IsKnownCheck(name CheckName) bool {
	switch name {
	case CheckDatabase, CheckCache, CheckExternalAPI, CheckDiskSpace, CheckMemory:
		return true
	}
	return false
}

// CheckStatus is the machine-readable outcome code of a single probe.
type CheckStatus string

const (
	StatusOK            CheckStatus = "ok"
	StatusDegraded      CheckStatus = "degraded"
	StatusUnreachable   CheckStatus = "unreachable"
	StatusTimeout       CheckStatus = "timeout"
	StatusError         CheckStatus = "error"
	StatusLowDisk       CheckStatus = "low-disk"
	StatusLowMemory     CheckStatus = "low-memory"
	StatusNotConfigured CheckStatus = "not-configured"
)

// CheckResult is the immutable outcome of one probe run.
type CheckResult struct {
	Name    CheckName              `json:"name"`
	Healthy bool                   `json:"healthy"`
	Status  CheckStatus            `json:"status"`
	Detail  map[string]interface{} `json:"detail,omitempty"`
	Latency time.Duration          `json:"latency_ns"`
}

// HealthReport is the aggregate of one CheckAll invocation. It is built
// fresh per call and never persisted.
type HealthReport struct {
	Healthy     bool                      `json:"healthy"`
	Checks      map[CheckName]CheckResult `json:"checks"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Version     string                    `json:"version,omitempty"`
	Uptime      string                    `json:"uptime,omitempty"`
}
