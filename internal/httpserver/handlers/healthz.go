package handlers

import (
	"net/http"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/KirkDiggler/remindme/internal/httpserver/deps"
)

type systemStats struct {
	Platform      string  `json:"platform,omitempty"`
	KernelVersion string  `json:"kernel_version,omitempty"`
	CPUs          int     `json:"cpus,omitempty"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  uint64  `json:"memory_used_mb"`
	MemoryTotalMB uint64  `json:"memory_total_mb"`
}

type healthzResponse struct {
	Status        string      `json:"status"`
	UptimeSeconds float64     `json:"uptime_seconds"`
	GoVersion     string      `json:"go_version"`
	Goroutines    int         `json:"goroutines"`
	System        systemStats `json:"system"`
}

// Healthz reports liveness with process and host statistics. Stats that
// cannot be read are left out rather than failing the probe.
func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: d.Now().Sub(start).Seconds(),
			GoVersion:     runtime.Version(),
			Goroutines:    runtime.NumGoroutine(),
			System:        readSystemStats(),
		})
	}
}

func readSystemStats() systemStats {
	var stats systemStats

	if n, err := cpu.Counts(true); err == nil {
		stats.CPUs = n
	}
	// Zero interval compares against the previous call
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		stats.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
		stats.MemoryUsedMB = vm.Used / 1024 / 1024
		stats.MemoryTotalMB = vm.Total / 1024 / 1024
	}
	if info, err := host.Info(); err == nil {
		stats.Platform = info.Platform + " " + info.PlatformVersion
		stats.KernelVersion = info.KernelVersion
	}

	return stats
}
