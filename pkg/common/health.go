package common

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// Health statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse is the body of the health endpoints
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// DependencyCheck probes one dependency. A failing non-critical check
// degrades the service without failing readiness.
type DependencyCheck struct {
	Check    func() error
	Critical bool
}

// Liveness reports that the process is serving
func Liveness(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  StatusHealthy,
			Service: serviceName,
			Version: version,
		})
	}
}

// HealthCheckWithDeps runs every dependency check concurrently and answers
// 503 when a critical one fails
func HealthCheckWithDeps(serviceName, version string, checks map[string]DependencyCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			mu       sync.Mutex
			wg       sync.WaitGroup
			results  = make(map[string]string, len(checks))
			critical bool
			degraded bool
		)

		for name, dep := range checks {
			wg.Add(1)
			go func(name string, dep DependencyCheck) {
				defer wg.Done()
				err := dep.Check()

				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					results[name] = StatusHealthy
					return
				}
				results[name] = StatusUnhealthy + ": " + err.Error()
				if dep.Critical {
					critical = true
				} else {
					degraded = true
				}
			}(name, dep)
		}
		wg.Wait()

		status, code := StatusHealthy, http.StatusOK
		switch {
		case critical:
			status, code = StatusUnhealthy, http.StatusServiceUnavailable
		case degraded:
			status = StatusDegraded
		}

		c.JSON(code, HealthResponse{
			Status:  status,
			Service: serviceName,
			Version: version,
			Checks:  results,
		})
	}
}
