package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthStatusOK is the only status the liveness endpoint reports: if the
// process can answer, it is alive.
const HealthStatusOK = "ok"

// HealthResponse is the health endpoint body.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// RegisterHealthRoutes mounts the liveness handler at path for every method.
// The request is never inspected.
func RegisterHealthRoutes(router *gin.Engine, path, serviceName, version string) {
	router.Any(path, HealthHandler(serviceName, version))
}

// HealthHandler answers with a fixed HealthResponse.
func HealthHandler(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  HealthStatusOK,
			Service: serviceName,
			Version: version,
		})
	}
}
