package api

import (
	"github.com/Davis1233798/note/internal/handler"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures the front door routes. The health route is
// registered by the infrastructure gin builder; every other path belongs to
// the static handler.
func SetupRoutes(router *gin.Engine, staticHandler *handler.StaticHandler) {
	router.NoRoute(staticHandler.Serve)
}
