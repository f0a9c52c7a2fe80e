package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/rcmp123/marketplace/internal/interface/http"
)

// HealthModule serves GET / (liveness) and GET /healthz (database readiness).
type HealthModule struct {
	Handler *handlers.HealthHandler
}

func NewHealthModule(h *handlers.HealthHandler) *HealthModule { return &HealthModule{Handler: h} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.Handler.Alive)
	rg.GET("/healthz", m.Handler.Ready)
}
