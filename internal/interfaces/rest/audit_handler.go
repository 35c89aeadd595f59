package rest

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/doulacrm/backend/internal/application/services"
)

type AuditHandler struct {
	svc *services.ServiceManager
}

func NewAuditHandler(svc *services.ServiceManager) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// List returns recent audit entries, newest first. Supports ?entity_type= and
// ?limit= query filters.
func (h *AuditHandler) List(c *gin.Context) {
	user := GetUserFromContext(c)

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	HandleGetEnvelope(c, "entries", func() (interface{}, error) {
		return h.svc.Audit.List(c.Request.Context(), user, c.Query("entity_type"), limit)
	})
}
