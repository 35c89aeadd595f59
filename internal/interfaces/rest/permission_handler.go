package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doulacrm/backend/internal/application/services"
	"github.com/doulacrm/backend/pkg/models"
)

type PermissionHandler struct {
	svc *services.ServiceManager
}

func NewPermissionHandler(svc *services.ServiceManager) *PermissionHandler {
	return &PermissionHandler{svc: svc}
}

// GetMatrix resolves the field permission matrix of one profile on one object
func (h *PermissionHandler) GetMatrix(c *gin.Context) {
	user := GetUserFromContext(c)

	HandleGetEnvelope(c, "matrix", func() (interface{}, error) {
		return h.svc.Permissions.GetMatrix(c.Request.Context(), user,
			c.Param("profile_id"), c.Param("api_name"))
	})
}

// SetPermission writes one field permission tuple
func (h *PermissionHandler) SetPermission(c *gin.Context) {
	user := GetUserFromContext(c)

	var perm models.FieldPermission
	if !BindJSON(c, &perm) {
		return
	}
	perm.ProfileID = c.Param("profile_id")

	HandleMutationEnvelope(c, http.StatusOK, "", "Permission updated", func() (interface{}, error) {
		return nil, h.svc.Permissions.SetFieldPermission(c.Request.Context(), user, perm)
	})
}

type bulkPermissionRequest struct {
	IsVisible  *bool `json:"is_visible"`
	IsEditable *bool `json:"is_editable"`
}

// SetBulk applies visibility/editability to every field of an object for one profile
func (h *PermissionHandler) SetBulk(c *gin.Context) {
	user := GetUserFromContext(c)

	var req bulkPermissionRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleMutationEnvelope(c, http.StatusOK, "", "Permissions updated", func() (interface{}, error) {
		return nil, h.svc.Permissions.SetObjectPermissions(c.Request.Context(), user,
			c.Param("profile_id"), c.Param("api_name"), req.IsVisible, req.IsEditable)
	})
}
