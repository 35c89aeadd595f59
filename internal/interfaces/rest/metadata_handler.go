package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doulacrm/backend/internal/application/services"
	"github.com/doulacrm/backend/internal/domain/wizard"
	"github.com/doulacrm/backend/pkg/errors"
	"github.com/doulacrm/backend/pkg/fieldtypes"
)

type MetadataHandler struct {
	svc *services.ServiceManager
}

func NewMetadataHandler(svc *services.ServiceManager) *MetadataHandler {
	return &MetadataHandler{svc: svc}
}

// GetFieldTypes lists the closed set of supported field data types
func (h *MetadataHandler) GetFieldTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"field_types": fieldtypes.GetRegistry().GetAll()})
}

// ListObjects returns all object definitions of the caller's organization,
// standard objects first
func (h *MetadataHandler) ListObjects(c *gin.Context) {
	user := GetUserFromContext(c)
	HandleGetEnvelope(c, "objects", func() (interface{}, error) {
		return h.svc.Metadata.ListObjects(c.Request.Context(), user.OrgID)
	})
}

// GetObject returns one object with its fields, filtered through the
// caller's field permissions
func (h *MetadataHandler) GetObject(c *gin.Context) {
	user := GetUserFromContext(c)
	apiName := c.Param("api_name")

	obj, err := h.svc.Metadata.GetObject(c.Request.Context(), user.OrgID, apiName)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	fields, err := h.svc.Permissions.EffectiveFields(c.Request.Context(), user, obj)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	visible := *obj
	visible.Fields = fields
	c.JSON(http.StatusOK, gin.H{"object": visible})
}

// CreateObject creates a custom object from a completed draft
func (h *MetadataHandler) CreateObject(c *gin.Context) {
	user := GetUserFromContext(c)

	var draft wizard.ObjectDraft
	if !BindJSON(c, &draft) {
		return
	}

	HandleMutationEnvelope(c, http.StatusCreated, "object", "Object created", func() (interface{}, error) {
		return h.svc.Metadata.CreateCustomObject(c.Request.Context(), user, draft)
	})
}

// UpdateObject applies mutable settings to an object. Attempts to change the
// api name or the standard flag are rejected.
func (h *MetadataHandler) UpdateObject(c *gin.Context) {
	user := GetUserFromContext(c)
	apiName := c.Param("api_name")

	var body map[string]interface{}
	if !BindJSON(c, &body) {
		return
	}
	if err := rejectImmutable(body, "api_name", "is_standard"); err != nil {
		RespondAppError(c, err)
		return
	}

	var update services.ObjectSettingsUpdate
	if err := rebind(body, &update); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return
	}

	HandleMutationEnvelope(c, http.StatusOK, "object", "Object updated", func() (interface{}, error) {
		return h.svc.Metadata.UpdateObjectSettings(c.Request.Context(), user, apiName, update)
	})
}

// DeactivateObject soft-deletes a custom object
func (h *MetadataHandler) DeactivateObject(c *gin.Context) {
	user := GetUserFromContext(c)
	apiName := c.Param("api_name")

	HandleMutationEnvelope(c, http.StatusOK, "", "Object deactivated", func() (interface{}, error) {
		return nil, h.svc.Metadata.DeactivateObject(c.Request.Context(), user, apiName)
	})
}

// ReactivateObject restores a deactivated object
func (h *MetadataHandler) ReactivateObject(c *gin.Context) {
	user := GetUserFromContext(c)
	apiName := c.Param("api_name")

	HandleMutationEnvelope(c, http.StatusOK, "", "Object reactivated", func() (interface{}, error) {
		return nil, h.svc.Metadata.ReactivateObject(c.Request.Context(), user, apiName)
	})
}
