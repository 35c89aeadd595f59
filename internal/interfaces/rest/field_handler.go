package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doulacrm/backend/internal/application/services"
	"github.com/doulacrm/backend/internal/domain/wizard"
	"github.com/doulacrm/backend/pkg/errors"
)

type FieldHandler struct {
	svc *services.ServiceManager
}

func NewFieldHandler(svc *services.ServiceManager) *FieldHandler {
	return &FieldHandler{svc: svc}
}

// CreateField adds a field to an object from a completed draft
func (h *FieldHandler) CreateField(c *gin.Context) {
	user := GetUserFromContext(c)
	objectAPIName := c.Param("api_name")

	var draft wizard.FieldDraft
	if !BindJSON(c, &draft) {
		return
	}

	HandleMutationEnvelope(c, http.StatusCreated, "field", "Field created", func() (interface{}, error) {
		return h.svc.Metadata.CreateField(c.Request.Context(), user, objectAPIName, draft)
	})
}

// UpdateField applies mutable settings to a field. The data type, api name
// and type config are immutable once the field exists.
func (h *FieldHandler) UpdateField(c *gin.Context) {
	user := GetUserFromContext(c)
	objectAPIName := c.Param("api_name")
	fieldAPIName := c.Param("field_api_name")

	var body map[string]interface{}
	if !BindJSON(c, &body) {
		return
	}
	if err := rejectImmutable(body, "data_type", "api_name", "config"); err != nil {
		RespondAppError(c, err)
		return
	}

	var update services.FieldSettingsUpdate
	if err := rebind(body, &update); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return
	}

	HandleMutationEnvelope(c, http.StatusOK, "field", "Field updated", func() (interface{}, error) {
		return h.svc.Metadata.UpdateFieldSettings(c.Request.Context(), user, objectAPIName, fieldAPIName, update)
	})
}

// DeactivateField soft-deletes a custom field
func (h *FieldHandler) DeactivateField(c *gin.Context) {
	user := GetUserFromContext(c)

	HandleMutationEnvelope(c, http.StatusOK, "", "Field deactivated", func() (interface{}, error) {
		return nil, h.svc.Metadata.DeactivateField(c.Request.Context(), user, c.Param("api_name"), c.Param("field_api_name"))
	})
}

// ReactivateField restores a deactivated field
func (h *FieldHandler) ReactivateField(c *gin.Context) {
	user := GetUserFromContext(c)

	HandleMutationEnvelope(c, http.StatusOK, "", "Field reactivated", func() (interface{}, error) {
		return nil, h.svc.Metadata.ReactivateField(c.Request.Context(), user, c.Param("api_name"), c.Param("field_api_name"))
	})
}
