package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doulacrm/backend/internal/application/services"
)

type PicklistHandler struct {
	svc *services.ServiceManager
}

func NewPicklistHandler(svc *services.ServiceManager) *PicklistHandler {
	return &PicklistHandler{svc: svc}
}

type addPicklistValueRequest struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AddValue appends a value to a picklist field
func (h *PicklistHandler) AddValue(c *gin.Context) {
	user := GetUserFromContext(c)

	var req addPicklistValueRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleMutationEnvelope(c, http.StatusCreated, "value", "Picklist value added", func() (interface{}, error) {
		return h.svc.Metadata.AddPicklistValue(c.Request.Context(), user,
			c.Param("api_name"), c.Param("field_api_name"), req.Value, req.Label)
	})
}

// UpdateValue applies mutable properties to a picklist value
func (h *PicklistHandler) UpdateValue(c *gin.Context) {
	user := GetUserFromContext(c)

	var update services.PicklistValueUpdate
	if !BindJSON(c, &update) {
		return
	}

	HandleMutationEnvelope(c, http.StatusOK, "value", "Picklist value updated", func() (interface{}, error) {
		return h.svc.Metadata.UpdatePicklistValue(c.Request.Context(), user,
			c.Param("api_name"), c.Param("field_api_name"), c.Param("value_id"), update)
	})
}

// SetDefault marks one value as the field's default
func (h *PicklistHandler) SetDefault(c *gin.Context) {
	user := GetUserFromContext(c)

	HandleMutationEnvelope(c, http.StatusOK, "", "Default value set", func() (interface{}, error) {
		return nil, h.svc.Metadata.SetDefaultPicklistValue(c.Request.Context(), user,
			c.Param("api_name"), c.Param("field_api_name"), c.Param("value_id"))
	})
}

// RemoveValue deletes a picklist value
func (h *PicklistHandler) RemoveValue(c *gin.Context) {
	user := GetUserFromContext(c)

	HandleMutationEnvelope(c, http.StatusOK, "", "Picklist value removed", func() (interface{}, error) {
		return nil, h.svc.Metadata.RemovePicklistValue(c.Request.Context(), user,
			c.Param("api_name"), c.Param("field_api_name"), c.Param("value_id"))
	})
}
