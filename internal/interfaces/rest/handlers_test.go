package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doulacrm/backend/internal/application/services"
	"github.com/doulacrm/backend/internal/infrastructure/database"
	"github.com/doulacrm/backend/internal/interfaces/middleware"
	"github.com/doulacrm/backend/pkg/auth"
	"github.com/doulacrm/backend/pkg/models"
)

func newTestRouter(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sm := services.NewServiceManager(database.NewFromDB(db))

	authHandler := NewAuthHandler(sm)
	metadataHandler := NewMetadataHandler(sm)
	fieldHandler := NewFieldHandler(sm)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("/metadata")
	protected.Use(middleware.RequireAuth())
	protected.GET("/field-types", metadataHandler.GetFieldTypes)
	protected.POST("/objects", middleware.RequireSystemAdmin(), metadataHandler.CreateObject)
	protected.PATCH("/objects/:api_name", middleware.RequireSystemAdmin(), metadataHandler.UpdateObject)
	protected.PATCH("/objects/:api_name/fields/:field_api_name", middleware.RequireSystemAdmin(), fieldHandler.UpdateField)

	return mock, router
}

func tokenFor(t *testing.T, admin bool) string {
	t.Helper()
	token, err := auth.GenerateToken(models.UserSession{
		ID:            "user-1",
		OrgID:         "org-1",
		Name:          "Ada",
		ProfileID:     map[bool]string{true: "system_admin", false: "standard_user"}[admin],
		IsSystemAdmin: admin,
	})
	require.NoError(t, err)
	return token
}

func TestLogin_MalformedBody(t *testing.T) {
	_, router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	_, router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/field-types", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestRequireAuth_MangledHeader(t *testing.T) {
	_, router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/field-types", nil)
	req.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetFieldTypes_ListsRegistry(t *testing.T) {
	_, router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/field-types", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, false))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		FieldTypes []map[string]interface{} `json:"field_types"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.FieldTypes, 18)
}

func TestUpdateObject_RejectsAPINameChange(t *testing.T) {
	_, router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/metadata/objects/birth_plan__c",
		strings.NewReader(`{"label":"Care Plan","api_name":"care_plan__c"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, true))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Contains(t, body["message"], "api_name")
}

func TestUpdateObject_RejectsStandardFlagChange(t *testing.T) {
	_, router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/metadata/objects/birth_plan__c",
		strings.NewReader(`{"is_standard":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, true))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateField_RejectsImmutableKeys(t *testing.T) {
	_, router := newTestRouter(t)

	for _, body := range []string{
		`{"data_type":"number"}`,
		`{"api_name":"renamed__c"}`,
		`{"config":{"text":{"max_length":10}}}`,
	} {
		req := httptest.NewRequest(http.MethodPatch, "/api/metadata/objects/birth_plan__c/fields/hospital__c",
			strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, true))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s must be rejected before reaching the service", body)
	}
}

func TestCreateObject_NonAdminForbidden(t *testing.T) {
	_, router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/metadata/objects",
		strings.NewReader(`{"label":"Birth Plan"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, false))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
