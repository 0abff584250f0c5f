package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MedCore-Microservices/clinic-api/pkg/errors"
)

func roleTestRouter(role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := &AuthMiddleware{}

	engine := gin.New()
	engine.Use(func(c *gin.Context) { c.Set(ContextUserRole, role) })
	engine.GET("/staff", m.RequireRole("admin", "doctor"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestRequireRoleRejectsWithEnvelope(t *testing.T) {
	engine := roleTestRouter("patient")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, int(apperrors.ErrForbidden), resp.Error.Code)
	assert.Equal(t, "insufficient role", resp.Error.Message)
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	engine := roleTestRouter("doctor")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
