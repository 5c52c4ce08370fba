package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newAdminRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := NewAdminAuthMiddleware(token, zerolog.Nop())
	admin := router.Group("/admin")
	admin.Use(auth.RequireAdmin())
	admin.POST("/generar", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRequireAdminHeader(t *testing.T) {
	router := newAdminRouter("secreto")

	req := httptest.NewRequest(http.MethodPost, "/admin/generar", nil)
	req.Header.Set("X-Admin-Token", "secreto")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminQueryParam(t *testing.T) {
	router := newAdminRouter("secreto")

	req := httptest.NewRequest(http.MethodPost, "/admin/generar?token=secreto", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminMissingToken(t *testing.T) {
	router := newAdminRouter("secreto")

	req := httptest.NewRequest(http.MethodPost, "/admin/generar", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestRequireAdminWrongToken(t *testing.T) {
	router := newAdminRouter("secreto")

	req := httptest.NewRequest(http.MethodPost, "/admin/generar", nil)
	req.Header.Set("X-Admin-Token", "adivinado")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminEmptyConfiguredToken(t *testing.T) {
	// An empty configured token must never open the gate.
	router := newAdminRouter("")

	req := httptest.NewRequest(http.MethodPost, "/admin/generar", nil)
	req.Header.Set("X-Admin-Token", "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
