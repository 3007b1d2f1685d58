package respond

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.ValidationError{Step: domain.StepIdeation}, http.StatusUnprocessableEntity},
		{fmt.Errorf("lookup: %w", domain.ErrSessionNotFound), http.StatusNotFound},
		{domain.ErrMilestoneNotFound, http.StatusNotFound},
		{domain.ErrSessionClosed, http.StatusGone},
		{domain.ErrStepLocked, http.StatusConflict},
		{domain.ErrSubmissionInFlight, http.StatusConflict},
		{domain.ErrTeamFull, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), tt.err.Error())
	}
}

func TestError_Bodies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/validation", func(c *gin.Context) {
		Error(c, &domain.ValidationError{Step: domain.StepIdeation, Fields: []domain.FieldError{{Field: "title", Message: "title is required"}}})
	})
	r.GET("/internal", func(c *gin.Context) { Error(c, errors.New("dial tcp 10.0.0.1: refused")) })
	r.GET("/ok", func(c *gin.Context) { OK(c, http.StatusCreated, gin.H{"id": "x"}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/validation", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"step ideation is incomplete: title","step":"ideation",
		"fields":[{"field":"title","message":"title is required"}]}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"internal error"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"ok":true,"id":"x"}`, w.Body.String())
}
