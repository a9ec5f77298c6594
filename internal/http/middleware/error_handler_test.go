package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/steezeapp/steeze-backend/internal/repository"
	"github.com/steezeapp/steeze-backend/internal/service"
)

func serveWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/test", func(c *gin.Context) {
		_ = c.Error(err)
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_NoCandidates(t *testing.T) {
	w := serveWithError(t, fmt.Errorf("outfit service: выборка: %w", service.ErrNoCandidates))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ни одна вещь не подходит под фильтр")
}

func TestErrorHandler_DomainSentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"пользователь", repository.ErrUserNotFound, "пользователь не найден"},
		{"вещь", repository.ErrItemNotFound, "вещь не найдена"},
		{"образ", repository.ErrOutfitNotFound, "образ не найден"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWithError(t, fmt.Errorf("repository: %w", tt.err))
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestErrorHandler_MasksStorageErrors(t *testing.T) {
	// Текст ошибки драйвера не должен попадать в ответ клиенту.
	w := serveWithError(t, errors.New(`outfit repository: create: pq: duplicate key value violates unique constraint "outfits_pkey"`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "внутренняя ошибка сервера")
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.NotContains(t, w.Body.String(), "outfits_pkey")
}

func TestErrorHandler_PassesUserFacingValidation(t *testing.T) {
	w := serveWithError(t, errors.New("auth service: текущий пароль неверен"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "текущий пароль неверен")
}

func TestErrorHandler_SkipsWrittenResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
