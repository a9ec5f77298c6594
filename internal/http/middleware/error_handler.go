package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/steezeapp/steeze-backend/internal/logger"
	"github.com/steezeapp/steeze-backend/internal/repository"
	"github.com/steezeapp/steeze-backend/internal/service"
)

// ErrorHandler обрабатывает ошибки централизованно: известные доменные
// ошибки получают свой статус, внутренние маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()

		statusCode := http.StatusInternalServerError
		message := "внутренняя ошибка сервера, попробуйте позже"

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		switch {
		case errors.Is(err.Err, service.ErrNoCandidates):
			statusCode = http.StatusNotFound
			message = "ни одна вещь не подходит под фильтр"
		case errors.Is(err.Err, repository.ErrUserNotFound):
			statusCode = http.StatusNotFound
			message = "пользователь не найден"
		case errors.Is(err.Err, repository.ErrItemNotFound):
			statusCode = http.StatusNotFound
			message = "вещь не найдена"
		case errors.Is(err.Err, repository.ErrOutfitNotFound):
			statusCode = http.StatusNotFound
			message = "образ не найден"
		default:
			// Наружу уходят только сообщения, адресованные пользователю.
			// Всё остальное остаётся замаскированным под общий ответ.
			errStr := err.Error()
			if errStr != "" && !containsInternalKeywords(errStr) &&
				(contains(errStr, "неверн") || contains(errStr, "невалид")) {
				statusCode = http.StatusBadRequest
				message = errStr
			}
		}

		c.JSON(statusCode, gin.H{"error": message})
	}
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет вхождение подстроки без учёта регистра.
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
