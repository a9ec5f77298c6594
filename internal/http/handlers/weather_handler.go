package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/steezeapp/steeze-backend/internal/http/handlers/common"
	"github.com/steezeapp/steeze-backend/internal/weather"
)

// WeatherHandler отдаёт текущую погоду по координатам.
type WeatherHandler struct {
	client *weather.Client
}

// NewWeatherHandler создаёт хэндлер. client может быть nil, если погодный
// сервис не сконфигурирован.
func NewWeatherHandler(client *weather.Client) *WeatherHandler {
	return &WeatherHandler{client: client}
}

// Get обрабатывает GET /weather?lat=..&lon=..
func (h *WeatherHandler) Get(c *gin.Context) {
	if h.client == nil {
		common.RespondError(c, http.StatusServiceUnavailable, "погодный сервис не настроен")
		return
	}

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		common.RespondBadRequest(c, "параметр lat обязателен и должен быть числом")
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		common.RespondBadRequest(c, "параметр lon обязателен и должен быть числом")
		return
	}

	info, err := h.client.ByCoordinates(c.Request.Context(), lat, lon)
	if err != nil {
		common.RespondError(c, http.StatusBadGateway, "не удалось получить погоду")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"temperature": info.Temperature,
		"condition":   info.Condition,
		"description": info.Description,
		"bucket":      weather.Classify(info.Temperature, info.Condition),
	})
}
