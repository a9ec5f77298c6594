package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steezeapp/steeze-backend/internal/http/handlers/common"
	"github.com/steezeapp/steeze-backend/internal/service"
	"github.com/steezeapp/steeze-backend/internal/validation"
)

// OutfitHandler управляет генерацией и списком образов. Ошибки сервисов
// и репозиториев уходят в c.Error: статус и маскировку подбирает
// middleware.ErrorHandler.
type OutfitHandler struct {
	outfits *service.OutfitService
}

// NewOutfitHandler создаёт хэндлер.
func NewOutfitHandler(outfits *service.OutfitService) *OutfitHandler {
	return &OutfitHandler{outfits: outfits}
}

type generateRequest struct {
	StyleTags []string `json:"style_tags"`
	Mood      string   `json:"mood"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
}

// Generate обрабатывает POST /outfit/generate.
func (h *OutfitHandler) Generate(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateStyleTags(req.StyleTags); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateMood(req.Mood); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		common.RespondBadRequest(c, "координаты задаются парой lat и lon")
		return
	}

	result, err := h.outfits.Generate(c.Request.Context(), userID, service.GenerateInput{
		StyleTags: req.StyleTags,
		Mood:      req.Mood,
		Lat:       req.Lat,
		Lon:       req.Lon,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// List обрабатывает GET /outfit: все образы пользователя, новые первыми.
func (h *OutfitHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	outfits, err := h.outfits.List(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, outfits)
}

// Update обрабатывает PUT /outfit/:id: меняет настроение и теги образа.
func (h *OutfitHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	outfitID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Mood *string  `json:"mood"`
		Tags []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if req.Mood != nil {
		if err := validation.ValidateMood(*req.Mood); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}
	if req.Tags != nil {
		if err := validation.ValidateStyleTags(req.Tags); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	outfit, err := h.outfits.Update(c.Request.Context(), userID, outfitID, service.UpdateInput{
		Mood: req.Mood,
		Tags: req.Tags,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "образ обновлён",
		"outfit":  outfit,
	})
}

// Delete обрабатывает DELETE /outfit/:id.
func (h *OutfitHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	outfitID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.outfits.Delete(c.Request.Context(), userID, outfitID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "образ удалён"})
}
