package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steezeapp/steeze-backend/internal/http/handlers/common"
	"github.com/steezeapp/steeze-backend/internal/models"
	"github.com/steezeapp/steeze-backend/internal/repository"
	"github.com/steezeapp/steeze-backend/internal/service"
	"github.com/steezeapp/steeze-backend/internal/validation"
)

// ProfileHandler отвечает за профиль и настройки стиля пользователя.
type ProfileHandler struct {
	users *repository.UserRepository
	auth  *service.AuthService
}

// NewProfileHandler создаёт экземпляр.
func NewProfileHandler(users *repository.UserRepository, auth *service.AuthService) *ProfileHandler {
	return &ProfileHandler{users: users, auth: auth}
}

// GetMe возвращает профиль текущего пользователя.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	prefs, err := h.users.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		// Настройки могли ещё не создаваться, отдаём пустые.
		prefs = &models.Preferences{UserID: userID, Style: []string{}}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"preferences": prefs,
	})
}

// UpdateMe обновляет email и настройки стиля текущего пользователя.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		Email       *string `json:"email"`
		Preferences *struct {
			Style    []string `json:"style"`
			Gender   *string  `json:"gender"`
			Location *string  `json:"location"`
		} `json:"preferences"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if req.Email != nil {
		if err := validation.ValidateEmail(*req.Email); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		if err := h.users.UpdateEmail(c.Request.Context(), userID, *req.Email); err != nil {
			_ = c.Error(err)
			return
		}
	}

	if req.Preferences != nil {
		if err := validation.ValidateStyleTags(req.Preferences.Style); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		if req.Preferences.Location != nil {
			if err := validation.ValidateLength("местоположение", *req.Preferences.Location, 0, validation.MaxLocationLength); err != nil {
				common.RespondBadRequest(c, err.Error())
				return
			}
		}

		style := req.Preferences.Style
		if style == nil {
			style = []string{}
		}

		prefs := &models.Preferences{
			UserID:   userID,
			Style:    style,
			Gender:   req.Preferences.Gender,
			Location: req.Preferences.Location,
		}
		if err := h.users.UpsertPreferences(c.Request.Context(), prefs); err != nil {
			_ = c.Error(err)
			return
		}
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	prefs, err := h.users.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		prefs = &models.Preferences{UserID: userID, Style: []string{}}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "профиль обновлён",
		"user":        user,
		"preferences": prefs,
	})
}

// ChangePassword обрабатывает PUT /user/password.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			common.RespondNotFound(c, "пользователь не найден")
			return
		}
		common.RespondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "пароль изменён"})
}
