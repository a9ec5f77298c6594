package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/steezeapp/steeze-backend/internal/goroutine"
	"github.com/steezeapp/steeze-backend/internal/http/handlers/common"
	"github.com/steezeapp/steeze-backend/internal/logger"
	"github.com/steezeapp/steeze-backend/internal/models"
	"github.com/steezeapp/steeze-backend/internal/repository"
	"github.com/steezeapp/steeze-backend/internal/storage"
	"github.com/steezeapp/steeze-backend/internal/validation"
)

// Разрешённые типы файлов для загрузки
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые расширения файлов
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// WardrobeHandler управляет вещами гардероба и их фотографиями. Ошибки
// хранилища и репозитория уходят в c.Error: статус и маскировку подбирает
// middleware.ErrorHandler.
type WardrobeHandler struct {
	repo    *repository.WardrobeRepository
	storage *storage.PhotoStorage
}

// NewWardrobeHandler создаёт хэндлер.
func NewWardrobeHandler(repo *repository.WardrobeRepository, photoStorage *storage.PhotoStorage) *WardrobeHandler {
	return &WardrobeHandler{repo: repo, storage: photoStorage}
}

// UploadItem обрабатывает POST /user/wardrobe: multipart форма с полем
// image, типом вещи и тегами через запятую.
func (h *WardrobeHandler) UploadItem(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	itemType := c.PostForm("type")
	if err := validation.ValidateItemType(itemType); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	styleTags := validation.SplitTags(c.PostForm("style_tags"))
	if err := validation.ValidateStyleTags(styleTags); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		common.RespondBadRequest(c, "поле image обязательно")
		return
	}

	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		common.RespondBadRequest(c, fmt.Sprintf("неподдерживаемый формат файла %s", ext))
		return
	}

	src, err := file.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer src.Close()

	// Проверяем магические байты: расширению доверять нельзя.
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		common.RespondBadRequest(c, "не удалось определить тип файла, разрешены только изображения")
		return
	}

	if !allowedMimeTypes[kind.MIME.Value] {
		common.RespondBadRequest(c, fmt.Sprintf("неподдерживаемый тип файла (%s), разрешены только изображения", kind.MIME.Value))
		return
	}

	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			_ = c.Error(fmt.Errorf("wardrobe handler: не удалось сбросить позицию файла: %w", err))
			return
		}
	}

	relativePath, _, err := h.storage.Save(c.Request.Context(), userID, file.Filename, src)
	if err != nil {
		_ = c.Error(err)
		return
	}

	item := &models.WardrobeItem{
		UserID:    userID,
		Type:      itemType,
		StyleTags: styleTags,
		ImageURL:  "/media/" + filepath.ToSlash(relativePath),
	}

	if err := h.repo.Create(c.Request.Context(), item); err != nil {
		// Запись не создана, файл больше никому не нужен.
		_ = h.storage.Delete(c.Request.Context(), relativePath)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "вещь добавлена",
		"item":    item,
	})
}

// ListItems обрабатывает GET /user/wardrobe с фильтрами type/tag и пагинацией.
func (h *WardrobeHandler) ListItems(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	items, err := h.repo.ListByUser(c.Request.Context(), userID, c.Query("type"), c.Query("tag"), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// UpdateItem обрабатывает PUT /user/wardrobe/:id.
func (h *WardrobeHandler) UpdateItem(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Type      *string  `json:"type"`
		StyleTags []string `json:"style_tags"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if req.Type != nil {
		if err := validation.ValidateItemType(*req.Type); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}
	if req.StyleTags != nil {
		if err := validation.ValidateStyleTags(req.StyleTags); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	item, err := h.repo.Update(c.Request.Context(), itemID, userID, req.Type, req.StyleTags)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "вещь обновлена",
		"item":    item,
	})
}

// DeleteItem обрабатывает DELETE /user/wardrobe/:id. Ссылки из сохранённых
// образов не чистятся: гидрация терпит удалённые вещи.
func (h *WardrobeHandler) DeleteItem(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.repo.Delete(c.Request.Context(), itemID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// Фото чистим в фоне: ответ пользователю от файловой системы не зависит.
	relativePath := strings.TrimPrefix(item.ImageURL, "/media/")
	goroutine.SafeGo(func() {
		if err := h.storage.Delete(context.Background(), relativePath); err != nil && logger.Log != nil {
			logger.Log.WithFields(map[string]interface{}{
				"item_id": item.ID,
				"error":   err.Error(),
			}).Warn("wardrobe handler: не удалось удалить файл фото")
		}
	})

	c.JSON(http.StatusOK, gin.H{"message": "вещь удалена"})
}
