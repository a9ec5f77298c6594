package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PhotoStorage хранит фотографии вещей на диске. Файлы раскладываются по
// каталогам владельцев: <root>/<userID>/<случайное имя><ext>. Имя исходного
// файла в пути не участвует, от него берётся только расширение.
type PhotoStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewPhotoStorage создаёт хранилище и каталог под него.
func NewPhotoStorage(rootPath string, maxUploadMB int64) (*PhotoStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &PhotoStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save записывает фото вещи и возвращает путь относительно корня хранилища
// и количество записанных байт. Данные сначала пишутся во временный файл,
// готовый файл появляется одним rename — обрезанных фото в каталоге не бывает.
func (s *PhotoStorage) Save(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	ownerDir := filepath.Join(s.rootPath, userID.String())
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать каталог владельца: %w", err)
	}

	fileName := uuid.NewString() + normalizeExt(originalName)
	finalPath := filepath.Join(ownerDir, fileName)

	written, err := s.writeAtomic(finalPath, r)
	if err != nil {
		return "", 0, err
	}

	return filepath.Join(userID.String(), fileName), written, nil
}

// writeAtomic пишет содержимое во временный файл с контролем лимита размера
// и переименовывает его в finalPath.
func (s *PhotoStorage) writeAtomic(finalPath string, r io.Reader) (int64, error) {
	tempPath := finalPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}

	// Читаем на байт больше лимита: так отличаем файл ровно в лимит
	// от файла, который в него не влез.
	capped := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &capped)
	if err != nil {
		f.Close()
		_ = os.Remove(tempPath)
		return 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		f.Close()
		_ = os.Remove(tempPath)
		return 0, fmt.Errorf("storage: размер файла превышает лимит %d байт", s.maxUploadBytes)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return written, nil
}

// Delete удаляет фото по относительному пути. Отсутствующий файл не ошибка:
// фоновая очистка может прийти за одним файлом дважды.
func (s *PhotoStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, filepath.Clean(relativePath))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// normalizeExt достаёт расширение из имени загруженного файла и приводит
// его к нижнему регистру. Всё прочее в имени отбрасывается.
func normalizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
