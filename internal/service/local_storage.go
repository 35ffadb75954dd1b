package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"

	"dataroom-server/internal/apperror"
	"dataroom-server/internal/util"

	"github.com/spf13/afero"
)

// LocalStorage : файлы на диске (или в памяти в тестах) под корневой директорией
type LocalStorage struct {
	fs afero.Fs
}

func NewLocalStorage(fs afero.Fs, root string) (*LocalStorage, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, util.LogError("[LocalStorage] не удалось создать директорию "+root, err)
	}
	return &LocalStorage{fs: afero.NewBasePathFs(fs, root)}, nil
}

func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	if cleaned == "/" || strings.Contains(key, "..") {
		return "", apperror.Validation("недопустимый ключ файла %q", key)
	}
	return cleaned, nil
}

func (s *LocalStorage) Save(ctx context.Context, key string, content []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := cleanKey(key)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return util.LogError("[LocalStorage] не удалось создать директорию", err)
	}
	if err := afero.WriteFile(s.fs, name, content, 0o644); err != nil {
		return util.LogError("[LocalStorage] не удалось записать файл "+key, err)
	}
	return nil
}

func (s *LocalStorage) Open(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	content, err := afero.ReadFile(s.fs, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperror.NotFound("файл %s не найден", key)
	}
	if err != nil {
		return nil, util.LogError("[LocalStorage] не удалось прочитать файл "+key, err)
	}
	return content, nil
}

// DeleteBytes : отсутствующий файл считается удалённым
func (s *LocalStorage) DeleteBytes(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	name, err := cleanKey(key)
	if err != nil {
		return false, err
	}

	err = s.fs.Remove(name)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	return false, util.LogError("[LocalStorage] не удалось удалить файл "+key, err)
}
