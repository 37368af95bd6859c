package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/kamensky/folio/internal/errs"
	"github.com/kamensky/folio/internal/model"
	"github.com/kamensky/folio/internal/repository"
)

// MaxFileSize bounds a single uploaded file.
const MaxFileSize = 10 << 20 // 10 MB

// FileService defines operations over the uploaded-file store.
type FileService interface {
	// List returns metadata of files under prefix.
	List(ctx context.Context, prefix string, p ListParams) ([]model.StoredFile, int, error)
	// Upload stores content under path and returns the stored metadata.
	Upload(ctx context.Context, path, contentType string, content []byte) (*model.StoredFile, error)
	// Download returns metadata and raw content by path.
	Download(ctx context.Context, path string) (*model.StoredFile, []byte, error)
	// Delete removes the file by path.
	Delete(ctx context.Context, path string) error
}

type FileServiceImpl struct {
	repo repository.FileRepository
}

// NewFileService constructs FileService.
func NewFileService(repo repository.FileRepository) *FileServiceImpl {
	return &FileServiceImpl{repo: repo}
}

func validatePath(path string) error {
	if path == "" {
		return errs.Validation("path", "required")
	}
	if strings.Contains(path, "..") || strings.HasPrefix(path, "/") {
		return errs.Validation("path", "must be a relative path without traversal")
	}
	return nil
}

func (s *FileServiceImpl) List(ctx context.Context, prefix string, p ListParams) ([]model.StoredFile, int, error) {
	q := p.query()
	return s.repo.List(ctx, prefix, q.Offset, q.Limit)
}

func (s *FileServiceImpl) Upload(ctx context.Context, path, contentType string, content []byte) (*model.StoredFile, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, errs.Validation("file", "empty")
	}
	if len(content) > MaxFileSize {
		return nil, errs.Validation("file", fmt.Sprintf("exceeds %d bytes", MaxFileSize))
	}
	f := &model.StoredFile{
		Path:        path,
		Size:        int64(len(content)),
		ContentType: contentType,
	}
	if err := s.repo.Put(ctx, f, content); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FileServiceImpl) Download(ctx context.Context, path string) (*model.StoredFile, []byte, error) {
	if err := validatePath(path); err != nil {
		return nil, nil, err
	}
	return s.repo.Content(ctx, path)
}

func (s *FileServiceImpl) Delete(ctx context.Context, path string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	return s.repo.Delete(ctx, path)
}
