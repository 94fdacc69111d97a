// Package media stores listing images and floor plans in an object store and
// normalizes them before upload.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/observability"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// File is one uploaded file as received from a client.
type File struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Object is a stored file. PublicID is the handle used to delete it.
type Object struct {
	URL      string
	PublicID string
}

// Store is an object store backend.
type Store interface {
	Backend() string
	Put(ctx context.Context, key, contentType string, body []byte) (Object, error)
	Delete(ctx context.Context, publicID string) error
}

// ErrEmptyHandle is returned when deleting an object without a handle.
var ErrEmptyHandle = errors.New("media: empty deletion handle")

// Manager prepares files with a Processor and writes them to a Store.
type Manager struct {
	store     Store
	processor *Processor
}

// NewManager returns a Manager writing to store. A nil processor uploads
// files unchanged.
func NewManager(store Store, processor *Processor) *Manager {
	return &Manager{store: store, processor: processor}
}

// Backend names the underlying store.
func (m *Manager) Backend() string {
	return m.store.Backend()
}

// Upload prepares and stores one file under folder.
func (m *Manager) Upload(ctx context.Context, folder string, f File) (Object, error) {
	objs, err := m.UploadMany(ctx, folder, []File{f})
	if err != nil {
		return Object{}, err
	}
	return objs[0], nil
}

// UploadMany stores files in order and returns their objects in the same
// order. Every file is validated before the first write. When a write
// fails the objects already stored are deleted best-effort.
func (m *Manager) UploadMany(ctx context.Context, folder string, files []File) ([]Object, error) {
	prepared := files
	if m.processor != nil {
		prepared = make([]File, 0, len(files))
		for i, f := range files {
			p, err := m.processor.Normalize(f)
			if err != nil {
				return nil, fmt.Errorf("file %d: %w", i+1, err)
			}
			prepared = append(prepared, p)
		}
	}

	ctx, span := observability.GetTraceLayer().TraceMediaOperation(ctx, m.store.Backend(), "upload")
	objs := make([]Object, 0, len(prepared))
	for _, f := range prepared {
		obj, err := m.store.Put(ctx, ObjectKey(folder, f.Filename), f.ContentType, f.Content)
		if err != nil {
			m.rollback(ctx, objs)
			observability.EndSpan(span, err)
			return nil, err
		}
		objs = append(objs, obj)
	}
	observability.EndSpan(span, nil)
	return objs, nil
}

func (m *Manager) rollback(ctx context.Context, objs []Object) {
	for _, o := range objs {
		if err := m.Delete(ctx, o.PublicID); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to clean up uploaded object",
				slog.String("public_id", o.PublicID), slog.String("error", err.Error()))
		}
	}
}

// Delete removes the object identified by publicID.
func (m *Manager) Delete(ctx context.Context, publicID string) error {
	if strings.TrimSpace(publicID) == "" {
		return ErrEmptyHandle
	}
	ctx, span := observability.GetTraceLayer().TraceMediaOperation(ctx, m.store.Backend(), "delete")
	err := m.store.Delete(ctx, publicID)
	observability.EndSpan(span, err)
	return err
}

// ObjectKey builds a unique, URL-safe key for filename under folder.
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := slug.Make(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if base == "" {
		base = "file"
	}
	return path.Join(folder, fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext))
}

// Folder returns the key prefix for media of listing kind, role and slug.
func Folder(kind models.ContentKind, role, listingSlug string) string {
	s := slug.Make(listingSlug)
	if s == "" {
		s = "untitled"
	}
	return path.Join(string(kind), s, role)
}
