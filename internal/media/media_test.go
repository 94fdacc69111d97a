package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	mu      sync.Mutex
	puts    []string
	deletes []string
	failOn  int
}

func (s *stubStore) Backend() string { return "stub" }

func (s *stubStore) Put(_ context.Context, key, _ string, _ []byte) (Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn > 0 && len(s.puts)+1 == s.failOn {
		return Object{}, errors.New("bucket unavailable")
	}
	s.puts = append(s.puts, key)
	return Object{URL: "https://cdn.test/" + key, PublicID: key}, nil
}

func (s *stubStore) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, publicID)
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestManagerUploadManyKeepsOrder(t *testing.T) {
	store := &stubStore{}
	m := NewManager(store, nil)

	files := []File{
		{Filename: "Front View.jpg", Content: []byte("a")},
		{Filename: "kitchen.jpg", Content: []byte("b")},
		{Filename: "garden.jpg", Content: []byte("c")},
	}
	objs, err := m.UploadMany(context.Background(), "property/flat/image", files)
	require.NoError(t, err)
	require.Len(t, objs, 3)
	assert.True(t, strings.HasPrefix(objs[0].PublicID, "property/flat/image/front-view-"))
	assert.True(t, strings.HasPrefix(objs[1].PublicID, "property/flat/image/kitchen-"))
	assert.True(t, strings.HasPrefix(objs[2].PublicID, "property/flat/image/garden-"))
	assert.Equal(t, store.puts, []string{objs[0].PublicID, objs[1].PublicID, objs[2].PublicID})
}

func TestManagerUploadManyRollsBackOnFailure(t *testing.T) {
	store := &stubStore{failOn: 3}
	m := NewManager(store, nil)

	files := []File{{Filename: "a.jpg"}, {Filename: "b.jpg"}, {Filename: "c.jpg"}}
	_, err := m.UploadMany(context.Background(), "news/x/image", files)
	require.Error(t, err)
	assert.ElementsMatch(t, store.puts, store.deletes)
	assert.Len(t, store.deletes, 2)
}

func TestManagerRejectsInvalidImageBeforeWriting(t *testing.T) {
	store := &stubStore{}
	m := NewManager(store, NewProcessor(1))

	files := []File{
		{Filename: "ok.png", ContentType: "image/png", Content: pngBytes(t, 8, 8)},
		{Filename: "notes.txt", ContentType: "text/plain", Content: []byte("just text")},
	}
	_, err := m.UploadMany(context.Background(), "job/x/image", files)
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	assert.Empty(t, store.puts)
}

func TestManagerDeleteRequiresHandle(t *testing.T) {
	m := NewManager(&stubStore{}, nil)
	assert.ErrorIs(t, m.Delete(context.Background(), " "), ErrEmptyHandle)
}

func TestProcessorNormalizesToBoundedWebP(t *testing.T) {
	p := NewProcessor(5)
	p.maxDimension = 16

	out, err := p.Normalize(File{Filename: "plan.png", ContentType: "image/png", Content: pngBytes(t, 64, 32)})
	require.NoError(t, err)
	assert.Equal(t, "plan.webp", out.Filename)
	assert.Equal(t, "image/webp", out.ContentType)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Content))
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestProcessorRejections(t *testing.T) {
	p := NewProcessor(1)
	tests := []struct {
		name string
		file File
	}{
		{name: "empty", file: File{Filename: "a.png"}},
		{name: "too large", file: File{Filename: "a.png", Content: make([]byte, 2*1024*1024)}},
		{name: "not an image", file: File{Filename: "a.png", Content: []byte("%PDF-1.4 not an image")}},
		{name: "type mismatch", file: File{Filename: "a.png", ContentType: "image/gif", Content: pngBytes(t, 4, 4)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Normalize(tt.file)
			require.Error(t, err)
			assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
		})
	}
}

func TestDiskStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStore(dir, "http://localhost:8080/media/")

	obj, err := s.Put(context.Background(), "event/fair/image/poster.webp", "image/webp", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/event/fair/image/poster.webp", obj.URL)

	raw, err := os.ReadFile(filepath.Join(dir, "event", "fair", "image", "poster.webp"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(raw))

	require.NoError(t, s.Delete(context.Background(), obj.PublicID))
	require.NoError(t, s.Delete(context.Background(), obj.PublicID))
	_, err = s.Put(context.Background(), "../escape.webp", "image/webp", []byte("x"))
	assert.Error(t, err)
}

type stubS3 struct {
	put    *s3.PutObjectInput
	delKey string
}

func (s *stubS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.put = in
	return &s3.PutObjectOutput{}, nil
}

func (s *stubS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	s.delKey = *in.Key
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StoreUsesKeyAsHandle(t *testing.T) {
	client := &stubS3{}
	s := NewS3Store(client, S3Config{Bucket: "portal-media", Endpoint: "https://r2.example.com/"})

	obj, err := s.Put(context.Background(), "news/a/image/x.webp", "image/webp", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://r2.example.com/portal-media/news/a/image/x.webp", obj.URL)
	assert.Equal(t, "news/a/image/x.webp", obj.PublicID)
	assert.Equal(t, "portal-media", *client.put.Bucket)
	assert.Equal(t, "image/webp", *client.put.ContentType)

	require.NoError(t, s.Delete(context.Background(), obj.PublicID))
	assert.Equal(t, obj.PublicID, client.delKey)

	cdn := NewS3Store(client, S3Config{Bucket: "b", Region: "ap-south-1", PublicBaseURL: "https://cdn.example.com/"})
	obj, err = cdn.Put(context.Background(), "k.webp", "image/webp", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/k.webp", obj.URL)
}

func TestFolder(t *testing.T) {
	assert.Equal(t, "property/2bhk-flat-in-ranchi/floor_plan", Folder(models.KindProperty, models.MediaRoleFloorPlan, "2BHK Flat in Ranchi"))
	assert.Equal(t, "news/untitled/image", Folder(models.KindNews, models.MediaRoleImage, "  "))
}
