package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMaxUploadSizeMB = 10
	MasterMaxSize          = 2048
	WebPQuality            = 75
)

// Processor validates uploaded images and re-encodes them as bounded WebP.
type Processor struct {
	maxUploadSizeBytes int64
	maxDimension       int
}

// NewProcessor returns a Processor accepting files up to maxUploadSizeMB.
func NewProcessor(maxUploadSizeMB int) *Processor {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = DefaultMaxUploadSizeMB
	}
	return &Processor{
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
		maxDimension:       MasterMaxSize,
	}
}

// Normalize checks f is a supported image within the size limit and returns
// it re-encoded as WebP, scaled to fit the maximum dimension.
func (p *Processor) Normalize(f File) (File, error) {
	if len(f.Content) == 0 {
		return File{}, models.NewValidationError("No file uploaded")
	}
	if int64(len(f.Content)) > p.maxUploadSizeBytes {
		return File{}, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", p.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(f.Content)
	if !isAllowedImageMIME(detectedType) {
		return File{}, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(f.Content))
	if err != nil {
		return File{}, models.NewValidationError("Invalid image file")
	}
	if provided := normalizeContentType(f.ContentType); strings.HasPrefix(provided, "image/") &&
		!isMatchingContentType(provided, decodedFormatToMime(format)) {
		return File{}, models.NewValidationError("Image content type mismatch")
	}

	resized := resizeToFit(decoded, p.maxDimension, p.maxDimension)
	encoded, err := encodeWebP(resized, WebPQuality)
	if err != nil {
		return File{}, models.NewInternalError(err)
	}

	name := strings.TrimSuffix(f.Filename, filepath.Ext(f.Filename))
	if name == "" {
		name = "image"
	}
	return File{Filename: name + ".webp", ContentType: "image/webp", Content: encoded}, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
