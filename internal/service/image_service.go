package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"blogicum/internal/config"
	"blogicum/internal/featureflags"
	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMediaRoot            = "media"
	DefaultImageMaxUploadSizeMB = 5
	// ImagesDir is the directory under the media root that holds post images.
	ImagesDir     = "images"
	MaxImageSize  = 1600
	JPEGQuality   = 82
	WebPQuality   = 70
	MediaURLRoute = "/media/"
)

type UploadImageInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// ImageService stores post images under the media root: every upload becomes a resized
// JPEG, plus a WebP copy when the webp_images flag is on for the uploader.
type ImageService struct {
	mediaRoot          string
	maxUploadSizeBytes int64
	flags              *featureflags.Manager
}

func NewImageService(cfg *config.Config, flags *featureflags.Manager) *ImageService {
	mediaRoot := DefaultMediaRoot
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.MediaRoot != "" {
			mediaRoot = cfg.MediaRoot
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &ImageService{
		mediaRoot:          mediaRoot,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
		flags:              flags,
	}
}

// MediaRoot is the directory served under MediaURLRoute.
func (s *ImageService) MediaRoot() string {
	return s.mediaRoot
}

// MaxUploadSizeBytes is the largest accepted upload.
func (s *ImageService) MaxUploadSizeBytes() int64 {
	return s.maxUploadSizeBytes
}

// Save validates and stores an uploaded image and returns its path relative to the media
// root, e.g. "images/<uuid>.jpg".
func (s *ImageService) Save(ctx context.Context, in UploadImageInput) (string, error) {
	if len(in.Content) == 0 {
		return "", models.NewFieldError("image", "The submitted file is empty.")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", models.NewFieldError("image", fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return "", models.NewFieldError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil || !isSupportedDecodedFormat(format) {
		return "", models.NewFieldError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	sourceMimeType := decodedFormatToMime(format)
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, sourceMimeType) {
		return "", models.NewFieldError("image", "Image content type mismatch")
	}

	resized := flatten(resizeToFit(decoded, MaxImageSize, MaxImageSize))

	encodedJPG, err := encodeJPEG(resized, JPEGQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString()
	jpgRel := path.Join(ImagesDir, name+".jpg")
	written := []string{s.abs(jpgRel)}
	if err := writeBytesToFile(s.abs(jpgRel), encodedJPG); err != nil {
		return "", models.NewInternalError(err)
	}

	if s.flags.Enabled(featureflags.WebPImages, in.UserID) {
		encodedWebP, err := encodeWebP(resized, WebPQuality)
		if err != nil {
			cleanupImageFiles(written)
			return "", models.NewInternalError(err)
		}
		if err := writeBytesToFile(s.abs(WebPPath(jpgRel)), encodedWebP); err != nil {
			cleanupImageFiles(written)
			return "", models.NewInternalError(err)
		}
	}

	middleware.Logger.InfoContext(ctx, "post image stored",
		slog.String("image", jpgRel),
		slog.String("source_format", format),
		slog.Int("bytes", len(encodedJPG)))
	return jpgRel, nil
}

// Remove deletes a stored image and its WebP copy. Missing files are not an error.
func (s *ImageService) Remove(rel string) error {
	if !isStoredImagePath(rel) {
		return fmt.Errorf("refusing to remove %q outside the images directory", rel)
	}
	var errs []error
	for _, p := range []string{s.abs(rel), s.abs(WebPPath(rel))} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HasWebP reports whether a WebP copy of rel exists.
func (s *ImageService) HasWebP(rel string) bool {
	if !isStoredImagePath(rel) {
		return false
	}
	_, err := os.Stat(s.abs(WebPPath(rel)))
	return err == nil
}

// ImageURL is the public URL of a stored image.
func ImageURL(rel string) string {
	if rel == "" {
		return ""
	}
	return MediaURLRoute + rel
}

// WebPPath is the path of the WebP copy stored next to a JPEG.
func WebPPath(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel)) + ".webp"
}

func (s *ImageService) abs(rel string) string {
	return filepath.Join(s.mediaRoot, filepath.FromSlash(rel))
}

func isStoredImagePath(rel string) bool {
	clean := path.Clean(rel)
	return clean == rel && strings.HasPrefix(clean, ImagesDir+"/") && !strings.Contains(clean, "..")
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

// flatten composites src over white; JPEG has no alpha channel.
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
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

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
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

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func cleanupImageFiles(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
