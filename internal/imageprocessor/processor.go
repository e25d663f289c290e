package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"path"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	ErrTooLarge    = errors.New("image is too large")
	ErrInvalidType = errors.New("file is not an allowed image")
)

// ImageSize represents a bounding box for resizing
type ImageSize struct {
	Name   string
	Width  int
	Height int
}

var (
	SizeThumbnail = ImageSize{Name: "thumbnail", Width: 300, Height: 300}
	SizeLarge     = ImageSize{Name: "large", Width: 1600, Height: 1600}
)

// ImageInfo - результат проверки загруженного файла
type ImageInfo struct {
	MimeType  string
	Format    string
	Width     int
	Height    int
	Size      int64
	Extension string
}

// Processor handles image validation and resizing
type Processor struct {
	quality      int // JPEG quality (1-100)
	maxSize      int64
	allowedTypes map[string]bool
}

// NewProcessor creates a new image processor
func NewProcessor(quality int, maxSize int64, allowedTypes []string) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return &Processor{quality: quality, maxSize: maxSize, allowedTypes: allowed}
}

// MaxSize - лимит размера загрузки в байтах (0 = без лимита)
func (p *Processor) MaxSize() int64 {
	return p.maxSize
}

// Inspect проверяет размер, MIME по содержимому и что файл декодируется как изображение
func (p *Processor) Inspect(data []byte) (*ImageInfo, error) {
	size := int64(len(data))
	if p.maxSize > 0 && size > p.maxSize {
		return nil, ErrTooLarge
	}

	mimeType := http.DetectContentType(data)
	if len(p.allowedTypes) > 0 && !p.allowedTypes[mimeType] {
		return nil, ErrInvalidType
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidType
	}

	return &ImageInfo{
		MimeType:  mimeType,
		Format:    format,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Size:      size,
		Extension: extensionFor(format),
	}, nil
}

func extensionFor(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "png", "gif", "webp":
		return "." + format
	default:
		return ""
	}
}

// Thumbnail decodes the image and returns a JPEG fitting into SizeThumbnail
func (p *Processor) Thumbnail(data []byte) ([]byte, error) {
	return p.Resize(data, SizeThumbnail)
}

// Resize вписывает изображение в size с сохранением пропорций и кодирует в JPEG.
// Изображения меньше size не увеличиваются.
func (p *Processor) Resize(data []byte, size ImageSize) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := p.resize(img, size.Width, size.Height)

	// JPEG без альфа-канала: подкладываем белый фон
	canvas := image.NewRGBA(resized.Bounds())
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), resized, resized.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNG нужен тестам и генерации заглушек
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resize resizes an image maintaining aspect ratio
func (p *Processor) resize(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		return img
	}

	ratio := float64(width) / float64(height)
	newWidth := maxWidth
	newHeight := maxHeight

	if float64(maxWidth)/float64(maxHeight) > ratio {
		newWidth = int(float64(maxHeight) * ratio)
	} else {
		newHeight = int(float64(maxWidth) / ratio)
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// ThumbnailPath: "properties/abc.png" -> "properties/abc_thumb.jpg"
func ThumbnailPath(p string) string {
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext) + "_thumb.jpg"
}

// IsThumbnail reports whether the path was produced by ThumbnailPath
func IsThumbnail(p string) bool {
	return strings.HasSuffix(p, "_thumb.jpg")
}
