package imageproc

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"

	// регистрация декодеров для image.Decode
	_ "image/png"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	defaultMaxSizeBytes = 10 << 20 // 10 MB
	defaultMinDimension = 50
	defaultMaxDimension = 10000
	defaultMaxOutputDim = 2048
	defaultThumbSize    = 400
	defaultMainQuality  = 85
	defaultThumbQuality = 70
)

// Config ограничения и параметры перекодирования
type Config struct {
	MaxSizeBytes int `envconfig:"MAX_SIZE_BYTES" default:"10485760"`
	MinDimension int `envconfig:"MIN_DIMENSION" default:"50"`
	MaxDimension int `envconfig:"MAX_DIMENSION" default:"10000"`
	MaxOutputDim int `envconfig:"MAX_OUTPUT_DIM" default:"2048"`
	ThumbSize    int `envconfig:"THUMB_SIZE" default:"400"`
	MainQuality  int `envconfig:"MAIN_QUALITY" default:"85"`
	ThumbQuality int `envconfig:"THUMB_QUALITY" default:"70"`
}

// Processed результат обработки: основной файл и миниатюра, каждый со своим хэшем.
// Хэш основного файла - ключ дедупликации.
type Processed struct {
	Main          []byte
	MainHash      string
	Thumbnail     []byte
	ThumbnailHash string
	Width         int
	Height        int
}

// Processor чистое преобразование изображений, без I/O
type Processor struct {
	cfg Config
}

// New создаёт процессор; нулевые поля конфига заменяются дефолтами
func New(cfg Config) *Processor {
	if cfg.MaxSizeBytes <= 0 {
		cfg.MaxSizeBytes = defaultMaxSizeBytes
	}
	if cfg.MinDimension <= 0 {
		cfg.MinDimension = defaultMinDimension
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = defaultMaxDimension
	}
	if cfg.MaxOutputDim <= 0 {
		cfg.MaxOutputDim = defaultMaxOutputDim
	}
	if cfg.ThumbSize <= 0 {
		cfg.ThumbSize = defaultThumbSize
	}
	if cfg.MainQuality <= 0 {
		cfg.MainQuality = defaultMainQuality
	}
	if cfg.ThumbQuality <= 0 {
		cfg.ThumbQuality = defaultThumbQuality
	}
	return &Processor{cfg: cfg}
}

// Validate проверяет формат, габариты и размер без полного декодирования
func (p *Processor) Validate(data []byte) error {
	if len(data) == 0 {
		return &domain.ValidationError{Kind: domain.ErrInvalidImage, Reason: "empty payload"}
	}
	if len(data) > p.cfg.MaxSizeBytes {
		return &domain.ValidationError{
			Kind:   domain.ErrImageConstraint,
			Reason: fmt.Sprintf("image size %d exceeds limit %d bytes", len(data), p.cfg.MaxSizeBytes),
		}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return &domain.ValidationError{Kind: domain.ErrInvalidImage, Reason: "unreadable or corrupt image"}
	}

	switch format {
	case "jpeg", "png", "webp":
	default:
		return &domain.ValidationError{
			Kind:   domain.ErrInvalidImage,
			Reason: fmt.Sprintf("unsupported format %q, expected jpeg/png/webp", format),
		}
	}

	if cfg.Width < p.cfg.MinDimension || cfg.Height < p.cfg.MinDimension {
		return &domain.ValidationError{
			Kind:   domain.ErrImageConstraint,
			Reason: fmt.Sprintf("image %dx%d is below minimum %dpx", cfg.Width, cfg.Height, p.cfg.MinDimension),
		}
	}
	if cfg.Width > p.cfg.MaxDimension || cfg.Height > p.cfg.MaxDimension {
		return &domain.ValidationError{
			Kind:   domain.ErrImageConstraint,
			Reason: fmt.Sprintf("image %dx%d exceeds maximum %dpx", cfg.Width, cfg.Height, p.cfg.MaxDimension),
		}
	}

	return nil
}

// Process валидирует и перекодирует изображение: автоповорот по EXIF-ориентации,
// сброс всех метаданных перекодированием, даунскейл до MaxOutputDim (без апскейла),
// JPEG для основного файла и квадратная cover-crop миниатюра
func (p *Processor) Process(data []byte) (*Processed, error) {
	if err := p.Validate(data); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.ValidationError{Kind: domain.ErrInvalidImage, Reason: "failed to decode image"}
	}

	// Ориентация читается до перекодирования, после него EXIF теряется
	img = applyOrientation(img, readOrientation(data))

	main := downscale(img, p.cfg.MaxOutputDim)
	mainBytes, err := encodeJPEG(main, p.cfg.MainQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode main image: %w", err)
	}

	thumb := coverCrop(img, p.cfg.ThumbSize)
	thumbBytes, err := encodeJPEG(thumb, p.cfg.ThumbQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	bounds := main.Bounds()
	return &Processed{
		Main:          mainBytes,
		MainHash:      hashBytes(mainBytes),
		Thumbnail:     thumbBytes,
		ThumbnailHash: hashBytes(thumbBytes),
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
	}, nil
}

// hashBytes sha-256 hex финальных закодированных байт
func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// readOrientation читает EXIF-ориентацию; при любой ошибке возвращает 1 (как есть)
func readOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		return 1
	}
	return orientation
}

// applyOrientation нормализует изображение по EXIF-ориентации (8 вариантов)
func applyOrientation(img image.Image, orientation int) image.Image {
	if orientation == 1 {
		return img
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var dst *image.RGBA
	switch orientation {
	case 3, 2, 4:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	default: // 5-8 меняют стороны местами
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			switch orientation {
			case 2: // зеркально по горизонтали
				dst.Set(w-1-x, y, c)
			case 3: // 180°
				dst.Set(w-1-x, h-1-y, c)
			case 4: // зеркально по вертикали
				dst.Set(x, h-1-y, c)
			case 5: // транспонирование
				dst.Set(y, x, c)
			case 6: // 90° по часовой
				dst.Set(h-1-y, x, c)
			case 7: // транспонирование + 180°
				dst.Set(h-1-y, w-1-x, c)
			case 8: // 90° против часовой
				dst.Set(y, w-1-x, c)
			}
		}
	}

	return dst
}

// downscale уменьшает изображение, чтобы ни одна сторона не превышала maxDim.
// Никогда не увеличивает.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	var newW, newH int
	if w >= h {
		newW = maxDim
		newH = h * maxDim / w
	} else {
		newH = maxDim
		newW = w * maxDim / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// coverCrop вырезает центральный квадрат и масштабирует его до size×size
func coverCrop(img image.Image, size int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	side := w
	if h < side {
		side = h
	}
	x0 := bounds.Min.X + (w-side)/2
	y0 := bounds.Min.Y + (h-side)/2
	srcRect := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, srcRect, draw.Over, nil)
	return dst
}

// encodeJPEG кодирует изображение в JPEG указанного качества
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
