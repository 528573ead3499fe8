package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxBytes caps image size. Gemini rejects inline data over 20 MB.
const MaxBytes = 20 << 20

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
	ErrEmpty           = errors.New("image is empty")
)

// supported lists the raster formats all providers accept inline.
var supported = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// Image is an uploaded problem picture.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// FromBytes sniffs the content type of data and rejects anything that is
// not a supported raster image.
func FromBytes(name string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), MaxBytes)
	}
	mt := mimetype.Detect(data)
	for _, s := range supported {
		if mt.Is(s) {
			return &Image{Name: name, MIMEType: s, Data: data}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
}

// Load reads an image from path. A leading ~/ expands to the home directory.
func Load(path string) (*Image, error) {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), MaxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return FromBytes(filepath.Base(path), data)
}

// Base64 returns the standard base64 encoding of the image bytes.
func (img *Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns the image as a data: URL.
func (img *Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + img.Base64()
}
