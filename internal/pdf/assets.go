package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"
)

var ErrAssetUnavailable = errors.New("report asset unavailable")

// Logo is a PNG ready for embedding together with its pixel size.
type Logo struct {
	PNG    []byte
	Width  int
	Height int
}

type LogoSource interface {
	Logo() (*Logo, error)
}

type QREncoder interface {
	Encode(content string) ([]byte, error)
}

// FileLogo loads the logo from disk on first use and keeps it for the life
// of the process. A failed load is not cached so a later call can succeed
// once the file is in place.
type FileLogo struct {
	path string

	mu   sync.Mutex
	logo *Logo
}

func NewFileLogo(path string) *FileLogo {
	return &FileLogo{path: path}
}

func (f *FileLogo) Logo() (*Logo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.logo != nil {
		return f.logo, nil
	}
	logo, err := loadLogo(f.path)
	if err != nil {
		return nil, err
	}
	f.logo = logo
	return logo, nil
}

// loadLogo decodes any supported image, stretches it vertically and
// re-encodes it as PNG so the document always embeds one image type.
func loadLogo(path string) (*Logo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logo %s: %w", path, err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode logo %s: %w", path, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("logo %s has no pixels", path)
	}
	stretched := imaging.Resize(img, bounds.Dx(), int(float64(bounds.Dy())*logoStretch), imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, stretched, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	size := stretched.Bounds()
	return &Logo{PNG: buf.Bytes(), Width: size.Dx(), Height: size.Dy()}, nil
}

// QRCode encodes absolute http(s) URLs as square PNG images.
type QRCode struct {
	Size int
}

func NewQRCode() QRCode {
	return QRCode{Size: 256}
}

func (q QRCode) Encode(content string) ([]byte, error) {
	u, err := url.ParseRequestURI(content)
	if err != nil {
		return nil, fmt.Errorf("invalid verification url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid verification url %q", content)
	}
	return qrcode.Encode(content, qrcode.Medium, q.Size)
}
