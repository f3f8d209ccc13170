package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io/fs"
	"os"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// Logo is a decoded header image.
type Logo struct {
	Data []byte
	// Type is the fpdf image type: "png", "jpg" or "gif".
	Type   string
	MIME   string
	Width  int
	Height int
}

// Ext returns the file extension used when embedding the logo.
func (l *Logo) Ext() string {
	return l.Type
}

// Assets holds the static inputs shared read-only by every render. The
// logo is decoded on first use and the outcome is shared by both formats.
type Assets struct {
	logo []byte

	once    sync.Once
	decoded *Logo
	err     error
}

// NoAssets returns an empty asset set.
func NoAssets() *Assets {
	return &Assets{}
}

// NewAssets wraps logo bytes. An empty slice means no logo.
func NewAssets(logo []byte) *Assets {
	return &Assets{logo: bytes.Clone(logo)}
}

// LoadAssets reads the logo at path once. An empty path or a file that does
// not exist yields assets without a logo; any other read failure is
// returned.
func LoadAssets(path string) (*Assets, error) {
	if path == "" {
		return NoAssets(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NoAssets(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("render: read logo: %w", err)
	}
	return &Assets{logo: data}, nil
}

// HasLogo reports whether a logo was supplied.
func (a *Assets) HasLogo() bool {
	return a != nil && len(a.logo) > 0
}

// Logo decodes the logo. It returns (nil, false, nil) when there is none
// and an error when the logo is present but unusable. The pixel data is
// fully decoded, so a truncated image is rejected here rather than
// embedded.
func (a *Assets) Logo() (*Logo, bool, error) {
	if !a.HasLogo() {
		return nil, false, nil
	}
	a.once.Do(func() {
		a.decoded, a.err = decodeLogo(a.logo)
	})
	return a.decoded, true, a.err
}

func decodeLogo(data []byte) (*Logo, error) {
	mt := mimetype.Detect(data)
	var typ string
	switch {
	case mt.Is("image/png"):
		typ = "png"
	case mt.Is("image/jpeg"):
		typ = "jpg"
	case mt.Is("image/gif"):
		typ = "gif"
	default:
		return nil, fmt.Errorf("unsupported logo type %s", mt.String())
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("logo has empty bounds %dx%d", b.Dx(), b.Dy())
	}

	return &Logo{
		Data:   data,
		Type:   typ,
		MIME:   mt.String(),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}
