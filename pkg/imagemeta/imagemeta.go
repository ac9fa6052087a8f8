// Package imagemeta reads pixel dimensions and print density from PNG and
// JPEG files.
//
// Background-image grid planning needs the physical density (DPI) of the
// artwork to convert pixel dimensions into page points. The standard
// library decodes pixels but discards density metadata, so the pHYs chunk
// (PNG) and the JFIF APP0 segment (JPEG) are parsed here directly.
package imagemeta

import (
	"bytes"
	"encoding/binary"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"github.com/cardpress/cardpress/pkg/errors"
)

// DefaultDPI is assumed when an image carries no density metadata.
const DefaultDPI = 300.0

const inchesPerMeter = 39.3700787

// Info describes an image file: pixel dimensions and print density.
type Info struct {
	Width  int
	Height int
	DPI    float64 // horizontal density; DefaultDPI if the file has none
}

// ReadFile reads pixel dimensions and density metadata from a PNG or
// JPEG file.
func ReadFile(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read image %s", path)
	}
	return Read(data)
}

// Read parses image metadata from an in-memory file.
func Read(data []byte) (Info, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode image header")
	}

	info := Info{Width: cfg.Width, Height: cfg.Height, DPI: DefaultDPI}
	if dpi, ok := density(data); ok {
		info.DPI = dpi
	}
	return info, nil
}

// density extracts the horizontal DPI from the raw file bytes, if present.
func density(data []byte) (float64, bool) {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return pngDensity(data[8:])
	case bytes.HasPrefix(data, []byte{0xff, 0xd8}):
		return jfifDensity(data[2:])
	}
	return 0, false
}

// pngDensity walks PNG chunks looking for pHYs. The chunk holds pixels
// per unit for both axes and a unit flag (1 = meter).
func pngDensity(chunks []byte) (float64, bool) {
	for len(chunks) >= 8 {
		length := binary.BigEndian.Uint32(chunks[0:4])
		typ := string(chunks[4:8])
		body := chunks[8:]
		if len(body) < int(length) {
			return 0, false
		}
		switch typ {
		case "pHYs":
			if length < 9 {
				return 0, false
			}
			ppuX := binary.BigEndian.Uint32(body[0:4])
			if body[8] == 1 && ppuX > 0 {
				return float64(ppuX) / inchesPerMeter, true
			}
			return 0, false
		case "IDAT", "IEND":
			// pHYs must precede image data; stop scanning.
			return 0, false
		}
		// Skip chunk body and CRC.
		chunks = body[length:]
		if len(chunks) < 4 {
			return 0, false
		}
		chunks = chunks[4:]
	}
	return 0, false
}

// jfifDensity walks JPEG segments looking for a JFIF APP0 header with
// density units in dots per inch or dots per centimeter.
func jfifDensity(segs []byte) (float64, bool) {
	for len(segs) >= 4 {
		if segs[0] != 0xff {
			return 0, false
		}
		marker := segs[1]
		if marker == 0xd9 || marker == 0xda { // EOI / start of scan
			return 0, false
		}
		length := int(binary.BigEndian.Uint16(segs[2:4]))
		if length < 2 || len(segs) < 2+length {
			return 0, false
		}
		body := segs[4 : 2+length]
		if marker == 0xe0 && len(body) >= 12 && bytes.HasPrefix(body, []byte("JFIF\x00")) {
			units := body[7]
			xDensity := binary.BigEndian.Uint16(body[8:10])
			switch {
			case units == 1 && xDensity > 0:
				return float64(xDensity), true
			case units == 2 && xDensity > 0:
				return float64(xDensity) * 2.54, true
			}
			return 0, false
		}
		segs = segs[2+length:]
	}
	return 0, false
}

// ReadOptional reads metadata for path when it is non-empty. A missing
// path yields a nil Info, which selects the fixed-grid layout mode.
func ReadOptional(path string) (*Info, error) {
	if path == "" {
		return nil, nil
	}
	info, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
