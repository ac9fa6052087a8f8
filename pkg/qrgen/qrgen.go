// Package qrgen renders scannable QR rasters for card links.
//
// Codes are encoded at error-correction level Q so that a center icon
// overlay stays decodable. The caller receives a transient PNG file and
// a cleanup function; the file must be removed on every exit path of
// the placement call.
package qrgen

import (
	"crypto/sha256"
	"encoding/hex"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/disintegration/imaging"

	"github.com/cardpress/cardpress/pkg/errors"
)

const (
	// boxSize is the rendered size of one QR module in pixels.
	boxSize = 10

	// defaultBorderModules is the quiet-zone thickness when no pixel
	// override is given. The QR spec recommends four modules.
	defaultBorderModules = 4

	// iconRatio is the fraction of the code width covered by the
	// optional center icon. Level-Q codes tolerate this much damage.
	iconRatio = 4
)

// Options configures a Generator.
type Options struct {
	// IconPath is a file path or http(s) URL of a center icon overlay.
	// Empty disables the overlay.
	IconPath string

	// QuietZonePx overrides the quiet-zone thickness in pixels; it is
	// rounded to whole modules. Negative means the default four modules.
	QuietZonePx int

	// TempDir receives the transient PNG files. Empty uses the system
	// temporary directory.
	TempDir string
}

// Generator produces QR code images for link payloads. The icon cache
// is owned by the generator and lives for one generation run.
type Generator struct {
	opts  Options
	icons *IconCache
}

// New creates a Generator. The icon cache is created fresh so that no
// state leaks between runs.
func New(opts Options) *Generator {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &Generator{opts: opts, icons: NewIconCache()}
}

// borderModules converts the pixel override into whole quiet-zone
// modules.
func (g *Generator) borderModules() int {
	if g.opts.QuietZonePx < 0 {
		return defaultBorderModules
	}
	return int(math.Round(float64(g.opts.QuietZonePx) / boxSize))
}

// Generate encodes url into a square PNG and returns the file path with
// a cleanup function that removes it. The caller must invoke cleanup
// regardless of whether drawing succeeds.
func (g *Generator) Generate(url string) (path string, cleanup func() error, err error) {
	code, err := qr.Encode(url, qr.Q, qr.Auto)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeEncodeFailed, err, "encode QR for %s", url)
	}

	modules := code.Bounds().Dx()
	codePx := modules * boxSize
	scaled, err := barcode.Scale(code, codePx, codePx)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeEncodeFailed, err, "scale QR for %s", url)
	}

	border := g.borderModules() * boxSize
	total := codePx + 2*border
	img := imaging.New(total, total, color.White)
	img = imaging.Paste(img, scaled, pt(border, border))

	if g.opts.IconPath != "" {
		icon, err := g.icons.Load(g.opts.IconPath)
		if err != nil {
			return "", nil, err
		}
		icon = imaging.Resize(icon, codePx/iconRatio, 0, imaging.Lanczos)
		img = imaging.OverlayCenter(img, icon, 1.0)
	}

	sum := sha256.Sum256([]byte(url))
	path = filepath.Join(g.opts.TempDir, "qr_"+hex.EncodeToString(sum[:])+".png")
	if err := imaging.Save(img, path); err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeEncodeFailed, err, "write QR image")
	}
	return path, func() error { return os.Remove(path) }, nil
}
