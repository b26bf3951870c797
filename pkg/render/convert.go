package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/deeptime/pkg/errors"
)

// rsvgBinary is the librsvg command-line converter.
const rsvgBinary = "rsvg-convert"

// Conversion describes one rsvg-convert run over a rendered frame.
type Conversion struct {
	Format string  // "png" or "pdf"
	Scale  float64 // zoom factor, 0 keeps 1:1
}

// args returns the rsvg-convert flags for c.
func (c Conversion) args() []string {
	args := []string{"--format", c.Format}
	if c.Scale > 0 && c.Scale != 1 {
		args = append(args, "--zoom", strconv.FormatFloat(c.Scale, 'f', 2, 64))
	}
	return args
}

// Convert re-encodes SVG bytes with rsvg-convert. The child process is
// killed when ctx is done.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func Convert(ctx context.Context, svg []byte, c Conversion) ([]byte, error) {
	if _, err := exec.LookPath(rsvgBinary); err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s export requires librsvg (brew install librsvg, apt install librsvg2-bin)", c.Format)
	}

	cmd := exec.CommandContext(ctx, rsvgBinary, c.args()...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "%s conversion cancelled", c.Format)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", rsvgBinary, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}

// ToPDF converts a frame to a single-page PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return Convert(ctx, svg, Conversion{Format: "pdf"})
}

// ToPNG converts a frame to PNG at the given pixel ratio.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return Convert(ctx, svg, Conversion{Format: "png", Scale: scale})
}
