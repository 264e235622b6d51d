package overlay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrImageAcquisition marks a source image that could not be fetched or
// decoded. Callers substitute the static fallback image instead of failing.
var ErrImageAcquisition = errors.New("image acquisition failed")

const fetchTimeout = 20 * time.Second

type Renderer struct {
	client    *http.Client
	publicDir string
	canvas    int

	headlineFont *opentype.Font
	bodyFont     *opentype.Font

	// now is stubbed in tests to get stable output filenames.
	now func() time.Time
}

func NewRenderer(publicDir string, canvas int) (*Renderer, error) {
	if err := os.MkdirAll(publicDir, 0o755); err != nil {
		return nil, fmt.Errorf("create public dir %s: %w", publicDir, err)
	}

	headlineFont, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse headline font: %w", err)
	}
	bodyFont, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse body font: %w", err)
	}

	return &Renderer{
		client:       &http.Client{Timeout: fetchTimeout},
		publicDir:    publicDir,
		canvas:       canvas,
		headlineFont: headlineFont,
		bodyFont:     bodyFont,
		now:          time.Now,
	}, nil
}

// Render fetches the source image, composites the caption band over it, and
// writes a PNG into the public dir. Returns the served path of the preview.
func (r *Renderer) Render(ctx context.Context, imageURL, headline, description string) (string, error) {
	src, err := r.fetchImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	canvas := coverResize(src, r.canvas, r.canvas)
	spec := Compute(headline, description, r.canvas, r.canvas)

	if err := r.composite(canvas, spec); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("preview_%d.png", r.now().UnixMilli())
	out, err := os.Create(filepath.Join(r.publicDir, filename))
	if err != nil {
		return "", fmt.Errorf("create preview file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, canvas); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}

	return "/" + filename, nil
}

func (r *Renderer) fetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageAcquisition, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageAcquisition, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch returned status %d", ErrImageAcquisition, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrImageAcquisition, err)
	}

	return img, nil
}

// coverResize scales the image to cover the w x h canvas and center-crops
// the overflow, like CSS object-fit: cover.
func coverResize(src image.Image, w, h int) *image.RGBA {
	bounds := src.Bounds()
	scale := math.Max(
		float64(w)/float64(bounds.Dx()),
		float64(h)/float64(bounds.Dy()),
	)
	scaledW := int(math.Ceil(float64(bounds.Dx()) * scale))
	scaledH := int(math.Ceil(float64(bounds.Dy()) * scale))

	scaled := resize.Resize(uint(scaledW), uint(scaledH), src, resize.Lanczos3)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	offset := image.Pt((scaledW-w)/2, (scaledH-h)/2)
	draw.Draw(dst, dst.Bounds(), scaled, offset, draw.Src)
	return dst
}

func (r *Renderer) composite(dst *image.RGBA, spec Spec) error {
	band := image.Rect(0, spec.BandTop, spec.Width, spec.BandTop+spec.BandHeight)
	draw.Draw(dst, band, image.NewUniform(color.NRGBA{A: 178}), image.Point{}, draw.Over)

	if err := r.drawLines(dst, r.headlineFont, spec.HeadlineSize, spec.Padding, spec.BandTop,
		spec.HeadlineLines, spec.HeadlineBaselines(), color.NRGBA{R: 255, G: 255, B: 255, A: 255}); err != nil {
		return err
	}

	return r.drawLines(dst, r.bodyFont, spec.BodySize, spec.Padding, spec.BandTop,
		spec.BodyLines, spec.BodyBaselines(), color.NRGBA{R: 221, G: 221, B: 221, A: 255})
}

func (r *Renderer) drawLines(
	dst *image.RGBA,
	fnt *opentype.Font,
	size, x, bandTop int,
	lines []string,
	baselines []int,
	col color.NRGBA,
) error {
	if len(lines) == 0 {
		return nil
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("create %dpx face: %w", size, err)
	}
	defer face.Close()

	drawer := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}

	for i, line := range lines {
		drawer.Dot = fixed.P(x, bandTop+baselines[i])
		drawer.DrawString(line)
	}

	return nil
}
