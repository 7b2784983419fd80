package batch

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ScanDPI is the resolution images are assumed to be scanned at.
const ScanDPI = 300

// ImageToPDF decodes a raster scan, flattens it onto white as opaque RGB and
// wraps it in a one-page PDF sized for ScanDPI.
func ImageToPDF(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return imageReaderToPDF(f)
}

func imageReaderToPDF(r io.Reader) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	rgb := flatten(src)

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, rgb); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	b := rgb.Bounds()
	imp := pdfcpu.DefaultImportConfig()
	imp.DPI = ScanDPI
	imp.PageDim = &types.Dim{
		Width:  float64(b.Dx()) * 72 / ScanDPI,
		Height: float64(b.Dy()) * 72 / ScanDPI,
	}
	imp.UserDim = true
	imp.Pos = types.Full

	var out bytes.Buffer
	conf := model.NewDefaultConfiguration()
	if err := api.ImportImages(nil, &out, []io.Reader{&pngBuf}, imp, conf); err != nil {
		return nil, fmt.Errorf("image to pdf: %w", err)
	}
	return out.Bytes(), nil
}

// flatten composites src over a white background, dropping alpha and palettes.
func flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}
