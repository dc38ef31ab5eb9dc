package processor

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestStampImageWritesEncodedCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	writeTestImage(t, src)

	dst := filepath.Join(dir, "out.png")
	require.NoError(t, StampImage(src, dst, "Alice - Trip", DefaultStyle()))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, decoded.Bounds().Dx(), "stamping keeps the source dimensions")
	assert.Equal(t, 300, decoded.Bounds().Dy())

	original, err := os.ReadFile(src)
	require.NoError(t, err)
	stamped, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.NotEqual(t, original, stamped)
}

func TestStampImageJPEGOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	writeTestImage(t, src)

	style := DefaultStyle().Merge(Style{Position: "bottom-right", Decoration: "underline", FontWeight: "bold"})
	dst := filepath.Join(dir, "out.jpg")
	require.NoError(t, StampImage(src, dst, "PAID", style))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := jpeg.Decode(f)
	require.NoError(t, err, "output is a complete jpeg stream")
	assert.Equal(t, 400, decoded.Bounds().Dx())
}

func TestStampImageRejectsBadStyle(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	writeTestImage(t, src)

	dst := filepath.Join(dir, "out.png")
	err := StampImage(src, dst, "x", DefaultStyle().Merge(Style{Position: "everywhere"}))
	require.Error(t, err)
	err = StampImage(src, dst, "x", DefaultStyle().Merge(Style{Color: "red"}))
	require.Error(t, err)
}

func TestStampPDF(t *testing.T) {
	dir := t.TempDir()

	// Build a single-page PDF from an image first.
	img := filepath.Join(dir, "page.png")
	writeTestImage(t, img)
	src := filepath.Join(dir, "in.pdf")
	imp, err := api.Import(letterImportDesc, types.POINTS)
	require.NoError(t, err)
	require.NoError(t, api.ImportImagesFile([]string{img}, src, imp, nil))

	dst := filepath.Join(dir, "out.pdf")
	require.NoError(t, StampPDF(src, dst, "Alice - Trip", DefaultStyle()))

	pages, err := api.PageCountFile(dst)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}
