package processor

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// WatermarkName derives the output file name for a watermarked copy:
// "receipt.png" -> "receipt_wm.png".
func WatermarkName(storedName string) string {
	ext := filepath.Ext(storedName)
	return strings.TrimSuffix(storedName, ext) + "_wm" + ext
}

// StampImage draws the text onto a copy of the image and writes it to dst.
// The encoding follows dst's extension (png or jpeg).
func StampImage(src, dst, text string, style Style) error {
	im, err := gg.LoadImage(src)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	dc := gg.NewContextForImage(im)
	face, err := style.fontFace()
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	r, g, b, err := parseHexColor(style.Color)
	if err != nil {
		return err
	}
	dc.SetRGBA(r, g, b, clamp(style.Opacity, 0, 1))

	fx, fy, err := Anchor(style.Position)
	if err != nil {
		return err
	}
	w := float64(dc.Width())
	h := float64(dc.Height())
	x := fx * w
	y := fy * h

	dc.RotateAbout(gg.Radians(-style.Rotation), x, y)
	dc.DrawStringAnchored(text, x, y, 0.5, 0.5)
	if strings.EqualFold(style.Decoration, "underline") {
		tw, th := dc.MeasureString(text)
		dc.SetLineWidth(th / 14)
		dc.DrawLine(x-tw/2, y+th/2+2, x+tw/2, y+th/2+2)
		dc.Stroke()
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(dst)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(out, dc.Image(), &jpeg.Options{Quality: 92})
	default:
		err = png.Encode(out, dc.Image())
	}
	if err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// StampPDF stamps the text onto every page of the source PDF. The anchor is
// expressed top-down like the image convention; PDF page space has its origin
// at the bottom-left, so the vertical fraction is mirrored into an offset from
// the page center.
func StampPDF(src, dst, text string, style Style) error {
	fx, fy, err := Anchor(style.Position)
	if err != nil {
		return err
	}

	var offX, offY float64
	if dims, err := api.PageDimsFile(src); err == nil && len(dims) > 0 {
		offX = (fx - 0.5) * dims[0].Width
		offY = (0.5 - fy) * dims[0].Height
	}

	size := style.FontSize
	if size <= 0 {
		size = DefaultStyle().FontSize
	}
	desc := fmt.Sprintf("font:%s, points:%d, col:%s, op:%.2f, rot:%d, pos:c, off:%d %d, scale:1 abs",
		style.pdfFontName(), int(size), strings.ToLower(style.Color),
		clamp(style.Opacity, 0, 1), int(style.Rotation), int(offX), int(offY))

	wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("failed to build watermark: %w", err)
	}
	if err := api.AddWatermarksFile(src, dst, nil, wm, nil); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to stamp pdf: %w", err)
	}
	return nil
}
