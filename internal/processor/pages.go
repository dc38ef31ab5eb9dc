package processor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PageInput is one attachment to place on one output page of the print merge.
type PageInput struct {
	Path string
	Name string // user-visible name, shown on placeholder pages
}

var printableImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

const letterImportDesc = "form:Letter, pos:c, scale:1.0 rel"

// MergeToPDF composes one page per input: images scaled to fit a letter page,
// PDFs contributing their first page, and anything unsupported or unreadable
// replaced by a descriptive placeholder page. Returns the names of inputs
// that ended up as placeholders. The page count always equals len(inputs).
func MergeToPDF(inputs []PageInput, outFile, workDir string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("nothing to print")
	}

	var pages []string
	var placeholders []string
	for i, in := range inputs {
		page := filepath.Join(workDir, fmt.Sprintf("page_%04d.pdf", i))
		if err := renderPage(in, page); err != nil {
			if perr := placeholderPage(in.Name, err.Error(), page, workDir, i); perr != nil {
				return nil, fmt.Errorf("failed to build placeholder page: %w", perr)
			}
			placeholders = append(placeholders, in.Name)
		}
		pages = append(pages, page)
	}

	if err := api.MergeCreateFile(pages, outFile, false, nil); err != nil {
		return nil, fmt.Errorf("failed to merge pages: %w", err)
	}
	return placeholders, nil
}

func renderPage(in PageInput, outFile string) error {
	ext := strings.ToLower(filepath.Ext(in.Path))
	switch {
	case printableImageExts[ext]:
		imp, err := api.Import(letterImportDesc, types.POINTS)
		if err != nil {
			return err
		}
		return api.ImportImagesFile([]string{in.Path}, outFile, imp, nil)
	case ext == ".pdf":
		return api.TrimFile(in.Path, outFile, []string{"1"}, nil)
	default:
		return fmt.Errorf("unsupported file type %s", ext)
	}
}

// placeholderPage renders a letter-sized page carrying the file name and the
// reason it could not be rendered.
func placeholderPage(name, reason, outFile, workDir string, seq int) error {
	const w, h = 1275, 1650 // letter at 150 dpi

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	face, err := Style{FontSize: 40}.fontFace()
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetRGB(0.25, 0.25, 0.25)

	if len(reason) > 120 {
		reason = reason[:117] + "..."
	}
	lines := []string{"Unable to render attachment", name, reason}
	for i, line := range lines {
		dc.DrawStringAnchored(line, w/2, h/2+float64(i-1)*64, 0.5, 0.5)
	}

	img := filepath.Join(workDir, fmt.Sprintf("placeholder_%04d.png", seq))
	if err := dc.SavePNG(img); err != nil {
		return err
	}

	imp, err := api.Import(letterImportDesc, types.POINTS)
	if err != nil {
		return err
	}
	return api.ImportImagesFile([]string{img}, outFile, imp, nil)
}
