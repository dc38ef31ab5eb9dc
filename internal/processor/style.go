package processor

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Style describes how watermark text is drawn. Position is either one of the
// five presets (center and the four quadrant corners at 25%/75%) or an
// arbitrary anchor of the form "x%/y%" measured from the top-left corner.
type Style struct {
	FontFamily string  `json:"font_family"`
	FontSize   float64 `json:"font_size"`
	FontWeight string  `json:"font_weight"`
	Decoration string  `json:"decoration"`
	Color      string  `json:"color"`
	Opacity    float64 `json:"opacity"`
	Rotation   float64 `json:"rotation"`
	Position   string  `json:"position"`
}

func DefaultStyle() Style {
	return Style{
		FontFamily: "Helvetica",
		FontSize:   28,
		FontWeight: "normal",
		Color:      "#D43C33",
		Opacity:    0.35,
		Rotation:   30,
		Position:   "center",
	}
}

// Merge overlays the non-zero fields of override onto s.
func (s Style) Merge(override Style) Style {
	if override.FontFamily != "" {
		s.FontFamily = override.FontFamily
	}
	if override.FontSize > 0 {
		s.FontSize = override.FontSize
	}
	if override.FontWeight != "" {
		s.FontWeight = override.FontWeight
	}
	if override.Decoration != "" {
		s.Decoration = override.Decoration
	}
	if override.Color != "" {
		s.Color = override.Color
	}
	if override.Opacity > 0 {
		s.Opacity = override.Opacity
	}
	if override.Rotation != 0 {
		s.Rotation = override.Rotation
	}
	if override.Position != "" {
		s.Position = override.Position
	}
	return s
}

// Anchor resolves the position to fractional coordinates, x rightward and y
// downward from the top-left corner.
func Anchor(position string) (fx, fy float64, err error) {
	switch strings.ToLower(strings.TrimSpace(position)) {
	case "", "center":
		return 0.5, 0.5, nil
	case "top-left":
		return 0.25, 0.25, nil
	case "top-right":
		return 0.75, 0.25, nil
	case "bottom-left":
		return 0.25, 0.75, nil
	case "bottom-right":
		return 0.75, 0.75, nil
	}

	parts := strings.Split(position, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid watermark position %q", position)
	}
	coords := make([]float64, 2)
	for i, part := range parts {
		part = strings.TrimSuffix(strings.TrimSpace(part), "%")
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid watermark position %q", position)
		}
		coords[i] = clamp(v/100, 0, 1)
	}
	return coords[0], coords[1], nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s Style) fontFace() (font.Face, error) {
	data := goregular.TTF
	if strings.EqualFold(s.FontWeight, "bold") {
		data = gobold.TTF
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	size := s.FontSize
	if size <= 0 {
		size = DefaultStyle().FontSize
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build font face: %w", err)
	}
	return face, nil
}

func parseHexColor(s string) (r, g, b float64, err error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid color %q", s)
	}
	r = float64(v>>16&0xff) / 255
	g = float64(v>>8&0xff) / 255
	b = float64(v&0xff) / 255
	return r, g, b, nil
}

// pdfFontName maps a font family to the closest PDF core font.
func (s Style) pdfFontName() string {
	family := strings.ToLower(s.FontFamily)
	bold := strings.EqualFold(s.FontWeight, "bold")
	switch {
	case strings.Contains(family, "times"):
		if bold {
			return "Times-Bold"
		}
		return "Times-Roman"
	case strings.Contains(family, "courier"), strings.Contains(family, "mono"):
		if bold {
			return "Courier-Bold"
		}
		return "Courier"
	default:
		if bold {
			return "Helvetica-Bold"
		}
		return "Helvetica"
	}
}
