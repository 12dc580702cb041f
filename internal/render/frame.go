package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// xterm-256 values for the palette styleColors can produce.
var termRGB = map[lipgloss.Color]color.RGBA{
	"9":   {0xff, 0x00, 0x00, 0xff},
	"10":  {0x00, 0xff, 0x00, 0xff},
	"11":  {0xff, 0xff, 0x00, 0xff},
	"12":  {0x5c, 0x5c, 0xff, 0xff},
	"13":  {0xff, 0x00, 0xff, 0xff},
	"14":  {0x00, 0xff, 0xff, 0xff},
	"15":  {0xff, 0xff, 0xff, 0xff},
	"240": {0x58, 0x58, 0x58, 0xff},
}

func cellRGB(c lipgloss.Color) color.RGBA {
	if rgb, ok := termRGB[c]; ok {
		return rgb
	}
	return color.RGBA{0xff, 0xff, 0xff, 0xff}
}

// SaveFrame writes the last flushed chart to path as an image; the format
// follows the file extension (.png or .svg).
func (s *TermSurface) SaveFrame(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return savePNG(s.canvas, path)
	case ".svg":
		return os.WriteFile(path, []byte(CanvasSVG(s.canvas, 4)), 0644)
	default:
		return fmt.Errorf("render: unsupported frame format %q", ext)
	}
}

// savePNG rasterizes the braille grid, one filled block per lit sub-pixel.
func savePNG(c *Canvas, path string) error {
	charW, charH := 8, 16
	dotW, dotH := charW/2, charH/4
	img := image.NewRGBA(image.Rect(0, 0, c.Width*charW, c.Height*charH))
	bg := color.RGBA{0x0a, 0x0a, 0x0a, 0xff}
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			img.SetRGBA(x, y, bg)
		}
	}

	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			r := c.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			rgb := cellRGB(c.Colors[row][col])
			baseX, baseY := col*charW, row*charH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetRGBA(baseX+dx*dotW+px, baseY+dy*dotH+py, rgb)
						}
					}
				}
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// CanvasSVG converts the braille grid to an SVG document, one circle per
// lit sub-pixel.
func CanvasSVG(c *Canvas, scale float64) string {
	width := float64(c.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(c.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	dotRadius := scale * 0.4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			r := c.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			rgb := cellRGB(c.Colors[row][col])
			fill := fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill))
					}
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
