package celcore

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ScreenshotConfig controls how the terminal is rendered to an image.
type ScreenshotConfig struct {
	// Font face to use for rendering. If nil, uses basicfont.Face7x13.
	Font font.Face

	// CellWidth and CellHeight override the cell dimensions.
	// If zero, derived from font metrics.
	CellWidth  int
	CellHeight int

	// DefaultFG is the default foreground color. If nil, uses DefaultForeground.
	DefaultFG *color.RGBA

	// DefaultBG is the default background color. If nil, uses DefaultBackground.
	DefaultBG *color.RGBA

	// CursorColor is the cursor color. If nil, uses inverted colors.
	CursorColor *color.RGBA

	// ShowCursor controls whether to render the cursor. Default true.
	ShowCursor *bool
}

// LoadFont loads a TrueType or OpenType font from a file path.
func LoadFont(path string, size float64) (font.Face, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadFontFromReader(f, size)
}

// LoadFontFromReader loads a TrueType or OpenType font from an io.Reader.
func LoadFontFromReader(r io.Reader, size float64) (font.Face, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return LoadFontFromBytes(data, size)
}

// LoadFontFromBytes loads a TrueType or OpenType font from raw bytes.
func LoadFontFromBytes(data []byte, size float64) (font.Face, error) {
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}

	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}

	return face, nil
}

// Screenshot renders the visible screen to an RGBA image using default
// settings (basicfont, default colors).
func (t *Terminal) Screenshot() *image.RGBA {
	return t.ScreenshotWithConfig(&ScreenshotConfig{})
}

// ScreenshotWithConfig renders the visible screen to an RGBA image with
// custom font, colors, and cursor settings.
func (t *Terminal) ScreenshotWithConfig(cfg *ScreenshotConfig) *image.RGBA {
	face := cfg.Font
	if face == nil {
		face = basicfont.Face7x13
	}

	cellWidth := cfg.CellWidth
	cellHeight := cfg.CellHeight
	if cellWidth == 0 || cellHeight == 0 {
		metrics := face.Metrics()
		if cellWidth == 0 {
			// Measure a character to get width
			adv, _ := face.GlyphAdvance('M')
			cellWidth = adv.Ceil()
			if cellWidth == 0 {
				cellWidth = 7 // fallback for basicfont
			}
		}
		if cellHeight == 0 {
			cellHeight = metrics.Height.Ceil()
		}
	}

	defaultFG := cfg.DefaultFG
	if defaultFG == nil {
		defaultFG = &DefaultForeground
	}

	defaultBG := cfg.DefaultBG
	if defaultBG == nil {
		defaultBG = &DefaultBackground
	}

	showCursor := true
	if cfg.ShowCursor != nil {
		showCursor = *cfg.ShowCursor
	}

	g := t.performer.state.Grid

	imgWidth := t.cols * cellWidth
	imgHeight := t.rows * cellHeight
	img := image.NewRGBA(image.Rect(0, 0, imgWidth, imgHeight))

	// Fill background
	for y := 0; y < imgHeight; y++ {
		for x := 0; x < imgWidth; x++ {
			img.Set(x, y, defaultBG)
		}
	}

	// Render each cell
	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.cols; col++ {
			cell := g.VisibleCell(row, col)
			if cell.IsContinuation() {
				continue
			}

			x := col * cellWidth
			y := row * cellHeight

			fg := *defaultFG
			if cell.Style.Fg != nil {
				fg = *cell.Style.Fg
			}
			bg := *defaultBG
			if cell.Style.Bg != nil {
				bg = *cell.Style.Bg
			}
			if cell.Style.Flags.Has(FlagInvisible) {
				fg = bg
			}

			// Fill cell background
			glyphWidth := cell.Width
			if glyphWidth < 1 {
				glyphWidth = 1
			}
			for py := 0; py < cellHeight; py++ {
				for px := 0; px < cellWidth*glyphWidth && x+px < imgWidth; px++ {
					img.Set(x+px, y+py, bg)
				}
			}

			text := cell.Text()
			if text == "" || text == " " {
				continue
			}

			metrics := face.Metrics()
			baseline := y + metrics.Ascent.Ceil()

			d := &font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(fg),
				Face: face,
				Dot:  fixed.P(x, baseline),
			}
			d.DrawString(text)

			if cell.Style.Flags.Has(FlagUnderline) {
				underlineY := baseline + 2
				for px := 0; px < cellWidth*glyphWidth; px++ {
					if underlineY < imgHeight && x+px < imgWidth {
						img.Set(x+px, underlineY, fg)
					}
				}
			}

			if cell.Style.Flags.Has(FlagCrossedOut) {
				strikeY := y + cellHeight/2
				for px := 0; px < cellWidth*glyphWidth; px++ {
					if x+px < imgWidth {
						img.Set(x+px, strikeY, fg)
					}
				}
			}
		}
	}

	// Draw cursor if visible
	if showCursor && t.performer.state.Cursor.Visible {
		cur := g.ScreenCursor()
		cursorX := cur.Col * cellWidth
		cursorY := cur.Row * cellHeight

		if cfg.CursorColor != nil {
			for py := 0; py < cellHeight; py++ {
				for px := 0; px < cellWidth; px++ {
					cx, cy := cursorX+px, cursorY+py
					if cx < imgWidth && cy < imgHeight {
						img.Set(cx, cy, cfg.CursorColor)
					}
				}
			}
		} else {
			// Invert colors
			for py := 0; py < cellHeight; py++ {
				for px := 0; px < cellWidth; px++ {
					cx, cy := cursorX+px, cursorY+py
					if cx < imgWidth && cy < imgHeight {
						existing := img.RGBAAt(cx, cy)
						inverted := color.RGBA{
							R: 255 - existing.R,
							G: 255 - existing.G,
							B: 255 - existing.B,
							A: 255,
						}
						img.Set(cx, cy, inverted)
					}
				}
			}
		}
	}

	return img
}

// EncodeScreenshotPNG renders the visible screen and encodes it as PNG.
func (t *Terminal) EncodeScreenshotPNG(cfg *ScreenshotConfig) ([]byte, error) {
	if cfg == nil {
		cfg = &ScreenshotConfig{}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, t.ScreenshotWithConfig(cfg)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
