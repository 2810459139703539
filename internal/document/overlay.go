package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/mattn/go-runewidth"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const minOverlayFontSize = 4.0

// writeOverlay copies the source document to path, renders a matching overlay
// document (opaque cover plus translated text per block, on an optional
// content layer named "translation" that is visible by default), and stamps
// the overlay onto the copy page for page.
func writeOverlay(d *PDFDocument, path string) error {
	overlayPath := filepath.Join(os.TempDir(), fmt.Sprintf("doctranslate-overlay-%d.pdf", os.Getpid()))
	defer os.Remove(overlayPath)

	pages, err := renderOverlay(d, overlayPath)
	if err != nil {
		return err
	}

	if err := copyFile(d.path, path); err != nil {
		return fmt.Errorf("failed to copy source pdf: %w", err)
	}
	if len(pages) == 0 {
		return nil
	}

	conf := model.NewDefaultConfiguration()
	for _, page := range pages {
		wm, err := api.PDFWatermark(
			fmt.Sprintf("%s:%d", overlayPath, page),
			"sc:1 abs, pos:c, rot:0", true, false, types.POINTS)
		if err != nil {
			return fmt.Errorf("failed to create overlay stamp for page %d: %w", page, err)
		}
		sel := []string{fmt.Sprintf("%d", page)}
		if err := api.AddWatermarksFile(path, "", sel, wm, conf); err != nil {
			return fmt.Errorf("failed to stamp page %d: %w", page, err)
		}
	}
	return nil
}

// renderOverlay writes the overlay document and returns the numbers of the
// pages that carry at least one block.
func renderOverlay(d *PDFDocument, overlayPath string) ([]int, error) {
	size := Rect{X1: 612, Y1: 792}
	if len(d.pageSizes) > 0 {
		size = d.pageSizes[0]
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: size.Width(), Ht: size.Height()},
	})
	pdf.SetAutoPageBreak(false, 0)
	layer := pdf.AddLayer("translation", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	var stamped []int
	for page := 1; page <= d.pageCount; page++ {
		ps := size
		if page-1 < len(d.pageSizes) {
			ps = d.pageSizes[page-1]
		}
		pageH := ps.Height()
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: ps.Width(), Ht: pageH})

		drawn := false
		pdf.BeginLayer(layer)
		for i := range d.blocks {
			b := &d.blocks[i]
			if b.page != page {
				continue
			}
			text := strings.TrimSpace(b.text)
			if text == "" {
				continue
			}

			// gofpdf's origin is top-left, PDF user space is bottom-left.
			x := b.rect.X0
			yTop := pageH - b.rect.Y1
			w := b.rect.Width()
			h := b.rect.Height()

			pdf.SetFillColor(255, 255, 255)
			pdf.Rect(x, yTop, w, h, "F")

			fontSize := fitFontSize(text, b.rect)
			pdf.SetFont("Helvetica", "", fontSize)
			pdf.SetTextColor(0, 0, 0)
			pdf.SetXY(x, yTop)
			pdf.MultiCell(w, fontSize*1.2, tr(text), "", "L", false)
			drawn = true
		}
		pdf.EndLayer()

		if drawn {
			stamped = append(stamped, page)
		}
	}

	if err := pdf.OutputFileAndClose(overlayPath); err != nil {
		return nil, fmt.Errorf("failed to write overlay pdf: %w", err)
	}
	return stamped, nil
}

// fitFontSize shrinks the font until the wrapped text is expected to fit the
// block height. Rendering may still overflow; clipping is accepted.
func fitFontSize(text string, r Rect) float64 {
	size := r.Height()
	if size > 12 {
		size = 12
	}
	if size < minOverlayFontSize {
		size = minOverlayFontSize
	}

	for size > minOverlayFontSize {
		lines := wrapText(text, r.Width(), size)
		if float64(len(lines))*size*1.2 <= r.Height()+size*0.6 {
			break
		}
		size -= 0.5
	}
	if size < minOverlayFontSize {
		size = minOverlayFontSize
	}
	return size
}

// wrapText breaks text into lines no wider than maxWidth at the given font
// size, using display cell width so that wide (CJK) glyphs count double.
func wrapText(text string, maxWidth, fontSize float64) []string {
	if maxWidth <= 0 {
		return []string{text}
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0.0

	flush := func() {
		if line.Len() > 0 {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
	}

	for _, word := range strings.Fields(text) {
		w := textWidth(word, fontSize)
		if lineWidth > 0 && lineWidth+spaceWidth(fontSize)+w > maxWidth {
			flush()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
			lineWidth += spaceWidth(fontSize)
		}
		line.WriteString(word)
		lineWidth += w
	}
	flush()

	if len(lines) == 0 {
		return []string{text}
	}
	return lines
}

// textWidth estimates the rendered width of s in points. Each display cell is
// roughly half the font size for Latin text; runewidth reports two cells for
// full-width glyphs.
func textWidth(s string, fontSize float64) float64 {
	return float64(runewidth.StringWidth(s)) * fontSize * 0.5
}

func spaceWidth(fontSize float64) float64 {
	return fontSize * 0.25
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
