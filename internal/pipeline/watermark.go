package pipeline

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// watermarkAsset returns the path of the one-page caption PDF for the given
// text, generating it on first use. The cache is keyed on the text, so a
// changed caption gets a fresh asset.
func watermarkAsset(text string) (string, error) {
	name := fmt.Sprintf("doctranslate-watermark-%08x.pdf", crc32.ChecksumIEEE([]byte(text)))
	path := filepath.Join(os.TempDir(), name)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path, nil
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 40)
	pdf.SetTextColor(128, 128, 128)
	pdf.SetAlpha(0.4, "Normal")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	_, pageH := pdf.GetPageSize()
	x, y := 100.0, pageH-200
	pdf.TransformBegin()
	pdf.TransformRotate(45, x, y)
	pdf.Text(x, y, tr(text))
	pdf.TransformEnd()

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write watermark asset: %w", err)
	}
	return path, nil
}

// ApplyWatermark stamps the caption onto every page of the PDF at pdfPath,
// in place.
func ApplyWatermark(pdfPath, text string) error {
	asset, err := watermarkAsset(text)
	if err != nil {
		return err
	}

	wm, err := api.PDFWatermark(asset, "sc:1 abs, pos:c, rot:0", true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("failed to create watermark: %w", err)
	}
	if err := api.AddWatermarksFile(pdfPath, "", nil, wm, nil); err != nil {
		return fmt.Errorf("failed to apply watermark: %w", err)
	}
	return nil
}
