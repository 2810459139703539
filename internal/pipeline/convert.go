package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// TextToPDF renders a plain-text file as a PDF, one monospaced line per
// source line, wrapping lines that exceed the page width.
func TextToPDF(txtPath, pdfPath string) error {
	data, err := os.ReadFile(txtPath)
	if err != nil {
		return fmt.Errorf("failed to read text file: %w", err)
	}

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(36, 36, 36)
	pdf.SetAutoPageBreak(true, 36)
	pdf.AddPage()
	pdf.SetFont("Courier", "", 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	const lineHeight = 12.0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			pdf.Ln(lineHeight)
			continue
		}
		pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(pdfPath); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// DocxConverter converts a Word document to PDF.
type DocxConverter interface {
	Convert(ctx context.Context, docxPath, pdfPath string) error
}

// LibreOfficeConverter shells out to a headless LibreOffice install.
type LibreOfficeConverter struct {
	// Binary is the soffice executable; empty means "soffice" on PATH.
	Binary string
}

func (c *LibreOfficeConverter) Convert(ctx context.Context, docxPath, pdfPath string) error {
	binary := c.Binary
	if binary == "" {
		binary = "soffice"
	}

	outDir := filepath.Dir(pdfPath)
	cmd := exec.CommandContext(ctx, binary,
		"--headless", "--convert-to", "pdf", "--outdir", outDir, docxPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("libreoffice conversion failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	// LibreOffice names the output after the input file.
	base := strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))
	produced := filepath.Join(outDir, base+".pdf")
	if produced == pdfPath {
		return nil
	}
	if err := os.Rename(produced, pdfPath); err != nil {
		return fmt.Errorf("failed to move converted pdf: %w", err)
	}
	return nil
}
