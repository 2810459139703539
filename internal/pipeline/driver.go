package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/troosts/doctranslate/internal/config"
	"github.com/troosts/doctranslate/internal/document"
	"github.com/troosts/doctranslate/internal/translator"
)

// State tracks how far a document made it through the pipeline.
type State int

const (
	StatePending State = iota
	StateDecomposed
	StateBatched
	StateTranslated
	StateReassembled
	StateSaved
	StateConverted
	StateWatermarked
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDecomposed:
		return "decomposed"
	case StateBatched:
		return "batched"
	case StateTranslated:
		return "translated"
	case StateReassembled:
		return "reassembled"
	case StateSaved:
		return "saved"
	case StateConverted:
		return "converted"
	case StateWatermarked:
		return "watermarked"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result records the outcome of one document.
type Result struct {
	ID       string
	File     string
	Kind     document.Kind
	Output   string
	State    State
	Err      error
	Segments int
	Batches  int
	Elapsed  time.Duration
}

// Driver runs documents through decompose, batch, translate, reassemble and
// save. Documents are processed one at a time; a failure stops that document
// only, never the run.
type Driver struct {
	cfg  *config.Config
	inv  *translator.Invoker
	conv DocxConverter
	log  *zap.Logger
}

func NewDriver(cfg *config.Config, inv *translator.Invoker, conv DocxConverter, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{cfg: cfg, inv: inv, conv: conv, log: log}
}

// Run translates the given files, reporting progress through status. It
// returns one Result per input file in order.
func (d *Driver) Run(ctx context.Context, files []string, status func(string)) []Result {
	if status == nil {
		status = func(string) {}
	}

	results := make([]Result, 0, len(files))
	for i, file := range files {
		status(fmt.Sprintf("Translating file %d of %d: %s", i+1, len(files), filepath.Base(file)))

		res := d.translateFile(ctx, file, status)
		if res.Err != nil {
			d.log.Error("translation failed",
				zap.String("file", file),
				zap.String("state", res.State.String()),
				zap.Error(res.Err))
			status(fmt.Sprintf("Failed to translate %s: %v", filepath.Base(file), res.Err))
		} else {
			status(fmt.Sprintf("Saved %s", res.Output))
		}
		results = append(results, res)
	}
	return results
}

func (d *Driver) translateFile(ctx context.Context, path string, status func(string)) Result {
	start := time.Now()
	res := Result{
		ID:   uuid.NewString(),
		File: path,
		Kind: document.DetectKind(path),
	}
	defer func() { res.Elapsed = time.Since(start) }()

	fail := func(err error) Result {
		res.State = StateFailed
		res.Err = err
		res.Elapsed = time.Since(start)
		return res
	}

	outFolder, err := config.OutputFolder(filepath.Dir(path))
	if err != nil {
		return fail(err)
	}
	outName := d.cfg.TargetLang + "_" + filepath.Base(path)
	outPath := filepath.Join(outFolder, outName)

	switch res.Kind {
	case document.KindText:
		err = d.translateText(ctx, path, outPath, &res, status)
	case document.KindDocx:
		err = d.translateDocx(ctx, path, outPath, &res, status)
	case document.KindPDF:
		err = d.translatePDF(ctx, path, outPath, &res, status)
	default:
		err = fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return fail(err)
	}

	res.State = StateDone
	res.Elapsed = time.Since(start)
	return res
}

func (d *Driver) translateText(ctx context.Context, path, outPath string, res *Result, status func(string)) error {
	doc, err := document.LoadText(path)
	if err != nil {
		return err
	}

	segments := doc.Decompose()
	res.Segments = len(segments)
	res.State = StateDecomposed

	batches := translator.BatchByLength(segments, d.cfg.MaxBatchChars)
	res.Batches = len(batches)
	res.State = StateBatched

	if err := d.translateBatches(ctx, segments, batches, status); err != nil {
		return err
	}
	res.State = StateTranslated

	if err := doc.Reassemble(segments); err != nil {
		return err
	}
	res.State = StateReassembled

	if err := doc.Save(outPath); err != nil {
		return err
	}
	res.State = StateSaved
	res.Output = outPath

	if d.cfg.SaveAsPDF {
		pdfPath := replaceExt(outPath, ".pdf")
		if err := TextToPDF(outPath, pdfPath); err != nil {
			os.Remove(outPath)
			return err
		}
		res.State = StateConverted
		if err := d.watermark(pdfPath, outPath); err != nil {
			return err
		}
		res.State = StateWatermarked
		os.Remove(outPath)
		res.Output = pdfPath
	}
	return nil
}

func (d *Driver) translateDocx(ctx context.Context, path, outPath string, res *Result, status func(string)) error {
	doc, err := document.LoadDocx(path)
	if err != nil {
		return err
	}

	segments := doc.Decompose()
	res.Segments = len(segments)
	res.State = StateDecomposed

	// Batching stays inside a structural group so a table never shares a
	// request with body text.
	var batches []translator.Batch
	for _, g := range doc.Groups() {
		batches = append(batches, translator.BatchByCount(segments[g.Start:g.End], d.cfg.DocxBatchSize)...)
	}
	res.Batches = len(batches)
	res.State = StateBatched

	if err := d.translateBatches(ctx, segments, batches, status); err != nil {
		return err
	}
	res.State = StateTranslated

	if err := doc.Reassemble(segments); err != nil {
		return err
	}
	res.State = StateReassembled

	if err := doc.Save(outPath); err != nil {
		return err
	}
	res.State = StateSaved
	res.Output = outPath

	if d.cfg.SaveAsPDF {
		if d.conv == nil {
			os.Remove(outPath)
			return fmt.Errorf("docx to pdf conversion requires LibreOffice")
		}
		pdfPath := replaceExt(outPath, ".pdf")
		if err := d.conv.Convert(ctx, outPath, pdfPath); err != nil {
			os.Remove(outPath)
			return err
		}
		res.State = StateConverted
		if err := d.watermark(pdfPath, outPath); err != nil {
			return err
		}
		res.State = StateWatermarked
		os.Remove(outPath)
		res.Output = pdfPath
	}
	return nil
}

func (d *Driver) translatePDF(ctx context.Context, path, outPath string, res *Result, status func(string)) error {
	doc, err := document.LoadPDF(path)
	if err != nil {
		return err
	}

	segments := doc.Decompose()
	res.Segments = len(segments)
	res.State = StateDecomposed
	res.Batches = len(segments)
	res.State = StateBatched

	lastPage := 0
	for i := range segments {
		if segments[i].Empty {
			continue
		}
		if segments[i].Page != lastPage {
			lastPage = segments[i].Page
			status(fmt.Sprintf("Translating page %d of %d", lastPage, doc.PageCount()))
		}
		segments[i].Content = d.inv.TranslateText(ctx, segments[i].Content, d.cfg.TargetLang)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	res.State = StateTranslated

	if err := doc.Reassemble(segments); err != nil {
		return err
	}
	res.State = StateReassembled

	if err := doc.Save(outPath); err != nil {
		os.Remove(outPath)
		return err
	}
	res.State = StateSaved
	res.Output = outPath

	if err := d.watermark(outPath, ""); err != nil {
		return err
	}
	res.State = StateWatermarked
	return nil
}

// translateBatches runs batches sequentially, writing translations back into
// segments by key, pausing between requests to stay under rate limits.
func (d *Driver) translateBatches(ctx context.Context, segments []document.Segment, batches []translator.Batch, status func(string)) error {
	for i, b := range batches {
		status(fmt.Sprintf("Translating batch %d of %d", i+1, len(batches)))

		translated := d.inv.TranslateBatch(ctx, b.Texts, d.cfg.TargetLang)
		for j, key := range b.Indices {
			segments[key].Content = translated[j]
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if i < len(batches)-1 {
			if err := d.pause(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Driver) pause(ctx context.Context) error {
	interval := time.Duration(d.cfg.BatchIntervalMS) * time.Millisecond
	if interval <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(interval):
		return nil
	}
}

// watermark stamps pdfPath; on failure the pdf and any leftover intermediate
// are removed so a broken file never looks finished.
func (d *Driver) watermark(pdfPath, intermediate string) error {
	if err := ApplyWatermark(pdfPath, d.cfg.WatermarkText); err != nil {
		os.Remove(pdfPath)
		if intermediate != "" {
			os.Remove(intermediate)
		}
		return err
	}
	return nil
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
