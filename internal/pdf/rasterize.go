// Package pdf turns scanned survey PDFs into one PNG per page.
//
// Page counts come from pdfcpu; rendering shells out to pdftoppm (poppler-utils),
// one process per page, fanned out across a bounded worker pool.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// DefaultDPI is the render resolution when none is configured.
const DefaultDPI = 150

// ErrRendererNotFound is returned when pdftoppm is not on PATH.
var ErrRendererNotFound = errors.New("pdftoppm not found in PATH (install poppler-utils)")

// Request contains the parameters for rasterizing survey PDFs.
type Request struct {
	PDFPaths []string     // PDF file paths (sorted by numeric suffix)
	OutDir   string       // Directory that receives page_NNNN.png files
	DPI      int          // Render resolution (default: DefaultDPI)
	Workers  int          // Concurrent pdftoppm processes (default: NumCPU)
	Logger   *slog.Logger // Optional logger for progress updates
}

// Document is a rasterized set of pages, numbered from 1 across all sources.
type Document struct {
	Title     string     `json:"title" yaml:"title"`
	Dir       string     `json:"dir" yaml:"dir"`
	PageCount int        `json:"page_count" yaml:"page_count"`
	DPI       int        `json:"dpi" yaml:"dpi"`
	Sources   SourceList `json:"sources" yaml:"sources"`
}

// ImagePath returns the rendered image path for a page.
func (d *Document) ImagePath(pageNum int) string {
	return filepath.Join(d.Dir, fmt.Sprintf("page_%04d.png", pageNum))
}

// ReadPage returns the PNG bytes for a page.
func (d *Document) ReadPage(pageNum int) ([]byte, error) {
	if pageNum < 1 || pageNum > d.PageCount {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", pageNum, d.PageCount)
	}
	data, err := os.ReadFile(d.ImagePath(pageNum))
	if err != nil {
		return nil, fmt.Errorf("failed to read page image: %w", err)
	}
	return data, nil
}

// Rasterize renders every page of the given PDFs into req.OutDir.
// A document with zero pages is not an error.
func Rasterize(ctx context.Context, req Request) (*Document, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}
	if len(req.PDFPaths) == 0 {
		return nil, fmt.Errorf("no PDF paths provided")
	}
	if req.OutDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	for _, p := range req.PDFPaths {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("PDF not found: %s", p)
		}
	}
	dpi := req.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	workers := req.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	sources, err := LoadSources(req.PDFPaths)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Title:     DeriveTitle(sources[0].Path),
		Dir:       req.OutDir,
		PageCount: sources.PageCount(),
		DPI:       dpi,
		Sources:   sources,
	}
	log.Info("rasterizing PDF", "title", doc.Title, "pdfs", len(sources), "pages", doc.PageCount, "dpi", dpi)

	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if doc.PageCount == 0 {
		return doc, nil
	}
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, ErrRendererNotFound
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for page := 1; page <= doc.PageCount; page++ {
		pdfPath, pageInPDF := sources.FindPDFForPage(page)
		g.Go(func() error {
			if err := renderPage(gctx, pdfPath, pageInPDF, dpi, doc.ImagePath(page)); err != nil {
				return fmt.Errorf("failed to render page %d: %w", page, err)
			}
			log.Debug("rendered page", "page", page, "pdf", filepath.Base(pdfPath))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("rasterize complete", "pages", doc.PageCount, "dir", doc.Dir)
	return doc, nil
}

// renderPage renders a single page from a PDF using pdftoppm.
func renderPage(ctx context.Context, pdfPath string, pageInPDF, dpi int, dstPath string) error {
	tmpDir, err := os.MkdirTemp("", "surveytab-page-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")

	// -singlefile: don't add page number suffix
	pageStr := strconv.Itoa(pageInPDF)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", strconv.Itoa(dpi),
		"-singlefile",
		pdfPath,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	// pdftoppm with -singlefile creates: <prefix>.png
	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	if err := os.WriteFile(dstPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write page image: %w", err)
	}
	return nil
}
