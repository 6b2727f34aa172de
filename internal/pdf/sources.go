package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// SourceInfo describes one input PDF and its page range in the combined document.
type SourceInfo struct {
	Path      string `json:"path" yaml:"path"`
	StartPage int    `json:"start_page" yaml:"start_page"` // First page number (1-indexed, cumulative)
	EndPage   int    `json:"end_page" yaml:"end_page"`     // Last page number (inclusive)
}

// SourceList is an ordered list of input PDFs.
type SourceList []SourceInfo

// FindPDFForPage returns the PDF path and page number within that PDF for a
// document page number. Returns empty string and 0 if page is out of range.
func (s SourceList) FindPDFForPage(pageNum int) (pdfPath string, pageInPDF int) {
	for _, src := range s {
		if pageNum >= src.StartPage && pageNum <= src.EndPage {
			return src.Path, pageNum - src.StartPage + 1
		}
	}
	return "", 0
}

// PageCount returns the total pages across all sources.
func (s SourceList) PageCount() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].EndPage
}

// PageCount reads the number of pages in a PDF.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count for %s: %w", path, err)
	}
	return n, nil
}

// LoadSources sorts paths by numeric suffix and assigns cumulative page ranges.
// A PDF with zero pages is kept but contributes no pages.
func LoadSources(paths []string) (SourceList, error) {
	var sources SourceList
	next := 1
	for _, p := range sortPDFsByNumber(paths) {
		n, err := PageCount(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, SourceInfo{
			Path:      p,
			StartPage: next,
			EndPage:   next + n - 1,
		})
		next += n
	}
	return sources, nil
}

var numberSuffix = regexp.MustCompile(`-(\d+)\.pdf$`)

// sortPDFsByNumber sorts PDF paths by their numeric suffix.
// e.g., ["batch-2.pdf", "batch-1.pdf", "batch-10.pdf"] -> ["batch-1.pdf", "batch-2.pdf", "batch-10.pdf"]
func sortPDFsByNumber(paths []string) []string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)

	sort.SliceStable(sorted, func(i, j int) bool {
		mi := numberSuffix.FindStringSubmatch(strings.ToLower(sorted[i]))
		mj := numberSuffix.FindStringSubmatch(strings.ToLower(sorted[j]))

		if len(mi) > 1 && len(mj) > 1 {
			ni, _ := strconv.Atoi(mi[1])
			nj, _ := strconv.Atoi(mj[1])
			if ni != nj {
				return ni < nj
			}
			return sorted[i] < sorted[j]
		}

		// Files without numbers come first
		if len(mi) > 1 {
			return false
		}
		if len(mj) > 1 {
			return true
		}

		return sorted[i] < sorted[j]
	})

	return sorted
}

// DeriveTitle extracts a title from a PDF filename.
// e.g., "spring-survey.pdf" -> "spring-survey"
// e.g., "spring-survey-1.pdf" -> "spring-survey"
func DeriveTitle(pdfPath string) string {
	base := filepath.Base(pdfPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return regexp.MustCompile(`-\d+$`).ReplaceAllString(name, "")
}
