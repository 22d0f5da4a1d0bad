package pdfparse

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"paperbridge/internal/domain"
	"paperbridge/internal/port"
)

// Text quality scores recorded per page. Native PDF text is trusted fully;
// OCR transcriptions are marked down so review tooling can surface them.
const (
	qualityNative = 1.0
	qualityOCR    = 0.8
)

// ParsedPage is one page of extracted text. ImagePNG is non-nil only when the
// OCR fallback ran, so the caller can persist the page image alongside.
type ParsedPage struct {
	Number       int
	Text         string
	QualityScore float64
	ImagePNG     []byte
}

// Parser turns a PDF into per-page text. Pages whose native text layer is
// shorter than lowTextThreshold runes are re-read through the vision OCR
// fallback when one is configured.
type Parser struct {
	maxPages         int
	lowTextThreshold int
	vision           port.VisionTexter
}

// NewParser creates a Parser. vision may be nil, which disables the OCR
// fallback entirely.
func NewParser(maxPages, lowTextThreshold int, vision port.VisionTexter) *Parser {
	return &Parser{
		maxPages:         maxPages,
		lowTextThreshold: lowTextThreshold,
		vision:           vision,
	}
}

// Parse extracts per-page text from raw PDF bytes. The input is optimized
// through pdfcpu first, which also acts as structural validation for malformed
// uploads.
func (p *Parser) Parse(ctx context.Context, pdfBytes []byte) ([]ParsedPage, error) {
	optimized, err := p.optimize(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("pdfparse.Parse: %w: %v", domain.ErrUnsupportedFile, err)
	}

	reader := bytes.NewReader(optimized)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, fmt.Errorf("pdfparse.Parse: %w: %v", domain.ErrUnsupportedFile, err)
	}

	numPages := pdfReader.NumPage()
	if p.maxPages > 0 && numPages > p.maxPages {
		return nil, fmt.Errorf("pdfparse.Parse: %d pages: %w", numPages, domain.ErrTooManyPages)
	}

	pages := make([]ParsedPage, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := pdfReader.Page(i)
		text := ""
		if !page.V.IsNull() {
			text, err = page.GetPlainText(nil)
			if err != nil {
				log.Printf("pdfparse.Parse: page %d text extraction failed: %v", i, err)
				text = ""
			}
		}

		parsed := ParsedPage{Number: i, Text: text, QualityScore: qualityNative}
		if p.vision != nil && len(strings.TrimSpace(text)) < p.lowTextThreshold {
			ocr, img, err := p.ocrPage(ctx, optimized, i)
			if err != nil {
				// Keep the thin native text rather than failing the whole parse.
				log.Printf("pdfparse.Parse: OCR fallback failed for page %d: %v", i, err)
			} else {
				parsed.Text = ocr
				parsed.QualityScore = qualityOCR
				parsed.ImagePNG = img
			}
		}
		pages = append(pages, parsed)
	}
	return pages, nil
}

// optimize rewrites the PDF through pdfcpu with relaxed validation. pdfcpu's
// api surface is file based, so this round-trips through a temp dir.
func (p *Parser) optimize(pdfBytes []byte) ([]byte, error) {
	tempDir, err := os.MkdirTemp("", "paperbridge-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	source := filepath.Join(tempDir, "source.pdf")
	optimized := filepath.Join(tempDir, "optimized.pdf")
	if err := os.WriteFile(source, pdfBytes, 0o600); err != nil {
		return nil, fmt.Errorf("writing temp pdf: %w", err)
	}

	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	if err := api.OptimizeFile(source, optimized, cfg); err != nil {
		return nil, fmt.Errorf("optimizing pdf: %w", err)
	}
	return os.ReadFile(optimized)
}

// ocrPage extracts the page's embedded image via pdfcpu and transcribes it.
// Low-text pages are almost always full-page scans, so the largest extracted
// image is the page itself.
func (p *Parser) ocrPage(ctx context.Context, pdfBytes []byte, pageNum int) (string, []byte, error) {
	img, err := p.extractPageImage(pdfBytes, pageNum)
	if err != nil {
		return "", nil, err
	}

	text, err := p.vision.ExtractText(ctx, img)
	if err != nil {
		return "", nil, fmt.Errorf("vision transcription: %w", err)
	}
	return text, img, nil
}

func (p *Parser) extractPageImage(pdfBytes []byte, pageNum int) ([]byte, error) {
	tempDir, err := os.MkdirTemp("", "paperbridge-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	source := filepath.Join(tempDir, "source.pdf")
	if err := os.WriteFile(source, pdfBytes, 0o600); err != nil {
		return nil, fmt.Errorf("writing temp pdf: %w", err)
	}

	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	outDir := filepath.Join(tempDir, "images")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating image dir: %w", err)
	}
	if err := api.ExtractImagesFile(source, outDir, []string{strconv.Itoa(pageNum)}, cfg); err != nil {
		return nil, fmt.Errorf("extracting page %d images: %w", pageNum, err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("reading image dir: %w", err)
	}

	// Pick the largest extracted image; scans embed one image per page but
	// letterheads occasionally add small logos.
	var bestPath string
	var bestSize int64
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			bestSize = info.Size()
			bestPath = filepath.Join(outDir, entry.Name())
		}
	}
	if bestPath == "" {
		return nil, fmt.Errorf("page %d has no embedded image to transcribe", pageNum)
	}
	return os.ReadFile(bestPath)
}
