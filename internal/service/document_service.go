package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"paperbridge/internal/domain"
	"paperbridge/internal/pdfparse"
	"paperbridge/internal/port"
)

// UploadDocumentInput is the DTO for uploading a source PDF.
type UploadDocumentInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadDocumentOutput reports the stored document and whether a new row was
// created. Re-uploading byte-identical content returns the existing document.
type UploadDocumentOutput struct {
	Document *domain.Document
	Created  bool
}

// PageParser turns raw PDF bytes into per-page text.
type PageParser interface {
	Parse(ctx context.Context, pdfBytes []byte) ([]pdfparse.ParsedPage, error)
}

// DocumentService defines the document ingest and lifecycle contract.
type DocumentService interface {
	Upload(ctx context.Context, input *UploadDocumentInput) (*UploadDocumentOutput, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	ListPages(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentPage, error)
	// DownloadOriginal returns the stored source PDF bytes.
	DownloadOriginal(ctx context.Context, id uuid.UUID) (*domain.Document, []byte, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	docRepo       port.DocumentRepository
	pageRepo      port.PageRepository
	storage       port.ObjectStorage
	parser        PageParser
	bucket        string
	maxFileSizeMB int64
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	pageRepo port.PageRepository,
	storage port.ObjectStorage,
	parser PageParser,
	bucket string,
	maxFileSizeMB int64,
) DocumentService {
	return &documentService{
		docRepo:       docRepo,
		pageRepo:      pageRepo,
		storage:       storage,
		parser:        parser,
		bucket:        bucket,
		maxFileSizeMB: maxFileSizeMB,
	}
}

func (s *documentService) Upload(ctx context.Context, input *UploadDocumentInput) (*UploadDocumentOutput, error) {
	if !strings.EqualFold(filepath.Ext(input.Filename), ".pdf") {
		return nil, domain.ErrUnsupportedFile
	}
	if s.maxFileSizeMB > 0 && int64(len(input.Data)) > s.maxFileSizeMB<<20 {
		return nil, domain.ErrFileTooLarge
	}

	sum := sha256.Sum256(input.Data)
	checksum := hex.EncodeToString(sum[:])

	// Byte-identical re-uploads short-circuit to the already stored document,
	// regardless of the filename they arrive under.
	existing, err := s.docRepo.GetByChecksum(ctx, checksum)
	if err == nil {
		return &UploadDocumentOutput{Document: existing, Created: false}, nil
	}
	if err != domain.ErrDocumentNotFound {
		return nil, fmt.Errorf("documentService.Upload: %w", err)
	}

	version, err := s.docRepo.NextVersion(ctx, input.Filename)
	if err != nil {
		return nil, fmt.Errorf("documentService.Upload: %w", err)
	}

	docID := uuid.New()
	doc := &domain.Document{
		ID:             docID,
		Filename:       input.Filename,
		StorageKey:     fmt.Sprintf("%s/original.pdf", docID),
		ChecksumSHA256: checksum,
		Version:        version,
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         doc.StorageKey,
		Body:        bytes.NewReader(input.Data),
		ContentType: contentType,
		Size:        int64(len(input.Data)),
	}); err != nil {
		return nil, fmt.Errorf("documentService.Upload: %w: %v", domain.ErrUploadFailed, err)
	}

	pages, err := s.parser.Parse(ctx, input.Data)
	if err != nil {
		// The original is already in object storage; clean it up so a failed
		// ingest leaves no orphaned blob.
		if delErr := s.storage.Delete(ctx, s.bucket, doc.StorageKey); delErr != nil {
			log.Printf("documentService.Upload: cleanup of %s failed: %v", doc.StorageKey, delErr)
		}
		return nil, err
	}
	doc.TotalPages = len(pages)

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("documentService.Upload: %w", err)
	}

	for _, p := range pages {
		page := &domain.DocumentPage{
			ID:               uuid.New(),
			DocumentID:       doc.ID,
			PageNumber:       p.Number,
			Text:             p.Text,
			TextQualityScore: p.QualityScore,
		}
		if p.ImagePNG != nil {
			key := fmt.Sprintf("%s/pages/page_%d.png", doc.ID, p.Number)
			if _, err := s.storage.Upload(ctx, port.UploadInput{
				Bucket:      s.bucket,
				Key:         key,
				Body:        bytes.NewReader(p.ImagePNG),
				ContentType: "image/png",
				Size:        int64(len(p.ImagePNG)),
			}); err != nil {
				log.Printf("documentService.Upload: storing page image %s failed: %v", key, err)
			} else {
				page.PageImageKey = &key
			}
		}
		if err := s.pageRepo.Create(ctx, page); err != nil {
			return nil, fmt.Errorf("documentService.Upload: %w", err)
		}
	}

	return &UploadDocumentOutput{Document: doc, Created: true}, nil
}

func (s *documentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

func (s *documentService) List(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.List(ctx, offset, limit)
}

func (s *documentService) ListPages(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentPage, error) {
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.pageRepo.ListByDocument(ctx, documentID)
}

func (s *documentService) DownloadOriginal(ctx context.Context, id uuid.UUID) (*domain.Document, []byte, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.storage.Download(ctx, s.bucket, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("documentService.DownloadOriginal: %w", err)
	}
	return doc, data, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// DB rows cascade from the document; the blob is best-effort.
	if err := s.storage.Delete(ctx, s.bucket, doc.StorageKey); err != nil {
		log.Printf("documentService.Delete: removing %s from storage failed: %v", doc.StorageKey, err)
	}
	return s.docRepo.Delete(ctx, id)
}
