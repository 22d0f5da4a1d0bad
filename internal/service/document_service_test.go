package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paperbridge/internal/domain"
	"paperbridge/internal/pdfparse"
	"paperbridge/internal/port"
	"paperbridge/internal/service"
	"paperbridge/mocks"
)

func setupDocumentService() (*mocks.MockDocumentRepo, *mocks.MockPageRepo, *mocks.MockObjectStorage, *mocks.MockPageParser, service.DocumentService) {
	docRepo := new(mocks.MockDocumentRepo)
	pageRepo := new(mocks.MockPageRepo)
	storage := new(mocks.MockObjectStorage)
	parser := new(mocks.MockPageParser)
	svc := service.NewDocumentService(docRepo, pageRepo, storage, parser, "test-bucket", 50)
	return docRepo, pageRepo, storage, parser, svc
}

func TestUpload_RejectsNonPDF(t *testing.T) {
	_, _, _, _, svc := setupDocumentService()

	_, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		Filename: "report.docx",
		Data:     []byte("not a pdf"),
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFile)
}

func TestUpload_RejectsOversizedFile(t *testing.T) {
	_, _, _, _, svc := setupDocumentService()

	_, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		Filename: "big.pdf",
		Data:     make([]byte, 51<<20),
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestUpload_DuplicateChecksumReturnsExisting(t *testing.T) {
	docRepo, _, storage, parser, svc := setupDocumentService()

	data := []byte("%PDF-1.7 fake content")
	sum := sha256.Sum256(data)
	existing := &domain.Document{
		ID:             uuid.New(),
		Filename:       "invoice.pdf",
		ChecksumSHA256: hex.EncodeToString(sum[:]),
		Version:        1,
	}
	docRepo.On("GetByChecksum", mock.Anything, existing.ChecksumSHA256).Return(existing, nil)

	out, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		Filename: "renamed-invoice.pdf",
		Data:     data,
	})

	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.Equal(t, existing.ID, out.Document.ID)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	parser.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestUpload_NewDocument(t *testing.T) {
	docRepo, pageRepo, storage, parser, svc := setupDocumentService()

	data := []byte("%PDF-1.7 new content")
	docRepo.On("GetByChecksum", mock.Anything, mock.Anything).Return(nil, domain.ErrDocumentNotFound)
	docRepo.On("NextVersion", mock.Anything, "fresh.pdf").Return(3, nil)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "test-bucket" && in.ContentType == "application/pdf"
	})).Return(&port.UploadOutput{}, nil)
	parser.On("Parse", mock.Anything, data).Return([]pdfparse.ParsedPage{
		{Number: 1, Text: "page one", QualityScore: 1.0},
		{Number: 2, Text: "page two", QualityScore: 1.0},
	}, nil)
	docRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
		return d.Version == 3 && d.TotalPages == 2 && d.Filename == "fresh.pdf"
	})).Return(nil)
	pageRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.DocumentPage")).Return(nil).Times(2)

	out, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		Filename: "fresh.pdf",
		Data:     data,
	})

	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, 3, out.Document.Version)
	assert.Equal(t, fmt.Sprintf("%s/original.pdf", out.Document.ID), out.Document.StorageKey)
	pageRepo.AssertExpectations(t)
}

func TestUpload_ParseFailureCleansUpBlob(t *testing.T) {
	docRepo, _, storage, parser, svc := setupDocumentService()

	data := []byte("%PDF-1.7 corrupt")
	docRepo.On("GetByChecksum", mock.Anything, mock.Anything).Return(nil, domain.ErrDocumentNotFound)
	docRepo.On("NextVersion", mock.Anything, mock.Anything).Return(1, nil)
	storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	parser.On("Parse", mock.Anything, data).Return(nil, domain.ErrTooManyPages)
	storage.On("Delete", mock.Anything, "test-bucket", mock.Anything).Return(nil)

	_, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		Filename: "corrupt.pdf",
		Data:     data,
	})

	assert.ErrorIs(t, err, domain.ErrTooManyPages)
	storage.AssertCalled(t, "Delete", mock.Anything, "test-bucket", mock.Anything)
	docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpload_PageImageStoredForOCRPages(t *testing.T) {
	docRepo, pageRepo, storage, parser, svc := setupDocumentService()

	data := []byte("%PDF-1.7 scanned")
	img := []byte{0x89, 'P', 'N', 'G'}
	docRepo.On("GetByChecksum", mock.Anything, mock.Anything).Return(nil, domain.ErrDocumentNotFound)
	docRepo.On("NextVersion", mock.Anything, mock.Anything).Return(1, nil)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.ContentType == "application/pdf"
	})).Return(&port.UploadOutput{}, nil)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.ContentType == "image/png"
	})).Return(&port.UploadOutput{}, nil)
	parser.On("Parse", mock.Anything, data).Return([]pdfparse.ParsedPage{
		{Number: 1, Text: "ocr text", QualityScore: 0.8, ImagePNG: img},
	}, nil)
	docRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	pageRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.DocumentPage) bool {
		return p.PageImageKey != nil && p.TextQualityScore == 0.8
	})).Return(nil)

	out, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		Filename: "scan.pdf",
		Data:     data,
	})

	require.NoError(t, err)
	assert.True(t, out.Created)
	pageRepo.AssertExpectations(t)
}

func TestDownloadOriginal(t *testing.T) {
	docRepo, _, storage, _, svc := setupDocumentService()

	doc := &domain.Document{ID: uuid.New(), Filename: "invoice.pdf", StorageKey: "abc/original.pdf"}
	blob := []byte("%PDF-1.7 stored")
	docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	storage.On("Download", mock.Anything, "test-bucket", "abc/original.pdf").Return(blob, nil)

	got, data, err := svc.DownloadOriginal(context.Background(), doc.ID)

	require.NoError(t, err)
	assert.Equal(t, doc, got)
	assert.Equal(t, blob, data)
}

func TestDelete_RemovesBlobAndRow(t *testing.T) {
	docRepo, _, storage, _, svc := setupDocumentService()

	doc := &domain.Document{ID: uuid.New(), StorageKey: "abc/original.pdf"}
	docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	storage.On("Delete", mock.Anything, "test-bucket", "abc/original.pdf").Return(nil)
	docRepo.On("Delete", mock.Anything, doc.ID).Return(nil)

	err := svc.Delete(context.Background(), doc.ID)

	require.NoError(t, err)
	storage.AssertExpectations(t)
	docRepo.AssertExpectations(t)
}
