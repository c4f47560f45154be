package services

import (
	"bytes"
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/resilience"
	"fintrack/internal/result"
	"fintrack/internal/storage"
)

var (
	jpegMagic = []byte{0xff, 0xd8, 0xff}
	pngMagic  = []byte{0x89, 0x50, 0x4e, 0x47}
)

// DetectImageFormat sniffs the image format from the payload's magic bytes.
func DetectImageFormat(data []byte) core.ImageFormatType {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return core.ImageFormatJPEG
	case bytes.HasPrefix(data, pngMagic):
		return core.ImageFormatPNG
	default:
		return core.ImageFormatUndefined
	}
}

// ReceiptImageService attaches receipt images to transactions. One image per
// transaction; payloads are capped at maxBytes.
type ReceiptImageService struct {
	images       storage.ReceiptImageRepository
	transactions storage.TransactionRepository
	exec         *resilience.Executor
	maxBytes     int64
	logger       *log.Logger
}

func NewReceiptImageService(
	images storage.ReceiptImageRepository,
	transactions storage.TransactionRepository,
	exec *resilience.Executor,
	maxBytes int64,
	logger *log.Logger,
) *ReceiptImageService {
	return &ReceiptImageService{
		images:       images,
		transactions: transactions,
		exec:         exec,
		maxBytes:     maxBytes,
		logger:       logger.WithComponent(log.ComponentService),
	}
}

// Attach stores an image for the transaction identified by guid and links it.
func (s *ReceiptImageService) Attach(ctx context.Context, guid string, data []byte) result.ServiceResult[core.ReceiptImage] {
	if int64(len(data)) > s.maxBytes {
		return result.Business[core.ReceiptImage](result.CodePayloadTooLarge,
			fmt.Sprintf("receipt image exceeds the %d byte limit", s.maxBytes))
	}
	format := DetectImageFormat(data)

	tr, err := resilience.Execute(ctx, s.exec, "transaction.find", func(ctx context.Context) (*core.Transaction, error) {
		return s.transactions.FindByGUID(ctx, guid)
	})
	if err != nil {
		return result.Classify[core.ReceiptImage](err)
	}

	image := core.ReceiptImage{
		TransactionID: tr.TransactionID,
		Image:         data,
		Format:        format,
		ActiveStatus:  true,
	}
	if err := image.Validate(); err != nil {
		return result.Classify[core.ReceiptImage](err)
	}

	created, err := resilience.Execute(ctx, s.exec, "receipt_image.insert", func(ctx context.Context) (core.ReceiptImage, error) {
		return s.images.InsertAndLink(ctx, image)
	})
	if err != nil {
		return result.Classify[core.ReceiptImage](err)
	}

	s.logger.InfoContext(ctx, "receipt image attached",
		log.FieldOperation, log.OpCreate,
		log.FieldGUID, guid,
		"bytes", len(data),
		"format", string(format))
	return result.Success(created)
}

func (s *ReceiptImageService) Get(ctx context.Context, id int64) result.ServiceResult[core.ReceiptImage] {
	image, err := resilience.Execute(ctx, s.exec, "receipt_image.find", func(ctx context.Context) (*core.ReceiptImage, error) {
		return s.images.FindByID(ctx, id)
	})
	if err != nil {
		return result.Classify[core.ReceiptImage](err)
	}
	return result.Success(*image)
}

// GetByTransaction returns the receipt attached to the transaction identified
// by guid.
func (s *ReceiptImageService) GetByTransaction(ctx context.Context, guid string) result.ServiceResult[core.ReceiptImage] {
	tr, err := resilience.Execute(ctx, s.exec, "transaction.find", func(ctx context.Context) (*core.Transaction, error) {
		return s.transactions.FindByGUID(ctx, guid)
	})
	if err != nil {
		return result.Classify[core.ReceiptImage](err)
	}

	image, err := resilience.Execute(ctx, s.exec, "receipt_image.find_by_transaction", func(ctx context.Context) (*core.ReceiptImage, error) {
		return s.images.FindByTransactionID(ctx, tr.TransactionID)
	})
	if err != nil {
		return result.Classify[core.ReceiptImage](err)
	}
	return result.Success(*image)
}

// Delete removes the image and clears the transaction's link to it.
func (s *ReceiptImageService) Delete(ctx context.Context, id int64) result.ServiceResult[struct{}] {
	_, err := resilience.Execute(ctx, s.exec, "receipt_image.delete", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.images.DeleteAndUnlink(ctx, id)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}
	return result.Success(struct{}{})
}
