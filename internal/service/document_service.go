package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"tilerp/internal/dto"

	"github.com/rs/zerolog/log"
)

// Print modes for the quotation PDF code column.
const (
	PrintModeCode  = "code"
	PrintModeQName = "qname"
)

// Renderer turns snapshots into printable or exportable documents.
type Renderer interface {
	QuotationPDF(buf *bytes.Buffer, q *dto.QuotationFull, mode string) error
	ChallanPDF(buf *bytes.Buffer, c *dto.ChallanResponse) error
	PurchasesXLSX(buf *bytes.Buffer, purchases []dto.PurchaseResponse) error
}

// EmailQueue hands quotation e-mails to the async worker.
type EmailQueue interface {
	EnqueueQuotationEmail(ctx context.Context, quotationID uint, to string) error
}

// Document is a rendered file ready to be streamed.
type Document struct {
	FileName    string
	ContentType string
	Content     []byte
}

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type DocumentService interface {
	QuotationPDF(ctx context.Context, quotationID uint, mode string) (*Document, error)
	ChallanPDF(ctx context.Context, challanID uint) (*Document, error)
	PurchasesXLSX(ctx context.Context, filter dto.PurchaseFilter) (*Document, error)
	// EmailQuotation queues the quotation PDF for delivery. An empty to falls
	// back to the e-mail stored on the quotation.
	EmailQuotation(ctx context.Context, quotationID uint, to string) error
}

type documentService struct {
	quotations QuotationService
	challans   DispatchService
	purchases  PurchaseService
	renderer   Renderer
	queue      EmailQueue
}

func NewDocumentService(
	quotations QuotationService,
	challans DispatchService,
	purchases PurchaseService,
	renderer Renderer,
	queue EmailQueue,
) DocumentService {
	return &documentService{
		quotations: quotations,
		challans:   challans,
		purchases:  purchases,
		renderer:   renderer,
		queue:      queue,
	}
}

func (s *documentService) QuotationPDF(ctx context.Context, quotationID uint, mode string) (*Document, error) {
	if mode != PrintModeQName {
		mode = PrintModeCode
	}
	q, err := s.quotations.Get(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.renderer.QuotationPDF(&buf, q, mode); err != nil {
		return nil, fmt.Errorf("render quotation %d: %w", quotationID, err)
	}
	return &Document{
		FileName:    fmt.Sprintf("quotation_%d.pdf", quotationID),
		ContentType: contentTypePDF,
		Content:     buf.Bytes(),
	}, nil
}

func (s *documentService) ChallanPDF(ctx context.Context, challanID uint) (*Document, error) {
	c, err := s.challans.Get(ctx, challanID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.renderer.ChallanPDF(&buf, c); err != nil {
		return nil, fmt.Errorf("render challan %d: %w", challanID, err)
	}
	return &Document{
		FileName:    fmt.Sprintf("delivery_challan_%d.pdf", challanID),
		ContentType: contentTypePDF,
		Content:     buf.Bytes(),
	}, nil
}

// exportPageSize is the page size used to walk every purchase for an export.
const exportPageSize = 500

// PurchasesXLSX exports every purchase matching the filter; its page and
// limit are ignored.
func (s *documentService) PurchasesXLSX(ctx context.Context, filter dto.PurchaseFilter) (*Document, error) {
	var all []dto.PurchaseResponse
	filter.Limit = exportPageSize
	for filter.Page = 1; ; filter.Page++ {
		list, err := s.purchases.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, list.Data...)
		if len(list.Data) < filter.Limit || int64(len(all)) >= list.Total {
			break
		}
	}
	var buf bytes.Buffer
	if err := s.renderer.PurchasesXLSX(&buf, all); err != nil {
		return nil, fmt.Errorf("render purchases: %w", err)
	}
	return &Document{
		FileName:    "purchases_" + time.Now().Format("20060102") + ".xlsx",
		ContentType: contentTypeXLSX,
		Content:     buf.Bytes(),
	}, nil
}

func (s *documentService) EmailQuotation(ctx context.Context, quotationID uint, to string) error {
	q, err := s.quotations.Get(ctx, quotationID)
	if err != nil {
		return err
	}
	if to == "" {
		to = q.Email
	}
	if to == "" {
		return fmt.Errorf("quotation %d has no e-mail address: %w", quotationID, ErrValidation)
	}
	if err := s.queue.EnqueueQuotationEmail(ctx, quotationID, to); err != nil {
		return err
	}
	log.Info().Uint("quotation_id", quotationID).Str("to", to).Msg("quotation e-mail queued")
	return nil
}
