package worker

// email_worker.go
// Processes quotation_email jobs from QueueEmail: renders the quotation PDF
// into the storage directory and mails it to the client.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tilerp/internal/dto"

	"github.com/rs/zerolog/log"
)

// QuotationEmailPayload is the job payload sent to QueueEmail.
type QuotationEmailPayload struct {
	QuotationID uint   `json:"quotation_id"`
	To          string `json:"to"`
}

// QuotationSource loads the quotation snapshot to print.
type QuotationSource interface {
	Get(ctx context.Context, id uint) (*dto.QuotationFull, error)
}

// QuotationRenderer renders a quotation snapshot to PDF.
type QuotationRenderer interface {
	QuotationPDF(buf *bytes.Buffer, q *dto.QuotationFull, mode string) error
}

// Mailer delivers a message with an optional PDF attachment.
type Mailer interface {
	Configured() bool
	SendQuotation(to, subject, body, pdfPath string) error
}

type EmailWorker struct {
	quotations  QuotationSource
	renderer    QuotationRenderer
	mailer      Mailer
	storagePath string
	companyName string
}

func NewEmailWorker(quotations QuotationSource, renderer QuotationRenderer, mailer Mailer, storagePath, companyName string) *EmailWorker {
	return &EmailWorker{
		quotations:  quotations,
		renderer:    renderer,
		mailer:      mailer,
		storagePath: storagePath,
		companyName: companyName,
	}
}

// Process renders and sends one quotation. Malformed payloads and a missing
// SMTP setup are logged and dropped; everything else is returned for retry.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload QuotationEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.To == "" {
		log.Warn().Uint("quotation_id", payload.QuotationID).Msg("email_worker: empty recipient, skipping")
		return nil
	}
	if !w.mailer.Configured() {
		log.Warn().Uint("quotation_id", payload.QuotationID).Msg("email_worker: SMTP not configured, skipping")
		return nil
	}

	q, err := w.quotations.Get(ctx, payload.QuotationID)
	if err != nil {
		return fmt.Errorf("load quotation %d: %w", payload.QuotationID, err)
	}

	var buf bytes.Buffer
	if err := w.renderer.QuotationPDF(&buf, q, "qname"); err != nil {
		return err
	}
	if err := os.MkdirAll(w.storagePath, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	pdfPath := filepath.Join(w.storagePath, fmt.Sprintf("quotation_%d.pdf", q.ID))
	if err := os.WriteFile(pdfPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", pdfPath, err)
	}

	subject := fmt.Sprintf("Quotation #%d from %s", q.ID, w.companyName)
	body := fmt.Sprintf("Dear %s,\n\nPlease find attached quotation #%d for a total of %s.\n\nRegards,\n%s\n",
		q.ClientName, q.ID, q.GrandTotal.StringFixed(2), w.companyName)
	if err := w.mailer.SendQuotation(payload.To, subject, body, pdfPath); err != nil {
		return fmt.Errorf("send quotation %d: %w", q.ID, err)
	}

	log.Info().Uint("quotation_id", q.ID).Str("to", payload.To).Msg("email_worker: quotation sent")
	return nil
}
