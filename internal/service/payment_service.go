package service

import (
	"context"
	"fmt"
	"time"

	"tilerp/internal/dto"
	"tilerp/internal/model"
	"tilerp/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PaymentService runs the pending → approved | rejected workflow.
type PaymentService interface {
	Create(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentRequestResponse, error)
	ListPending(ctx context.Context) ([]dto.PaymentRequestResponse, error)
	// UpdateStatus settles a pending request exactly once. The request row is
	// locked for the transaction, so a concurrent second call observes the
	// new status and fails with ErrConflict.
	UpdateStatus(ctx context.Context, req dto.UpdatePaymentStatusRequest) (*dto.PaymentStatusResponse, error)
}

type paymentService struct {
	repo       repository.PaymentRepository
	quotations repository.QuotationRepository
}

func NewPaymentService(repo repository.PaymentRepository, quotations repository.QuotationRepository) PaymentService {
	return &paymentService{repo: repo, quotations: quotations}
}

func (s *paymentService) Create(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentRequestResponse, error) {
	q, err := s.quotations.FindByID(ctx, req.QuotationID)
	if err != nil {
		return nil, notFound(err, "quotation", req.QuotationID)
	}
	p := model.PaymentRequest{
		QuotationID: req.QuotationID,
		Amount:      req.Amount,
		PaymentType: req.PaymentType,
		Remark:      req.Remark,
		Status:      model.PaymentPending,
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}

	log.Info().Uint("payment_request_id", p.ID).Uint("quotation_id", p.QuotationID).
		Str("amount", p.Amount.String()).Msg("payment request created")
	return &dto.PaymentRequestResponse{
		ID:          p.ID,
		QuotationID: p.QuotationID,
		ClientName:  q.ClientName,
		Amount:      p.Amount,
		PaymentType: p.PaymentType,
		Remark:      p.Remark,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *paymentService) ListPending(ctx context.Context) ([]dto.PaymentRequestResponse, error) {
	rows, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentRequestResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PaymentRequestResponse{
			ID:          r.ID,
			QuotationID: r.QuotationID,
			ClientName:  r.ClientName,
			Amount:      r.Amount,
			PaymentType: r.PaymentType,
			Remark:      r.Remark,
			Status:      r.Status,
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func (s *paymentService) UpdateStatus(ctx context.Context, req dto.UpdatePaymentStatusRequest) (*dto.PaymentStatusResponse, error) {
	if req.Status != model.PaymentApproved && req.Status != model.PaymentRejected {
		return nil, fmt.Errorf("status %q: %w", req.Status, ErrValidation)
	}

	resp := &dto.PaymentStatusResponse{RequestID: req.RequestID, Status: req.Status}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdateTx(tx, req.RequestID)
		if err != nil {
			return notFound(err, "payment request", req.RequestID)
		}
		if p.Status != model.PaymentPending {
			return fmt.Errorf("request already processed: %w", ErrConflict)
		}
		resp.QuotationID = p.QuotationID

		if req.Status == model.PaymentApproved {
			q, err := s.quotations.FindByIDForUpdateTx(tx, p.QuotationID)
			if err != nil {
				return notFound(err, "quotation", p.QuotationID)
			}
			paid := q.PaidAmount.Add(p.Amount)
			due := q.GrandTotal.Sub(paid)
			if err := s.quotations.UpdateBalanceTx(tx, q.ID, paid, due); err != nil {
				return err
			}
			resp.PaidAmount = paid
			resp.DueAmount = due
		}
		return s.repo.UpdateStatusTx(tx, p.ID, req.Status)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("payment_request_id", req.RequestID).Str("status", req.Status).
		Uint("quotation_id", resp.QuotationID).Msg("payment request processed")
	return resp, nil
}
