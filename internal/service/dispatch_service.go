package service

import (
	"context"
	"fmt"
	"time"

	"tilerp/internal/dto"
	"tilerp/internal/model"
	"tilerp/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DispatchService generates and reverses delivery challans.
type DispatchService interface {
	// Generate dispatches boxes against a quotation: each line is debited FIFO
	// from the product's batches, its box counter is reduced and the quotation
	// line's dispatched quantity grows. The whole challan commits or nothing does.
	Generate(ctx context.Context, req dto.GenerateChallanRequest) (*dto.ChallanResponse, error)
	// Delete credits every recorded batch deduction back and removes the challan.
	Delete(ctx context.Context, challanID uint) error
	Get(ctx context.Context, challanID uint) (*dto.ChallanResponse, error)
	List(ctx context.Context) ([]dto.ChallanResponse, error)
}

type dispatchService struct {
	repo       repository.ChallanRepository
	quotations repository.QuotationRepository
	products   repository.ProductRepository
	ledger     StockLedger
	locker     Locker
	lockTTL    time.Duration
}

func NewDispatchService(
	repo repository.ChallanRepository,
	quotations repository.QuotationRepository,
	products repository.ProductRepository,
	ledger StockLedger,
	locker Locker,
	lockTTL time.Duration,
) DispatchService {
	return &dispatchService{
		repo:       repo,
		quotations: quotations,
		products:   products,
		ledger:     ledger,
		locker:     locker,
		lockTTL:    lockTTL,
	}
}

func (s *dispatchService) Generate(ctx context.Context, req dto.GenerateChallanRequest) (*dto.ChallanResponse, error) {
	var challan model.DeliveryChallan
	err := withLock(ctx, s.locker, quotationLockKey(req.QuotationID), s.lockTTL, func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			q, err := s.quotations.FindByIDForUpdateTx(tx, req.QuotationID)
			if err != nil {
				return notFound(err, "quotation", req.QuotationID)
			}

			totals, err := s.repo.DispatchedTx(tx, q.ID)
			if err != nil {
				return err
			}
			remaining := make(map[uint]int)
			for _, it := range q.Items {
				remaining[it.ProductID] += it.Box
			}
			for _, t := range totals {
				remaining[t.ProductID] -= int(t.Boxes)
			}

			challan = model.DeliveryChallan{
				QuotationID:   q.ID,
				Client:        firstNonEmpty(req.Client, q.ClientName),
				Contact:       normalizePhone(firstNonEmpty(req.Contact, q.ContactNo)),
				Address:       firstNonEmpty(req.Address, q.Address),
				DeliveryBoy:   req.DriverDetails.DeliveryBoy,
				DriverContact: normalizePhone(req.DriverDetails.Contact),
				Tempo:         req.DriverDetails.Tempo,
			}
			if err := s.repo.CreateTx(tx, &challan); err != nil {
				return err
			}

			ref := Ref{Kind: model.MovementDispatch, RefType: "delivery_challan", RefID: challan.ID}
			for _, in := range req.Items {
				line := findQuotationLine(q.Items, in.ProductID)
				if line == nil {
					return fmt.Errorf("product %d is not on quotation %d: %w", in.ProductID, q.ID, ErrValidation)
				}
				if in.DispatchBoxes > remaining[in.ProductID] {
					return fmt.Errorf("product %d: %d boxes requested, %d remaining: %w",
						in.ProductID, in.DispatchBoxes, max(0, remaining[in.ProductID]), ErrOverDispatch)
				}
				remaining[in.ProductID] -= in.DispatchBoxes

				name := in.ProductName
				if name == "" {
					p, err := s.products.FindByIDTx(tx, in.ProductID)
					if err != nil {
						return notFound(err, "product", in.ProductID)
					}
					name = p.Name
				}

				dispatchQty := decimal.NewFromInt(int64(in.DispatchBoxes)).Mul(line.Cov)
				item := model.DeliveryChallanItem{
					ChallanID:      challan.ID,
					ProductID:      in.ProductID,
					ProductName:    name,
					DispatchBoxes:  in.DispatchBoxes,
					DispatchQty:    dispatchQty,
					RemainingStock: in.RemainingStock,
				}
				if err := s.repo.CreateItemTx(tx, &item); err != nil {
					return err
				}

				deductions, err := s.ledger.DebitBatchesFIFOTx(tx, in.ProductID, dispatchQty, ref)
				if err != nil {
					return err
				}
				for _, d := range deductions {
					row := model.DeliveryChallanDeduction{
						ChallanItemID: item.ID,
						BatchID:       d.BatchID,
						BatchNo:       d.BatchNo,
						Qty:           d.Qty,
					}
					if err := s.repo.CreateDeductionTx(tx, &row); err != nil {
						return err
					}
					item.Deductions = append(item.Deductions, row)
				}

				if err := s.ledger.AdjustAvailQtyTx(tx, in.ProductID, -in.DispatchBoxes, ref); err != nil {
					return err
				}
				if err := s.quotations.AddItemWeightTx(tx, line.ID, dispatchQty); err != nil {
					return err
				}
				challan.Items = append(challan.Items, item)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("challan_id", challan.ID).Uint("quotation_id", challan.QuotationID).
		Int("items", len(challan.Items)).Msg("delivery challan generated")
	resp := challanToResponse(&challan)
	return &resp, nil
}

func (s *dispatchService) Delete(ctx context.Context, challanID uint) error {
	existing, err := s.repo.FindByID(ctx, challanID)
	if err != nil {
		return notFound(err, "delivery challan", challanID)
	}

	err = withLock(ctx, s.locker, quotationLockKey(existing.QuotationID), s.lockTTL, func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			c, err := s.repo.FindByIDForUpdateTx(tx, challanID)
			if err != nil {
				return notFound(err, "delivery challan", challanID)
			}
			q, err := s.quotations.FindByIDForUpdateTx(tx, c.QuotationID)
			if err != nil {
				return notFound(err, "quotation", c.QuotationID)
			}

			ref := Ref{Kind: model.MovementDispatchReversal, RefType: "delivery_challan", RefID: c.ID}
			for _, item := range c.Items {
				for _, d := range item.Deductions {
					if err := s.ledger.ReturnToBatchTx(tx, d.BatchID, d.Qty, ref); err != nil {
						return err
					}
				}
				if err := s.ledger.AdjustAvailQtyTx(tx, item.ProductID, item.DispatchBoxes, ref); err != nil {
					return err
				}
				if line := findQuotationLine(q.Items, item.ProductID); line != nil {
					if err := s.quotations.AddItemWeightTx(tx, line.ID, item.DispatchQty.Neg()); err != nil {
						return err
					}
				}
			}

			_, err = s.repo.DeleteTx(tx, c.ID)
			return err
		})
	})
	if err != nil {
		return err
	}

	log.Info().Uint("challan_id", challanID).Uint("quotation_id", existing.QuotationID).Msg("delivery challan deleted, stock restored")
	return nil
}

func (s *dispatchService) Get(ctx context.Context, challanID uint) (*dto.ChallanResponse, error) {
	c, err := s.repo.FindByID(ctx, challanID)
	if err != nil {
		return nil, notFound(err, "delivery challan", challanID)
	}
	resp := challanToResponse(c)
	return &resp, nil
}

func (s *dispatchService) List(ctx context.Context) ([]dto.ChallanResponse, error) {
	challans, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ChallanResponse, 0, len(challans))
	for i := range challans {
		out = append(out, challanToResponse(&challans[i]))
	}
	return out, nil
}

func findQuotationLine(items []model.QuotationItem, productID uint) *model.QuotationItem {
	for i := range items {
		if items[i].ProductID == productID {
			return &items[i]
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func challanToResponse(c *model.DeliveryChallan) dto.ChallanResponse {
	resp := dto.ChallanResponse{
		ID:            c.ID,
		QuotationID:   c.QuotationID,
		Client:        c.Client,
		Contact:       c.Contact,
		Address:       c.Address,
		DeliveryBoy:   c.DeliveryBoy,
		DriverContact: c.DriverContact,
		Tempo:         c.Tempo,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
		TotalItems:    len(c.Items),
		Items:         make([]dto.ChallanItemResponse, 0, len(c.Items)),
	}
	for _, it := range c.Items {
		item := dto.ChallanItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			DispatchBoxes:  it.DispatchBoxes,
			DispatchQty:    it.DispatchQty,
			RemainingStock: it.RemainingStock,
			Deductions:     make([]dto.DeductionResponse, 0, len(it.Deductions)),
		}
		for _, d := range it.Deductions {
			item.Deductions = append(item.Deductions, dto.DeductionResponse{BatchID: d.BatchID, BatchNo: d.BatchNo, Qty: d.Qty})
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
