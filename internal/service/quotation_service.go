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

type QuotationService interface {
	// Save creates the quotation and reserves each row's boxes.
	Save(ctx context.Context, req dto.SaveQuotationRequest) (*dto.QuotationResponse, error)
	// Update releases the previous reservation, replaces header and items and
	// reserves again. Dispatch progress per product is carried over; rows
	// quoting fewer boxes than already dispatched fail with ErrOverDispatch.
	Update(ctx context.Context, id uint, req dto.SaveQuotationRequest) (*dto.QuotationResponse, error)
	Get(ctx context.Context, id uint) (*dto.QuotationFull, error)
	ListFull(ctx context.Context, filter dto.QuotationFilter) (*dto.QuotationListResponse, error)
	// SettleCommission marks the quotation settled and appends the architect
	// history. A quotation can be settled once.
	SettleCommission(ctx context.Context, req dto.SettleCommissionRequest) (*dto.SettleCommissionResponse, error)
	ByArchitect(ctx context.Context, architectID string) ([]dto.QuotationResponse, error)
	ArchitectLedger(ctx context.Context, architectID string) ([]dto.ArchitectLedgerEntry, error)
}

type quotationService struct {
	repo       repository.QuotationRepository
	challans   repository.ChallanRepository
	stock      repository.StockRepository
	architects repository.ArchitectRepository
	ledger     StockLedger
	locker     Locker
	lockTTL    time.Duration
}

func NewQuotationService(
	repo repository.QuotationRepository,
	challans repository.ChallanRepository,
	stock repository.StockRepository,
	architects repository.ArchitectRepository,
	ledger StockLedger,
	locker Locker,
	lockTTL time.Duration,
) QuotationService {
	return &quotationService{
		repo:       repo,
		challans:   challans,
		stock:      stock,
		architects: architects,
		ledger:     ledger,
		locker:     locker,
		lockTTL:    lockTTL,
	}
}

func applyClientDetails(q *model.Quotation, req dto.SaveQuotationRequest) {
	attendedBy := req.ClientDetails.AttendedBy
	if attendedBy == "" {
		attendedBy = "System"
	}
	q.ClientName = req.ClientDetails.Name
	q.ContactNo = normalizePhone(req.ClientDetails.ContactNo)
	q.AltContactNo = normalizePhone(req.ClientDetails.AltContactNo)
	q.Email = req.ClientDetails.Email
	q.Address = req.ClientDetails.Address
	q.AttendedBy = attendedBy
	q.Architect = req.ClientDetails.Architect
	q.GSTNo = req.ClientDetails.GSTNo
	q.AdditionalDiscount = req.AdditionalDiscount
	q.HeaderSection = req.HeaderSection
	q.BottomSection = req.BottomSection
	q.GrandTotal = req.GrandTotal
}

func (s *quotationService) Save(ctx context.Context, req dto.SaveQuotationRequest) (*dto.QuotationResponse, error) {
	var q model.Quotation
	applyClientDetails(&q, req)
	q.PaidAmount = decimal.Zero
	q.DueAmount = q.GrandTotal

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, &q); err != nil {
			return err
		}
		items, err := s.reserveRows(tx, q.ID, req.Rows, nil)
		if err != nil {
			return err
		}
		q.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("quotation_id", q.ID).Str("client", q.ClientName).Int("items", len(q.Items)).Msg("quotation saved")
	resp := quotationToResponse(&q)
	return &resp, nil
}

func (s *quotationService) Update(ctx context.Context, id uint, req dto.SaveQuotationRequest) (*dto.QuotationResponse, error) {
	var q *model.Quotation
	err := withLock(ctx, s.locker, quotationLockKey(id), s.lockTTL, func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			var err error
			q, err = s.repo.FindByIDForUpdateTx(tx, id)
			if err != nil {
				return notFound(err, "quotation", id)
			}

			if err := s.checkDispatchedCovered(tx, id, req.Rows); err != nil {
				return err
			}

			release := Ref{Kind: model.MovementRelease, RefType: "quotation", RefID: id}
			dispatched := make(map[uint]decimal.Decimal)
			for _, old := range q.Items {
				if err := s.ledger.AdjustAvailQtyTx(tx, old.ProductID, old.Box, release); err != nil {
					return err
				}
				dispatched[old.ProductID] = dispatched[old.ProductID].Add(old.Weight)
			}

			paid := q.PaidAmount
			applyClientDetails(q, req)
			q.PaidAmount = paid
			q.DueAmount = q.GrandTotal.Sub(paid)
			if err := s.repo.UpdateHeaderTx(tx, q); err != nil {
				return err
			}
			if err := s.repo.DeleteItemsTx(tx, id); err != nil {
				return err
			}

			items, err := s.reserveRows(tx, id, req.Rows, dispatched)
			if err != nil {
				return err
			}
			q.Items = items
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("quotation_id", q.ID).Str("due", q.DueAmount.String()).Msg("quotation updated")
	resp := quotationToResponse(q)
	return &resp, nil
}

// checkDispatchedCovered rejects rows that would quote fewer boxes of a
// product than its challans have already delivered.
func (s *quotationService) checkDispatchedCovered(tx *gorm.DB, quotationID uint, rows []dto.QuotationRow) error {
	totals, err := s.challans.DispatchedTx(tx, quotationID)
	if err != nil {
		return err
	}
	quoted := make(map[uint]int, len(rows))
	for _, r := range rows {
		quoted[r.ProductID] += r.Box
	}
	for _, t := range totals {
		if t.Boxes <= 0 {
			continue
		}
		if _, ok := quoted[t.ProductID]; !ok {
			return fmt.Errorf("product %d has %d boxes dispatched and cannot be removed: %w",
				t.ProductID, t.Boxes, ErrOverDispatch)
		}
		if int64(quoted[t.ProductID]) < t.Boxes {
			return fmt.Errorf("product %d: %d boxes quoted, %d already dispatched: %w",
				t.ProductID, quoted[t.ProductID], t.Boxes, ErrOverDispatch)
		}
	}
	return nil
}

// reserveRows inserts the quotation lines and debits each product's box
// counter. carry holds dispatched quantity to restore onto the first line of
// each product; it is consumed as it is applied. A product may appear on one
// row only, so dispatch totals map to a single line.
func (s *quotationService) reserveRows(tx *gorm.DB, quotationID uint, rows []dto.QuotationRow, carry map[uint]decimal.Decimal) ([]model.QuotationItem, error) {
	ref := Ref{Kind: model.MovementReserve, RefType: "quotation", RefID: quotationID}
	items := make([]model.QuotationItem, 0, len(rows))
	seen := make(map[uint]bool, len(rows))
	for _, r := range rows {
		if seen[r.ProductID] {
			return nil, fmt.Errorf("product %d appears on more than one row: %w", r.ProductID, ErrValidation)
		}
		seen[r.ProductID] = true
		item := model.QuotationItem{
			QuotationID: quotationID,
			ProductID:   r.ProductID,
			Size:        r.Size,
			Quality:     r.Quality,
			Rate:        r.Rate,
			Cov:         r.Cov,
			Box:         r.Box,
			Discount:    r.Discount,
			Total:       r.Total,
			Area:        r.Area,
		}
		if w, ok := carry[r.ProductID]; ok {
			item.Weight = w
			delete(carry, r.ProductID)
		}
		if err := s.repo.CreateItemTx(tx, &item); err != nil {
			return nil, err
		}
		if err := s.ledger.AdjustAvailQtyTx(tx, r.ProductID, -r.Box, ref); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *quotationService) SettleCommission(ctx context.Context, req dto.SettleCommissionRequest) (*dto.SettleCommissionResponse, error) {
	resp := &dto.SettleCommissionResponse{
		QuotationID:      req.QuotationID,
		ArchitectID:      req.ArchitectID,
		CommissionAmount: req.CommissionAmount,
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		q, err := s.repo.FindByIDForUpdateTx(tx, req.QuotationID)
		if err != nil {
			return notFound(err, "quotation", req.QuotationID)
		}
		if q.IsSettled {
			return fmt.Errorf("quotation %d commission already settled: %w", q.ID, ErrConflict)
		}
		if err := s.repo.MarkSettledTx(tx, q.ID, req.CommissionAmount); err != nil {
			return err
		}

		entry := model.ArchitectLedger{
			ArchitectID:      req.ArchitectID,
			QuotationID:      q.ID,
			CommissionAmount: req.CommissionAmount,
		}
		if err := s.architects.CreateLedgerTx(tx, &entry); err != nil {
			return err
		}
		settlement := model.ArchitectSettlement{
			ArchitectID:        req.ArchitectID,
			QuotationID:        q.ID,
			TotalProjectAmount: q.GrandTotal,
			SettledAmount:      req.CommissionAmount,
		}
		if err := s.architects.CreateSettlementTx(tx, &settlement); err != nil {
			return err
		}
		resp.LedgerID = entry.ID
		resp.SettlementID = settlement.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("quotation_id", req.QuotationID).Str("architect", req.ArchitectID).
		Str("commission", req.CommissionAmount.String()).Msg("commission settled")
	return resp, nil
}

func (s *quotationService) Get(ctx context.Context, id uint) (*dto.QuotationFull, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "quotation", id)
	}
	full, err := s.assemble(ctx, []model.Quotation{*q})
	if err != nil {
		return nil, err
	}
	return &full[0], nil
}

func (s *quotationService) ListFull(ctx context.Context, filter dto.QuotationFilter) (*dto.QuotationListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	quotations, total, err := s.repo.List(ctx, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	full, err := s.assemble(ctx, quotations)
	if err != nil {
		return nil, err
	}
	return &dto.QuotationListResponse{
		Data:       full,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// assemble joins quotations with their dispatch totals and current batch stock.
func (s *quotationService) assemble(ctx context.Context, quotations []model.Quotation) ([]dto.QuotationFull, error) {
	qids := make([]uint, 0, len(quotations))
	pidSet := make(map[uint]struct{})
	var pids []uint
	for _, q := range quotations {
		qids = append(qids, q.ID)
		for _, it := range q.Items {
			if _, ok := pidSet[it.ProductID]; !ok {
				pidSet[it.ProductID] = struct{}{}
				pids = append(pids, it.ProductID)
			}
		}
	}

	totals, err := s.challans.Dispatched(ctx, qids)
	if err != nil {
		return nil, err
	}
	type key struct{ qid, pid uint }
	dispatched := make(map[key]repository.DispatchTotal, len(totals))
	for _, t := range totals {
		dispatched[key{t.QuotationID, t.ProductID}] = t
	}

	batches, err := s.stock.ListBatches(ctx, pids)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[uint][]model.ProductBatch)
	for _, b := range batches {
		byProduct[b.ProductID] = append(byProduct[b.ProductID], b)
	}

	out := make([]dto.QuotationFull, 0, len(quotations))
	for i := range quotations {
		q := &quotations[i]
		full := dto.QuotationFull{
			QuotationResponse: quotationToResponse(q),
			Items:             make([]dto.QuotationItemFull, 0, len(q.Items)),
		}
		for _, it := range q.Items {
			t := dispatched[key{q.ID, it.ProductID}]
			line := dto.QuotationItemFull{
				QuotationItemResponse: quotationItemToResponse(it),
				DispatchedBoxes:       int(t.Boxes),
				DispatchedQty:         t.Qty,
				RemainingBoxes:        max(0, it.Box-int(t.Boxes)),
				RemainingQty:          decimal.Max(decimal.Zero, it.Area.Sub(t.Qty)),
				CurrentStock:          decimal.Zero,
				Batches:               make([]dto.BatchResponse, 0, len(byProduct[it.ProductID])),
			}
			if it.Product != nil {
				line.AvailQty = it.Product.AvailQty
			}
			for _, b := range byProduct[it.ProductID] {
				line.CurrentStock = line.CurrentStock.Add(b.Qty)
				line.Batches = append(line.Batches, batchToResponse(b))
			}
			full.Items = append(full.Items, line)
		}
		out = append(out, full)
	}
	return out, nil
}

func (s *quotationService) ByArchitect(ctx context.Context, architectID string) ([]dto.QuotationResponse, error) {
	quotations, err := s.repo.ListByArchitect(ctx, architectID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.QuotationResponse, 0, len(quotations))
	for i := range quotations {
		out = append(out, quotationToResponse(&quotations[i]))
	}
	return out, nil
}

func (s *quotationService) ArchitectLedger(ctx context.Context, architectID string) ([]dto.ArchitectLedgerEntry, error) {
	entries, err := s.architects.ListLedger(ctx, architectID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ArchitectLedgerEntry, 0, len(entries))
	for _, e := range entries {
		row := dto.ArchitectLedgerEntry{
			ID:               e.ID,
			ArchitectID:      e.ArchitectID,
			QuotationID:      e.QuotationID,
			CommissionAmount: e.CommissionAmount,
			SettledAt:        e.SettledAt.Format(time.RFC3339),
		}
		if e.Quotation != nil {
			row.ClientName = e.Quotation.ClientName
			row.GrandTotal = e.Quotation.GrandTotal
		}
		out = append(out, row)
	}
	return out, nil
}

func quotationItemToResponse(it model.QuotationItem) dto.QuotationItemResponse {
	resp := dto.QuotationItemResponse{
		ID:        it.ID,
		ProductID: it.ProductID,
		Size:      it.Size,
		Quality:   it.Quality,
		Rate:      it.Rate,
		Cov:       it.Cov,
		Box:       it.Box,
		Weight:    it.Weight,
		Discount:  it.Discount,
		Total:     it.Total,
		Area:      it.Area,
	}
	if it.Product != nil {
		resp.ProductName = it.Product.Name
	}
	return resp
}

func quotationToResponse(q *model.Quotation) dto.QuotationResponse {
	resp := dto.QuotationResponse{
		ID:                 q.ID,
		ClientName:         q.ClientName,
		ContactNo:          q.ContactNo,
		AltContactNo:       q.AltContactNo,
		GSTNo:              q.GSTNo,
		Email:              q.Email,
		Address:            q.Address,
		AttendedBy:         q.AttendedBy,
		Architect:          q.Architect,
		AdditionalDiscount: q.AdditionalDiscount,
		HeaderSection:      q.HeaderSection,
		BottomSection:      q.BottomSection,
		GrandTotal:         q.GrandTotal,
		PaidAmount:         q.PaidAmount,
		DueAmount:          q.DueAmount,
		IsSettled:          q.IsSettled,
		CommissionAmount:   q.CommissionAmount,
		CreatedAt:          q.CreatedAt.Format(time.RFC3339),
		Items:              make([]dto.QuotationItemResponse, 0, len(q.Items)),
	}
	for _, it := range q.Items {
		resp.Items = append(resp.Items, quotationItemToResponse(it))
	}
	return resp
}
