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

// ProductService covers catalog entry and read access to the stock ledger.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	// Update replaces catalog fields and moves each listed batch to its new
	// quantity through the stock ledger. An unlisted batch is removed only when
	// it is empty and has no ledger history.
	Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	// Stock reports batch quantities against their ledger sums. cov, when
	// positive, converts the batch total into boxes.
	Stock(ctx context.Context, productID uint, cov decimal.Decimal) (*dto.StockSnapshotResponse, error)
	Movements(ctx context.Context, productID uint, filter dto.MovementFilter) (*dto.MovementListResponse, error)
}

type productService struct {
	repo   repository.ProductRepository
	stock  repository.StockRepository
	ledger StockLedger
}

func NewProductService(repo repository.ProductRepository, stock repository.StockRepository, ledger StockLedger) ProductService {
	return &productService{repo: repo, stock: stock, ledger: ledger}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	status := req.Status
	if status == "" {
		status = "active"
	}
	p := model.Product{
		Name:        req.Name,
		Size:        req.Size,
		Brand:       req.Brand,
		Category:    req.Category,
		Quality:     req.Quality,
		Rate:        req.Rate,
		Status:      status,
		Description: req.Description,
		Image:       req.Image,
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, &p); err != nil {
			return err
		}
		ref := Ref{Kind: model.MovementOpening, RefType: "product", RefID: p.ID}
		for _, b := range req.Batches {
			batch, err := s.ledger.CreditBatchTx(tx, p.ID, b.BatchNo, b.Qty, b.Location, ref)
			if err != nil {
				return err
			}
			p.Batches = append(p.Batches, *batch)
		}
		if req.AvailQty > 0 {
			if err := s.ledger.AdjustAvailQtyTx(tx, p.ID, req.AvailQty, ref); err != nil {
				return err
			}
			p.AvailQty = req.AvailQty
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("product_id", p.ID).Str("name", p.Name).Int("batches", len(p.Batches)).Msg("product created")
	resp := productToResponse(&p)
	return &resp, nil
}

func (s *productService) Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	incoming := make(map[string]dto.BatchUpdateRequest, len(req.Batches))
	for _, b := range req.Batches {
		if _, dup := incoming[b.BatchNo]; dup {
			return nil, fmt.Errorf("batch %s listed twice: %w", b.BatchNo, ErrValidation)
		}
		incoming[b.BatchNo] = b
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFound(err, "product", id)
		}
		p.Name = req.Name
		p.Size = req.Size
		p.Brand = req.Brand
		p.Category = req.Category
		p.Quality = req.Quality
		p.Rate = req.Rate
		if req.Status != "" {
			p.Status = req.Status
		}
		p.Description = req.Description
		if req.Image != "" {
			p.Image = req.Image
		}
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return err
		}

		existing, err := s.stock.LockProductBatchesTx(tx, id)
		if err != nil {
			return err
		}
		current := make(map[string]model.ProductBatch, len(existing))
		for _, b := range existing {
			current[b.BatchNo] = b
			if _, keep := incoming[b.BatchNo]; keep {
				continue
			}
			if !b.Qty.IsZero() {
				return fmt.Errorf("batch %s still holds %s: %w", b.BatchNo, b.Qty.String(), ErrConflict)
			}
			used, err := s.stock.BatchReferencedTx(tx, b.ID)
			if err != nil {
				return err
			}
			if used {
				return fmt.Errorf("batch %s has stock history and cannot be removed: %w", b.BatchNo, ErrConflict)
			}
			if err := s.stock.DeleteBatchTx(tx, b.ID); err != nil {
				return err
			}
		}

		ref := Ref{Kind: model.MovementAdjustment, RefType: "product", RefID: id}
		for _, in := range req.Batches {
			cur, ok := current[in.BatchNo]
			if !ok {
				if in.Qty.IsPositive() {
					if _, err := s.ledger.CreditBatchTx(tx, id, in.BatchNo, in.Qty, in.Location, ref); err != nil {
						return err
					}
				} else if err := s.stock.CreateBatchTx(tx, &model.ProductBatch{ProductID: id, BatchNo: in.BatchNo, Qty: decimal.Zero, Location: in.Location}); err != nil {
					return err
				}
				continue
			}
			switch diff := in.Qty.Sub(cur.Qty); {
			case diff.IsPositive():
				if _, err := s.ledger.CreditBatchTx(tx, id, in.BatchNo, diff, in.Location, ref); err != nil {
					return err
				}
			case diff.IsNegative():
				if _, err := s.ledger.DebitBatchTx(tx, id, in.BatchNo, diff.Neg(), ref); err != nil {
					return err
				}
			}
			if in.Location != cur.Location {
				if err := s.stock.UpdateBatchLocationTx(tx, cur.ID, in.Location); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	log.Info().Uint("product_id", id).Int("batches", len(updated.Batches)).Msg("product updated")
	resp := productToResponse(updated)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{
		Data:       make([]dto.ProductResponse, 0, len(products)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range products {
		resp.Data = append(resp.Data, productToResponse(&products[i]))
	}
	return resp, nil
}

func (s *productService) Stock(ctx context.Context, productID uint, cov decimal.Decimal) (*dto.StockSnapshotResponse, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product", productID)
	}
	ledger, err := s.stock.SumBatchLedger(ctx, productID)
	if err != nil {
		return nil, err
	}
	boxes, err := s.stock.SumBoxLedger(ctx, productID)
	if err != nil {
		return nil, err
	}

	snap := &dto.StockSnapshotResponse{
		ProductID:   p.ID,
		AvailQty:    p.AvailQty,
		LedgerBoxes: boxes,
		TotalQty:    decimal.Zero,
		Cov:         cov,
		Batches:     make([]dto.BatchStockResponse, 0, len(p.Batches)),
	}
	for _, b := range p.Batches {
		sum := ledger[b.ID]
		drift := !sum.Equal(b.Qty)
		snap.Batches = append(snap.Batches, dto.BatchStockResponse{
			BatchID:   b.ID,
			BatchNo:   b.BatchNo,
			Location:  b.Location,
			Qty:       b.Qty,
			LedgerQty: sum,
			Drift:     drift,
		})
		snap.TotalQty = snap.TotalQty.Add(b.Qty)
		snap.Drift = snap.Drift || drift
	}
	// The counter clamps at zero; a negative ledger sum against a zero counter is not drift.
	if !decimal.NewFromInt(int64(p.AvailQty)).Equal(decimal.Max(boxes, decimal.Zero)) {
		snap.Drift = true
	}
	if cov.IsPositive() {
		snap.BoxEquivalent = snap.TotalQty.Div(cov).Floor()
	}
	return snap, nil
}

func (s *productService) Movements(ctx context.Context, productID uint, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	movements, total, err := s.stock.ListMovements(ctx, productID, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.MovementListResponse{
		Data:  make([]dto.MovementResponse, 0, len(movements)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, m := range movements {
		resp.Data = append(resp.Data, dto.MovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			BatchID:   m.BatchID,
			Kind:      m.Kind,
			Unit:      m.Unit,
			Delta:     m.Delta,
			RefType:   m.RefType,
			RefID:     m.RefID,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

func productToResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Size:        p.Size,
		Brand:       p.Brand,
		Category:    p.Category,
		Quality:     p.Quality,
		Rate:        p.Rate,
		Status:      p.Status,
		Description: p.Description,
		Image:       p.Image,
		AvailQty:    p.AvailQty,
		Batches:     make([]dto.BatchResponse, 0, len(p.Batches)),
	}
	for _, b := range p.Batches {
		resp.Batches = append(resp.Batches, batchToResponse(b))
	}
	return resp
}

func batchToResponse(b model.ProductBatch) dto.BatchResponse {
	return dto.BatchResponse{ID: b.ID, BatchNo: b.BatchNo, Qty: b.Qty, Location: b.Location}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
