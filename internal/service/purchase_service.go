package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"tilerp/internal/dto"
	"tilerp/internal/model"
	"tilerp/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseService records supplier bills and credits their stock.
type PurchaseService interface {
	Add(ctx context.Context, req dto.PurchaseRequest) (*dto.PurchaseResponse, error)
	// Update reverses the bill's previous stock contribution, replaces its
	// items and credits the new ones. A batch left negative aborts the update.
	Update(ctx context.Context, req dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error)
	Get(ctx context.Context, id uint) (*dto.PurchaseResponse, error)
	List(ctx context.Context, filter dto.PurchaseFilter) (*dto.PurchaseListResponse, error)
}

type purchaseService struct {
	repo     repository.PurchaseRepository
	products repository.ProductRepository
	stock    repository.StockRepository
	ledger   StockLedger
}

func NewPurchaseService(
	repo repository.PurchaseRepository,
	products repository.ProductRepository,
	stock repository.StockRepository,
	ledger StockLedger,
) PurchaseService {
	return &purchaseService{repo: repo, products: products, stock: stock, ledger: ledger}
}

func generateBillNo() string {
	return fmt.Sprintf("BILL-%d", 100000+rand.Intn(900000))
}

func parsePurchaseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("purchaseDate %q: %w", s, ErrValidation)
	}
	return &t, nil
}

func (s *purchaseService) Add(ctx context.Context, req dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	date, err := parsePurchaseDate(req.PurchaseDate)
	if err != nil {
		return nil, err
	}
	billNo := strings.TrimSpace(req.BillNo)
	if billNo == "" {
		billNo = generateBillNo()
	}

	p := model.Purchase{
		BillNo:        billNo,
		PurchaseDate:  date,
		ClientName:    req.ClientName,
		ClientContact: normalizePhone(req.ClientContact),
		SubTotal:      req.SubTotal,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, &p); err != nil {
			return duplicate(err, "bill number "+billNo+" already exists")
		}
		items, _, err := s.creditItems(tx, p.ID, req.Items)
		if err != nil {
			return err
		}
		p.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("purchase_id", p.ID).Str("bill_no", p.BillNo).Int("items", len(p.Items)).Msg("purchase recorded")
	return s.toResponse(ctx, &p), nil
}

func (s *purchaseService) Update(ctx context.Context, req dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error) {
	date, err := parsePurchaseDate(req.PurchaseDate)
	if err != nil {
		return nil, err
	}

	var p *model.Purchase
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		p, err = s.repo.FindByIDForUpdateTx(tx, req.PurchaseID)
		if err != nil {
			return notFound(err, "purchase", req.PurchaseID)
		}

		touched := make(map[uint]struct{})
		reversal := Ref{Kind: model.MovementPurchaseReversal, RefType: "purchase", RefID: p.ID}
		for _, old := range p.Items {
			batch, err := s.ledger.DebitBatchTx(tx, old.ProductID, old.BatchNo, old.Qty, reversal)
			if err != nil {
				return err
			}
			if batch == nil {
				log.Warn().Uint("purchase_id", p.ID).Uint("product_id", old.ProductID).
					Str("batch_no", old.BatchNo).Msg("purchase reversal: batch missing")
				continue
			}
			touched[batch.ID] = struct{}{}
		}
		if err := s.repo.DeleteItemsTx(tx, p.ID); err != nil {
			return err
		}

		if billNo := strings.TrimSpace(req.BillNo); billNo != "" {
			p.BillNo = billNo
		}
		p.PurchaseDate = date
		p.ClientName = req.ClientName
		p.ClientContact = normalizePhone(req.ClientContact)
		p.SubTotal = req.SubTotal
		if err := s.repo.UpdateHeaderTx(tx, p); err != nil {
			return duplicate(err, "bill number "+p.BillNo+" already exists")
		}

		items, credited, err := s.creditItems(tx, p.ID, req.Items)
		if err != nil {
			return err
		}
		p.Items = items
		for id := range credited {
			touched[id] = struct{}{}
		}

		return s.checkNonNegative(tx, touched)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("purchase_id", p.ID).Str("bill_no", p.BillNo).Int("items", len(p.Items)).Msg("purchase updated")
	return s.toResponse(ctx, p), nil
}

// creditItems inserts the bill lines and credits their batches. Lines without
// qty or batch number are skipped. Returns the ids of the credited batches.
func (s *purchaseService) creditItems(tx *gorm.DB, purchaseID uint, reqItems []dto.PurchaseItemRequest) ([]model.PurchaseItem, map[uint]struct{}, error) {
	ref := Ref{Kind: model.MovementPurchase, RefType: "purchase", RefID: purchaseID}
	credited := make(map[uint]struct{})
	var items []model.PurchaseItem

	for _, in := range reqItems {
		batchNo := strings.TrimSpace(in.BatchNo)
		if !in.Qty.IsPositive() || batchNo == "" {
			continue
		}

		productID := in.ProductID
		if productID == 0 {
			if strings.TrimSpace(in.ProductName) == "" {
				return nil, nil, fmt.Errorf("item %s: productName required when productId is missing: %w", batchNo, ErrValidation)
			}
			p := model.Product{Name: in.ProductName, Size: in.Size, Quality: in.Quality, Rate: in.Rate, Status: "active"}
			if err := s.products.CreateTx(tx, &p); err != nil {
				return nil, nil, err
			}
			productID = p.ID
		} else if _, err := s.products.FindByIDTx(tx, productID); err != nil {
			return nil, nil, notFound(err, "product", productID)
		}

		cov := in.Cov
		if !cov.IsPositive() {
			cov = decimal.NewFromInt(1)
		}
		item := model.PurchaseItem{
			PurchaseID: purchaseID,
			ProductID:  productID,
			BatchNo:    batchNo,
			Qty:        in.Qty,
			Rate:       in.Rate,
			Cov:        cov,
			Total:      in.Total,
			Godown:     in.Godown,
		}
		if err := s.repo.CreateItemTx(tx, &item); err != nil {
			return nil, nil, err
		}
		batch, err := s.ledger.CreditBatchTx(tx, productID, batchNo, in.Qty, in.Godown, ref)
		if err != nil {
			return nil, nil, err
		}
		credited[batch.ID] = struct{}{}
		items = append(items, item)
	}
	return items, credited, nil
}

// checkNonNegative re-reads every touched batch under lock and fails when any
// went below zero, which happens when reversed stock was already dispatched.
func (s *purchaseService) checkNonNegative(tx *gorm.DB, batchIDs map[uint]struct{}) error {
	for id := range batchIDs {
		b, err := s.stock.FindBatchByIDTx(tx, id)
		if err != nil {
			return notFound(err, "batch", id)
		}
		if b.Qty.IsNegative() {
			return fmt.Errorf("batch %s of product %d would drop to %s: %w",
				b.BatchNo, b.ProductID, b.Qty.String(), ErrInsufficientStock)
		}
	}
	return nil
}

func (s *purchaseService) Get(ctx context.Context, id uint) (*dto.PurchaseResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "purchase", id)
	}
	return s.toResponse(ctx, p), nil
}

func (s *purchaseService) List(ctx context.Context, filter dto.PurchaseFilter) (*dto.PurchaseListResponse, error) {
	purchases, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	names, err := s.repo.ProductNames(ctx, purchaseProductIDs(purchases))
	if err != nil {
		return nil, err
	}
	resp := &dto.PurchaseListResponse{
		Data:  make([]dto.PurchaseResponse, 0, len(purchases)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range purchases {
		resp.Data = append(resp.Data, purchaseToResponse(&purchases[i], names))
	}
	return resp, nil
}

func (s *purchaseService) toResponse(ctx context.Context, p *model.Purchase) *dto.PurchaseResponse {
	names, err := s.repo.ProductNames(ctx, purchaseProductIDs([]model.Purchase{*p}))
	if err != nil {
		log.Warn().Err(err).Uint("purchase_id", p.ID).Msg("purchase: product names unavailable")
	}
	resp := purchaseToResponse(p, names)
	return &resp
}

func purchaseProductIDs(purchases []model.Purchase) []uint {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, p := range purchases {
		for _, it := range p.Items {
			if _, ok := seen[it.ProductID]; !ok {
				seen[it.ProductID] = struct{}{}
				ids = append(ids, it.ProductID)
			}
		}
	}
	return ids
}

func purchaseToResponse(p *model.Purchase, names map[uint]string) dto.PurchaseResponse {
	resp := dto.PurchaseResponse{
		ID:            p.ID,
		BillNo:        p.BillNo,
		ClientName:    p.ClientName,
		ClientContact: p.ClientContact,
		SubTotal:      p.SubTotal,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		Items:         make([]dto.PurchaseItemResponse, 0, len(p.Items)),
	}
	if p.PurchaseDate != nil {
		d := p.PurchaseDate.Format("2006-01-02")
		resp.PurchaseDate = &d
	}
	for _, it := range p.Items {
		resp.Items = append(resp.Items, dto.PurchaseItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: names[it.ProductID],
			BatchNo:     it.BatchNo,
			Qty:         it.Qty,
			Rate:        it.Rate,
			Cov:         it.Cov,
			Total:       it.Total,
			Godown:      it.Godown,
		})
	}
	return resp
}
