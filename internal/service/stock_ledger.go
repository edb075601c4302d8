package service

import (
	"errors"
	"fmt"

	"tilerp/internal/model"
	"tilerp/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ref identifies the business event behind a stock movement.
type Ref struct {
	Kind    string
	RefType string
	RefID   uint
}

// BatchDeduction is the quantity taken from one batch by a FIFO debit.
type BatchDeduction struct {
	BatchID uint
	BatchNo string
	Qty     decimal.Decimal
}

// StockLedger is the only writer of batch quantities and product box counters.
// Every mutation appends a StockMovement in the same transaction.
// All methods require a live transaction (nil in unit tests).
type StockLedger interface {
	// CreditBatchTx adds qty to (productID, batchNo), creating the batch with
	// the given location when absent. An existing batch keeps its location.
	CreditBatchTx(tx *gorm.DB, productID uint, batchNo string, qty decimal.Decimal, location string, ref Ref) (*model.ProductBatch, error)
	// DebitBatchTx subtracts qty from one named batch without a balance check.
	// Returns nil, nil when the batch does not exist.
	DebitBatchTx(tx *gorm.DB, productID uint, batchNo string, qty decimal.Decimal, ref Ref) (*model.ProductBatch, error)
	// ReturnToBatchTx credits qty back to a batch by id.
	ReturnToBatchTx(tx *gorm.DB, batchID uint, qty decimal.Decimal, ref Ref) error
	// DebitBatchesFIFOTx takes qty from the product's batches in batch_no order.
	// Fails with ErrInsufficientStock before any write when the batches cannot cover qty.
	DebitBatchesFIFOTx(tx *gorm.DB, productID uint, qty decimal.Decimal, ref Ref) ([]BatchDeduction, error)
	// AdjustAvailQtyTx applies delta boxes to the product counter, clamped at zero.
	AdjustAvailQtyTx(tx *gorm.DB, productID uint, delta int, ref Ref) error
}

type stockLedger struct {
	products repository.ProductRepository
	stock    repository.StockRepository
}

func NewStockLedger(products repository.ProductRepository, stock repository.StockRepository) StockLedger {
	return &stockLedger{products: products, stock: stock}
}

func (l *stockLedger) record(tx *gorm.DB, productID uint, batchID *uint, unit string, delta decimal.Decimal, ref Ref) error {
	return l.stock.CreateMovementTx(tx, &model.StockMovement{
		ProductID: productID,
		BatchID:   batchID,
		Kind:      ref.Kind,
		Unit:      unit,
		Delta:     delta,
		RefType:   ref.RefType,
		RefID:     ref.RefID,
	})
}

func (l *stockLedger) CreditBatchTx(tx *gorm.DB, productID uint, batchNo string, qty decimal.Decimal, location string, ref Ref) (*model.ProductBatch, error) {
	batch, err := l.stock.FindBatchTx(tx, productID, batchNo)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		batch = &model.ProductBatch{ProductID: productID, BatchNo: batchNo, Qty: qty, Location: location}
		if err := l.stock.CreateBatchTx(tx, batch); err != nil {
			return nil, fmt.Errorf("create batch %s: %w", batchNo, err)
		}
	case err != nil:
		return nil, err
	default:
		if err := l.stock.AddBatchQtyTx(tx, batch.ID, qty); err != nil {
			return nil, err
		}
		batch.Qty = batch.Qty.Add(qty)
	}

	if err := l.record(tx, productID, &batch.ID, model.UnitQty, qty, ref); err != nil {
		return nil, err
	}
	return batch, nil
}

func (l *stockLedger) DebitBatchTx(tx *gorm.DB, productID uint, batchNo string, qty decimal.Decimal, ref Ref) (*model.ProductBatch, error) {
	batch, err := l.stock.FindBatchTx(tx, productID, batchNo)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := l.stock.AddBatchQtyTx(tx, batch.ID, qty.Neg()); err != nil {
		return nil, err
	}
	batch.Qty = batch.Qty.Sub(qty)
	if err := l.record(tx, productID, &batch.ID, model.UnitQty, qty.Neg(), ref); err != nil {
		return nil, err
	}
	return batch, nil
}

func (l *stockLedger) ReturnToBatchTx(tx *gorm.DB, batchID uint, qty decimal.Decimal, ref Ref) error {
	batch, err := l.stock.FindBatchByIDTx(tx, batchID)
	if err != nil {
		return notFound(err, "batch", batchID)
	}
	if err := l.stock.AddBatchQtyTx(tx, batch.ID, qty); err != nil {
		return err
	}
	return l.record(tx, batch.ProductID, &batch.ID, model.UnitQty, qty, ref)
}

func (l *stockLedger) DebitBatchesFIFOTx(tx *gorm.DB, productID uint, qty decimal.Decimal, ref Ref) ([]BatchDeduction, error) {
	if !qty.IsPositive() {
		return nil, nil
	}

	batches, err := l.stock.LockBatchesFIFOTx(tx, productID)
	if err != nil {
		return nil, err
	}

	available := decimal.Zero
	for _, b := range batches {
		available = available.Add(b.Qty)
	}
	if available.LessThan(qty) {
		return nil, fmt.Errorf("product %d: need %s, batches hold %s: %w",
			productID, qty.String(), available.String(), ErrInsufficientStock)
	}

	remaining := qty
	var deductions []BatchDeduction
	for _, b := range batches {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(b.Qty, remaining)
		if !take.IsPositive() {
			continue
		}
		if err := l.stock.AddBatchQtyTx(tx, b.ID, take.Neg()); err != nil {
			return nil, err
		}
		batchID := b.ID
		if err := l.record(tx, productID, &batchID, model.UnitQty, take.Neg(), ref); err != nil {
			return nil, err
		}
		deductions = append(deductions, BatchDeduction{BatchID: b.ID, BatchNo: b.BatchNo, Qty: take})
		remaining = remaining.Sub(take)
	}
	return deductions, nil
}

func (l *stockLedger) AdjustAvailQtyTx(tx *gorm.DB, productID uint, delta int, ref Ref) error {
	if delta == 0 {
		return nil
	}
	if _, err := l.products.FindByIDTx(tx, productID); err != nil {
		return notFound(err, "product", productID)
	}
	if err := l.products.AdjustAvailQtyTx(tx, productID, delta); err != nil {
		return err
	}
	return l.record(tx, productID, nil, model.UnitBox, decimal.NewFromInt(int64(delta)), ref)
}
