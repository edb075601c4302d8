package repository

import (
	"context"

	"tilerp/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository owns product batches and the stock movement ledger.
type StockRepository interface {
	// FindBatchTx locks and returns the (product, batch_no) row.
	// Returns gorm.ErrRecordNotFound when the batch does not exist yet.
	FindBatchTx(tx *gorm.DB, productID uint, batchNo string) (*model.ProductBatch, error)
	FindBatchByIDTx(tx *gorm.DB, id uint) (*model.ProductBatch, error)
	CreateBatchTx(tx *gorm.DB, b *model.ProductBatch) error
	AddBatchQtyTx(tx *gorm.DB, batchID uint, delta decimal.Decimal) error
	// LockBatchesFIFOTx returns the product's batches with stock, ordered by
	// batch_no ascending and locked for the rest of the transaction.
	LockBatchesFIFOTx(tx *gorm.DB, productID uint) ([]model.ProductBatch, error)
	// LockProductBatchesTx returns every batch of the product, empty ones
	// included, locked for the rest of the transaction.
	LockProductBatchesTx(tx *gorm.DB, productID uint) ([]model.ProductBatch, error)
	UpdateBatchLocationTx(tx *gorm.DB, batchID uint, location string) error
	// BatchReferencedTx reports whether any movement points at the batch.
	BatchReferencedTx(tx *gorm.DB, batchID uint) (bool, error)
	DeleteBatchTx(tx *gorm.DB, batchID uint) error
	CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error

	ListBatches(ctx context.Context, productIDs []uint) ([]model.ProductBatch, error)
	ListMovements(ctx context.Context, productID uint, page, limit int) ([]model.StockMovement, int64, error)
	// SumBatchLedger sums the qty-unit movements per batch of a product.
	SumBatchLedger(ctx context.Context, productID uint) (map[uint]decimal.Decimal, error)
	// SumBoxLedger sums the box-unit movements of a product.
	SumBoxLedger(ctx context.Context, productID uint) (decimal.Decimal, error)

	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepo{db: db}
}

func (r *stockRepo) FindBatchTx(tx *gorm.DB, productID uint, batchNo string) (*model.ProductBatch, error) {
	var b model.ProductBatch
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND batch_no = ?", productID, batchNo).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *stockRepo) FindBatchByIDTx(tx *gorm.DB, id uint) (*model.ProductBatch, error) {
	var b model.ProductBatch
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *stockRepo) CreateBatchTx(tx *gorm.DB, b *model.ProductBatch) error {
	return tx.Create(b).Error
}

func (r *stockRepo) AddBatchQtyTx(tx *gorm.DB, batchID uint, delta decimal.Decimal) error {
	return tx.Model(&model.ProductBatch{}).Where("id = ?", batchID).
		Update("qty", gorm.Expr("qty + ?", delta)).Error
}

func (r *stockRepo) LockBatchesFIFOTx(tx *gorm.DB, productID uint) ([]model.ProductBatch, error) {
	var batches []model.ProductBatch
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND qty > 0", productID).
		Order("batch_no ASC").
		Find(&batches).Error
	return batches, err
}

func (r *stockRepo) LockProductBatchesTx(tx *gorm.DB, productID uint) ([]model.ProductBatch, error) {
	var batches []model.ProductBatch
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		Order("batch_no ASC").
		Find(&batches).Error
	return batches, err
}

func (r *stockRepo) UpdateBatchLocationTx(tx *gorm.DB, batchID uint, location string) error {
	return tx.Model(&model.ProductBatch{}).Where("id = ?", batchID).Update("location", location).Error
}

func (r *stockRepo) BatchReferencedTx(tx *gorm.DB, batchID uint) (bool, error) {
	var n int64
	err := tx.Model(&model.StockMovement{}).Where("batch_id = ?", batchID).Limit(1).Count(&n).Error
	return n > 0, err
}

func (r *stockRepo) DeleteBatchTx(tx *gorm.DB, batchID uint) error {
	return tx.Delete(&model.ProductBatch{}, batchID).Error
}

func (r *stockRepo) CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockRepo) ListBatches(ctx context.Context, productIDs []uint) ([]model.ProductBatch, error) {
	var batches []model.ProductBatch
	if len(productIDs) == 0 {
		return batches, nil
	}
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_id ASC, batch_no ASC").
		Find(&batches).Error
	return batches, err
}

func (r *stockRepo) ListMovements(ctx context.Context, productID uint, page, limit int) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).Where("product_id = ?", productID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movements []model.StockMovement
	err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}

func (r *stockRepo) SumBatchLedger(ctx context.Context, productID uint) (map[uint]decimal.Decimal, error) {
	var rows []struct {
		BatchID uint
		Total   decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select("batch_id, COALESCE(SUM(delta), 0) AS total").
		Where("product_id = ? AND unit = ? AND batch_id IS NOT NULL", productID, model.UnitQty).
		Group("batch_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[uint]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.BatchID] = row.Total
	}
	return sums, nil
}

func (r *stockRepo) SumBoxLedger(ctx context.Context, productID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select("COALESCE(SUM(delta), 0)").
		Where("product_id = ? AND unit = ?", productID, model.UnitBox).
		Row().Scan(&total)
	return total, err
}

func (r *stockRepo) DB() *gorm.DB { return r.db }
