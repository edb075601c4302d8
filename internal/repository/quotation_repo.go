package repository

import (
	"context"

	"tilerp/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuotationRepository interface {
	// CreateTx inserts the header only; items go through CreateItemTx.
	CreateTx(tx *gorm.DB, q *model.Quotation) error
	CreateItemTx(tx *gorm.DB, item *model.QuotationItem) error
	// FindByIDForUpdateTx locks the header row and loads its items.
	FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Quotation, error)
	UpdateHeaderTx(tx *gorm.DB, q *model.Quotation) error
	DeleteItemsTx(tx *gorm.DB, quotationID uint) error
	// AddItemWeightTx moves the dispatched-quantity accumulator, clamped at zero.
	AddItemWeightTx(tx *gorm.DB, itemID uint, delta decimal.Decimal) error
	UpdateBalanceTx(tx *gorm.DB, id uint, paid, due decimal.Decimal) error
	MarkSettledTx(tx *gorm.DB, id uint, commission decimal.Decimal) error

	FindByID(ctx context.Context, id uint) (*model.Quotation, error)
	List(ctx context.Context, page, limit int) ([]model.Quotation, int64, error)
	ListByArchitect(ctx context.Context, architect string) ([]model.Quotation, error)

	DB() *gorm.DB
}

type quotationRepo struct{ db *gorm.DB }

func NewQuotationRepository(db *gorm.DB) QuotationRepository { return &quotationRepo{db: db} }

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product")
}

func (r *quotationRepo) CreateTx(tx *gorm.DB, q *model.Quotation) error {
	return tx.Omit(clause.Associations).Create(q).Error
}

func (r *quotationRepo) CreateItemTx(tx *gorm.DB, item *model.QuotationItem) error {
	return tx.Omit(clause.Associations).Create(item).Error
}

func (r *quotationRepo) FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Quotation, error) {
	var q model.Quotation
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&q, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("quotation_id = ?", id).Order("id ASC").Find(&q.Items).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quotationRepo) UpdateHeaderTx(tx *gorm.DB, q *model.Quotation) error {
	return tx.Model(&model.Quotation{}).Where("id = ?", q.ID).
		Select("client_name", "contact_no", "alt_contact_no", "gst_no", "email", "address",
			"attended_by", "architect", "additional_discount", "header_section",
			"bottom_section", "grand_total", "due_amount").
		Updates(q).Error
}

func (r *quotationRepo) DeleteItemsTx(tx *gorm.DB, quotationID uint) error {
	return tx.Where("quotation_id = ?", quotationID).Delete(&model.QuotationItem{}).Error
}

func (r *quotationRepo) AddItemWeightTx(tx *gorm.DB, itemID uint, delta decimal.Decimal) error {
	return tx.Model(&model.QuotationItem{}).Where("id = ?", itemID).
		Update("weight", gorm.Expr("GREATEST(weight + ?, 0)", delta)).Error
}

func (r *quotationRepo) UpdateBalanceTx(tx *gorm.DB, id uint, paid, due decimal.Decimal) error {
	return tx.Model(&model.Quotation{}).Where("id = ?", id).
		Updates(map[string]interface{}{"paid_amount": paid, "due_amount": due}).Error
}

func (r *quotationRepo) MarkSettledTx(tx *gorm.DB, id uint, commission decimal.Decimal) error {
	return tx.Model(&model.Quotation{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_settled": true, "commission_amount": commission}).Error
}

func (r *quotationRepo) FindByID(ctx context.Context, id uint) (*model.Quotation, error) {
	var q model.Quotation
	if err := preloadItems(r.db.WithContext(ctx)).First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quotationRepo) List(ctx context.Context, page, limit int) ([]model.Quotation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Quotation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quotations []model.Quotation
	offset := (page - 1) * limit
	err := preloadItems(r.db.WithContext(ctx)).
		Order("id DESC").Limit(limit).Offset(offset).Find(&quotations).Error
	return quotations, total, err
}

func (r *quotationRepo) ListByArchitect(ctx context.Context, architect string) ([]model.Quotation, error) {
	var quotations []model.Quotation
	err := preloadItems(r.db.WithContext(ctx)).
		Where("architect = ?", architect).
		Order("id DESC").Find(&quotations).Error
	return quotations, err
}

func (r *quotationRepo) DB() *gorm.DB { return r.db }
