package repository

import (
	"context"

	"tilerp/internal/dto"
	"tilerp/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseRepository interface {
	// CreateTx inserts the bill header only; items go through CreateItemTx.
	CreateTx(tx *gorm.DB, p *model.Purchase) error
	CreateItemTx(tx *gorm.DB, item *model.PurchaseItem) error
	// FindByIDForUpdateTx locks the header row and loads its items.
	FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Purchase, error)
	UpdateHeaderTx(tx *gorm.DB, p *model.Purchase) error
	DeleteItemsTx(tx *gorm.DB, purchaseID uint) error

	FindByID(ctx context.Context, id uint) (*model.Purchase, error)
	List(ctx context.Context, filter dto.PurchaseFilter) ([]model.Purchase, int64, error)
	// ProductNames resolves product ids to names for display.
	ProductNames(ctx context.Context, ids []uint) (map[uint]string, error)

	DB() *gorm.DB
}

type purchaseRepo struct{ db *gorm.DB }

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository { return &purchaseRepo{db: db} }

func (r *purchaseRepo) CreateTx(tx *gorm.DB, p *model.Purchase) error {
	return tx.Omit(clause.Associations).Create(p).Error
}

func (r *purchaseRepo) CreateItemTx(tx *gorm.DB, item *model.PurchaseItem) error {
	return tx.Create(item).Error
}

func (r *purchaseRepo) FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Purchase, error) {
	var p model.Purchase
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("purchase_id = ?", id).Order("id ASC").Find(&p.Items).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *purchaseRepo) UpdateHeaderTx(tx *gorm.DB, p *model.Purchase) error {
	return tx.Model(&model.Purchase{}).Where("id = ?", p.ID).
		Select("bill_no", "purchase_date", "client_name", "client_contact", "sub_total").
		Updates(p).Error
}

func (r *purchaseRepo) DeleteItemsTx(tx *gorm.DB, purchaseID uint) error {
	return tx.Where("purchase_id = ?", purchaseID).Delete(&model.PurchaseItem{}).Error
}

func (r *purchaseRepo) FindByID(ctx context.Context, id uint) (*model.Purchase, error) {
	var p model.Purchase
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *purchaseRepo) List(ctx context.Context, filter dto.PurchaseFilter) ([]model.Purchase, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Purchase{})
	if filter.BillNo != "" {
		q = q.Where("bill_no = ?", filter.BillNo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchases []model.Purchase
	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("id DESC").Limit(filter.Limit).Offset(offset).Find(&purchases).Error
	return purchases, total, err
}

func (r *purchaseRepo) ProductNames(ctx context.Context, ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var products []model.Product
	if err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}

func (r *purchaseRepo) DB() *gorm.DB { return r.db }
