package repository

import (
	"context"

	"tilerp/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DispatchTotal is the quantity already dispatched for one product of a quotation.
type DispatchTotal struct {
	QuotationID uint
	ProductID   uint
	Boxes       int64
	Qty         decimal.Decimal
}

type ChallanRepository interface {
	CreateTx(tx *gorm.DB, c *model.DeliveryChallan) error
	CreateItemTx(tx *gorm.DB, item *model.DeliveryChallanItem) error
	CreateDeductionTx(tx *gorm.DB, d *model.DeliveryChallanDeduction) error
	// FindByIDForUpdateTx locks the header row and loads items with their deductions.
	FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.DeliveryChallan, error)
	// DeleteTx removes deductions, items and header. Returns header rows affected.
	DeleteTx(tx *gorm.DB, id uint) (int64, error)
	DispatchedTx(tx *gorm.DB, quotationID uint) ([]DispatchTotal, error)

	FindByID(ctx context.Context, id uint) (*model.DeliveryChallan, error)
	List(ctx context.Context) ([]model.DeliveryChallan, error)
	Dispatched(ctx context.Context, quotationIDs []uint) ([]DispatchTotal, error)

	DB() *gorm.DB
}

type challanRepo struct{ db *gorm.DB }

func NewChallanRepository(db *gorm.DB) ChallanRepository { return &challanRepo{db: db} }

func preloadChallanItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Deductions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (r *challanRepo) CreateTx(tx *gorm.DB, c *model.DeliveryChallan) error {
	return tx.Omit(clause.Associations).Create(c).Error
}

func (r *challanRepo) CreateItemTx(tx *gorm.DB, item *model.DeliveryChallanItem) error {
	return tx.Omit(clause.Associations).Create(item).Error
}

func (r *challanRepo) CreateDeductionTx(tx *gorm.DB, d *model.DeliveryChallanDeduction) error {
	return tx.Create(d).Error
}

func (r *challanRepo) FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.DeliveryChallan, error) {
	var c model.DeliveryChallan
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("challan_id = ?", id).Order("id ASC").
		Preload("Deductions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Find(&c.Items).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *challanRepo) DeleteTx(tx *gorm.DB, id uint) (int64, error) {
	itemIDs := tx.Model(&model.DeliveryChallanItem{}).Select("id").Where("challan_id = ?", id)
	if err := tx.Where("challan_item_id IN (?)", itemIDs).Delete(&model.DeliveryChallanDeduction{}).Error; err != nil {
		return 0, err
	}
	if err := tx.Where("challan_id = ?", id).Delete(&model.DeliveryChallanItem{}).Error; err != nil {
		return 0, err
	}
	res := tx.Delete(&model.DeliveryChallan{}, id)
	return res.RowsAffected, res.Error
}

func dispatchedQuery(db *gorm.DB) *gorm.DB {
	return db.Table("delivery_challan_items AS dci").
		Select("dc.quotation_id, dci.product_id, COALESCE(SUM(dci.dispatch_boxes), 0) AS boxes, COALESCE(SUM(dci.dispatch_qty), 0) AS qty").
		Joins("JOIN delivery_challans dc ON dc.id = dci.challan_id").
		Group("dc.quotation_id, dci.product_id")
}

func (r *challanRepo) DispatchedTx(tx *gorm.DB, quotationID uint) ([]DispatchTotal, error) {
	var totals []DispatchTotal
	err := dispatchedQuery(tx).Where("dc.quotation_id = ?", quotationID).Scan(&totals).Error
	return totals, err
}

func (r *challanRepo) FindByID(ctx context.Context, id uint) (*model.DeliveryChallan, error) {
	var c model.DeliveryChallan
	if err := preloadChallanItems(r.db.WithContext(ctx)).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *challanRepo) List(ctx context.Context) ([]model.DeliveryChallan, error) {
	var challans []model.DeliveryChallan
	err := preloadChallanItems(r.db.WithContext(ctx)).Order("id DESC").Find(&challans).Error
	return challans, err
}

func (r *challanRepo) Dispatched(ctx context.Context, quotationIDs []uint) ([]DispatchTotal, error) {
	var totals []DispatchTotal
	if len(quotationIDs) == 0 {
		return totals, nil
	}
	err := dispatchedQuery(r.db.WithContext(ctx)).Where("dc.quotation_id IN ?", quotationIDs).Scan(&totals).Error
	return totals, err
}

func (r *challanRepo) DB() *gorm.DB { return r.db }
