package repository

import (
	"context"
	"time"

	"tilerp/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PendingPayment is a pending request joined with its quotation's client.
type PendingPayment struct {
	ID          uint
	QuotationID uint
	ClientName  string
	Amount      decimal.Decimal
	PaymentType string
	Remark      string
	Status      string
	CreatedAt   time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, p *model.PaymentRequest) error
	ListPending(ctx context.Context) ([]PendingPayment, error)

	// FindByIDForUpdateTx locks the request row until the transaction ends.
	FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.PaymentRequest, error)
	UpdateStatusTx(tx *gorm.DB, id uint, status string) error

	DB() *gorm.DB
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) Create(ctx context.Context, p *model.PaymentRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *paymentRepo) ListPending(ctx context.Context) ([]PendingPayment, error) {
	var rows []PendingPayment
	err := r.db.WithContext(ctx).Table("payment_requests AS pr").
		Select("pr.id, pr.quotation_id, q.client_name, pr.amount, pr.payment_type, pr.remark, pr.status, pr.created_at").
		Joins("JOIN quotations q ON q.id = pr.quotation_id").
		Where("pr.status = ?", model.PaymentPending).
		Order("pr.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *paymentRepo) FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.PaymentRequest, error) {
	var p model.PaymentRequest
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) UpdateStatusTx(tx *gorm.DB, id uint, status string) error {
	return tx.Model(&model.PaymentRequest{}).Where("id = ?", id).Update("status", status).Error
}

func (r *paymentRepo) DB() *gorm.DB { return r.db }
