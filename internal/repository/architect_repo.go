package repository

import (
	"context"

	"tilerp/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArchitectRepository appends commission history. Rows are never updated.
type ArchitectRepository interface {
	CreateLedgerTx(tx *gorm.DB, l *model.ArchitectLedger) error
	CreateSettlementTx(tx *gorm.DB, s *model.ArchitectSettlement) error
	// ListLedger returns the architect's history with the owning quotation loaded.
	ListLedger(ctx context.Context, architectID string) ([]model.ArchitectLedger, error)
}

type architectRepo struct{ db *gorm.DB }

func NewArchitectRepository(db *gorm.DB) ArchitectRepository { return &architectRepo{db: db} }

func (r *architectRepo) CreateLedgerTx(tx *gorm.DB, l *model.ArchitectLedger) error {
	return tx.Omit(clause.Associations).Create(l).Error
}

func (r *architectRepo) CreateSettlementTx(tx *gorm.DB, s *model.ArchitectSettlement) error {
	return tx.Create(s).Error
}

func (r *architectRepo) ListLedger(ctx context.Context, architectID string) ([]model.ArchitectLedger, error) {
	var entries []model.ArchitectLedger
	err := r.db.WithContext(ctx).Preload("Quotation").
		Where("architect_id = ?", architectID).
		Order("id DESC").Find(&entries).Error
	return entries, err
}
