package infra

import (
	"fmt"

	"tilerp/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// NewDatabase opens a GORM connection for the configured driver. Schema work
// is done separately by RunMigrations, once per process start.
func NewDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres, "":
		dialector = postgres.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Unique-key violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// models lists every table in dependency order.
var models = []interface{}{
	&model.Product{},
	&model.ProductBatch{},
	&model.StockMovement{},
	&model.Purchase{},
	&model.PurchaseItem{},
	&model.Quotation{},
	&model.QuotationItem{},
	&model.DeliveryChallan{},
	&model.DeliveryChallanItem{},
	&model.DeliveryChallanDeduction{},
	&model.PaymentRequest{},
	&model.ArchitectLedger{},
	&model.ArchitectSettlement{},
}

// RunMigrations creates or updates every table and then applies the
// idempotent SQL patches GORM tags cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs partial indexes that only PostgreSQL supports.
// Each statement uses IF NOT EXISTS so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	if db.Dialector.Name() != DriverPostgres {
		return nil
	}
	patches := []string{
		// FIFO scan: only batches with stock left are candidates.
		`CREATE INDEX IF NOT EXISTS idx_product_batches_fifo
		    ON product_batches (product_id, batch_no)
		    WHERE qty > 0`,
		// Approval queue.
		`CREATE INDEX IF NOT EXISTS idx_payment_requests_pending
		    ON payment_requests (created_at)
		    WHERE status = 'pending'`,
		// At most one settlement per quotation.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_architect_settlements_quotation
		    ON architect_settlements (quotation_id)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
