package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"tilerp/internal/dto"
	"tilerp/internal/model"
	"tilerp/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store shared by all repository stubs ───────────────────────────
// Services run with a nil *gorm.DB, so runTx calls the closure directly and
// every stub ignores its tx argument.

type memStore struct {
	nextID uint

	products       map[uint]*model.Product
	batches        map[uint]*model.ProductBatch
	movements      []model.StockMovement
	purchases      map[uint]*model.Purchase
	purchaseItems  map[uint][]model.PurchaseItem
	quotations     map[uint]*model.Quotation
	quotationItems map[uint]*model.QuotationItem
	challans       map[uint]*model.DeliveryChallan
	challanItems   map[uint]*model.DeliveryChallanItem
	deductions     map[uint]*model.DeliveryChallanDeduction
	payments       map[uint]*model.PaymentRequest
	ledger         []model.ArchitectLedger
	settlements    []model.ArchitectSettlement
}

func newMemStore() *memStore {
	return &memStore{
		products:       make(map[uint]*model.Product),
		batches:        make(map[uint]*model.ProductBatch),
		purchases:      make(map[uint]*model.Purchase),
		purchaseItems:  make(map[uint][]model.PurchaseItem),
		quotations:     make(map[uint]*model.Quotation),
		quotationItems: make(map[uint]*model.QuotationItem),
		challans:       make(map[uint]*model.DeliveryChallan),
		challanItems:   make(map[uint]*model.DeliveryChallanItem),
		deductions:     make(map[uint]*model.DeliveryChallanDeduction),
		payments:       make(map[uint]*model.PaymentRequest),
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) productBatches(productID uint) []model.ProductBatch {
	var out []model.ProductBatch
	for _, b := range s.batches {
		if b.ProductID == productID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BatchNo < out[j].BatchNo })
	return out
}

func (s *memStore) batchByNo(productID uint, batchNo string) *model.ProductBatch {
	for _, b := range s.batches {
		if b.ProductID == productID && b.BatchNo == batchNo {
			return b
		}
	}
	return nil
}

// ── ProductRepository ────────────────────────────────────────────────────────

type stubProductRepo struct{ s *memStore }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	return r.CreateTx(nil, p)
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	stored := *p
	stored.Batches = nil
	r.s.products[p.ID] = &stored
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uint) (*model.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *p
	out.Batches = r.s.productBatches(id)
	return &out, nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uint) (*model.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *p
	return &out, nil
}

func (r *stubProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.s.products {
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) UpdateTx(_ *gorm.DB, p *model.Product) error {
	stored, ok := r.s.products[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	avail := stored.AvailQty
	*stored = *p
	stored.AvailQty = avail
	stored.Batches = nil
	return nil
}

func (r *stubProductRepo) AdjustAvailQtyTx(_ *gorm.DB, id uint, delta int) error {
	p, ok := r.s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.AvailQty = max(p.AvailQty+delta, 0)
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// ── StockRepository ──────────────────────────────────────────────────────────

type stubStockRepo struct{ s *memStore }

var _ repository.StockRepository = (*stubStockRepo)(nil)

func (r *stubStockRepo) FindBatchTx(_ *gorm.DB, productID uint, batchNo string) (*model.ProductBatch, error) {
	b := r.s.batchByNo(productID, batchNo)
	if b == nil {
		return nil, gorm.ErrRecordNotFound
	}
	out := *b
	return &out, nil
}

func (r *stubStockRepo) FindBatchByIDTx(_ *gorm.DB, id uint) (*model.ProductBatch, error) {
	b, ok := r.s.batches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *b
	return &out, nil
}

func (r *stubStockRepo) CreateBatchTx(_ *gorm.DB, b *model.ProductBatch) error {
	b.ID = r.s.id()
	stored := *b
	r.s.batches[b.ID] = &stored
	return nil
}

func (r *stubStockRepo) AddBatchQtyTx(_ *gorm.DB, batchID uint, delta decimal.Decimal) error {
	b, ok := r.s.batches[batchID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.Qty = b.Qty.Add(delta)
	return nil
}

func (r *stubStockRepo) LockBatchesFIFOTx(_ *gorm.DB, productID uint) ([]model.ProductBatch, error) {
	var out []model.ProductBatch
	for _, b := range r.s.productBatches(productID) {
		if b.Qty.IsPositive() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *stubStockRepo) LockProductBatchesTx(_ *gorm.DB, productID uint) ([]model.ProductBatch, error) {
	return r.s.productBatches(productID), nil
}

func (r *stubStockRepo) UpdateBatchLocationTx(_ *gorm.DB, batchID uint, location string) error {
	b, ok := r.s.batches[batchID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.Location = location
	return nil
}

func (r *stubStockRepo) BatchReferencedTx(_ *gorm.DB, batchID uint) (bool, error) {
	for _, m := range r.s.movements {
		if m.BatchID != nil && *m.BatchID == batchID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubStockRepo) DeleteBatchTx(_ *gorm.DB, batchID uint) error {
	delete(r.s.batches, batchID)
	return nil
}

func (r *stubStockRepo) CreateMovementTx(_ *gorm.DB, m *model.StockMovement) error {
	m.ID = r.s.id()
	m.CreatedAt = time.Now()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *stubStockRepo) ListBatches(_ context.Context, productIDs []uint) ([]model.ProductBatch, error) {
	var out []model.ProductBatch
	for _, pid := range productIDs {
		out = append(out, r.s.productBatches(pid)...)
	}
	return out, nil
}

func (r *stubStockRepo) ListMovements(_ context.Context, productID uint, page, limit int) ([]model.StockMovement, int64, error) {
	var all []model.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			all = append(all, m)
		}
	}
	start := min((page-1)*limit, len(all))
	end := min(start+limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func (r *stubStockRepo) SumBatchLedger(_ context.Context, productID uint) (map[uint]decimal.Decimal, error) {
	out := make(map[uint]decimal.Decimal)
	for _, m := range r.s.movements {
		if m.ProductID == productID && m.Unit == model.UnitQty && m.BatchID != nil {
			out[*m.BatchID] = out[*m.BatchID].Add(m.Delta)
		}
	}
	return out, nil
}

func (r *stubStockRepo) SumBoxLedger(_ context.Context, productID uint) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range r.s.movements {
		if m.ProductID == productID && m.Unit == model.UnitBox {
			total = total.Add(m.Delta)
		}
	}
	return total, nil
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

// ── PurchaseRepository ───────────────────────────────────────────────────────

type stubPurchaseRepo struct{ s *memStore }

var _ repository.PurchaseRepository = (*stubPurchaseRepo)(nil)

func (r *stubPurchaseRepo) billTaken(billNo string, except uint) bool {
	for id, p := range r.s.purchases {
		if id != except && p.BillNo == billNo {
			return true
		}
	}
	return false
}

func (r *stubPurchaseRepo) CreateTx(_ *gorm.DB, p *model.Purchase) error {
	if r.billTaken(p.BillNo, 0) {
		return gorm.ErrDuplicatedKey
	}
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	stored := *p
	stored.Items = nil
	r.s.purchases[p.ID] = &stored
	return nil
}

func (r *stubPurchaseRepo) CreateItemTx(_ *gorm.DB, item *model.PurchaseItem) error {
	item.ID = r.s.id()
	r.s.purchaseItems[item.PurchaseID] = append(r.s.purchaseItems[item.PurchaseID], *item)
	return nil
}

func (r *stubPurchaseRepo) find(id uint) (*model.Purchase, error) {
	p, ok := r.s.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *p
	out.Items = append([]model.PurchaseItem(nil), r.s.purchaseItems[id]...)
	return &out, nil
}

func (r *stubPurchaseRepo) FindByIDForUpdateTx(_ *gorm.DB, id uint) (*model.Purchase, error) {
	return r.find(id)
}

func (r *stubPurchaseRepo) UpdateHeaderTx(_ *gorm.DB, p *model.Purchase) error {
	if r.billTaken(p.BillNo, p.ID) {
		return gorm.ErrDuplicatedKey
	}
	stored := *p
	stored.Items = nil
	r.s.purchases[p.ID] = &stored
	return nil
}

func (r *stubPurchaseRepo) DeleteItemsTx(_ *gorm.DB, purchaseID uint) error {
	delete(r.s.purchaseItems, purchaseID)
	return nil
}

func (r *stubPurchaseRepo) FindByID(_ context.Context, id uint) (*model.Purchase, error) {
	return r.find(id)
}

func (r *stubPurchaseRepo) List(_ context.Context, filter dto.PurchaseFilter) ([]model.Purchase, int64, error) {
	var out []model.Purchase
	for id, p := range r.s.purchases {
		if filter.BillNo != "" && !strings.Contains(p.BillNo, filter.BillNo) {
			continue
		}
		full, _ := r.find(id)
		out = append(out, *full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	if filter.Limit > 0 {
		start := min((max(filter.Page, 1)-1)*filter.Limit, len(out))
		out = out[start:min(start+filter.Limit, len(out))]
	}
	return out, total, nil
}

func (r *stubPurchaseRepo) ProductNames(_ context.Context, ids []uint) (map[uint]string, error) {
	out := make(map[uint]string, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = p.Name
		}
	}
	return out, nil
}

func (r *stubPurchaseRepo) DB() *gorm.DB { return nil }

// ── QuotationRepository ──────────────────────────────────────────────────────

type stubQuotationRepo struct{ s *memStore }

var _ repository.QuotationRepository = (*stubQuotationRepo)(nil)

func (r *stubQuotationRepo) CreateTx(_ *gorm.DB, q *model.Quotation) error {
	q.ID = r.s.id()
	q.CreatedAt = time.Now()
	stored := *q
	stored.Items = nil
	r.s.quotations[q.ID] = &stored
	return nil
}

func (r *stubQuotationRepo) CreateItemTx(_ *gorm.DB, item *model.QuotationItem) error {
	item.ID = r.s.id()
	stored := *item
	r.s.quotationItems[item.ID] = &stored
	return nil
}

func (r *stubQuotationRepo) find(id uint, withProduct bool) (*model.Quotation, error) {
	q, ok := r.s.quotations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *q
	out.Items = nil
	for _, it := range r.s.quotationItems {
		if it.QuotationID != id {
			continue
		}
		item := *it
		if withProduct {
			if p, ok := r.s.products[it.ProductID]; ok {
				cp := *p
				item.Product = &cp
			}
		}
		out.Items = append(out.Items, item)
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].ID < out.Items[j].ID })
	return &out, nil
}

func (r *stubQuotationRepo) FindByIDForUpdateTx(_ *gorm.DB, id uint) (*model.Quotation, error) {
	return r.find(id, false)
}

func (r *stubQuotationRepo) UpdateHeaderTx(_ *gorm.DB, q *model.Quotation) error {
	stored, ok := r.s.quotations[q.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	created := stored.CreatedAt
	*stored = *q
	stored.Items = nil
	stored.CreatedAt = created
	return nil
}

func (r *stubQuotationRepo) DeleteItemsTx(_ *gorm.DB, quotationID uint) error {
	for id, it := range r.s.quotationItems {
		if it.QuotationID == quotationID {
			delete(r.s.quotationItems, id)
		}
	}
	return nil
}

func (r *stubQuotationRepo) AddItemWeightTx(_ *gorm.DB, itemID uint, delta decimal.Decimal) error {
	it, ok := r.s.quotationItems[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	it.Weight = decimal.Max(it.Weight.Add(delta), decimal.Zero)
	return nil
}

func (r *stubQuotationRepo) UpdateBalanceTx(_ *gorm.DB, id uint, paid, due decimal.Decimal) error {
	q, ok := r.s.quotations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	q.PaidAmount = paid
	q.DueAmount = due
	return nil
}

func (r *stubQuotationRepo) MarkSettledTx(_ *gorm.DB, id uint, commission decimal.Decimal) error {
	q, ok := r.s.quotations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	q.IsSettled = true
	q.CommissionAmount = commission
	return nil
}

func (r *stubQuotationRepo) FindByID(_ context.Context, id uint) (*model.Quotation, error) {
	return r.find(id, true)
}

func (r *stubQuotationRepo) List(_ context.Context, page, limit int) ([]model.Quotation, int64, error) {
	ids := make([]uint, 0, len(r.s.quotations))
	for id := range r.s.quotations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	start := min((page-1)*limit, len(ids))
	end := min(start+limit, len(ids))
	var out []model.Quotation
	for _, id := range ids[start:end] {
		q, _ := r.find(id, true)
		out = append(out, *q)
	}
	return out, int64(len(ids)), nil
}

func (r *stubQuotationRepo) ListByArchitect(_ context.Context, architect string) ([]model.Quotation, error) {
	var out []model.Quotation
	for id, q := range r.s.quotations {
		if q.Architect == architect {
			full, _ := r.find(id, true)
			out = append(out, *full)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubQuotationRepo) DB() *gorm.DB { return nil }

// ── ChallanRepository ────────────────────────────────────────────────────────

type stubChallanRepo struct{ s *memStore }

var _ repository.ChallanRepository = (*stubChallanRepo)(nil)

func (r *stubChallanRepo) CreateTx(_ *gorm.DB, c *model.DeliveryChallan) error {
	c.ID = r.s.id()
	c.CreatedAt = time.Now()
	stored := *c
	stored.Items = nil
	r.s.challans[c.ID] = &stored
	return nil
}

func (r *stubChallanRepo) CreateItemTx(_ *gorm.DB, item *model.DeliveryChallanItem) error {
	item.ID = r.s.id()
	stored := *item
	stored.Deductions = nil
	r.s.challanItems[item.ID] = &stored
	return nil
}

func (r *stubChallanRepo) CreateDeductionTx(_ *gorm.DB, d *model.DeliveryChallanDeduction) error {
	d.ID = r.s.id()
	stored := *d
	r.s.deductions[d.ID] = &stored
	return nil
}

func (r *stubChallanRepo) find(id uint) (*model.DeliveryChallan, error) {
	c, ok := r.s.challans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *c
	out.Items = nil
	for _, it := range r.s.challanItems {
		if it.ChallanID != id {
			continue
		}
		item := *it
		for _, d := range r.s.deductions {
			if d.ChallanItemID == it.ID {
				item.Deductions = append(item.Deductions, *d)
			}
		}
		sort.Slice(item.Deductions, func(i, j int) bool { return item.Deductions[i].ID < item.Deductions[j].ID })
		out.Items = append(out.Items, item)
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].ID < out.Items[j].ID })
	return &out, nil
}

func (r *stubChallanRepo) FindByIDForUpdateTx(_ *gorm.DB, id uint) (*model.DeliveryChallan, error) {
	return r.find(id)
}

func (r *stubChallanRepo) DeleteTx(_ *gorm.DB, id uint) (int64, error) {
	if _, ok := r.s.challans[id]; !ok {
		return 0, nil
	}
	for itemID, it := range r.s.challanItems {
		if it.ChallanID != id {
			continue
		}
		for dID, d := range r.s.deductions {
			if d.ChallanItemID == itemID {
				delete(r.s.deductions, dID)
			}
		}
		delete(r.s.challanItems, itemID)
	}
	delete(r.s.challans, id)
	return 1, nil
}

func (r *stubChallanRepo) totals(quotationIDs []uint) []repository.DispatchTotal {
	want := make(map[uint]bool, len(quotationIDs))
	for _, id := range quotationIDs {
		want[id] = true
	}
	type key struct{ qid, pid uint }
	acc := make(map[key]*repository.DispatchTotal)
	for _, it := range r.s.challanItems {
		c := r.s.challans[it.ChallanID]
		if c == nil || !want[c.QuotationID] {
			continue
		}
		k := key{c.QuotationID, it.ProductID}
		t, ok := acc[k]
		if !ok {
			t = &repository.DispatchTotal{QuotationID: c.QuotationID, ProductID: it.ProductID}
			acc[k] = t
		}
		t.Boxes += int64(it.DispatchBoxes)
		t.Qty = t.Qty.Add(it.DispatchQty)
	}
	out := make([]repository.DispatchTotal, 0, len(acc))
	for _, t := range acc {
		out = append(out, *t)
	}
	return out
}

func (r *stubChallanRepo) DispatchedTx(_ *gorm.DB, quotationID uint) ([]repository.DispatchTotal, error) {
	return r.totals([]uint{quotationID}), nil
}

func (r *stubChallanRepo) FindByID(_ context.Context, id uint) (*model.DeliveryChallan, error) {
	return r.find(id)
}

func (r *stubChallanRepo) List(_ context.Context) ([]model.DeliveryChallan, error) {
	var out []model.DeliveryChallan
	for id := range r.s.challans {
		c, _ := r.find(id)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubChallanRepo) Dispatched(_ context.Context, quotationIDs []uint) ([]repository.DispatchTotal, error) {
	return r.totals(quotationIDs), nil
}

func (r *stubChallanRepo) DB() *gorm.DB { return nil }

// ── PaymentRepository ────────────────────────────────────────────────────────

type stubPaymentRepo struct{ s *memStore }

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

func (r *stubPaymentRepo) Create(_ context.Context, p *model.PaymentRequest) error {
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	stored := *p
	r.s.payments[p.ID] = &stored
	return nil
}

func (r *stubPaymentRepo) ListPending(_ context.Context) ([]repository.PendingPayment, error) {
	var out []repository.PendingPayment
	for _, p := range r.s.payments {
		if p.Status != model.PaymentPending {
			continue
		}
		row := repository.PendingPayment{
			ID:          p.ID,
			QuotationID: p.QuotationID,
			Amount:      p.Amount,
			PaymentType: p.PaymentType,
			Remark:      p.Remark,
			Status:      p.Status,
			CreatedAt:   p.CreatedAt,
		}
		if q, ok := r.s.quotations[p.QuotationID]; ok {
			row.ClientName = q.ClientName
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubPaymentRepo) FindByIDForUpdateTx(_ *gorm.DB, id uint) (*model.PaymentRequest, error) {
	p, ok := r.s.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *p
	return &out, nil
}

func (r *stubPaymentRepo) UpdateStatusTx(_ *gorm.DB, id uint, status string) error {
	p, ok := r.s.payments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (r *stubPaymentRepo) DB() *gorm.DB { return nil }

// ── ArchitectRepository ──────────────────────────────────────────────────────

type stubArchitectRepo struct{ s *memStore }

var _ repository.ArchitectRepository = (*stubArchitectRepo)(nil)

func (r *stubArchitectRepo) CreateLedgerTx(_ *gorm.DB, l *model.ArchitectLedger) error {
	l.ID = r.s.id()
	l.SettledAt = time.Now()
	r.s.ledger = append(r.s.ledger, *l)
	return nil
}

func (r *stubArchitectRepo) CreateSettlementTx(_ *gorm.DB, st *model.ArchitectSettlement) error {
	st.ID = r.s.id()
	st.SettlementDate = time.Now()
	r.s.settlements = append(r.s.settlements, *st)
	return nil
}

func (r *stubArchitectRepo) ListLedger(_ context.Context, architectID string) ([]model.ArchitectLedger, error) {
	var out []model.ArchitectLedger
	for _, l := range r.s.ledger {
		if l.ArchitectID != architectID {
			continue
		}
		if q, ok := r.s.quotations[l.QuotationID]; ok {
			cp := *q
			l.Quotation = &cp
		}
		out = append(out, l)
	}
	return out, nil
}

// ── Test environment ─────────────────────────────────────────────────────────

type testEnv struct {
	store *memStore

	productRepo   *stubProductRepo
	stockRepo     *stubStockRepo
	purchaseRepo  *stubPurchaseRepo
	quotationRepo *stubQuotationRepo
	challanRepo   *stubChallanRepo
	paymentRepo   *stubPaymentRepo
	architectRepo *stubArchitectRepo

	ledger     StockLedger
	products   ProductService
	purchases  PurchaseService
	quotations QuotationService
	dispatch   DispatchService
	payments   PaymentService
}

func newTestEnv() *testEnv {
	return newTestEnvWithLocker(NoopLocker{})
}

func newTestEnvWithLocker(locker Locker) *testEnv {
	s := newMemStore()
	env := &testEnv{
		store:         s,
		productRepo:   &stubProductRepo{s},
		stockRepo:     &stubStockRepo{s},
		purchaseRepo:  &stubPurchaseRepo{s},
		quotationRepo: &stubQuotationRepo{s},
		challanRepo:   &stubChallanRepo{s},
		paymentRepo:   &stubPaymentRepo{s},
		architectRepo: &stubArchitectRepo{s},
	}
	env.ledger = NewStockLedger(env.productRepo, env.stockRepo)
	env.products = NewProductService(env.productRepo, env.stockRepo, env.ledger)
	env.purchases = NewPurchaseService(env.purchaseRepo, env.productRepo, env.stockRepo, env.ledger)
	env.quotations = NewQuotationService(env.quotationRepo, env.challanRepo, env.stockRepo, env.architectRepo, env.ledger, locker, time.Second)
	env.dispatch = NewDispatchService(env.challanRepo, env.quotationRepo, env.productRepo, env.ledger, locker, time.Second)
	env.payments = NewPaymentService(env.paymentRepo, env.quotationRepo)
	return env
}

// seedProduct stores a product with an opening box counter and batches
// (batchNo → qty) through the product service.
func (e *testEnv) seedProduct(name string, availQty int, batches map[string]int64) uint {
	req := dto.CreateProductRequest{Name: name, AvailQty: availQty}
	for no, qty := range batches {
		req.Batches = append(req.Batches, dto.InitialBatchRequest{BatchNo: no, Qty: decimal.NewFromInt(qty)})
	}
	resp, err := e.products.Create(context.Background(), req)
	if err != nil {
		panic(err)
	}
	return resp.ID
}

func (e *testEnv) batchQty(productID uint, batchNo string) decimal.Decimal {
	b := e.store.batchByNo(productID, batchNo)
	if b == nil {
		return decimal.Zero
	}
	return b.Qty
}

func (e *testEnv) availQty(productID uint) int {
	return e.store.products[productID].AvailQty
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }
