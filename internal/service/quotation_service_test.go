package service

import (
	"context"
	"testing"

	"tilerp/internal/dto"
	"tilerp/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quotationReq(grand string, rows ...dto.QuotationRow) dto.SaveQuotationRequest {
	return dto.SaveQuotationRequest{
		ClientDetails: dto.ClientDetails{
			Name:      "Mehta Residence",
			ContactNo: "9876543210",
			Email:     "mehta@example.com",
			Address:   "12 MG Road",
			Architect: "ar-sharma",
		},
		Rows:       rows,
		GrandTotal: d(grand),
	}
}

func row(productID uint, box int, cov string) dto.QuotationRow {
	c := d(cov)
	return dto.QuotationRow{
		ProductID: productID,
		Box:       box,
		Cov:       c,
		Rate:      d("100"),
		Area:      c.Mul(decimal.NewFromInt(int64(box))),
	}
}

func TestSaveQuotation_ReservesBoxes(t *testing.T) {
	env := newTestEnv()
	p1 := env.seedProduct("Onyx", 10, nil)
	p2 := env.seedProduct("Marble", 3, nil)

	resp, err := env.quotations.Save(context.Background(), quotationReq("5000", row(p1, 4, "1.44"), row(p2, 5, "2")))
	require.NoError(t, err)
	assert.True(t, resp.PaidAmount.IsZero())
	assert.True(t, resp.DueAmount.Equal(d("5000")))
	assert.Equal(t, "System", resp.AttendedBy)
	assert.Equal(t, "+919876543210", resp.ContactNo)
	require.Len(t, resp.Items, 2)

	assert.Equal(t, 6, env.availQty(p1))
	assert.Equal(t, 0, env.availQty(p2), "reservation clamps the counter at zero")
}

func TestSaveQuotation_UnknownProduct(t *testing.T) {
	env := newTestEnv()
	_, err := env.quotations.Save(context.Background(), quotationReq("10", row(999, 1, "1")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateQuotation_ReleasesAndReserves(t *testing.T) {
	env := newTestEnv()
	pid := env.seedProduct("Onyx", 10, map[string]int64{"A1": 100})

	saved, err := env.quotations.Save(context.Background(), quotationReq("1000", row(pid, 4, "2")))
	require.NoError(t, err)
	assert.Equal(t, 6, env.availQty(pid))

	_, err = env.dispatch.Generate(context.Background(), dto.GenerateChallanRequest{
		QuotationID: saved.ID,
		Items:       []dto.DispatchItem{{ProductID: pid, DispatchBoxes: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, env.availQty(pid))

	updated, err := env.quotations.Update(context.Background(), saved.ID, quotationReq("2000", row(pid, 6, "2")))
	require.NoError(t, err)

	// release 4, reserve 6
	assert.Equal(t, 3, env.availQty(pid))
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 6, updated.Items[0].Box)
	assert.True(t, updated.Items[0].Weight.Equal(d("2")), "dispatched quantity is carried onto the new line")
	assert.True(t, updated.DueAmount.Equal(d("2000")))
}

func TestUpdateQuotation_KeepsPaidAmount(t *testing.T) {
	env := newTestEnv()
	pid := env.seedProduct("Onyx", 10, nil)
	saved, err := env.quotations.Save(context.Background(), quotationReq("1000", row(pid, 1, "1")))
	require.NoError(t, err)

	pr, err := env.payments.Create(context.Background(), dto.CreatePaymentRequest{QuotationID: saved.ID, Amount: d("300")})
	require.NoError(t, err)
	_, err = env.payments.UpdateStatus(context.Background(), dto.UpdatePaymentStatusRequest{RequestID: pr.ID, Status: model.PaymentApproved})
	require.NoError(t, err)

	updated, err := env.quotations.Update(context.Background(), saved.ID, quotationReq("2000", row(pid, 1, "1")))
	require.NoError(t, err)
	assert.True(t, updated.PaidAmount.Equal(d("300")))
	assert.True(t, updated.DueAmount.Equal(d("1700")))
}

func TestUpdateQuotation_NotFound(t *testing.T) {
	env := newTestEnv()
	_, err := env.quotations.Update(context.Background(), 31, quotationReq("1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateQuotation_LockBusy(t *testing.T) {
	env := newTestEnvWithLocker(busyLocker{})
	pid := env.seedProduct("Onyx", 10, nil)
	saved, err := env.quotations.Save(context.Background(), quotationReq("10", row(pid, 1, "1")))
	require.NoError(t, err)

	_, err = env.quotations.Update(context.Background(), saved.ID, quotationReq("10", row(pid, 2, "1")))
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 9, env.availQty(pid))
}

func TestUpdateQuotation_BelowDispatchedBoxes(t *testing.T) {
	env := newTestEnv()
	pid, qid := dispatchFixture(t, env, 5, "4", map[string]int64{"A1": 20})
	_, err := env.dispatch.Generate(context.Background(), dto.GenerateChallanRequest{
		QuotationID: qid,
		Items:       []dto.DispatchItem{{ProductID: pid, DispatchBoxes: 3}},
	})
	require.NoError(t, err)

	_, err = env.quotations.Update(context.Background(), qid, quotationReq("9000", row(pid, 2, "4")))
	assert.ErrorIs(t, err, ErrOverDispatch)
	assert.Equal(t, 2, env.availQty(pid))
	assert.Equal(t, "12", quotationWeight(env, qid, pid))

	// exactly the dispatched boxes is allowed
	updated, err := env.quotations.Update(context.Background(), qid, quotationReq("9000", row(pid, 3, "4")))
	require.NoError(t, err)
	assert.True(t, updated.Items[0].Weight.Equal(d("12")))

	full, err := env.quotations.Get(context.Background(), qid)
	require.NoError(t, err)
	assert.Equal(t, 0, full.Items[0].RemainingBoxes)
}

func TestUpdateQuotation_CannotDropDispatchedProduct(t *testing.T) {
	env := newTestEnv()
	pid, qid := dispatchFixture(t, env, 5, "4", map[string]int64{"A1": 20})
	other := env.seedProduct("Statuario", 10, nil)
	_, err := env.dispatch.Generate(context.Background(), dto.GenerateChallanRequest{
		QuotationID: qid,
		Items:       []dto.DispatchItem{{ProductID: pid, DispatchBoxes: 1}},
	})
	require.NoError(t, err)

	_, err = env.quotations.Update(context.Background(), qid, quotationReq("9000", row(other, 2, "1")))
	assert.ErrorIs(t, err, ErrOverDispatch)
	assert.Equal(t, 10, env.availQty(other))
	assert.Equal(t, "4", quotationWeight(env, qid, pid))
}

func TestSaveQuotation_DuplicateProductRows(t *testing.T) {
	env := newTestEnv()
	pid := env.seedProduct("Onyx", 10, nil)

	_, err := env.quotations.Save(context.Background(), quotationReq("10", row(pid, 1, "1"), row(pid, 2, "1")))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetQuotation_DispatchProgress(t *testing.T) {
	env := newTestEnv()
	pid := env.seedProduct("Onyx", 10, map[string]int64{"A1": 30, "A2": 10})
	saved, err := env.quotations.Save(context.Background(), quotationReq("1000", row(pid, 5, "4")))
	require.NoError(t, err)
	_, err = env.dispatch.Generate(context.Background(), dto.GenerateChallanRequest{
		QuotationID: saved.ID,
		Items:       []dto.DispatchItem{{ProductID: pid, DispatchBoxes: 2}},
	})
	require.NoError(t, err)

	full, err := env.quotations.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	require.Len(t, full.Items, 1)
	line := full.Items[0]
	assert.Equal(t, "Onyx", line.ProductName)
	assert.Equal(t, 2, line.DispatchedBoxes)
	assert.Equal(t, 3, line.RemainingBoxes)
	assert.True(t, line.DispatchedQty.Equal(d("8")))
	assert.True(t, line.RemainingQty.Equal(d("12")))
	assert.True(t, line.CurrentStock.Equal(d("32")))
	assert.Len(t, line.Batches, 2)
	assert.Equal(t, 3, line.AvailQty)
}

func TestListQuotations_Paginates(t *testing.T) {
	env := newTestEnv()
	pid := env.seedProduct("Onyx", 10, nil)
	for i := 0; i < 3; i++ {
		_, err := env.quotations.Save(context.Background(), quotationReq("10", row(pid, 1, "1")))
		require.NoError(t, err)
	}

	resp, err := env.quotations.ListFull(context.Background(), dto.QuotationFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Len(t, resp.Data, 2)
	assert.Greater(t, resp.Data[0].ID, resp.Data[1].ID)
}

func TestSettleCommission_Once(t *testing.T) {
	env := newTestEnv()
	pid := env.seedProduct("Onyx", 10, nil)
	saved, err := env.quotations.Save(context.Background(), quotationReq("8000", row(pid, 1, "1")))
	require.NoError(t, err)

	req := dto.SettleCommissionRequest{QuotationID: saved.ID, ArchitectID: "ar-sharma", CommissionAmount: d("400")}
	resp, err := env.quotations.SettleCommission(context.Background(), req)
	require.NoError(t, err)
	assert.NotZero(t, resp.LedgerID)
	assert.NotZero(t, resp.SettlementID)

	q := env.store.quotations[saved.ID]
	assert.True(t, q.IsSettled)
	assert.True(t, q.CommissionAmount.Equal(d("400")))
	require.Len(t, env.store.settlements, 1)
	assert.True(t, env.store.settlements[0].TotalProjectAmount.Equal(d("8000")))

	_, err = env.quotations.SettleCommission(context.Background(), req)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, env.store.ledger, 1)

	entries, err := env.quotations.ArchitectLedger(context.Background(), "ar-sharma")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Mehta Residence", entries[0].ClientName)
	assert.True(t, entries[0].GrandTotal.Equal(d("8000")))
}

func TestSettleCommission_UnknownQuotation(t *testing.T) {
	env := newTestEnv()
	_, err := env.quotations.SettleCommission(context.Background(), dto.SettleCommissionRequest{QuotationID: 5, ArchitectID: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestByArchitect(t *testing.T) {
	env := newTestEnv()
	pid := env.seedProduct("Onyx", 10, nil)
	_, err := env.quotations.Save(context.Background(), quotationReq("10", row(pid, 1, "1")))
	require.NoError(t, err)
	other := quotationReq("10", row(pid, 1, "1"))
	other.ClientDetails.Architect = "ar-other"
	_, err = env.quotations.Save(context.Background(), other)
	require.NoError(t, err)

	list, err := env.quotations.ByArchitect(context.Background(), "ar-sharma")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ar-sharma", list[0].Architect)
}
