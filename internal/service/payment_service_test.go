package service

import (
	"context"
	"testing"

	"tilerp/internal/dto"
	"tilerp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingPayment(t *testing.T, env *testEnv, grand, amount string) (quotationID, requestID uint) {
	t.Helper()
	pid := env.seedProduct("Onyx", 10, nil)
	q, err := env.quotations.Save(context.Background(), quotationReq(grand, row(pid, 1, "1")))
	require.NoError(t, err)
	pr, err := env.payments.Create(context.Background(), dto.CreatePaymentRequest{
		QuotationID: q.ID,
		Amount:      d(amount),
		PaymentType: "upi",
		Remark:      "advance",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, pr.Status)
	assert.Equal(t, "Mehta Residence", pr.ClientName)
	return q.ID, pr.ID
}

func TestPaymentApprove_UpdatesBalance(t *testing.T) {
	env := newTestEnv()
	qid, rid := pendingPayment(t, env, "10000", "2500")

	resp, err := env.payments.UpdateStatus(context.Background(), dto.UpdatePaymentStatusRequest{RequestID: rid, Status: model.PaymentApproved})
	require.NoError(t, err)
	assert.Equal(t, qid, resp.QuotationID)
	assert.True(t, resp.PaidAmount.Equal(d("2500")))
	assert.True(t, resp.DueAmount.Equal(d("7500")))

	q := env.store.quotations[qid]
	assert.True(t, q.PaidAmount.Equal(d("2500")))
	assert.True(t, q.DueAmount.Equal(q.GrandTotal.Sub(q.PaidAmount)))
	assert.Equal(t, model.PaymentApproved, env.store.payments[rid].Status)
}

func TestPaymentApprove_OnlyOnce(t *testing.T) {
	env := newTestEnv()
	qid, rid := pendingPayment(t, env, "10000", "2500")
	req := dto.UpdatePaymentStatusRequest{RequestID: rid, Status: model.PaymentApproved}

	_, err := env.payments.UpdateStatus(context.Background(), req)
	require.NoError(t, err)
	_, err = env.payments.UpdateStatus(context.Background(), req)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorContains(t, err, "request already processed")

	assert.True(t, env.store.quotations[qid].PaidAmount.Equal(d("2500")))
}

func TestPaymentReject_LeavesBalance(t *testing.T) {
	env := newTestEnv()
	qid, rid := pendingPayment(t, env, "10000", "2500")

	resp, err := env.payments.UpdateStatus(context.Background(), dto.UpdatePaymentStatusRequest{RequestID: rid, Status: model.PaymentRejected})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRejected, resp.Status)

	q := env.store.quotations[qid]
	assert.True(t, q.PaidAmount.IsZero())
	assert.True(t, q.DueAmount.Equal(d("10000")))

	_, err = env.payments.UpdateStatus(context.Background(), dto.UpdatePaymentStatusRequest{RequestID: rid, Status: model.PaymentApproved})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPaymentUpdate_InvalidStatus(t *testing.T) {
	env := newTestEnv()
	_, rid := pendingPayment(t, env, "100", "10")
	_, err := env.payments.UpdateStatus(context.Background(), dto.UpdatePaymentStatusRequest{RequestID: rid, Status: "pending"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPaymentUpdate_UnknownRequest(t *testing.T) {
	env := newTestEnv()
	_, err := env.payments.UpdateStatus(context.Background(), dto.UpdatePaymentStatusRequest{RequestID: 5, Status: model.PaymentApproved})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaymentCreate_UnknownQuotation(t *testing.T) {
	env := newTestEnv()
	_, err := env.payments.Create(context.Background(), dto.CreatePaymentRequest{QuotationID: 9, Amount: d("1")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPending_ExcludesProcessed(t *testing.T) {
	env := newTestEnv()
	_, first := pendingPayment(t, env, "1000", "100")
	_, second := pendingPayment(t, env, "1000", "200")
	_, err := env.payments.UpdateStatus(context.Background(), dto.UpdatePaymentStatusRequest{RequestID: first, Status: model.PaymentApproved})
	require.NoError(t, err)

	pending, err := env.payments.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second, pending[0].ID)
	assert.Equal(t, "Mehta Residence", pending[0].ClientName)
	assert.Equal(t, "upi", pending[0].PaymentType)
}
