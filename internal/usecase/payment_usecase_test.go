package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/expay"
)

type paymentFixture struct {
	uc        *DefaultPaymentUsecase
	reqRepo   *fakeRequestRepo
	txRepo    *fakeTxRepo
	customers *fakeCustomerRepo
	webhooks  *fakeWebhookLogRepo
	notifs    *fakeNotificationLogRepo
	deduper   *fakeDeduper
	enqueuer  *fakeEnqueuer
	mp        *fakeMercadoPagoAPI
	expayAPI  *fakeExpayAPI
}

func newPaymentFixture(request *domain.PaymentRequest, txs ...*domain.Transaction) *paymentFixture {
	f := &paymentFixture{
		reqRepo:   newFakeRequestRepo(request),
		txRepo:    newFakeTxRepo(txs...),
		customers: &fakeCustomerRepo{},
		webhooks:  &fakeWebhookLogRepo{},
		notifs:    &fakeNotificationLogRepo{},
		deduper:   newFakeDeduper(),
		enqueuer:  &fakeEnqueuer{},
		mp:        &fakeMercadoPagoAPI{status: "approved"},
		expayAPI:  &fakeExpayAPI{status: "paid"},
	}
	f.uc = NewDefaultPaymentUsecase(
		f.reqRepo, f.txRepo, f.customers, f.webhooks, f.notifs,
		f.deduper, f.enqueuer, f.mp, f.expayAPI,
		"https://pagamentos.example.com/api/webhooks/expay", nil,
	)
	return f
}

func pendingRequest() *domain.PaymentRequest {
	return &domain.PaymentRequest{
		ID:     "req-1",
		Token:  "tok-1",
		Amount: 49.9,
		Status: domain.RequestStatusPending,
		Customer: domain.CustomerInfo{
			Name:  "João",
			Email: "joao@example.com",
		},
		Service: domain.ServiceSelection{
			ServiceID:   "svc-1",
			ServiceName: "Seguidores Instagram",
		},
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
}

func mpTransaction(status domain.TransactionStatus) *domain.Transaction {
	return &domain.Transaction{
		ID:               "tx-1",
		PaymentRequestID: "req-1",
		Provider:         domain.ProviderMercadoPago,
		ExternalID:       "12345",
		Status:           status,
		Method:           "pix",
		Amount:           49.9,
	}
}

func TestCreatePixCharge(t *testing.T) {
	f := newPaymentFixture(pendingRequest())

	tx, err := f.uc.CreatePixCharge(context.Background(), "tok-1")
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderExpay, tx.Provider)
	assert.Equal(t, domain.TxStatusPending, tx.Status)
	assert.Equal(t, "req-1", tx.ExternalID)
	assert.NotEmpty(t, tx.PixCode)
	assert.Contains(t, tx.MetadataJSON, "expay_response")

	request, _ := f.reqRepo.GetPaymentRequestByID("req-1")
	assert.Equal(t, domain.RequestStatusProcessing, request.Status)
}

func TestCreatePixChargeReusesPendingTransaction(t *testing.T) {
	existing := &domain.Transaction{
		ID:               "tx-open",
		PaymentRequestID: "req-1",
		Provider:         domain.ProviderExpay,
		Status:           domain.TxStatusPending,
		PixCode:          "existing-code",
	}
	f := newPaymentFixture(pendingRequest(), existing)

	tx, err := f.uc.CreatePixCharge(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "tx-open", tx.ID)
	assert.Len(t, f.txRepo.txs, 1)
}

func TestCreatePixChargeRejectsTerminalRequest(t *testing.T) {
	request := pendingRequest()
	request.Status = domain.RequestStatusCompleted
	f := newPaymentFixture(request)

	_, err := f.uc.CreatePixCharge(context.Background(), "tok-1")
	assert.ErrorIs(t, err, domain.ErrRequestNotPayable)
}

func TestCreatePixChargeProviderFailure(t *testing.T) {
	f := newPaymentFixture(pendingRequest())
	f.expayAPI.createErr = errors.New("expay unavailable")

	_, err := f.uc.CreatePixCharge(context.Background(), "tok-1")
	require.Error(t, err)
	assert.Empty(t, f.txRepo.txs)
}

func TestMercadoPagoWebhookApproval(t *testing.T) {
	f := newPaymentFixture(pendingRequest(), mpTransaction(domain.TxStatusPending))

	err := f.uc.HandleMercadoPagoWebhook(context.Background(), "payment", "12345", `{"data":{"id":"12345"}}`)
	require.NoError(t, err)

	tx, _ := f.txRepo.GetTransactionByID("tx-1")
	assert.Equal(t, domain.TxStatusApproved, tx.Status)

	// Approval side effects
	require.Len(t, f.customers.upserts, 1)
	assert.Equal(t, "joao@example.com", f.customers.upserts[0].Email)
	assert.Equal(t, "tx-1", f.reqRepo.completed["req-1"])
	assert.Equal(t, []string{"tx-1"}, f.enqueuer.enqueued)

	require.NotNil(t, f.webhooks.last())
	assert.True(t, f.webhooks.last().Processed)
}

func TestMercadoPagoWebhookUnknownPaymentLogsAndSucceeds(t *testing.T) {
	f := newPaymentFixture(pendingRequest())

	err := f.uc.HandleMercadoPagoWebhook(context.Background(), "payment", "999", `{}`)
	require.NoError(t, err)

	entry := f.webhooks.last()
	require.NotNil(t, entry)
	assert.False(t, entry.Processed)
	assert.Empty(t, f.enqueuer.enqueued)
}

func TestMercadoPagoWebhookIgnoresNonPaymentEvents(t *testing.T) {
	f := newPaymentFixture(pendingRequest(), mpTransaction(domain.TxStatusPending))

	require.NoError(t, f.uc.HandleMercadoPagoWebhook(context.Background(), "plan", "12345", `{}`))
	assert.Empty(t, f.webhooks.entries)
	assert.Empty(t, f.enqueuer.enqueued)
}

func TestMercadoPagoWebhookReplaySuppressed(t *testing.T) {
	f := newPaymentFixture(pendingRequest(), mpTransaction(domain.TxStatusPending))

	require.NoError(t, f.uc.HandleMercadoPagoWebhook(context.Background(), "payment", "12345", `{}`))
	require.NoError(t, f.uc.HandleMercadoPagoWebhook(context.Background(), "payment", "12345", `{}`))

	// Only the first delivery reaches the enqueuer
	assert.Equal(t, []string{"tx-1"}, f.enqueuer.enqueued)
}

func TestMercadoPagoWebhookUnmappedStatusKeepsCurrent(t *testing.T) {
	f := newPaymentFixture(pendingRequest(), mpTransaction(domain.TxStatusPending))
	f.mp.status = "charged_back"

	require.NoError(t, f.uc.HandleMercadoPagoWebhook(context.Background(), "payment", "12345", `{}`))

	tx, _ := f.txRepo.GetTransactionByID("tx-1")
	assert.Equal(t, domain.TxStatusPending, tx.Status)

	entry := f.webhooks.last()
	require.NotNil(t, entry)
	assert.False(t, entry.Processed)
	assert.Contains(t, entry.Error, "charged_back")
}

func TestMercadoPagoWebhookDedupOutageDegradesGracefully(t *testing.T) {
	f := newPaymentFixture(pendingRequest(), mpTransaction(domain.TxStatusPending))
	f.deduper.err = errors.New("redis down")

	require.NoError(t, f.uc.HandleMercadoPagoWebhook(context.Background(), "payment", "12345", `{}`))

	tx, _ := f.txRepo.GetTransactionByID("tx-1")
	assert.Equal(t, domain.TxStatusApproved, tx.Status)
	assert.Equal(t, []string{"tx-1"}, f.enqueuer.enqueued)
}

func TestMercadoPagoWebhookStatusUnchangedNoSideEffects(t *testing.T) {
	processedAt := time.Now()
	tx := mpTransaction(domain.TxStatusApproved)
	tx.ProcessedAt = &processedAt
	f := newPaymentFixture(pendingRequest(), tx)
	// First delivery was already handled end to end; a differently
	// fingerprinted replay with the same status must not enqueue again
	f.mp.status = "approved"

	require.NoError(t, f.uc.HandleMercadoPagoWebhook(context.Background(), "payment", "12345", `{}`))
	assert.Empty(t, f.enqueuer.enqueued)
}

func TestMercadoPagoWebhookReplayRecoversFromEnqueueFailure(t *testing.T) {
	f := newPaymentFixture(pendingRequest(), mpTransaction(domain.TxStatusPending))
	f.enqueuer.failures = 1

	// The first delivery marks the payment approved but dies at the handoff
	err := f.uc.HandleMercadoPagoWebhook(context.Background(), "payment", "12345", `{}`)
	require.Error(t, err)
	assert.Empty(t, f.enqueuer.enqueued)

	tx, _ := f.txRepo.GetTransactionByID("tx-1")
	require.Equal(t, domain.TxStatusApproved, tx.Status)

	// The provider's redelivery must not be suppressed by the failed attempt
	require.NoError(t, f.uc.HandleMercadoPagoWebhook(context.Background(), "payment", "12345", `{}`))
	assert.Equal(t, []string{"tx-1"}, f.enqueuer.enqueued)
}

func TestMercadoPagoWebhookBackfillsMissingDispatch(t *testing.T) {
	// Approved but never handed to the orders service: a same-status webhook
	// is the recovery signal
	f := newPaymentFixture(pendingRequest(), mpTransaction(domain.TxStatusApproved))
	f.mp.status = "approved"

	require.NoError(t, f.uc.HandleMercadoPagoWebhook(context.Background(), "payment", "12345", `{}`))
	assert.Equal(t, []string{"tx-1"}, f.enqueuer.enqueued)
}

func TestExpayWebhookApproval(t *testing.T) {
	tx := &domain.Transaction{
		ID:               "tx-2",
		PaymentRequestID: "req-1",
		Provider:         domain.ProviderExpay,
		ExternalID:       "req-1",
		Status:           domain.TxStatusPending,
		Method:           "pix",
	}
	f := newPaymentFixture(pendingRequest(), tx)

	notification := expay.WebhookNotification{InvoiceID: "req-1", Token: "wh-token"}
	require.NoError(t, f.uc.HandleExpayWebhook(context.Background(), notification, `{}`))

	assert.Equal(t, domain.TxStatusApproved, tx.Status)
	assert.Equal(t, []string{"tx-2"}, f.enqueuer.enqueued)
	assert.Equal(t, "tx-2", f.reqRepo.completed["req-1"])
}

func TestExpayWebhookUnknownInvoice(t *testing.T) {
	f := newPaymentFixture(pendingRequest())

	notification := expay.WebhookNotification{InvoiceID: "missing", Token: "wh-token"}
	err := f.uc.HandleExpayWebhook(context.Background(), notification, `{}`)
	assert.ErrorIs(t, err, domain.ErrPaymentRequestNotFound)
}

func TestExpayWebhookStatusCheckFailureLogsError(t *testing.T) {
	tx := &domain.Transaction{
		ID:               "tx-2",
		PaymentRequestID: "req-1",
		Provider:         domain.ProviderExpay,
		ExternalID:       "req-1",
		Status:           domain.TxStatusPending,
	}
	f := newPaymentFixture(pendingRequest(), tx)
	f.expayAPI.statusErr = errors.New("status endpoint 500")

	notification := expay.WebhookNotification{InvoiceID: "req-1", Token: "wh-token"}
	require.NoError(t, f.uc.HandleExpayWebhook(context.Background(), notification, `{}`))

	require.Len(t, f.notifs.entries, 1)
	assert.Equal(t, domain.NotificationError, f.notifs.entries[0].Status)
	assert.Equal(t, domain.TxStatusPending, tx.Status)
}

func TestExpayWebhookRefund(t *testing.T) {
	tx := &domain.Transaction{
		ID:               "tx-2",
		PaymentRequestID: "req-1",
		Provider:         domain.ProviderExpay,
		ExternalID:       "req-1",
		Status:           domain.TxStatusApproved,
	}
	f := newPaymentFixture(pendingRequest(), tx)
	f.expayAPI.status = "refunded"

	notification := expay.WebhookNotification{InvoiceID: "req-1", Token: "wh-token"}
	require.NoError(t, f.uc.HandleExpayWebhook(context.Background(), notification, `{}`))

	assert.Equal(t, domain.TxStatusRefunded, tx.Status)
	assert.Empty(t, f.enqueuer.enqueued)
}

func TestMergeMetadataPreservesExistingKeys(t *testing.T) {
	merged := mergeMetadata(`{"a":1}`, "b", "two")
	assert.JSONEq(t, `{"a":1,"b":"two"}`, merged)

	// Unparseable blobs are kept under a recovery key instead of dropped
	recovered := mergeMetadata(`not-json`, "b", "two")
	assert.Contains(t, recovered, "previous_metadata_raw")
}
