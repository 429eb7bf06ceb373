package usecase

import (
	"context"
	"time"

	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/expay"
	"github.com/viralizamos/payment-service/internal/infrastructure/mercadopago"
)

// In-memory stand-ins for the postgres repositories and outbound clients.

type fakeRequestRepo struct {
	requests    map[string]*domain.PaymentRequest
	completed   map[string]string
	expired     int64
	lastFilters domain.PaymentRequestFilters
}

func newFakeRequestRepo(requests ...*domain.PaymentRequest) *fakeRequestRepo {
	r := &fakeRequestRepo{requests: map[string]*domain.PaymentRequest{}, completed: map[string]string{}}
	for _, request := range requests {
		r.requests[request.ID] = request
	}
	return r
}

func (r *fakeRequestRepo) CreatePaymentRequest(request *domain.PaymentRequest) error {
	r.requests[request.ID] = request
	return nil
}

func (r *fakeRequestRepo) GetPaymentRequestByID(requestID string) (*domain.PaymentRequest, error) {
	request, ok := r.requests[requestID]
	if !ok {
		return nil, domain.ErrPaymentRequestNotFound
	}
	return request, nil
}

func (r *fakeRequestRepo) GetPaymentRequestByToken(token string) (*domain.PaymentRequest, error) {
	for _, request := range r.requests {
		if request.Token == token {
			return request, nil
		}
	}
	return nil, domain.ErrPaymentRequestNotFound
}

func (r *fakeRequestRepo) UpdatePaymentRequestStatus(requestID string, newStatus domain.PaymentRequestStatus) error {
	if request, ok := r.requests[requestID]; ok {
		request.Status = newStatus
	}
	return nil
}

func (r *fakeRequestRepo) MarkCompleted(requestID, processedPaymentID string) error {
	r.completed[requestID] = processedPaymentID
	if request, ok := r.requests[requestID]; ok {
		request.Status = domain.RequestStatusCompleted
		request.ProcessedPaymentID = processedPaymentID
	}
	return nil
}

func (r *fakeRequestRepo) UpdateAdditionalData(requestID, additionalData string) error {
	if request, ok := r.requests[requestID]; ok {
		request.Service.AdditionalData = additionalData
	}
	return nil
}

func (r *fakeRequestRepo) FindForReconciliation(filters domain.PaymentRequestFilters) ([]*domain.PaymentRequest, error) {
	r.lastFilters = filters
	var out []*domain.PaymentRequest
	for _, request := range r.requests {
		if !request.Status.Terminal() {
			out = append(out, request)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ExpireOverdue(now time.Time) (int64, error) {
	return r.expired, nil
}

type fakeTxRepo struct {
	txs          map[string]*domain.Transaction
	statusByID   map[string]domain.TransactionStatus
	metadataByID map[string]string
}

func newFakeTxRepo(txs ...*domain.Transaction) *fakeTxRepo {
	r := &fakeTxRepo{
		txs:          map[string]*domain.Transaction{},
		statusByID:   map[string]domain.TransactionStatus{},
		metadataByID: map[string]string{},
	}
	for _, tx := range txs {
		r.txs[tx.ID] = tx
	}
	return r
}

func (r *fakeTxRepo) CreateTransaction(tx *domain.Transaction) error {
	r.txs[tx.ID] = tx
	return nil
}

func (r *fakeTxRepo) GetTransactionByID(txID string) (*domain.Transaction, error) {
	tx, ok := r.txs[txID]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

func (r *fakeTxRepo) GetTransactionByExternalID(provider, externalID string) (*domain.Transaction, error) {
	for _, tx := range r.txs {
		if tx.Provider == provider && tx.ExternalID == externalID {
			return tx, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *fakeTxRepo) GetPendingByPaymentRequestID(requestID string) (*domain.Transaction, error) {
	for _, tx := range r.txs {
		if tx.PaymentRequestID == requestID && tx.Status == domain.TxStatusPending {
			return tx, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *fakeTxRepo) GetLatestByPaymentRequestID(requestID string) (*domain.Transaction, error) {
	for _, tx := range r.txs {
		if tx.PaymentRequestID == requestID {
			return tx, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *fakeTxRepo) HasApprovedTransaction(requestID string) (bool, error) {
	for _, tx := range r.txs {
		if tx.PaymentRequestID == requestID && tx.Status == domain.TxStatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTxRepo) UpdateTransactionStatus(txID string, newStatus domain.TransactionStatus) error {
	r.statusByID[txID] = newStatus
	if tx, ok := r.txs[txID]; ok {
		tx.Status = newStatus
	}
	return nil
}

func (r *fakeTxRepo) UpdateTransactionMetadata(txID, metadataJSON string) error {
	r.metadataByID[txID] = metadataJSON
	return nil
}

func (r *fakeTxRepo) MarkProcessed(txID string, processedAt time.Time) (bool, error) {
	tx, ok := r.txs[txID]
	if !ok {
		return false, domain.ErrTransactionNotFound
	}
	if tx.ProcessedAt != nil {
		return false, nil
	}
	tx.ProcessedAt = &processedAt
	return true, nil
}

func (r *fakeTxRepo) FindApprovedUnprocessed(before time.Time, limit int) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, tx := range r.txs {
		if tx.Status == domain.TxStatusApproved && tx.ProcessedAt == nil {
			out = append(out, tx)
		}
	}
	return out, nil
}

type fakeCustomerRepo struct {
	upserts []*domain.Customer
}

func (r *fakeCustomerRepo) UpsertByEmail(customer *domain.Customer) error {
	r.upserts = append(r.upserts, customer)
	return nil
}

func (r *fakeCustomerRepo) GetByEmail(email string) (*domain.Customer, error) {
	for _, customer := range r.upserts {
		if customer.Email == email {
			return customer, nil
		}
	}
	return nil, domain.ErrPaymentRequestNotFound
}

type fakeWebhookLogRepo struct {
	entries []*domain.WebhookLog
}

func (r *fakeWebhookLogRepo) LogWebhook(entry *domain.WebhookLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeWebhookLogRepo) last() *domain.WebhookLog {
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[len(r.entries)-1]
}

type fakeNotificationLogRepo struct {
	entries []*domain.NotificationLog
}

func (r *fakeNotificationLogRepo) LogNotification(entry *domain.NotificationLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeNotificationLogRepo) ListByTransactionID(transactionID string) ([]*domain.NotificationLog, error) {
	return r.entries, nil
}

type fakeProviderLogRepo struct {
	latest *domain.ProviderResponseLog
}

func (r *fakeProviderLogRepo) LogProviderResponse(entry *domain.ProviderResponseLog) error {
	r.latest = entry
	return nil
}

func (r *fakeProviderLogRepo) LatestByPaymentRequestID(requestID string) (*domain.ProviderResponseLog, error) {
	return r.latest, nil
}

// fakeDeduper claims every key once, like redis SETNX.
type fakeDeduper struct {
	claimed map[string]bool
	err     error
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{claimed: map[string]bool{}}
}

func (d *fakeDeduper) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	if d.claimed[key] {
		return false, nil
	}
	d.claimed[key] = true
	return true, nil
}

func (d *fakeDeduper) Release(ctx context.Context, key string) error {
	if d.err != nil {
		return d.err
	}
	delete(d.claimed, key)
	return nil
}

type fakeEnqueuer struct {
	enqueued []string
	err      error
	failures int
}

func (e *fakeEnqueuer) Enqueue(ctx context.Context, transactionID, paymentRequestID, externalID string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	if e.failures > 0 {
		e.failures--
		return "", context.DeadlineExceeded
	}
	e.enqueued = append(e.enqueued, transactionID)
	return "queue-item-1", nil
}

type fakeMercadoPagoAPI struct {
	status string
	err    error
}

func (c *fakeMercadoPagoAPI) GetPayment(ctx context.Context, externalID string) (*mercadopago.PaymentDetails, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &mercadopago.PaymentDetails{
		ID:          externalID,
		Status:      c.status,
		RawResponse: `{"status":"` + c.status + `"}`,
	}, nil
}

type fakeExpayAPI struct {
	payment   *expay.PaymentResponse
	status    string
	statusErr error
	createErr error
}

func (c *fakeExpayAPI) CreatePixPayment(ctx context.Context, req expay.PaymentRequest) (*expay.PaymentResponse, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	if c.payment != nil {
		return c.payment, nil
	}
	return &expay.PaymentResponse{
		Result:       true,
		EMV:          "00020126pix-copy-paste",
		QRCodeBase64: "aWJhc2U2NA==",
	}, nil
}

func (c *fakeExpayAPI) CheckPaymentStatus(ctx context.Context, notification expay.WebhookNotification) (*expay.StatusResponse, error) {
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	response := &expay.StatusResponse{Result: true}
	response.TransactionRequest.InvoiceID = notification.InvoiceID
	response.TransactionRequest.Status = c.status
	return response, nil
}

type fakeOrdersPort struct {
	statusByOrderID map[string]string
	err             error
}

func (p *fakeOrdersPort) CreateOrder(ctx context.Context, req *domain.OrderCreation) (string, string, error) {
	return "order-1", "{}", nil
}

func (p *fakeOrdersPort) OrderStatus(ctx context.Context, externalOrderID string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	status, ok := p.statusByOrderID[externalOrderID]
	if !ok {
		return "pending", nil
	}
	return status, nil
}
