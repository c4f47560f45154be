package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/resilience"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	exec := resilience.NewExecutor(resilience.DefaultConfig())
	logger := log.New(log.DefaultConfig())

	accountRepo := storage.NewAccountRepository(store)
	transactionRepo := storage.NewTransactionRepository(store)
	parameterRepo := storage.NewParameterRepository(store)

	svc := Services{
		Accounts:     services.NewAccountService(accountRepo, transactionRepo, exec, nil, logger),
		Transactions: services.NewTransactionService(transactionRepo, accountRepo, exec, nil, nil, logger),
		Categories:   services.NewCategoryService(storage.NewCategoryRepository(store), exec, logger),
		Descriptions: services.NewDescriptionService(storage.NewDescriptionRepository(store), exec, logger),
		Payments:     services.NewPaymentService(storage.NewPaymentRepository(store), accountRepo, parameterRepo, exec, nil, nil, logger),
		Transfers:    services.NewTransferService(storage.NewTransferRepository(store), accountRepo, exec, nil, nil, logger),
		Parameters:   services.NewParameterService(parameterRepo, exec, logger),
		Members:      services.NewFamilyMemberService(storage.NewFamilyMemberRepository(store), exec, logger),
		Medical:      services.NewMedicalExpenseService(storage.NewMedicalExpenseRepository(store), exec, logger),
		Receipts:     services.NewReceiptImageService(storage.NewReceiptImageRepository(store), transactionRepo, exec, 1<<20, logger),
		Validations:  services.NewValidationAmountService(storage.NewValidationAmountRepository(store), accountRepo, exec, logger),
	}

	server := NewServer("127.0.0.1:0", svc, logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createAccountHTTP(t *testing.T, ts *httptest.Server, name string, accountType core.AccountType) core.Account {
	t.Helper()

	resp := doJSON(t, ts, http.MethodPost, "/api/account", map[string]any{
		"accountNameOwner": name,
		"accountType":      string(accountType),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[core.Account](t, resp)
}

func createTransactionHTTP(t *testing.T, ts *httptest.Server, account string, cents int64) core.Transaction {
	t.Helper()

	resp := doJSON(t, ts, http.MethodPost, "/api/transaction", map[string]any{
		"accountNameOwner": account,
		"transactionDate":  "2024-03-15T00:00:00Z",
		"description":      "grocery store",
		"category":         "groceries",
		"amount":           core.Money{Cents: cents},
		"transactionState": "outstanding",
		"transactionType":  "expense",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[core.Transaction](t, resp)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := ts.Client().Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestAccountCreateAndGet(t *testing.T) {
	ts := newTestServer(t)

	created := createAccountHTTP(t, ts, "chase_brian", core.AccountTypeCredit)
	assert.NotZero(t, created.AccountID)

	resp := doJSON(t, ts, http.MethodGet, "/api/account/chase_brian", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[core.Account](t, resp)
	assert.Equal(t, core.AccountTypeCredit, got.AccountType)
}

func TestAccountGetNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, ts, http.MethodGet, "/api/account/missing_account", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAccountCreateValidationError(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, ts, http.MethodPost, "/api/account", map[string]any{
		"accountNameOwner": "Bad Name!",
		"accountType":      "debit",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[errorBody](t, resp)
	assert.Contains(t, body.FieldErrors, "accountNameOwner")
}

func TestAccountDuplicateConflict(t *testing.T) {
	ts := newTestServer(t)

	createAccountHTTP(t, ts, "chase_brian", core.AccountTypeCredit)
	resp := doJSON(t, ts, http.MethodPost, "/api/account", map[string]any{
		"accountNameOwner": "chase_brian",
		"accountType":      "credit",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAccountUnknownFieldRejected(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, ts, http.MethodPost, "/api/account", map[string]any{
		"accountNameOwner": "chase_brian",
		"accountType":      "credit",
		"bogusField":       true,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTransactionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	createAccountHTTP(t, ts, "boa_brian", core.AccountTypeDebit)
	created := createTransactionHTTP(t, ts, "boa_brian", -2500)
	require.NotEmpty(t, created.GUID)

	resp := doJSON(t, ts, http.MethodPatch, "/api/transaction/"+created.GUID+"/state", map[string]any{
		"transactionState": "cleared",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[core.Transaction](t, resp)
	assert.Equal(t, core.TransactionStateCleared, updated.State)

	resp = doJSON(t, ts, http.MethodDelete, "/api/transaction/"+created.GUID, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Soft delete keeps the row for audit but flags it inactive.
	resp = doJSON(t, ts, http.MethodGet, "/api/transaction/"+created.GUID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deleted := decodeBody[core.Transaction](t, resp)
	assert.False(t, deleted.ActiveStatus)

	resp = doJSON(t, ts, http.MethodDelete, "/api/transaction/"+created.GUID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAccountTotalsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	createAccountHTTP(t, ts, "boa_brian", core.AccountTypeDebit)
	createTransactionHTTP(t, ts, "boa_brian", -2500)
	createTransactionHTTP(t, ts, "boa_brian", -1500)

	resp := doJSON(t, ts, http.MethodGet, "/api/transaction/account/totals/boa_brian", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	totals := decodeBody[core.Totals](t, resp)
	assert.Equal(t, int64(-4000), totals.Outstanding.Cents)

	resp = doJSON(t, ts, http.MethodGet, "/api/account/totals", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	grand := decodeBody[core.Totals](t, resp)
	assert.Equal(t, int64(-4000), grand.Outstanding.Cents)
}

func TestPaymentRequiresCreditDestination(t *testing.T) {
	ts := newTestServer(t)

	createAccountHTTP(t, ts, "boa_brian", core.AccountTypeDebit)
	createAccountHTTP(t, ts, "savings_brian", core.AccountTypeDebit)

	resp := doJSON(t, ts, http.MethodPost, "/api/payment", map[string]any{
		"sourceAccount":      "boa_brian",
		"destinationAccount": "savings_brian",
		"transactionDate":    "2024-03-15T00:00:00Z",
		"amount":             core.Money{Cents: 5000},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody[errorBody](t, resp)
	assert.Equal(t, "INVALID_ACCOUNT_TYPE", body.Code)
}

func TestPaymentCreateAndDelete(t *testing.T) {
	ts := newTestServer(t)

	createAccountHTTP(t, ts, "boa_brian", core.AccountTypeDebit)
	createAccountHTTP(t, ts, "chase_brian", core.AccountTypeCredit)

	resp := doJSON(t, ts, http.MethodPost, "/api/payment", map[string]any{
		"sourceAccount":      "boa_brian",
		"destinationAccount": "chase_brian",
		"transactionDate":    "2024-03-15T00:00:00Z",
		"amount":             core.Money{Cents: 5000},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	payment := decodeBody[core.Payment](t, resp)
	require.NotZero(t, payment.PaymentID)

	resp = doJSON(t, ts, http.MethodDelete, fmt.Sprintf("/api/payment/%d", payment.PaymentID), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCategoryMergeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	for _, name := range []string{"groceries", "food"} {
		resp := doJSON(t, ts, http.MethodPost, "/api/category", map[string]any{"categoryName": name})
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	createAccountHTTP(t, ts, "boa_brian", core.AccountTypeDebit)
	createTransactionHTTP(t, ts, "boa_brian", -2500)

	resp := doJSON(t, ts, http.MethodPost, "/api/category/merge", map[string]any{
		"sourceName": "groceries",
		"targetName": "food",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	merged := decodeBody[core.Category](t, resp)
	assert.Equal(t, "food", merged.Name)
	assert.Equal(t, int64(1), merged.Count)
}

func TestCategoryMergeSelfReference(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, ts, http.MethodPost, "/api/category/merge", map[string]any{
		"sourceName": "food",
		"targetName": "food",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody[errorBody](t, resp)
	assert.Equal(t, "SELF_REFERENCE", body.Code)
}

func TestReceiptImageAttach(t *testing.T) {
	ts := newTestServer(t)

	createAccountHTTP(t, ts, "boa_brian", core.AccountTypeDebit)
	created := createTransactionHTTP(t, ts, "boa_brian", -2500)

	image := append([]byte{0xff, 0xd8, 0xff}, []byte("jpeg-bytes")...)
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/transaction/"+created.GUID+"/receipt", bytes.NewReader(image))
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	attached := decodeBody[core.ReceiptImage](t, resp)
	assert.Equal(t, core.ImageFormatJPEG, attached.Format)

	resp = doJSON(t, ts, http.MethodGet, "/api/transaction/"+created.GUID+"/receipt", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeBody[core.ReceiptImage](t, resp)
	assert.Equal(t, attached.ReceiptImageID, fetched.ReceiptImageID)
}

func TestParameterCRUD(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, ts, http.MethodPost, "/api/parameter", map[string]any{
		"parameterName":  "payment_account",
		"parameterValue": "boa_brian",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, ts, http.MethodGet, "/api/parameter/payment_account", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	parameter := decodeBody[core.Parameter](t, resp)
	assert.Equal(t, "boa_brian", parameter.Value)

	resp = doJSON(t, ts, http.MethodDelete, "/api/parameter/payment_account", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestInvalidIDIsBadRequest(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, ts, http.MethodGet, "/api/payment/not-a-number", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, ts, http.MethodGet, "/api/account", nil)
	defer resp.Body.Close()
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t)

	first := doJSON(t, ts, http.MethodGet, "/api/account", nil)
	first.Body.Close()
	second := doJSON(t, ts, http.MethodGet, "/api/account", nil)
	second.Body.Close()

	firstID := first.Header.Get("X-Request-ID")
	secondID := second.Header.Get("X-Request-ID")
	require.NotEmpty(t, firstID)
	assert.True(t, strings.HasPrefix(firstID, "req_"))
	assert.NotEqual(t, firstID, secondID, "each request gets its own id")
}

func TestRequestIDFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), requestIDKey, "req_abc123")
	assert.Equal(t, "req_abc123", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
