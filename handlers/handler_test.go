package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buddybudget/wealth_backend/config"
	"github.com/buddybudget/wealth_backend/middlewares"
	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/buddybudget/wealth_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	ledger *workflow.Ledger
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, models.MigrateTable(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ledger := workflow.NewLedger(db, nil, time.UTC, "EUR")
	r := gin.New()
	r.Use(middlewares.AuthMiddleware())
	api := r.Group("/api", middlewares.RequireOwner())
	New(ledger, nil).Register(api)

	token, err := utils.JwtGenerate("user-1", "EUR")
	require.NoError(t, err)
	return &testServer{router: r, ledger: ledger, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) createAccount(t *testing.T, name, balance string) models.LiquidityAccount {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/liquidity-accounts", gin.H{"name": name, "type": "checking", "balance": balance})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.LiquidityAccount](t, w)
}

func TestRoutes_RequireOwner(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/liquidity-accounts", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/liquidity-accounts", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAccount_ReturnsCreatedAccount(t *testing.T) {
	s := newTestServer(t)
	account := s.createAccount(t, "Checking", "100")
	assert.Equal(t, "user-1", account.UserId)
	assert.Equal(t, "EUR", account.Currency)
	assert.True(t, decimal.RequireFromString("100").Equal(account.Balance))

	w := s.do(t, http.MethodGet, "/api/liquidity-accounts/"+account.ID+"/valuations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	valuations := decode[[]models.AssetValuation](t, w)
	require.Len(t, valuations, 1)
	assert.Equal(t, models.ValuationReasonOpening, valuations[0].Reason)
}

func TestCreateAccount_ValidationFailure(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/liquidity-accounts", gin.H{"type": "checking", "balance": "1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, w)
	assert.Equal(t, "validation failed", body.Error)
	assert.Contains(t, body.Fields, "name")

	req := httptest.NewRequest(http.MethodPost, "/api/liquidity-accounts", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountRoutes_NotFound(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/liquidity-accounts/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, "/api/liquidity-accounts/missing", gin.H{"name": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/liquidity-accounts/missing", nil).Code)
}

func TestTransactionRoutes(t *testing.T) {
	s := newTestServer(t)
	x := s.createAccount(t, "X", "100")
	y := s.createAccount(t, "Y", "0")

	transfer := gin.H{"type": "transfer", "amount": "30", "accountId": x.ID, "destinationAccountId": y.ID}
	w := s.do(t, http.MethodPost, "/api/transactions", transfer, IdempotencyHeader, "req-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Success     bool                      `json:"success"`
		Transaction models.Transaction        `json:"transaction"`
		Accounts    []models.LiquidityAccount `json:"accounts"`
		Snapshot    models.WealthSnapshot     `json:"snapshot"`
	}](t, w)
	assert.True(t, created.Success)
	require.Len(t, created.Accounts, 2)
	assert.True(t, decimal.RequireFromString("100").Equal(created.Snapshot.LiquidityTotal))

	// Same key replays with 200 and no second effect.
	w = s.do(t, http.MethodPost, "/api/transactions", transfer, IdempotencyHeader, "req-1")
	require.Equal(t, http.StatusOK, w.Code)
	account := decode[models.LiquidityAccount](t, s.do(t, http.MethodGet, "/api/liquidity-accounts/"+x.ID, nil))
	assert.True(t, decimal.RequireFromString("70").Equal(account.Balance))

	w = s.do(t, http.MethodPost, "/api/transactions", gin.H{"type": "transfer", "amount": "5", "accountId": x.ID, "destinationAccountId": x.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/transactions?accountId="+y.ID+"&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Transaction](t, w), 1)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/transactions?limit=zero", nil).Code)

	w = s.do(t, http.MethodDelete, "/api/transactions/"+created.Transaction.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	account = decode[models.LiquidityAccount](t, s.do(t, http.MethodGet, "/api/liquidity-accounts/"+x.ID, nil))
	assert.True(t, decimal.RequireFromString("100").Equal(account.Balance))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/transactions/"+created.Transaction.ID, nil).Code)
}

func TestOnboardingAndSnapshots(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/user/onboarding", gin.H{
		"primaryCurrency": "USD",
		"liquidityAccounts": []gin.H{
			{"name": "Checking", "type": "checking", "balance": "1200.5"},
			{"name": "Wallet", "type": "cash", "balance": "80"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/wealth-snapshots", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snapshots := decode[[]models.WealthSnapshot](t, w)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "USD", snapshots[0].Currency)
	assert.True(t, decimal.RequireFromString("1280.5").Equal(snapshots[0].NetWorth))

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/wealth-snapshots?from=yesterday", nil).Code)

	w = s.do(t, http.MethodGet, "/api/wealth-snapshots/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())

	w = s.do(t, http.MethodPost, "/api/wealth-snapshots/recompute", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBalanceChecksAndEventReplay(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "X", "100")

	w := s.do(t, http.MethodGet, "/api/balance-checks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Consistent bool `json:"consistent"`
	}](t, w)
	assert.True(t, body.Consistent)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/ledger-events/abc/replay", nil).Code)
	// Only failed or dead events can be replayed.
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/ledger-events/1/replay", nil).Code)
}
