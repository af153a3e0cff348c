package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BAHUBALISID/smj/internal/apierror"
	"github.com/BAHUBALISID/smj/internal/dto"
	"github.com/BAHUBALISID/smj/internal/middleware"
	"github.com/BAHUBALISID/smj/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "router-test-secret-router-test-secret"

// ── Stubs ───────────────────────────────────────────────────────────────────

type stubRates struct{ lastActor service.Actor }

func (s *stubRates) ResolveTx(context.Context, *gorm.DB, string, string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubRates) ResolveRate(_ context.Context, metal, purity string) (*dto.ResolvedRateResponse, error) {
	if metal == "PLATINUM" {
		return nil, fmt.Errorf("%s %s: %w", metal, purity, service.ErrRateNotFound)
	}
	return &dto.ResolvedRateResponse{MetalType: metal, Purity: purity, RatePerGram: decimal.RequireFromString("6600.00")}, nil
}

func (s *stubRates) SetRate(_ context.Context, actor service.Actor, req dto.SetRateRequest) (*dto.SetRateResponse, error) {
	s.lastActor = actor
	return &dto.SetRateResponse{Rate: dto.RateResponse{MetalType: req.MetalType, Purity: req.Purity, RatePerGram: req.Rate}}, nil
}

func (s *stubRates) AddCustomMetal(context.Context, service.Actor, dto.SetRateRequest) (*dto.RateResponse, error) {
	return nil, service.ErrRateExists
}

func (s *stubRates) ListActiveRates(context.Context) ([]dto.RateResponse, error) {
	return []dto.RateResponse{{MetalType: "GOLD", Purity: "24K"}}, nil
}

func (s *stubRates) RateHistory(_ context.Context, _, _ string, limit int) ([]dto.RateResponse, error) {
	return make([]dto.RateResponse, limit), nil
}

type stubBills struct{ err error }

func (s *stubBills) CreateInvoice(context.Context, service.Actor, dto.CreateBillRequest) (*dto.CreateBillResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CreateBillResponse{BillNumber: "SMJ/2610/0001", BillStatus: "pending"}, nil
}

func (s *stubBills) GetInvoiceByToken(_ context.Context, token string) (*dto.BillResponse, error) {
	if token != "known" {
		return nil, service.ErrInvoiceNotFound
	}
	return &dto.BillResponse{BillNumber: "SMJ/2610/0001"}, nil
}

type stubPayments struct{ billID uuid.UUID }

func (s *stubPayments) AddPayment(_ context.Context, _ service.Actor, id uuid.UUID, req dto.AddPaymentRequest) (*dto.PaymentResponse, error) {
	s.billID = id
	return &dto.PaymentResponse{PaymentNumber: "PAY/2610/0001", BillID: id.String(), Amount: req.Amount}, nil
}

type stubExchanges struct{}

func (stubExchanges) CreateExchange(context.Context, service.Actor, dto.CreateExchangeRequest) (*dto.CreateExchangeResponse, error) {
	return &dto.CreateExchangeResponse{ExchangeNumber: "EX/2610/0001"}, nil
}

func (stubExchanges) GetExchangeByToken(context.Context, string) (*dto.ExchangeResponse, error) {
	return nil, service.ErrExchangeNotFound
}

var (
	_ service.RateService     = (*stubRates)(nil)
	_ service.BillService     = (*stubBills)(nil)
	_ service.PaymentService  = (*stubPayments)(nil)
	_ service.ExchangeService = stubExchanges{}
)

// ── Helpers ─────────────────────────────────────────────────────────────────

type env struct {
	engine   *gin.Engine
	rates    *stubRates
	bills    *stubBills
	payments *stubPayments
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	e := &env{rates: &stubRates{}, bills: &stubBills{}, payments: &stubPayments{}}
	e.engine = New(Deps{
		JWTSecret: secret,
		Rates:     e.rates,
		Bills:     e.bills,
		Payments:  e.payments,
		Exchanges: stubExchanges{},
	})
	return e
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := middleware.IssueToken(secret, userID, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *env) do(t *testing.T, method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

const validBill = `{
  "customer": {"name": "Asha Verma", "phone": "9876543210"},
  "gst_type": "intra_state",
  "items": [{"description": "Ring", "metal_type": "GOLD", "purity": "22K",
             "gross_weight": "10", "less_weight": "0.5", "making_charges": "1000",
             "discount_percent": "10", "gst_percent": "3"}]
}`

// ── Tests ───────────────────────────────────────────────────────────────────

func TestAuthRequired(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/v1/bills", "", validBill)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/v1/bills", "not-a-jwt", validBill)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBill(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/v1/bills", token(t, uuid.NewString(), middleware.RoleStaff), validBill)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "SMJ/2610/0001", decode(t, w)["bill_number"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestCreateBill_BindingValidation(t *testing.T) {
	e := newEnv(t)
	tok := token(t, uuid.NewString(), middleware.RoleStaff)

	w := e.do(t, http.MethodPost, "/v1/bills", tok, `{"customer":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/v1/bills", tok, `{"customer":{"name":"A","phone":"1"},"items":[{"description":"Ring","metal_type":"GOLD","purity":"22K","discount_percent":"150"}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "max", fields["items[0].discount_percent"])
}

func TestServiceErrorMapping(t *testing.T) {
	e := newEnv(t)
	tok := token(t, uuid.NewString(), middleware.RoleStaff)

	cases := []struct {
		err    error
		status int
		code   apierror.Code
	}{
		{&service.ValidationError{Fields: map[string]string{"items[0].purity": "unknown grade"}}, http.StatusUnprocessableEntity, apierror.CodeValidation},
		{fmt.Errorf("items[1]: %w", service.ErrRateNotFound), http.StatusUnprocessableEntity, apierror.CodeRateUnavailable},
		{service.ErrCyclicRateDerivation, http.StatusUnprocessableEntity, apierror.CodeRateUnavailable},
		{&service.DuplicateNumberError{Kind: "bill", Number: "SMJ/2610/0001"}, http.StatusServiceUnavailable, apierror.CodeNumberingBusy},
		{&service.PersistenceError{Op: "insert bill", Err: fmt.Errorf("connection reset")}, http.StatusInternalServerError, apierror.CodeInternal},
	}
	for _, tc := range cases {
		e.bills.err = tc.err
		w := e.do(t, http.MethodPost, "/v1/bills", tok, validBill)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.NotContains(t, w.Body.String(), "connection reset")
		body := decode(t, w)
		assert.Equal(t, string(tc.code), body["code"])
		assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), body["request_id"])
	}
}

func TestAddPayment(t *testing.T) {
	e := newEnv(t)
	tok := token(t, uuid.NewString(), middleware.RoleStaff)
	id := uuid.New()

	w := e.do(t, http.MethodPost, "/v1/bills/"+id.String()+"/payments", tok, `{"amount":"5000","payment_mode":"upi"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, id, e.payments.billID)

	w = e.do(t, http.MethodPost, "/v1/bills/nope/payments", tok, `{"amount":"5000","payment_mode":"upi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/v1/bills/"+id.String()+"/payments", tok, `{"amount":"0","payment_mode":"upi"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRateWritesRequireAdmin(t *testing.T) {
	e := newEnv(t)
	body := `{"metal_type":"GOLD","purity":"24K","rate":"7200"}`

	w := e.do(t, http.MethodPut, "/v1/rates", token(t, uuid.NewString(), middleware.RoleStaff), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminID := uuid.New()
	w = e.do(t, http.MethodPut, "/v1/rates", token(t, adminID.String(), middleware.RoleAdmin), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, adminID, e.rates.lastActor.ID)
	assert.Equal(t, middleware.RoleAdmin, e.rates.lastActor.Role)

	w = e.do(t, http.MethodPost, "/v1/rates/custom", token(t, adminID.String(), middleware.RoleAdmin), body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRateQueries(t *testing.T) {
	e := newEnv(t)
	tok := token(t, uuid.NewString(), middleware.RoleStaff)

	w := e.do(t, http.MethodGet, "/v1/rates/resolve?metal_type=GOLD&purity=22K", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6600", decode(t, w)["rate_per_gram"])

	w = e.do(t, http.MethodGet, "/v1/rates/resolve?metal_type=PLATINUM&purity=950", tok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodGet, "/v1/rates/resolve?metal_type=GOLD", tok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodGet, "/v1/rates/history?metal_type=GOLD&purity=24K", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []dto.RateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 10)

	w = e.do(t, http.MethodGet, "/v1/rates", tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublicLookups(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/v1/public/bills/known", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/v1/public/bills/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/v1/public/exchanges/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
