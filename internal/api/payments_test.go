package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/norraset/shopapi/internal/cache"
	"github.com/norraset/shopapi/internal/database"
	"github.com/norraset/shopapi/internal/models"
	"github.com/norraset/shopapi/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaymentStore struct {
	submitFunc func(ctx context.Context, orderID int64, amount decimal.Decimal, imageURL string) (*models.PaymentSlip, error)
	verifyFunc func(ctx context.Context, slipID int64, decision models.SlipStatus, verifierID int64) (*store.VerificationResult, error)
	listFunc   func(ctx context.Context, page, pageSize int) (*store.OffsetPage, error)
}

func (f *fakePaymentStore) SubmitSlip(ctx context.Context, orderID int64, amount decimal.Decimal, imageURL string) (*models.PaymentSlip, error) {
	if f.submitFunc != nil {
		return f.submitFunc(ctx, orderID, amount, imageURL)
	}
	return nil, nil
}

func (f *fakePaymentStore) Verify(ctx context.Context, slipID int64, decision models.SlipStatus, verifierID int64) (*store.VerificationResult, error) {
	if f.verifyFunc != nil {
		return f.verifyFunc(ctx, slipID, decision, verifierID)
	}
	return nil, nil
}

func (f *fakePaymentStore) ListPendingSlips(ctx context.Context, page, pageSize int) (*store.OffsetPage, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx, page, pageSize)
	}
	return nil, nil
}

func actorRequest(method, target string, body string, userID int64) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if userID > 0 {
		req = req.WithContext(context.WithValue(req.Context(), actorKey, userID))
	}
	return req
}

func noopStatusCache() *cache.OrderStatus {
	return &cache.OrderStatus{}
}

func TestVerify_Approved(t *testing.T) {
	var gotSlipID, gotVerifier int64
	var gotDecision models.SlipStatus

	now := time.Now()
	verifier := int64(7)
	ps := &fakePaymentStore{
		verifyFunc: func(ctx context.Context, slipID int64, decision models.SlipStatus, verifierID int64) (*store.VerificationResult, error) {
			gotSlipID, gotDecision, gotVerifier = slipID, decision, verifierID
			return &store.VerificationResult{
				Slip: models.PaymentSlip{
					ID:         slipID,
					OrderID:    3,
					Status:     models.SlipStatusApproved,
					Verified:   true,
					VerifiedBy: &verifier,
					VerifiedAt: &now,
				},
				OrderStatus: models.OrderStatusVerified,
			}, nil
		},
	}
	handler := &PaymentsHandler{Store: ps, StatusCache: noopStatusCache()}

	req := actorRequest(http.MethodPost, "/payments/verify/12", `{"status":"APPROVED"}`, 7)
	req = withChiParam(req, "id", "12")
	rr := httptest.NewRecorder()

	handler.Verify(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(12), gotSlipID)
	assert.Equal(t, models.SlipStatusApproved, gotDecision)
	assert.Equal(t, int64(7), gotVerifier)

	var resp store.VerificationResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, models.OrderStatusVerified, resp.OrderStatus)
	assert.True(t, resp.Slip.Verified)
}

func TestVerify_MissingActor(t *testing.T) {
	handler := &PaymentsHandler{Store: &fakePaymentStore{}, StatusCache: noopStatusCache()}

	req := actorRequest(http.MethodPost, "/payments/verify/12", `{"status":"APPROVED"}`, 0)
	req = withChiParam(req, "id", "12")
	rr := httptest.NewRecorder()

	handler.Verify(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, CodeValidation, resp.Code)
}

func TestVerify_BadDecision(t *testing.T) {
	handler := &PaymentsHandler{Store: &fakePaymentStore{}, StatusCache: noopStatusCache()}

	req := actorRequest(http.MethodPost, "/payments/verify/12", `{"status":"MAYBE"}`, 7)
	req = withChiParam(req, "id", "12")
	rr := httptest.NewRecorder()

	handler.Verify(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerify_NotFound(t *testing.T) {
	ps := &fakePaymentStore{
		verifyFunc: func(ctx context.Context, slipID int64, decision models.SlipStatus, verifierID int64) (*store.VerificationResult, error) {
			return nil, database.ErrSlipNotFound
		},
	}
	handler := &PaymentsHandler{Store: ps, StatusCache: noopStatusCache()}

	req := actorRequest(http.MethodPost, "/payments/verify/99", `{"status":"REJECTED"}`, 7)
	req = withChiParam(req, "id", "99")
	rr := httptest.NewRecorder()

	handler.Verify(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, CodeNotFound, resp.Code)
}

func TestVerify_AlreadyDecided(t *testing.T) {
	ps := &fakePaymentStore{
		verifyFunc: func(ctx context.Context, slipID int64, decision models.SlipStatus, verifierID int64) (*store.VerificationResult, error) {
			return nil, database.ErrSlipAlreadyDecided
		},
	}
	handler := &PaymentsHandler{Store: ps, StatusCache: noopStatusCache()}

	req := actorRequest(http.MethodPost, "/payments/verify/12", `{"status":"APPROVED"}`, 7)
	req = withChiParam(req, "id", "12")
	rr := httptest.NewRecorder()

	handler.Verify(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, CodeConflict, resp.Code)
}

func TestSubmitSlip_Created(t *testing.T) {
	ps := &fakePaymentStore{
		submitFunc: func(ctx context.Context, orderID int64, amount decimal.Decimal, imageURL string) (*models.PaymentSlip, error) {
			return &models.PaymentSlip{
				ID:      1,
				OrderID: orderID,
				Amount:  amount,
				Status:  models.SlipStatusPending,
			}, nil
		},
	}
	handler := &PaymentsHandler{Store: ps, StatusCache: noopStatusCache()}

	req := actorRequest(http.MethodPost, "/orders/3/slip", `{"amount":499.50,"image_url":"https://cdn.example/slip.jpg"}`, 2)
	req = withChiParam(req, "id", "3")
	rr := httptest.NewRecorder()

	handler.SubmitSlip(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp models.PaymentSlip
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(3), resp.OrderID)
	assert.Equal(t, models.SlipStatusPending, resp.Status)
}

func TestSubmitSlip_NonPositiveAmount(t *testing.T) {
	handler := &PaymentsHandler{Store: &fakePaymentStore{}, StatusCache: noopStatusCache()}

	req := actorRequest(http.MethodPost, "/orders/3/slip", `{"amount":0}`, 2)
	req = withChiParam(req, "id", "3")
	rr := httptest.NewRecorder()

	handler.SubmitSlip(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSubmitSlip_WrongOrderState(t *testing.T) {
	ps := &fakePaymentStore{
		submitFunc: func(ctx context.Context, orderID int64, amount decimal.Decimal, imageURL string) (*models.PaymentSlip, error) {
			return nil, models.ErrInvalidTransition
		},
	}
	handler := &PaymentsHandler{Store: ps, StatusCache: noopStatusCache()}

	req := actorRequest(http.MethodPost, "/orders/3/slip", `{"amount":10}`, 2)
	req = withChiParam(req, "id", "3")
	rr := httptest.NewRecorder()

	handler.SubmitSlip(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, CodeInvalidTransition, resp.Code)
}
