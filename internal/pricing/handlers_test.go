package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/merchkit/pricing/internal/coupon"
)

type stubCalculator struct {
	in  Input
	res CartResult
	err error
}

func (s *stubCalculator) Calculate(_ context.Context, in Input) (CartResult, error) {
	s.in = in
	return s.res, s.err
}

func newTestHandler(c Calculator) *Handler {
	return &Handler{Engine: c, Validate: validator.New(), Logger: zerolog.Nop()}
}

func postCalculate(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/calculate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Calculate(rr, req)
	return rr
}

func TestHandlerCalculateOK(t *testing.T) {
	calc := &stubCalculator{res: CartResult{Subtotal: 10000, Total: 11000, Tax: 1000, Currency: "USD"}}
	h := newTestHandler(calc)
	shopID := uuid.New()
	productID := uuid.New()
	body := `{"shopId":"` + shopID.String() + `","items":[{"productId":"` + productID.String() + `","qty":2}]}`

	rr := postCalculate(t, h, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if calc.in.ShopID != shopID {
		t.Fatalf("engine received wrong shop id: %s", calc.in.ShopID)
	}
	var payload struct {
		Data CartResult `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.Total != 11000 {
		t.Fatalf("expected total 11000, got %d", payload.Data.Total)
	}
}

func TestHandlerCalculateInvalidBody(t *testing.T) {
	h := newTestHandler(&stubCalculator{})
	rr := postCalculate(t, h, "{not json")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHandlerCalculateValidation(t *testing.T) {
	h := newTestHandler(&stubCalculator{})
	cases := map[string]string{
		"missing shop":  `{"items":[{"productId":"` + uuid.NewString() + `","qty":1}]}`,
		"empty items":   `{"shopId":"` + uuid.NewString() + `","items":[]}`,
		"zero quantity": `{"shopId":"` + uuid.NewString() + `","items":[{"productId":"` + uuid.NewString() + `","qty":0}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := postCalculate(t, h, body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), "VALIDATION") {
				t.Fatalf("expected validation error code, got %s", rr.Body.String())
			}
		})
	}
}

func TestHandlerCalculateShopNotFound(t *testing.T) {
	calc := &stubCalculator{err: ErrNotFound}
	h := newTestHandler(calc)
	body := `{"shopId":"` + uuid.NewString() + `","items":[{"productId":"` + uuid.NewString() + `","qty":1}]}`
	rr := postCalculate(t, h, body)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHandlerCalculateStoreFailure(t *testing.T) {
	calc := &stubCalculator{err: errors.New("connection refused")}
	h := newTestHandler(calc)
	body := `{"shopId":"` + uuid.NewString() + `","items":[{"productId":"` + uuid.NewString() + `","qty":1}]}`
	rr := postCalculate(t, h, body)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "connection refused") {
		t.Fatalf("internal error detail leaked: %s", rr.Body.String())
	}
}

func TestHandlerCouponRejectionStaysHTTP200(t *testing.T) {
	calc := &stubCalculator{res: CartResult{
		Subtotal:     10000,
		Total:        10000,
		CouponStatus: &coupon.Status{Valid: false, Reason: "coupon expired"},
	}}
	h := newTestHandler(calc)
	body := `{"shopId":"` + uuid.NewString() + `","items":[{"productId":"` + uuid.NewString() + `","qty":1}],"couponCode":"SAVE10"}`
	rr := postCalculate(t, h, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"isValid":false`) {
		t.Fatalf("expected coupon status in body, got %s", rr.Body.String())
	}
}
