package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/merchkit/pricing/internal/common"
	"github.com/merchkit/pricing/internal/obs"
)

// Calculator is the engine surface the handler depends on.
type Calculator interface {
	Calculate(ctx context.Context, in Input) (CartResult, error)
}

// Handler wires the pricing engine to HTTP.
type Handler struct {
	Engine   Calculator
	Validate *validator.Validate
	Logger   zerolog.Logger
	Metrics  *obs.PricingMetrics
}

// Calculate prices a cart snapshot. The endpoint is read-only and safe to
// retry; coupon problems come back as data inside the result, not as HTTP
// errors.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if h.Engine == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pricing engine not configured", nil)
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid calculation request", validationDetails(err))
			return
		}
	}

	start := time.Now()
	res, err := h.Engine.Calculate(r.Context(), in)
	elapsed := time.Since(start)
	if err != nil {
		h.Metrics.ObserveCalculation(obs.CalcError, elapsed)
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "shop not found", nil)
			return
		}
		h.Logger.Error().Err(err).Str("shop_id", in.ShopID.String()).Msg("calculate cart")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to price cart", nil)
		return
	}
	h.Metrics.ObserveCalculation(calcResult(res), elapsed)
	h.Metrics.AddDiscount("customer", res.CustomerDiscount)
	h.Metrics.AddDiscount("automatic", res.AutomaticDiscount)
	h.Metrics.AddDiscount("coupon", res.CouponDiscount)
	for _, p := range res.PendingGifts {
		h.Metrics.PendingGift(string(p.Reason))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

func calcResult(res CartResult) string {
	if res.CouponStatus != nil && !res.CouponStatus.Valid {
		return obs.CalcCouponRejected
	}
	return obs.CalcOK
}

func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, map[string]string{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	}
	return map[string]any{"fields": fields}
}
