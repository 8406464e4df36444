package booking

import (
	"fmt"
	"math"
	"time"

	"github.com/evlats/bookable/internal/model"
)

// CancellationResult is what cancelling an appointment costs. FeeAmount is
// charged against the service price, RefundAmount is what the customer gets
// back from the completed payment, and Reason is a human-readable summary
// suitable for direct display. Applying the refund to a payment ledger is
// the caller's responsibility.
type CancellationResult struct {
	FeeAmount     float64 `json:"cancellationFee"`
	RefundAmount  float64 `json:"refundAmount"`
	CanCancelFree bool    `json:"canCancelFree"`
	Reason        string  `json:"reason"`
}

// ResolvePolicy picks the applicable cancellation policy: the service-level
// policy wins over the provider default; nil means free cancellation.
func ResolvePolicy(svc *model.Service, provider *model.Provider) *model.CancellationPolicy {
	if svc != nil && svc.CancellationPolicy != nil {
		return svc.CancellationPolicy
	}
	if provider != nil && provider.CancellationPolicy != nil {
		return provider.CancellationPolicy
	}
	return nil
}

// ComputeCancellation calculates the fee and refund for cancelling the
// appointment at instant now. It is a pure function of its inputs:
//
//   - no applicable policy → free cancellation, full refund
//   - at least freeCancelHours before the appointment → free
//   - between zero and freeCancelHours before → late fee (lateCancelFeePct
//     of the service price)
//   - after the appointment time (hoursUntil < 0, a no-show) → no-show fee
//
// The refund never goes negative: refund = max(0, paid - fee).
func ComputeCancellation(appt *model.Appointment, svc *model.Service, provider *model.Provider, payment *model.Payment, now time.Time) CancellationResult {
	paid := 0.0
	if payment != nil {
		paid = payment.Amount
	}

	policy := ResolvePolicy(svc, provider)
	if policy == nil {
		return CancellationResult{
			FeeAmount:     0,
			RefundAmount:  paid,
			CanCancelFree: true,
			Reason:        "No cancellation policy",
		}
	}

	hoursUntil := appt.StartsAt().Sub(now).Hours()
	if hoursUntil >= policy.FreeCancelHours {
		return CancellationResult{
			FeeAmount:     0,
			RefundAmount:  paid,
			CanCancelFree: true,
			Reason:        fmt.Sprintf("Free cancellation (%d hours before appointment)", roundHours(hoursUntil)),
		}
	}

	price := 0.0
	if svc != nil {
		price = svc.Price
	}

	var fee float64
	var reason string
	if hoursUntil < 0 {
		fee = price * policy.NoShowFeePct / 100
		reason = fmt.Sprintf("No-show fee: %g%%", policy.NoShowFeePct)
	} else {
		fee = price * policy.LateCancelFeePct / 100
		reason = fmt.Sprintf("Late cancellation fee: %g%% (%d hours before)", policy.LateCancelFeePct, roundHours(hoursUntil))
	}

	return CancellationResult{
		FeeAmount:     fee,
		RefundAmount:  math.Max(0, paid-fee),
		CanCancelFree: false,
		Reason:        reason,
	}
}

func roundHours(h float64) int { return int(math.Round(h)) }
