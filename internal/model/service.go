package model

// CancellationPolicy captures how a cancellation is charged relative to the
// appointment time. A service-level policy overrides the provider default;
// when neither exists cancellation is unconditionally free. Fee percentages
// apply to the service price; zero means the tier charges nothing.
type CancellationPolicy struct {
	FreeCancelHours  float64 `json:"freeCancelHours"`
	LateCancelFeePct float64 `json:"lateCancelFeePct,omitempty"`
	NoShowFeePct     float64 `json:"noShowFeePct,omitempty"`
	DepositPct       float64 `json:"depositPct,omitempty"`
}

// Service is a bookable offering owned by one provider. Capacity is the
// number of customers who may book the same service at an overlapping time
// (group classes); 1 means strictly exclusive slots.
type Service struct {
	ID                 string              `json:"id"`
	ProviderID         string              `json:"providerId"`
	Name               string              `json:"name"`
	Description        string              `json:"description,omitempty"`
	DurationMinutes    int                 `json:"duration"`
	Price              float64             `json:"price"`
	Category           string              `json:"category,omitempty"`
	Capacity           int                 `json:"capacity"`
	IsActive           bool                `json:"isActive"`
	CancellationPolicy *CancellationPolicy `json:"cancellationPolicy,omitempty"`
}

// Provider is the slice of the provider account the booking core needs:
// identity plus the default cancellation policy applied when a service has
// none of its own. Account management lives elsewhere.
type Provider struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	CancellationPolicy *CancellationPolicy `json:"cancellationPolicy,omitempty"`
}
