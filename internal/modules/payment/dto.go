package payment

type ProviderCallbackRequest struct {
	BookingID   int64  `json:"booking_id" binding:"required"`
	ProviderRef string `json:"provider_ref" binding:"required"`
	Method      string `json:"method"`
	Succeeded   bool   `json:"succeeded"`
}
