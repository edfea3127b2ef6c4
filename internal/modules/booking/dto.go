package booking

type CreateBookingRequest struct {
	PropertyID  int64  `json:"property_id" binding:"required"`
	GuestID     int64  `json:"-"`
	CheckIn     string `json:"check_in" binding:"required"` // 2006-01-02
	CheckOut    string `json:"check_out" binding:"required"`
	TotalGuests int    `json:"total_guests" binding:"required"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}
