package dto

// ErrorResponseDTO is the error body of the JSON endpoints.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"session_expired"`
}

// MessageResponseDTO carries a single message.
type MessageResponseDTO struct {
	Message string `json:"message" example:"OTP sent to your email and mobile!"`
}

// HealthDTO is returned by GET /health.
type HealthDTO struct {
	Status   string `json:"status" example:"ok"`
	Visitors int    `json:"visitors" example:"3"`
}

// RegistrationStatusDTO is the live state of the visitor's registration form.
type RegistrationStatusDTO struct {
	State     string `json:"state" example:"otp_sent"`
	Remaining int    `json:"remaining_seconds" example:"42"`
	CanSend   bool   `json:"can_send" example:"false"`
	Verified  bool   `json:"verified" example:"false"`
	// ResendLabel is the text of the send button.
	ResendLabel string `json:"resend_label" example:"Resend in 42s"`
}
