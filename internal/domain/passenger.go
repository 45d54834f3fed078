package domain

// Passenger details are shared by every reservation attempt of one checkout.
type Passenger struct {
	Name   string `json:"passenger_name" validate:"required,max=200"`
	Email  string `json:"passenger_email" validate:"required,email,max=200"`
	Phone  string `json:"passenger_phone" validate:"required,max=20"`
	UserID *int64 `json:"user_id,omitempty"`
}
