package domain

import "errors"

var (
	MessageSuccessStartSession = "session started successfully"
	MessageFailedStartSession  = "failed to start session"

	ErrInvalidPin = errors.New("invalid pin")
)

type (
	SessionRequest struct {
		Role UserRole `json:"role" validate:"required,oneof=ADMIN STAFF STUDENT"`
		Pin  string   `json:"pin"`
	}

	SessionResponse struct {
		Token string   `json:"token"`
		Role  UserRole `json:"role"`
	}
)
