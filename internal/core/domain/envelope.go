package domain

// Envelope is the uniform wrapper for every outward-facing response body.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

// Success wraps data in a successful envelope.
func Success[T any](message string, data T) Envelope[T] {
	return Envelope[T]{Success: true, Message: message, Data: &data}
}

// Failure builds an unsuccessful envelope with a null payload.
func Failure[T any](message string) Envelope[T] {
	return Envelope[T]{Success: false, Message: message}
}
