package helpers

import "fmt"

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

// StockDataError is the base failure type; every typed error embeds it so
// callers can unwrap to the underlying cause.
type StockDataError struct {
	Message string
	Cause   error
}

func (e *StockDataError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StockDataError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// NetworkError covers connectivity, timeouts and non-200 HTTP responses.
type NetworkError struct{ StockDataError }

// APIError is a well-formed response whose envelope code is not 20000.
type APIError struct {
	StockDataError
	Code int
}

// NotFoundError means the requested symbol is absent from the candle map.
type NotFoundError struct {
	StockDataError
	Symbol string
}

// ParseError is a malformed or structurally unusable JSON body.
type ParseError struct{ StockDataError }

type ConfigurationError struct{ StockDataError }
type DatabaseError struct{ StockDataError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewNetworkError(message string, cause error) *NetworkError {
	return &NetworkError{StockDataError{Message: message, Cause: cause}}
}

func NewAPIError(code int, message string) *APIError {
	return &APIError{
		StockDataError: StockDataError{Message: fmt.Sprintf("api error %d: %s", code, message)},
		Code:           code,
	}
}

func NewNotFoundError(symbol string) *NotFoundError {
	return &NotFoundError{
		StockDataError: StockDataError{Message: fmt.Sprintf("symbol %s not found in response", symbol)},
		Symbol:         symbol,
	}
}

func NewParseError(message string, cause error) *ParseError {
	return &ParseError{StockDataError{Message: message, Cause: cause}}
}
