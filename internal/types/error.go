package types

import "fmt"

// CustomError carries an HTTP status code and a dotted error type tag so the
// fiber error handler can shape the response without inspecting the message.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}
