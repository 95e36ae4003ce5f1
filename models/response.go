package models

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Message string `json:"message"`
}

// OK wraps result in a success envelope.
func OK(result interface{}) Response {
	return Response{Success: true, Result: result}
}

// Fail wraps message in a failure envelope.
func Fail(message string) Response {
	return Response{Success: false, Error: &ErrorBody{Message: message}}
}
