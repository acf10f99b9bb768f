package httpapi

// Response is the envelope every admin API returns. Failures are reported with
// Success=false and HTTP 200 unless the session is invalid.
type Response[T any] struct {
	Success    bool           `json:"success"`
	Code       int            `json:"code"`
	Message    string         `json:"message,omitempty"`
	Result     T              `json:"result"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

const (
	CodeSuccess = 200
	CodeError   = 500
	// CodeTokenInvalid is sent with HTTP 401 so the UI redirects to login.
	CodeTokenInvalid = 401
)

// AttrShowAlert tells the UI the department tree fell back to a flat list.
const AttrShowAlert = "showAlert"

func Ok[T any](result T) Response[T] {
	return Response[T]{Success: true, Code: CodeSuccess, Result: result}
}

func OkMessage[T any](message string, result T) Response[T] {
	return Response[T]{Success: true, Code: CodeSuccess, Message: message, Result: result}
}

func Fail(message string) Response[any] {
	return Response[any]{Success: false, Code: CodeError, Message: message}
}

// WithAttribute sets one envelope attribute.
func (r Response[T]) WithAttribute(key string, value any) Response[T] {
	if r.Attributes == nil {
		r.Attributes = map[string]any{}
	}
	r.Attributes[key] = value
	return r
}
