package dto

// Envelope wraps every response body.
type Envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Code    string         `json:"code,omitempty"`
	Data    any            `json:"data,omitempty"`
	Count   *int           `json:"count,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// OK builds a success envelope around data.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// OKMessage builds a success envelope carrying only a message.
func OKMessage(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// OKList builds a success envelope with a count.
func OKList[T any](items []T) Envelope {
	count := len(items)
	return Envelope{Success: true, Data: items, Count: &count}
}

// Fail builds an error envelope.
func Fail(code, message string, details map[string]any) Envelope {
	return Envelope{Success: false, Code: code, Message: message, Details: details}
}
