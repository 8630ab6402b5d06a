package domain

// Envelope is the uniform result every tool invocation produces.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Succeeded(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

func Failed(message string) Envelope {
	return Envelope{Success: false, Error: message}
}
