package gamedto

// APIError is the backend's error envelope.
type APIError struct {
	Detail string `json:"detail"`
}

type ProviderError struct {
	Status    int
	Message   string
	Retryable bool
}

func (e ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "chess provider error"
}
