package dto

// Envelope is the success body of every endpoint.
type Envelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

const StatusSuccess = "success"

// Success wraps data as {status: "success", data: {key: value}}.
func Success(key string, value any) Envelope {
	return Envelope{Status: StatusSuccess, Data: map[string]any{key: value}}
}

// List wraps a collection and reports its size in results.
func List(key string, items any, n int) Envelope {
	return Envelope{Status: StatusSuccess, Results: &n, Data: map[string]any{key: items}}
}

// WithToken wraps a session token and, when user is non-nil, the user.
func WithToken(token string, user any) Envelope {
	env := Envelope{Status: StatusSuccess, Token: token}
	if user != nil {
		env.Data = map[string]any{"user": user}
	}
	return env
}

func Message(msg string) Envelope {
	return Envelope{Status: StatusSuccess, Message: msg}
}
