package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CommandResponse confirmación de un comando encolado.
type CommandResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// StatusResponse estado del servicio para GET /control/status.
// LastGenerated es nil mientras el proceso no haya publicado ningún feed.
type StatusResponse struct {
	Server        bool    `json:"server"`
	LastGenerated *string `json:"last_generated"`
	LastDigest    string  `json:"last_digest,omitempty"`
}
