package brewserver

// MessageResponse is the body of plain acknowledgement responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}
