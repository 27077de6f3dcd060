package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Provider string `json:"provider,omitempty" example:"openai"`
	Fields   string `json:"fields,omitempty" example:"full"`
}
