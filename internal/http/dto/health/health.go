// Package health contiene DTOs para endpoints de health check.
package health

// HealthResponse es la respuesta de GET /health.
type HealthResponse struct {
	Status    string `json:"status"` // "healthy" | "unhealthy"
	Timestamp string `json:"timestamp"`
	Version   string `json:"version,omitempty"`
	// Config: setting -> "configured" | "missing". Nunca valores.
	Config map[string]string `json:"config"`
}
