package image

// Payload is one card photograph as submitted by the client: base64
// data plus the format the client claims it is.
type Payload struct {
	Data   string `json:"data"`
	Format string `json:"format,omitempty"`
}

// ValidationResult captures the outcome of payload validation.
type ValidationResult struct {
	IsValid      bool
	Format       string
	Width        int
	Height       int
	FileSize     int64
	Error        error
	SecurityRisk string
}
