// Package artifact provides the per-turn side channel that moves large
// binary payloads (generated images) out of the token and event stream.
package artifact

// Artifact represents one generated content artifact, such as an image.
type Artifact struct {
	// Data is the base64-encoded payload (required).
	Data string `json:"data,omitempty"`
	// MimeType is the IANA standard MIME type of the payload.
	MimeType string `json:"mime_type,omitempty"`
}
