// Package middleware provides HTTP middleware for embedding FileSentry in an
// upload pipeline.
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/filesentry/filesentry/pkg/security"
	"github.com/filesentry/filesentry/pkg/threat"
)

// Scanner is the orchestrator surface the middleware needs.
type Scanner interface {
	ScanAndRespond(ctx context.Context, content []byte, metadata threat.FileMetadata, actorContext string) *security.UnifiedSecurityResult
}

// HTTPConfig configures the HTTP scanning middleware.
type HTTPConfig struct {
	// Header extraction
	FileIDHeader     string `json:"file_id_header"`
	FileNameHeader   string `json:"file_name_header"`
	UploadedByHeader string `json:"uploaded_by_header"`

	// Behavior
	BlockOnViolation bool  `json:"block_on_violation"`
	MaxBodyBytes     int64 `json:"max_body_bytes"`

	// Exemptions
	ExemptPaths   []string `json:"exempt_paths"`
	ExemptMethods []string `json:"exempt_methods"`
}

// DefaultHTTPConfig returns default HTTP middleware configuration.
func DefaultHTTPConfig() *HTTPConfig {
	return &HTTPConfig{
		FileIDHeader:     "X-File-ID",
		FileNameHeader:   "X-File-Name",
		UploadedByHeader: "X-User-ID",
		BlockOnViolation: true,
		MaxBodyBytes:     64 << 20,
		ExemptPaths:      []string{"/health", "/metrics"},
		ExemptMethods:    []string{http.MethodOptions, http.MethodGet, http.MethodHead},
	}
}

// blockedResponse is the JSON body returned for a blocked upload.
type blockedResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id"`
	Summary       string `json:"summary"`
}

// UploadScanner returns middleware that buffers the request body, scans it
// through the orchestrator, and rejects blocked uploads with 422. Exempt
// paths and methods pass through untouched. The scan result's correlation id
// is exposed to the downstream handler via the X-Scan-Correlation-ID header.
func UploadScanner(scanner Scanner, config *HTTPConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultHTTPConfig()
	}

	exemptPaths := make(map[string]struct{}, len(config.ExemptPaths))
	for _, p := range config.ExemptPaths {
		exemptPaths[p] = struct{}{}
	}
	exemptMethods := make(map[string]struct{}, len(config.ExemptMethods))
	for _, m := range config.ExemptMethods {
		exemptMethods[m] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := exemptMethods[r.Method]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, config.MaxBodyBytes+1))
			r.Body.Close()
			if err != nil {
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			if int64(len(body)) > config.MaxBodyBytes {
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}

			metadata := extractMetadata(r, config, body)
			result := scanner.ScanAndRespond(r.Context(), body, metadata, "http-upload")

			w.Header().Set("X-Scan-Correlation-ID", result.CorrelationID)

			if config.BlockOnViolation && result.Blocked() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnprocessableEntity)
				json.NewEncoder(w).Encode(blockedResponse{
					Error:         "upload rejected by security scan",
					CorrelationID: result.CorrelationID,
					Summary:       result.Summary,
				})
				return
			}

			// Restore the body for the downstream handler.
			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
			next.ServeHTTP(w, r)
		})
	}
}

func extractMetadata(r *http.Request, config *HTTPConfig, body []byte) threat.FileMetadata {
	metadata := threat.FileMetadata{
		ID:          r.Header.Get(config.FileIDHeader),
		Name:        r.Header.Get(config.FileNameHeader),
		ContentType: r.Header.Get("Content-Type"),
		Size:        int64(len(body)),
		UploadedBy:  r.Header.Get(config.UploadedByHeader),
	}
	if metadata.ID == "" {
		metadata.ID = uuid.New().String()
	}
	if metadata.Name == "" {
		metadata.Name = "upload"
	}
	return metadata
}
