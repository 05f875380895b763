package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	propschema "github.com/reoring/propschema"
	"github.com/reoring/propschema/compiler"
)

// DefaultMaxBytes bounds the request body read by ValidateJSON.
const DefaultMaxBytes int64 = 1 << 20

// ctxKeyRecord is a typed context key for the validated record.
type ctxKeyRecord struct{}

// ContextWithRecord attaches a validated record to the context.
func ContextWithRecord(ctx context.Context, record map[string]any) context.Context {
	return context.WithValue(ctx, ctxKeyRecord{}, record)
}

// RecordFromContext retrieves the record stored by ValidateJSON.
func RecordFromContext(ctx context.Context) (map[string]any, bool) {
	v, ok := ctx.Value(ctxKeyRecord{}).(map[string]any)
	return v, ok
}

// ErrorPayload shapes a failed result for JSON responses.
func ErrorPayload(res propschema.Result) map[string]any {
	issues := res.Issues
	if issues == nil {
		issues = propschema.Issues{}
	}
	return map[string]any{"errors": res.Errors, "issues": issues}
}

// Options tunes ValidateJSON and the framework adapters.
type Options struct {
	MaxBytes int64
	Logger   *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Check reads body as a JSON object and validates it with s. On success it
// returns the record and http.StatusOK; otherwise the status and payload to
// respond with: 400 for malformed bodies, 413 past MaxBytes, 422 with
// ErrorPayload for invalid records and 500 for engine misconfiguration.
func Check(s *compiler.Schema, body io.Reader, opt Options) (map[string]any, int, any) {
	opt = opt.withDefaults()
	data, err := io.ReadAll(io.LimitReader(body, opt.MaxBytes+1))
	if err != nil {
		return nil, http.StatusBadRequest, map[string]any{"error": err.Error()}
	}
	if int64(len(data)) > opt.MaxBytes {
		return nil, http.StatusRequestEntityTooLarge, map[string]any{"error": "request body too large"}
	}
	record := map[string]any{}
	if len(bytes.TrimSpace(data)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&record); err != nil {
			return nil, http.StatusBadRequest, map[string]any{"error": "invalid JSON: " + err.Error()}
		}
	}
	res, err := s.Validate(record)
	if err != nil {
		opt.Logger.Error("validation engine failed", zap.Error(err))
		return nil, http.StatusInternalServerError, map[string]any{"error": "validation unavailable"}
	}
	if !res.Valid {
		opt.Logger.Debug("request rejected", zap.Int("fields", len(res.Errors)))
		return nil, http.StatusUnprocessableEntity, ErrorPayload(res)
	}
	return record, http.StatusOK, nil
}

// ValidateJSON validates the request body with Check and stores the record
// in the request context before calling next.
func ValidateJSON(s *compiler.Schema, opt Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			record, status, payload := Check(s, r.Body, opt)
			if status != http.StatusOK {
				writeJSON(w, status, payload)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithRecord(r.Context(), record)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
