package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/binarymart/storefront-backend/api/responses"
	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
	"github.com/binarymart/storefront-backend/pkg/logger"
	pkgredis "github.com/binarymart/storefront-backend/pkg/redis"
)

const idempotencyHeader = "Idempotency-Key"

type idempotencyRecord struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	RequestHash string `json:"request_hash"`
}

// Idempotency guards the wrapped handler behind an Idempotency-Key header.
// The first completed response for a key is stored in Redis and replayed on
// repeats; reusing a key with a different body is rejected. With no store
// configured the guard steps aside.
func Idempotency(store pkgredis.IdempotencyStore, scope string, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			storeKey := store.IdempotencyKey(scope, key)

			stored, getErr := store.Get(r.Context(), storeKey)
			if getErr != nil && !errors.Is(getErr, pkgredis.ErrNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, getErr, "check idempotency"))
				return
			}
			if stored != "" {
				var record idempotencyRecord
				if err := json.Unmarshal([]byte(stored), &record); err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
					return
				}
				if record.RequestHash != requestHash {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "idempotency key reused with different request body"))
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(record.Status)
				io.WriteString(w, record.Body)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			// Server-side failures stay unrecorded so clients can retry.
			if rec.status >= http.StatusInternalServerError {
				return
			}

			encoded, err := json.Marshal(idempotencyRecord{
				Status:      rec.status,
				Body:        rec.body.String(),
				RequestHash: requestHash,
			})
			if err != nil {
				return
			}
			if err := store.Set(r.Context(), storeKey, string(encoded), ttl); err != nil && logg != nil {
				logg.Warn(r.Context(), "failed to store idempotency record: "+err.Error())
			}
		})
	}
}

type responseCapture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseCapture) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseCapture) Write(p []byte) (int, error) {
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}

func hashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
