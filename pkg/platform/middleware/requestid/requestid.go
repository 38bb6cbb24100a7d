// Package requestid assigns every request an id, reusing a caller-supplied
// X-Request-ID when present so logs can be joined across services.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"taxappeal/pkg/requestcontext"
)

// Header is the request/response header carrying the id.
const Header = "X-Request-ID"

const maxInboundLength = 128

// Middleware injects the request id into the context and echoes it back.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" || len(id) > maxInboundLength {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
