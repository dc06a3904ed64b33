package chi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// InstallationHeader carries the opaque client installation ID.
const InstallationHeader = "X-Installation-ID"

type installationKey struct{}

// InstallationMiddleware resolves the installation ID of every request.
// A missing or malformed header gets a freshly minted UUID, which is echoed
// back so the client can persist it.
func InstallationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(InstallationHeader)
		if parsed, err := uuid.Parse(id); err == nil {
			id = parsed.String()
		} else {
			id = uuid.NewString()
		}

		w.Header().Set(InstallationHeader, id)
		ctx := context.WithValue(r.Context(), installationKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// InstallationID returns the ID resolved by InstallationMiddleware, or "".
func InstallationID(ctx context.Context) string {
	id, _ := ctx.Value(installationKey{}).(string)
	return id
}
