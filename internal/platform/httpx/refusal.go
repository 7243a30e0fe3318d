package httpx

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"pethouse/internal/domain/guard"
	"pethouse/internal/platform/logger"
)

// ListingPath is where refused pet and visit requests land.
const ListingPath = "/pets"

// Refuse answers a guard refusal with the listing redirect and the kind's generic message. Missing and
// foreign entities are indistinguishable to the client; the reason is only logged. Reports whether err
// was a refusal.
func Refuse(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) bool {
	re, ok := guard.AsRefused(err)
	if !ok {
		return false
	}
	log.Info("access refused", map[string]any{
		"kind":       string(re.Kind),
		"reason":     re.Reason.Error(),
		"path":       r.URL.Path,
		"request_id": chimw.GetReqID(r.Context()),
	})
	Redirect(w, r, log, ListingPath, re.Message())
	return true
}
