package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pethouse/internal/domain/visits"
	"pethouse/internal/middleware"
	"pethouse/internal/platform/httpx"
	"pethouse/internal/platform/logger"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Get("/dashboard", getDashboardHandler(svc, log))
}

type recentVisitResponse struct {
	visits.VisitResponse
	PetName string `json:"pet_name"`
}

type dashboardResponse struct {
	Flash       *string               `json:"flash,omitempty"`
	Username    string                `json:"username"`
	TotalPets   int                   `json:"total_pets"`
	TotalVisits int                   `json:"total_visits"`
	Recent      []recentVisitResponse `json:"recent_visits"`
	StartDate   *string               `json:"start_date"`
	EndDate     *string               `json:"end_date"`
}

// getDashboardHandler godoc
// @Summary Dashboard
// @Description Pet and visit totals plus the five most recent visits, optionally bounded by visit date.
// @Tags dashboard
// @Produce json
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} dashboardResponse
// @Router /dashboard [get]
func getDashboardHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.GetIdentity(r.Context())
		q := r.URL.Query()

		sum, err := svc.Summary(r.Context(), id, q.Get("start_date"), q.Get("end_date"))
		if err != nil {
			httpx.ServerError(w, r, log, "load dashboard failed", err)
			return
		}

		recent := make([]recentVisitResponse, 0, len(sum.Recent))
		for _, v := range sum.Recent {
			recent = append(recent, recentVisitResponse{VisitResponse: visits.ToResponse(v.Visit), PetName: v.PetName})
		}

		httpx.WriteJSON(w, http.StatusOK, dashboardResponse{
			Flash:       httpx.TakeFlash(r),
			Username:    id.Username,
			TotalPets:   sum.TotalPets,
			TotalVisits: sum.TotalVisits,
			Recent:      recent,
			StartDate:   formatDate(sum.Range.From),
			EndDate:     formatDate(sum.Range.To),
		})
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
