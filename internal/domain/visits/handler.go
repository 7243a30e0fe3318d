package visits

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pethouse/internal/domain"
	"pethouse/internal/domain/pets"
	"pethouse/internal/middleware"
	"pethouse/internal/platform/httpx"
	"pethouse/internal/platform/logger"
)

const (
	msgCreated = "Visit added successfully."
	msgUpdated = "Visit changes saved."
	msgDeleted = "Visit deleted."
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Get("/pets/{petID}", petProfileHandler(svc, log))
	r.Post("/pets/{petID}/visits", createVisitHandler(svc, log))

	r.Get("/visits/{visitID}", getVisitHandler(svc, log))
	r.Post("/visits/{visitID}/edit", updateVisitHandler(svc, log))
	r.Post("/visits/{visitID}/delete", deleteVisitHandler(svc, log))
}

type VisitResponse struct {
	ID          int64   `json:"id"`
	PetID       int64   `json:"pet_id"`
	VisitDate   string  `json:"visit_date"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

type petProfileResponse struct {
	Flash  *string          `json:"flash,omitempty"`
	Pet    pets.PetResponse `json:"pet"`
	Visits []VisitResponse  `json:"visits"`
}

type visitPageResponse struct {
	Flash *string          `json:"flash,omitempty"`
	Visit VisitResponse    `json:"visit"`
	Pet   pets.PetResponse `json:"pet"`
}

func ToResponse(v Visit) VisitResponse {
	return VisitResponse{
		ID:          v.ID,
		PetID:       v.PetID,
		VisitDate:   v.VisitDate.Format(dateLayout),
		Type:        v.Type,
		Description: v.Description,
		CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// petProfileHandler godoc
// @Summary Pet profile
// @Description The pet and its visits, newest first. Missing pets and pets of other owners both redirect to /pets with the same message.
// @Tags pets
// @Produce json
// @Param petID path int true "Pet ID"
// @Success 200 {object} petProfileResponse
// @Failure 303 {string} string "redirect to /pets"
// @Router /pets/{petID} [get]
func petProfileHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.GetIdentity(r.Context())

		pet, items, err := svc.ListByPet(r.Context(), id, chi.URLParam(r, "petID"))
		if err != nil {
			if httpx.Refuse(w, r, log, err) {
				return
			}
			httpx.ServerError(w, r, log, "load pet profile failed", err)
			return
		}

		out := make([]VisitResponse, 0, len(items))
		for _, v := range items {
			out = append(out, ToResponse(v))
		}
		httpx.WriteJSON(w, http.StatusOK, petProfileResponse{
			Flash:  httpx.TakeFlash(r),
			Pet:    pets.ToResponse(pet),
			Visits: out,
		})
	}
}

// createVisitHandler godoc
// @Summary Add a visit
// @Description Form fields visit_date (YYYY-MM-DD, required), type, description.
// @Tags visits
// @Accept x-www-form-urlencoded
// @Produce json
// @Param petID path int true "Pet ID"
// @Success 303 {string} string "redirect to /pets/{petID}"
// @Failure 422 {object} httpx.FormErrorResponse
// @Router /pets/{petID}/visits [post]
func createVisitHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.GetIdentity(r.Context())
		in := readVisitForm(r)

		rec, err := svc.Create(r.Context(), id, chi.URLParam(r, "petID"), in)
		if err != nil {
			writeMutationError(w, r, log, "create visit failed", err, in)
			return
		}

		httpx.Redirect(w, r, log, fmt.Sprintf("/pets/%d", rec.Pet.ID), msgCreated)
	}
}

func getVisitHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.GetIdentity(r.Context())

		rec, err := svc.Get(r.Context(), id, chi.URLParam(r, "visitID"))
		if err != nil {
			if httpx.Refuse(w, r, log, err) {
				return
			}
			httpx.ServerError(w, r, log, "load visit failed", err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, visitPageResponse{
			Flash: httpx.TakeFlash(r),
			Visit: ToResponse(rec.Visit),
			Pet:   pets.ToResponse(rec.Pet),
		})
	}
}

func updateVisitHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.GetIdentity(r.Context())
		in := readVisitForm(r)

		rec, err := svc.Update(r.Context(), id, chi.URLParam(r, "visitID"), in)
		if err != nil {
			writeMutationError(w, r, log, "update visit failed", err, in)
			return
		}

		httpx.Redirect(w, r, log, fmt.Sprintf("/pets/%d", rec.Pet.ID), msgUpdated)
	}
}

func deleteVisitHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.GetIdentity(r.Context())

		rec, err := svc.Delete(r.Context(), id, chi.URLParam(r, "visitID"))
		if err != nil {
			if httpx.Refuse(w, r, log, err) {
				return
			}
			log.Error("delete visit failed", map[string]any{"err": err, "user_id": id.ID})
			httpx.Redirect(w, r, log, httpx.ListingPath, httpx.GenericError)
			return
		}

		httpx.Redirect(w, r, log, fmt.Sprintf("/pets/%d", rec.Pet.ID), msgDeleted)
	}
}

func readVisitForm(r *http.Request) Input {
	_ = r.ParseForm()
	return Input{
		VisitDate:   r.PostFormValue("visit_date"),
		Type:        r.PostFormValue("type"),
		Description: r.PostFormValue("description"),
	}
}

func writeMutationError(w http.ResponseWriter, r *http.Request, log logger.Logger, msg string, err error, in Input) {
	if httpx.Refuse(w, r, log, err) {
		return
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		httpx.FormError(w, http.StatusUnprocessableEntity, ve.Problems, in.OldValues())
		return
	}
	httpx.ServerError(w, r, log, msg, err)
}
