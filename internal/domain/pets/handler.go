package pets

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pethouse/internal/domain"
	"pethouse/internal/middleware"
	"pethouse/internal/platform/httpx"
	"pethouse/internal/platform/logger"
)

const (
	msgCreated = "Pet added successfully."
	msgUpdated = "Pet updated successfully."
	msgDeleted = "Pet deleted."
)

// extra room for the text fields of a multipart submission on top of the photo limit.
const formOverhead = 1 << 20

// RegisterRoutes mounts the pet routes. The pet profile page (GET /pets/{petID}) lives with visits.
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Get("/pets", listPetsHandler(svc, log))
	r.Post("/pets", createPetHandler(svc, log))
	r.Post("/pets/{petID}/edit", updatePetHandler(svc, log))
	r.Post("/pets/{petID}/delete", deletePetHandler(svc, log))
}

type PetResponse struct {
	ID          int64   `json:"id"`
	OwnerUserID int64   `json:"owner_user_id"`
	Name        string  `json:"name"`
	Species     *string `json:"species"`
	Breed       *string `json:"breed"`
	BirthDate   *string `json:"birth_date"` // YYYY-MM-DD
	Gender      Gender  `json:"gender"`
	PhotoURL    *string `json:"photo_url"`
	Notes       *string `json:"notes"`
	CreatedAt   string  `json:"created_at"`
}

type listPetsResponse struct {
	Flash *string       `json:"flash,omitempty"`
	Pets  []PetResponse `json:"pets"`
}

func ToResponse(p Pet) PetResponse {
	out := PetResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Gender:      p.Gender,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.BirthDate != nil {
		bd := p.BirthDate.Format(dateLayout)
		out.BirthDate = &bd
	}
	if p.Photo != nil {
		u := "/uploads/" + *p.Photo
		out.PhotoURL = &u
	}
	return out
}

// listPetsHandler godoc
// @Summary List pets
// @Description Pets of the signed-in owner. Admins see every pet.
// @Tags pets
// @Produce json
// @Success 200 {object} listPetsResponse
// @Failure 303 {string} string "redirect to /login when signed out"
// @Router /pets [get]
func listPetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.GetIdentity(r.Context())

		items, err := svc.List(r.Context(), id)
		if err != nil {
			httpx.ServerError(w, r, log, "list pets failed", err)
			return
		}

		out := make([]PetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToResponse(p))
		}
		httpx.WriteJSON(w, http.StatusOK, listPetsResponse{Flash: httpx.TakeFlash(r), Pets: out})
	}
}

// createPetHandler godoc
// @Summary Create a pet
// @Description Form fields name (required), species, breed, birth_date (YYYY-MM-DD), gender, notes and an optional photo file (JPG, PNG or WEBP, 2 MB max).
// @Tags pets
// @Accept multipart/form-data
// @Produce json
// @Success 303 {string} string "redirect to /pets"
// @Failure 422 {object} httpx.FormErrorResponse
// @Failure 500 {object} httpx.MessageResponse
// @Router /pets [post]
func createPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.GetIdentity(r.Context())

		in, photo, err := readPetForm(w, r, svc.MaxPhotoBytes())
		if err != nil {
			formTooLarge(w, svc.MaxPhotoBytes(), in)
			return
		}

		p, err := svc.Create(r.Context(), id, in, photo)
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				httpx.FormError(w, http.StatusUnprocessableEntity, ve.Problems, in.OldValues())
				return
			}
			httpx.ServerError(w, r, log, "create pet failed", err)
			return
		}

		log.Info("pet created", map[string]any{"pet_id": p.ID, "user_id": id.ID})
		httpx.Redirect(w, r, log, "/pets", msgCreated)
	}
}

func updatePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.GetIdentity(r.Context())
		rawID := chi.URLParam(r, "petID")

		in, photo, err := readPetForm(w, r, svc.MaxPhotoBytes())
		if err != nil {
			formTooLarge(w, svc.MaxPhotoBytes(), in)
			return
		}

		p, err := svc.Update(r.Context(), id, rawID, in, photo)
		if err != nil {
			if httpx.Refuse(w, r, log, err) {
				return
			}
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				httpx.FormError(w, http.StatusUnprocessableEntity, ve.Problems, in.OldValues())
				return
			}
			httpx.ServerError(w, r, log, "update pet failed", err)
			return
		}

		httpx.Redirect(w, r, log, fmt.Sprintf("/pets/%d", p.ID), msgUpdated)
	}
}

func deletePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.GetIdentity(r.Context())

		p, err := svc.Delete(r.Context(), id, chi.URLParam(r, "petID"))
		if err != nil {
			if httpx.Refuse(w, r, log, err) {
				return
			}
			log.Error("delete pet failed", map[string]any{"err": err, "user_id": id.ID})
			httpx.Redirect(w, r, log, "/pets", httpx.GenericError)
			return
		}

		log.Info("pet deleted", map[string]any{"pet_id": p.ID, "user_id": id.ID})
		httpx.Redirect(w, r, log, "/pets", msgDeleted)
	}
}

// readPetForm parses url-encoded or multipart submissions. The photo is read up to one byte past the
// limit. An error means the body as a whole was too large.
func readPetForm(w http.ResponseWriter, r *http.Request, maxPhoto int64) (Input, *PhotoUpload, error) {
	var photo *PhotoUpload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxPhoto+formOverhead)
		if err := r.ParseMultipartForm(maxPhoto + formOverhead); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return Input{}, nil, err
			}
		}
		photo = readPhoto(r, maxPhoto)
	} else {
		_ = r.ParseForm()
	}

	in := Input{
		Name:      r.PostFormValue("name"),
		Species:   r.PostFormValue("species"),
		Breed:     r.PostFormValue("breed"),
		BirthDate: r.PostFormValue("birth_date"),
		Gender:    r.PostFormValue("gender"),
		Notes:     r.PostFormValue("notes"),
	}
	return in, photo, nil
}

func readPhoto(r *http.Request, maxPhoto int64) *PhotoUpload {
	f, hdr, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return &PhotoUpload{Failed: true}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPhoto+1))
	if err != nil {
		return &PhotoUpload{Filename: hdr.Filename, Failed: true}
	}
	return &PhotoUpload{Filename: hdr.Filename, Data: data}
}

func formTooLarge(w http.ResponseWriter, maxPhoto int64, in Input) {
	httpx.FormError(w, http.StatusRequestEntityTooLarge,
		[]string{fmt.Sprintf("File exceeds the maximum size of %d MB.", maxPhoto>>20)},
		in.OldValues())
}
