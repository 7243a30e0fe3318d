// Package httpx holds the response helpers shared by every handler: JSON bodies, form errors and
// redirect-with-flash.
package httpx

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"pethouse/internal/platform/logger"
	"pethouse/internal/session"
)

// GenericError is the only message a client ever sees for storage failures.
const GenericError = "Something went wrong while saving your data. Please try again."

type FormErrorResponse struct {
	Errors []string          `json:"errors"`
	Old    map[string]string `json:"old,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// FormError echoes the submitted values back together with every problem found.
func FormError(w http.ResponseWriter, status int, problems []string, old map[string]string) {
	WriteJSON(w, status, FormErrorResponse{Errors: problems, Old: old})
}

// ServerError logs err with request context and answers with the generic message.
func ServerError(w http.ResponseWriter, r *http.Request, log logger.Logger, msg string, err error) {
	log.Error(msg, map[string]any{
		"err":        err,
		"request_id": chimw.GetReqID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
	})
	WriteJSON(w, http.StatusInternalServerError, MessageResponse{Message: GenericError})
}

// Redirect queues flash (if any) on the request's session and answers 303 See Other.
func Redirect(w http.ResponseWriter, r *http.Request, log logger.Logger, to, flash string) {
	if flash != "" {
		if s, ok := session.FromContext(r.Context()); ok {
			if err := s.SetFlash(r.Context(), flash); err != nil {
				log.Error("flash not stored", map[string]any{
					"err":        err,
					"request_id": chimw.GetReqID(r.Context()),
				})
			}
		}
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// TakeFlash pops the pending message for rendering. nil when there is none.
func TakeFlash(r *http.Request) *string {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return nil
	}
	msg, ok := s.TakeFlash(r.Context())
	if !ok {
		return nil
	}
	return &msg
}
