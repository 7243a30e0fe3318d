package users

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pethouse/internal/domain"
	"pethouse/internal/platform/httpx"
	"pethouse/internal/platform/logger"
	"pethouse/internal/session"
)

const (
	msgRegistered    = "Registration successful. Please sign in with your new account."
	msgLoggedOut     = "You have been signed out. See you again soon."
	msgDuplicate     = "Username or email is already in use."
	msgBadCredential = "Invalid username/email or password."
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Get("/register", registerFormHandler(svc))
	r.Post("/register", registerHandler(svc, log))
	r.Get("/login", loginFormHandler(svc))
	r.Post("/login", loginHandler(svc, log))
	r.Post("/logout", logoutHandler(svc, log))
}

type formPageResponse struct {
	Flash *string           `json:"flash,omitempty"`
	Old   map[string]string `json:"old"`
}

// redirectIfSignedIn sends authenticated callers to the dashboard. Reports whether it did.
func redirectIfSignedIn(svc *Service, w http.ResponseWriter, r *http.Request) bool {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return false
	}
	if _, ok := svc.CurrentIdentity(s); !ok {
		return false
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	return true
}

func registerFormHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redirectIfSignedIn(svc, w, r) {
			return
		}
		httpx.WriteJSON(w, http.StatusOK, formPageResponse{
			Flash: httpx.TakeFlash(r),
			Old:   map[string]string{"username": "", "email": ""},
		})
	}
}

// registerHandler godoc
// @Summary Register an owner account
// @Description Form fields username, email, password, confirm_password.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 303 {string} string "redirect to /login"
// @Failure 409 {object} httpx.FormErrorResponse
// @Failure 422 {object} httpx.FormErrorResponse
// @Router /register [post]
func registerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redirectIfSignedIn(svc, w, r) {
			return
		}
		if err := r.ParseForm(); err != nil {
			httpx.FormError(w, http.StatusBadRequest, []string{"Malformed form submission."}, nil)
			return
		}

		in := RegisterInput{
			Username:        r.PostFormValue("username"),
			Email:           r.PostFormValue("email"),
			Password:        r.PostFormValue("password"),
			PasswordConfirm: r.PostFormValue("confirm_password"),
		}
		old := map[string]string{"username": in.Username, "email": in.Email}

		_, err := svc.Register(r.Context(), in)
		if err != nil {
			var ve *domain.ValidationError
			switch {
			case errors.As(err, &ve):
				httpx.FormError(w, http.StatusUnprocessableEntity, ve.Problems, old)
			case errors.Is(err, domain.ErrDuplicateIdentity):
				httpx.FormError(w, http.StatusConflict, []string{msgDuplicate}, old)
			default:
				httpx.ServerError(w, r, log, "register failed", err)
			}
			return
		}

		httpx.Redirect(w, r, log, "/login", msgRegistered)
	}
}

func loginFormHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redirectIfSignedIn(svc, w, r) {
			return
		}
		httpx.WriteJSON(w, http.StatusOK, formPageResponse{
			Flash: httpx.TakeFlash(r),
			Old:   map[string]string{"identifier": ""},
		})
	}
}

// loginHandler godoc
// @Summary Sign in
// @Description Form fields identifier (username or email) and password. Rotates the session on success.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 303 {string} string "redirect to /dashboard"
// @Failure 401 {object} httpx.FormErrorResponse
// @Failure 422 {object} httpx.FormErrorResponse
// @Router /login [post]
func loginHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redirectIfSignedIn(svc, w, r) {
			return
		}
		s, ok := session.FromContext(r.Context())
		if !ok {
			httpx.ServerError(w, r, log, "login without session middleware", errors.New("no session"))
			return
		}
		if err := r.ParseForm(); err != nil {
			httpx.FormError(w, http.StatusBadRequest, []string{"Malformed form submission."}, nil)
			return
		}

		identifier := r.PostFormValue("identifier")
		old := map[string]string{"identifier": identifier}

		id, err := svc.Login(r.Context(), s, identifier, r.PostFormValue("password"))
		if err != nil {
			var ve *domain.ValidationError
			switch {
			case errors.As(err, &ve):
				httpx.FormError(w, http.StatusUnprocessableEntity, ve.Problems, old)
			case errors.Is(err, domain.ErrInvalidCredentials):
				httpx.FormError(w, http.StatusUnauthorized, []string{msgBadCredential}, old)
			default:
				httpx.ServerError(w, r, log, "login failed", err)
			}
			return
		}

		log.Info("user signed in", map[string]any{"user_id": id.ID})
		httpx.Redirect(w, r, log, "/dashboard", "Login successful. Welcome, "+id.Username+".")
	}
}

// logoutHandler godoc
// @Summary Sign out
// @Tags auth
// @Success 303 {string} string "redirect to /login"
// @Router /logout [post]
func logoutHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		id, err := svc.RequireAuthenticated(s)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		// The flash goes in first so Logout carries it into the rotated session.
		if err := s.SetFlash(r.Context(), msgLoggedOut); err != nil {
			log.Warn("logout flash not stored", map[string]any{"err": err})
		}
		if err := svc.Logout(r.Context(), s); err != nil {
			httpx.ServerError(w, r, log, "logout failed", err)
			return
		}

		log.Info("user signed out", map[string]any{"user_id": id.ID})
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
