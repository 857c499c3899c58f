package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"tarasamar/internal/app"
	"tarasamar/internal/catalog"
	"tarasamar/internal/domain"
)

type Handlers struct {
	Catalog  *catalog.Catalog
	Bookings *app.BookingService
	Queries  *app.QueryService
	Notes    *app.NotificationService
	Admin    *app.AdminService
	Identity *app.IdentityService
	Tokens   TokenVerifier

	// BookingRatePerMinute limits submissions per client IP; zero disables.
	BookingRatePerMinute int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(Authenticate(h.Tokens))

		r.Get("/search", h.search)
		r.Get("/packages", h.listPackages)
		r.Get("/packages/{id}", h.getPackage)

		r.Post("/auth/signup", h.signUp)
		r.Post("/auth/signin", h.signIn)
		r.With(RequireUser).Post("/auth/signout", h.signOut)
		r.With(RequireUser).Get("/auth/me", h.me)

		r.With(RateLimit(h.BookingRatePerMinute)).Post("/booking-requests", h.submitBooking)
		r.Get("/booking-requests/status", h.bookingStatus)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Get("/notifications", h.listNotifications)
			r.Post("/notifications/{id}/read", h.markRead)

			r.Get("/admin/activity", h.adminActivity)
			r.Get("/admin/booking-requests", h.adminBookings)
			r.Post("/admin/booking-requests/{id}/confirm", h.confirmBooking)
			r.Get("/admin/dashboard", h.adminDashboard)
		})
	})
}

/********** response helpers **********/

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeProblem(w, http.StatusUnauthorized, "Invalid credentials", err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeProblem(w, http.StatusUnauthorized, "Unauthenticated", "sign in required")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Access restricted", "you do not have access to this resource")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrUpstream):
		log.Error().Err(err).Str("route", routeOf(r)).Msg("upstream failure")
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "identity service unavailable")
	default:
		log.Error().Err(err).Str("route", routeOf(r)).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeETag answers 304 when the client already holds this version.
func writeETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("route", routeOf(r)).Msg("failed to write body")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func currentUser(r *http.Request) domain.User {
	u, _ := UserFromContext(r.Context())
	return u
}

/********** catalog **********/

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	writeETag(w, r, h.Catalog.Search(r.URL.Query().Get("q")))
}

func (h *Handlers) listPackages(w http.ResponseWriter, r *http.Request) {
	writeETag(w, r, h.Catalog.Packages(r.URL.Query().Get("type")))
}

func (h *Handlers) getPackage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	p, ok := h.Catalog.Package(id)
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "package not found")
		return
	}
	writeETag(w, r, p)
}

/********** identity **********/

type authResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time  `json:"expires_at,omitempty"`
	User         domain.User `json:"user"`
	Admin        bool        `json:"admin"`
	Warnings     []string    `json:"warnings,omitempty"`
}

func (h *Handlers) signIn(w http.ResponseWriter, r *http.Request) { h.authenticate(w, r, false) }

func (h *Handlers) signUp(w http.ResponseWriter, r *http.Request) { h.authenticate(w, r, true) }

func (h *Handlers) authenticate(w http.ResponseWriter, r *http.Request, signUp bool) {
	var c app.Credentials
	if err := decodeJSON(r, &c); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	var (
		res app.AuthResult
		err error
	)
	if signUp {
		res, err = h.Identity.SignUp(r.Context(), c)
	} else {
		res, err = h.Identity.SignIn(r.Context(), c)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := authResponse{
		AccessToken:  res.Session.AccessToken,
		RefreshToken: res.Session.RefreshToken,
		User:         res.Session.User,
		Admin:        res.Admin,
		Warnings:     warnings(res.Outcome),
	}
	if !res.Session.ExpiresAt.IsZero() {
		out.ExpiresAt = &res.Session.ExpiresAt
	}
	status := http.StatusOK
	if signUp {
		status = http.StatusCreated
	}
	writeJSON(w, status, out)
}

func (h *Handlers) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Identity.SignOut(r.Context(), currentUser(r), bearerToken(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "admin": h.Identity.IsAdmin(u)})
}

/********** bookings **********/

var bodyValidate = validator.New()

// bookingBody is the wire form. Formats are checked here; presence is
// checked by the booking service.
type bookingBody struct {
	FullName     string  `json:"full_name"`
	Email        string  `json:"email" validate:"omitempty,email"`
	Phone        string  `json:"phone"`
	Message      string  `json:"message"`
	Guests       *int    `json:"guests" validate:"omitempty,min=1,max=100"`
	SelectedDate *string `json:"selected_date" validate:"omitempty,datetime=2006-01-02"`
	PackageID    *int    `json:"package_id"`
	PackageName  *string `json:"package_name"`
}

type bookingResponse struct {
	Booking  domain.BookingRequest `json:"booking"`
	Warnings []string              `json:"warnings,omitempty"`
}

func warnings(o app.Outcome) []string {
	var out []string
	for _, f := range o.Failures {
		out = append(out, string(f.Effect))
	}
	return out
}

func (h *Handlers) submitBooking(w http.ResponseWriter, r *http.Request) {
	var b bookingBody
	if err := decodeJSON(r, &b); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if err := bodyValidate.Struct(b); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	res, err := h.Bookings.Submit(r.Context(), domain.BookingForm{
		FullName:     b.FullName,
		Email:        b.Email,
		Phone:        b.Phone,
		Message:      b.Message,
		Guests:       b.Guests,
		SelectedDate: b.SelectedDate,
		PackageID:    b.PackageID,
		PackageName:  b.PackageName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingResponse{Booking: res.Booking, Warnings: warnings(res.Outcome)})
}

func (h *Handlers) bookingStatus(w http.ResponseWriter, r *http.Request) {
	list, err := h.Queries.CheckStatus(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeETag(w, r, list)
}

/********** notifications **********/

func (h *Handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	inbox, err := h.Notes.Inbox(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inbox)
}

func (h *Handlers) markRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.Notes.MarkRead(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

/********** admin **********/

func (h *Handlers) adminActivity(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Admin.ListActivity(r.Context(), currentUser(r), r.URL.Query().Get("event_type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeETag(w, r, logs)
}

func (h *Handlers) adminBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.Admin.ListBookingRequests(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeETag(w, r, list)
}

func (h *Handlers) adminDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Admin.Dashboard(r.Context(), currentUser(r), r.URL.Query().Get("event_type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeETag(w, r, d)
}

func (h *Handlers) confirmBooking(w http.ResponseWriter, r *http.Request) {
	res, err := h.Bookings.Confirm(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{Booking: res.Booking, Warnings: warnings(res.Outcome)})
}
