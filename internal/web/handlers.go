package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/monorkin/lab-roster/internal/auth"
	"github.com/monorkin/lab-roster/internal/catalog"
	"github.com/monorkin/lab-roster/internal/forms"
)

const (
	MSG_INVALID_LOGIN    = "Invalid number or password."
	MSG_FORBIDDEN        = "This system is only open to administrators. Please contact an administrator for access."
	MSG_LOGGED_OUT       = "You have been logged out."
	MSG_DEVICE_ADDED     = "Device added."
	MSG_DEVICE_REMOVED   = "Device removed."
	MSG_ADMIN_OWNED      = "Devices added by an administrator cannot be removed."
	MSG_DEVICE_EXISTS    = "This device already exists, please check the number."
	MSG_UNKNOWN_OWNER    = "No user has this number."
	ACTION_LOGIN         = "/login"
	ACTION_SEARCH        = "/"
	ACTION_ADD_DEVICE    = "/add-user"
	ACTION_REMOVE_DEVICE = "/remove-user"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(r, "Devices")

	var filter *int
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			s.render(w, r, http.StatusBadRequest, "index", p)
			return
		}
		p.Form = r.PostForm

		switch search, err := forms.ParseSearch(r.PostForm); {
		case !s.validCSRF(r, ACTION_SEARCH):
			p.Errors = forms.FieldErrors{CSRF_FIELD: MSG_CSRF}
		case err != nil:
			fields, ok := forms.AsFieldErrors(err)
			if !ok {
				s.serverError(w, r, err)
				return
			}
			p.Errors = fields
		default:
			filter = &search.ID
		}
	}

	devices, err := s.catalog.ListDevices(r.Context(), filter)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	p.Devices = devices

	s.render(w, r, http.StatusOK, "index", p)
}

func (s *Server) handleAddDevice(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(r, "Add device")
	if r.Method != http.MethodPost {
		s.render(w, r, http.StatusOK, "add_device", p)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "add_device", p)
		return
	}
	p.Form = r.PostForm

	if !s.validCSRF(r, ACTION_ADD_DEVICE) {
		p.Errors = forms.FieldErrors{CSRF_FIELD: MSG_CSRF}
		s.render(w, r, http.StatusBadRequest, "add_device", p)
		return
	}

	input, err := forms.ParseDevice(r.PostForm)
	if err != nil {
		fields, ok := forms.AsFieldErrors(err)
		if !ok {
			s.serverError(w, r, err)
			return
		}
		p.Errors = fields
		s.render(w, r, http.StatusOK, "add_device", p)
		return
	}

	_, err = s.catalog.AddDevice(r.Context(), catalog.NewDevice{
		Name:        input.Name,
		ID:          input.ID,
		OwnerNumber: input.Owner,
	})
	switch {
	case errors.Is(err, catalog.ErrDuplicateEntry):
		s.metrics.deviceMutation("add", "duplicate")
		p.Errors = forms.FieldErrors{"id": MSG_DEVICE_EXISTS}
		s.render(w, r, http.StatusOK, "add_device", p)
	case errors.Is(err, catalog.ErrUnknownOwner):
		s.metrics.deviceMutation("add", "unknown_owner")
		p.Errors = forms.FieldErrors{"owner": MSG_UNKNOWN_OWNER}
		s.render(w, r, http.StatusOK, "add_device", p)
	case err != nil:
		s.metrics.deviceMutation("add", "error")
		s.serverError(w, r, err)
	default:
		s.metrics.deviceMutation("add", "ok")
		s.flash(r, FLASH_SUCCESS, MSG_DEVICE_ADDED)
		s.redirect(w, r, "/")
	}
}

func (s *Server) handleRemoveDevice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}

	if !s.validCSRF(r, ACTION_REMOVE_DEVICE) {
		s.metrics.deviceMutation("remove", "bad_token")
		s.flash(r, FLASH_ERROR, MSG_CSRF)
		s.redirect(w, r, "/")
		return
	}

	_, err = s.catalog.RemoveDevice(r.Context(), uint(id))
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		s.metrics.deviceMutation("remove", "not_found")
		s.handleNotFound(w, r)
	case errors.Is(err, catalog.ErrAdminOwned):
		s.metrics.deviceMutation("remove", "refused")
		s.flash(r, FLASH_WARNING, MSG_ADMIN_OWNED)
		s.redirect(w, r, "/")
	case err != nil:
		s.metrics.deviceMutation("remove", "error")
		s.serverError(w, r, err)
	default:
		s.metrics.deviceMutation("remove", "ok")
		s.flash(r, FLASH_SUCCESS, MSG_DEVICE_REMOVED)
		s.redirect(w, r, "/")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(r, "Log in")
	p.Next = safeNext(r.URL.Query().Get("next"))
	if r.Method != http.MethodPost {
		s.render(w, r, http.StatusOK, "login", p)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login", p)
		return
	}
	p.Form = url.Values{
		"number":      r.PostForm["number"],
		"remember_me": r.PostForm["remember_me"],
	}
	if next := r.PostForm.Get("next"); next != "" {
		p.Next = safeNext(next)
	}

	if !s.validCSRF(r, ACTION_LOGIN) {
		s.metrics.login("bad_token")
		p.Errors = forms.FieldErrors{CSRF_FIELD: MSG_CSRF}
		s.render(w, r, http.StatusBadRequest, "login", p)
		return
	}

	input, err := forms.ParseLogin(r.PostForm)
	if err != nil {
		fields, ok := forms.AsFieldErrors(err)
		if !ok {
			s.serverError(w, r, err)
			return
		}
		s.metrics.login("invalid_form")
		p.Errors = fields
		s.render(w, r, http.StatusOK, "login", p)
		return
	}

	grant, err := s.auth.Login(r.Context(), input.Number, input.Password, input.Remember, clientOf(r))
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.metrics.login("invalid_credentials")
		s.flash(r, FLASH_ERROR, MSG_INVALID_LOGIN)
		s.render(w, r, http.StatusOK, "login", p)
	case errors.Is(err, auth.ErrForbidden):
		s.metrics.login("forbidden")
		s.flash(r, FLASH_ERROR, MSG_FORBIDDEN)
		s.render(w, r, http.StatusOK, "login", p)
	case err != nil:
		s.metrics.login("error")
		s.serverError(w, r, err)
	default:
		s.metrics.login("ok")
		s.setSessionCookie(w, grant)
		s.redirect(w, r, p.Next)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	if principal != nil {
		if err := s.auth.Logout(r.Context(), principal.SessionID); err != nil {
			s.serverError(w, r, err)
			return
		}
	}

	s.clearSessionCookie(w)
	s.flash(r, FLASH_INFO, MSG_LOGGED_OUT)
	s.redirect(w, r, "/login")
}
