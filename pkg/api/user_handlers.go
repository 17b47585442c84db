package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/proximahq/proxima/pkg/httputil"
	"github.com/proximahq/proxima/pkg/manage"
	"github.com/proximahq/proxima/pkg/middleware"
)

// PermUser guards the user administration routes.
const PermUser = "sys:user"

// UserHandlers serves user administration.
type UserHandlers struct {
	service *manage.UserService
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(service *manage.UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// RegisterRoutes mounts the user routes behind the user permission guard.
func (h *UserHandlers) RegisterRoutes(r *mux.Router, authn *middleware.Authenticator) {
	guard := authn.RequirePermission(PermUser)

	r.Handle("/api/user/page", guard(http.HandlerFunc(h.page))).Methods("GET")
	r.Handle("/api/user/info/{id:[0-9]+}", guard(http.HandlerFunc(h.info))).Methods("GET")
	r.Handle("/api/user/add", guard(http.HandlerFunc(h.add))).Methods("POST")
	r.Handle("/api/user/update/{id:[0-9]+}", guard(http.HandlerFunc(h.update))).Methods("POST")
	r.Handle("/api/user/delete/{id:[0-9]+}", guard(http.HandlerFunc(h.delete))).Methods("DELETE")
}

func (h *UserHandlers) page(w http.ResponseWriter, r *http.Request) {
	current, size := httputil.ParsePagination(r)

	page, err := h.service.GetUserList(r.Context(), current, size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, page)
}

func (h *UserHandlers) info(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

func (h *UserHandlers) add(w http.ResponseWriter, r *http.Request) {
	var input manage.CreateUserInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}
	if input.Username == "" || input.Email == "" || input.Password == "" {
		httputil.WriteBadRequest(w, "username, email and password are required")
		return
	}

	user, err := h.service.AddUser(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteCreated(w, user)
}

func (h *UserHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var input manage.UpdateUserInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}

	if err := h.service.UpdateUser(r.Context(), id, input); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, nil)
}

func (h *UserHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, nil)
}
