package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/proximahq/proxima/pkg/httputil"
	"github.com/proximahq/proxima/pkg/manage"
	"github.com/proximahq/proxima/pkg/middleware"
)

// PermAuthority guards the authority administration routes.
const PermAuthority = "sys:perm"

// AuthorityHandlers serves authority administration.
type AuthorityHandlers struct {
	service *manage.AuthorityService
}

// NewAuthorityHandlers creates new authority handlers
func NewAuthorityHandlers(service *manage.AuthorityService) *AuthorityHandlers {
	return &AuthorityHandlers{service: service}
}

// RegisterRoutes mounts the authority routes behind the authority permission
// guard.
func (h *AuthorityHandlers) RegisterRoutes(r *mux.Router, authn *middleware.Authenticator) {
	guard := authn.RequirePermission(PermAuthority)

	r.Handle("/api/perm/tree", guard(http.HandlerFunc(h.tree))).Methods("GET")
	r.Handle("/api/perm/list", guard(http.HandlerFunc(h.list))).Methods("GET")
	r.Handle("/api/perm/info/{id:[0-9]+}", guard(http.HandlerFunc(h.info))).Methods("GET")
	r.Handle("/api/perm/add", guard(http.HandlerFunc(h.add))).Methods("POST")
	r.Handle("/api/perm/update/{id:[0-9]+}", guard(http.HandlerFunc(h.update))).Methods("POST")
	r.Handle("/api/perm/delete/{id:[0-9]+}", guard(http.HandlerFunc(h.delete))).Methods("DELETE")
}

// tree returns the authority forest for the menu and role-edit screens.
func (h *AuthorityHandlers) tree(w http.ResponseWriter, r *http.Request) {
	forest, err := h.service.GetAuthorityTree(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, forest)
}

func (h *AuthorityHandlers) list(w http.ResponseWriter, r *http.Request) {
	authorities, err := h.service.GetAuthorityList(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, authorities)
}

func (h *AuthorityHandlers) info(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	authority, err := h.service.GetAuthority(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, authority)
}

func (h *AuthorityHandlers) add(w http.ResponseWriter, r *http.Request) {
	var input manage.AuthorityInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}
	if input.Name == "" || input.Code == "" {
		httputil.WriteBadRequest(w, "name and code are required")
		return
	}

	authority, err := h.service.AddAuthority(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteCreated(w, authority)
}

func (h *AuthorityHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var input manage.AuthorityInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}

	if err := h.service.UpdateAuthority(r.Context(), id, input); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, nil)
}

func (h *AuthorityHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteAuthority(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, nil)
}
