package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/proximahq/proxima/pkg/httputil"
	"github.com/proximahq/proxima/pkg/manage"
	"github.com/proximahq/proxima/pkg/middleware"
)

// PermRole guards the role administration routes.
const PermRole = "sys:role"

// RoleHandlers serves role administration.
type RoleHandlers struct {
	service *manage.RoleService
}

// NewRoleHandlers creates new role handlers
func NewRoleHandlers(service *manage.RoleService) *RoleHandlers {
	return &RoleHandlers{service: service}
}

// RegisterRoutes mounts the role routes behind the role permission guard.
func (h *RoleHandlers) RegisterRoutes(r *mux.Router, authn *middleware.Authenticator) {
	guard := authn.RequirePermission(PermRole)

	r.Handle("/api/role/page", guard(http.HandlerFunc(h.page))).Methods("GET")
	r.Handle("/api/role/info/{id:[0-9]+}", guard(http.HandlerFunc(h.info))).Methods("GET")
	r.Handle("/api/role/authorities/{id:[0-9]+}", guard(http.HandlerFunc(h.authorities))).Methods("GET")
	r.Handle("/api/role/add", guard(http.HandlerFunc(h.add))).Methods("POST")
	r.Handle("/api/role/update/{id:[0-9]+}", guard(http.HandlerFunc(h.update))).Methods("POST")
	r.Handle("/api/role/delete/{id:[0-9]+}", guard(http.HandlerFunc(h.delete))).Methods("DELETE")
}

func (h *RoleHandlers) page(w http.ResponseWriter, r *http.Request) {
	current, size := httputil.ParsePagination(r)

	page, err := h.service.GetRoleList(r.Context(), current, size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, page)
}

func (h *RoleHandlers) info(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, role)
}

// authorities returns the ids of every authority granted to the role, used
// by the role-edit screen to preselect tree nodes.
func (h *RoleHandlers) authorities(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	ids, err := h.service.GetRoleAuthorities(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, ids)
}

func (h *RoleHandlers) add(w http.ResponseWriter, r *http.Request) {
	var input manage.CreateRoleInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}
	if input.Name == "" {
		httputil.WriteBadRequest(w, "role name is required")
		return
	}

	role, err := h.service.AddRole(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteCreated(w, role)
}

func (h *RoleHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var input manage.UpdateRoleInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}

	if err := h.service.UpdateRole(r.Context(), id, input); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, nil)
}

func (h *RoleHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, nil)
}
