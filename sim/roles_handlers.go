//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package sim

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/couchbase/kvadmin"
)

type rolesList struct {
	Roles []kvadmin.Role `json:"roles"`
}

// rolePutRequest is the superset of the create and update request
// bodies for a role put.
type rolePutRequest struct {
	Name        string               `json:"name"`
	Permissions *kvadmin.Permissions `json:"permissions"`
	Grant       *kvadmin.Permissions `json:"grant"`
	Revoke      *kvadmin.Permissions `json:"revoke"`
}

// grantPermissions merges granted kv paths into the role,
// deduplicating while keeping first-seen order.
func grantPermissions(role *kvadmin.Role, p *kvadmin.Permissions) {
	role.Permissions.Kv.Read = kvadmin.StringsRemoveDuplicates(
		append(role.Permissions.Kv.Read, p.Kv.Read...))
	role.Permissions.Kv.Write = kvadmin.StringsRemoveDuplicates(
		append(role.Permissions.Kv.Write, p.Kv.Write...))
}

// revokePermissions removes revoked kv paths from the role.
func revokePermissions(role *kvadmin.Role, p *kvadmin.Permissions) {
	role.Permissions.Kv.Read =
		kvadmin.StringsRemoveStrings(role.Permissions.Kv.Read, p.Kv.Read)
	role.Permissions.Kv.Write =
		kvadmin.StringsRemoveStrings(role.Permissions.Kv.Write, p.Kv.Write)
}

// ---------------------------------------------------------------

// RolesListHandler lists all roles.
type RolesListHandler struct {
	member *Member
}

func NewRolesListHandler(member *Member) *RolesListHandler {
	return &RolesListHandler{member: member}
}

func (h *RolesListHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	m := h.member

	m.m.Lock()
	defer m.m.Unlock()

	if !m.authOkLOCKED(w, req) {
		return
	}

	names := make([]string, 0, len(m.roles))
	for name := range m.roles {
		names = append(names, name)
	}
	sort.Strings(names)

	rv := &rolesList{Roles: []kvadmin.Role{}}
	for _, name := range names {
		rv.Roles = append(rv.Roles, *m.roles[name])
	}

	m.writeJSON(w, http.StatusOK, rv)
}

// ---------------------------------------------------------------

// RoleGetHandler fetches a single role by name.
type RoleGetHandler struct {
	member *Member
}

func NewRoleGetHandler(member *Member) *RoleGetHandler {
	return &RoleGetHandler{member: member}
}

func (h *RoleGetHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	m := h.member

	name := mux.Vars(req)["role"]

	m.m.Lock()
	defer m.m.Unlock()

	if !m.authOkLOCKED(w, req) {
		return
	}

	role, ok := m.roles[name]
	if !ok {
		m.writeApiError(w, http.StatusNotFound, &kvadmin.ApiError{
			ErrorCode: ErrCodeRoleNotFound,
			Message:   "role not found: " + name,
		})
		return
	}

	m.writeJSON(w, http.StatusOK, role)
}

// ---------------------------------------------------------------

// RolePutHandler creates a role when the name is new, answering 201,
// or updates an existing one, answering 200.  Updates can replace
// the permissions outright or grant and revoke individual paths.
type RolePutHandler struct {
	member *Member
}

func NewRolePutHandler(member *Member) *RolePutHandler {
	return &RolePutHandler{member: member}
}

func (h *RolePutHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	m := h.member

	name := mux.Vars(req)["role"]

	var body rolePutRequest
	err := json.NewDecoder(req.Body).Decode(&body)
	if err != nil {
		m.writeApiError(w, http.StatusBadRequest, &kvadmin.ApiError{
			ErrorCode: ErrCodeInvalidRequest,
			Message:   "could not parse the request body",
			Cause:     err.Error(),
		})
		return
	}

	if body.Name != "" && body.Name != name {
		m.writeApiError(w, http.StatusBadRequest, &kvadmin.ApiError{
			ErrorCode: ErrCodeInvalidRequest,
			Message:   "role name in the body does not match the url",
		})
		return
	}

	m.m.Lock()
	defer m.m.Unlock()

	if !m.authOkLOCKED(w, req) {
		return
	}

	role, exists := m.roles[name]
	if !exists {
		role = kvadmin.NewRole(name)
		if body.Permissions != nil {
			grantPermissions(role, body.Permissions)
		}
		if body.Grant != nil {
			grantPermissions(role, body.Grant)
		}
		m.roles[name] = role
		m.bump()

		m.writeJSON(w, http.StatusCreated, role)
		return
	}

	if body.Permissions != nil {
		role.Permissions = kvadmin.NewPermissions()
		grantPermissions(role, body.Permissions)
	}
	if body.Grant != nil {
		grantPermissions(role, body.Grant)
	}
	if body.Revoke != nil {
		revokePermissions(role, body.Revoke)
	}
	m.bump()

	m.writeJSON(w, http.StatusOK, role)
}

// ---------------------------------------------------------------

// RoleDeleteHandler removes a role.  Users keep any dangling role
// name, which resolves to an empty role until the role is recreated.
type RoleDeleteHandler struct {
	member *Member
}

func NewRoleDeleteHandler(member *Member) *RoleDeleteHandler {
	return &RoleDeleteHandler{member: member}
}

func (h *RoleDeleteHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	m := h.member

	name := mux.Vars(req)["role"]

	m.m.Lock()
	defer m.m.Unlock()

	if !m.authOkLOCKED(w, req) {
		return
	}

	if _, ok := m.roles[name]; !ok {
		m.writeApiError(w, http.StatusNotFound, &kvadmin.ApiError{
			ErrorCode: ErrCodeRoleNotFound,
			Message:   "role not found: " + name,
		})
		return
	}

	delete(m.roles, name)
	m.bump()

	m.writeJSON(w, http.StatusOK, &deletedResponse{Deleted: true})
}
