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

type usersList struct {
	Users []kvadmin.User `json:"users"`
}

// userPutRequest is the superset of the create and update request
// bodies for a user put.
type userPutRequest struct {
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
	Grant    []string `json:"grant"`
	Revoke   []string `json:"revoke"`
}

type deletedResponse struct {
	Deleted bool `json:"deleted"`
}

// ---------------------------------------------------------------

// UsersListHandler lists all users, with role names resolved into
// full role records.
type UsersListHandler struct {
	member *Member
}

func NewUsersListHandler(member *Member) *UsersListHandler {
	return &UsersListHandler{member: member}
}

func (h *UsersListHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	m := h.member

	m.m.Lock()
	defer m.m.Unlock()

	if !m.authOkLOCKED(w, req) {
		return
	}

	names := make([]string, 0, len(m.users))
	for name := range m.users {
		names = append(names, name)
	}
	sort.Strings(names)

	rv := &usersList{Users: []kvadmin.User{}}
	for _, name := range names {
		rv.Users = append(rv.Users, *m.userRecordLOCKED(m.users[name]))
	}

	m.writeJSON(w, http.StatusOK, rv)
}

// ---------------------------------------------------------------

// UserGetHandler fetches a single user by name.
type UserGetHandler struct {
	member *Member
}

func NewUserGetHandler(member *Member) *UserGetHandler {
	return &UserGetHandler{member: member}
}

func (h *UserGetHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	m := h.member

	name := mux.Vars(req)["user"]

	m.m.Lock()
	defer m.m.Unlock()

	if !m.authOkLOCKED(w, req) {
		return
	}

	u, ok := m.users[name]
	if !ok {
		m.writeApiError(w, http.StatusNotFound, &kvadmin.ApiError{
			ErrorCode: ErrCodeUserNotFound,
			Message:   "user not found: " + name,
		})
		return
	}

	m.writeJSON(w, http.StatusOK, m.userRecordLOCKED(u))
}

// ---------------------------------------------------------------

// UserPutHandler creates a user when the name is new, answering 201,
// or updates an existing one, answering 200.  Updates can replace
// the role list outright or grant and revoke individual roles.
type UserPutHandler struct {
	member *Member
}

func NewUserPutHandler(member *Member) *UserPutHandler {
	return &UserPutHandler{member: member}
}

func (h *UserPutHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	m := h.member

	name := mux.Vars(req)["user"]

	var body userPutRequest
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
			Message:   "user name in the body does not match the url",
		})
		return
	}

	m.m.Lock()
	defer m.m.Unlock()

	if !m.authOkLOCKED(w, req) {
		return
	}

	u, exists := m.users[name]
	if !exists {
		if body.Password == "" {
			m.writeApiError(w, http.StatusBadRequest, &kvadmin.ApiError{
				ErrorCode: ErrCodeInvalidRequest,
				Message:   "a password is required to create a user",
			})
			return
		}

		u = &memberUser{
			Name:     name,
			Password: body.Password,
			Roles:    append([]string{}, body.Roles...),
		}
		m.users[name] = u
		m.bump()

		m.writeJSON(w, http.StatusCreated, m.userRecordLOCKED(u))
		return
	}

	if body.Password != "" {
		u.Password = body.Password
	}
	if body.Roles != nil {
		u.Roles = append([]string{}, body.Roles...)
	}
	u.Roles = kvadmin.StringsRemoveDuplicates(append(u.Roles, body.Grant...))
	u.Roles = kvadmin.StringsRemoveStrings(u.Roles, body.Revoke)
	m.bump()

	m.writeJSON(w, http.StatusOK, m.userRecordLOCKED(u))
}

// ---------------------------------------------------------------

// UserDeleteHandler removes a user.  The root user cannot be removed
// while auth is enabled.
type UserDeleteHandler struct {
	member *Member
}

func NewUserDeleteHandler(member *Member) *UserDeleteHandler {
	return &UserDeleteHandler{member: member}
}

func (h *UserDeleteHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	m := h.member

	name := mux.Vars(req)["user"]

	m.m.Lock()
	defer m.m.Unlock()

	if !m.authOkLOCKED(w, req) {
		return
	}

	if _, ok := m.users[name]; !ok {
		m.writeApiError(w, http.StatusNotFound, &kvadmin.ApiError{
			ErrorCode: ErrCodeUserNotFound,
			Message:   "user not found: " + name,
		})
		return
	}

	if name == "root" && m.authEnabled {
		m.writeApiError(w, http.StatusForbidden, &kvadmin.ApiError{
			ErrorCode: ErrCodeRootUndeletable,
			Message:   "the root user cannot be removed while auth is enabled",
		})
		return
	}

	delete(m.users, name)
	m.bump()

	m.writeJSON(w, http.StatusOK, &deletedResponse{Deleted: true})
}
