//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package sim

import (
	"net/http"

	"github.com/couchbase/kvadmin"
)

type authState struct {
	Enabled bool `json:"enabled"`
}

// ---------------------------------------------------------------

// AuthEnableHandler turns authentication on, which needs a root user
// to already exist.
type AuthEnableHandler struct {
	member *Member
}

func NewAuthEnableHandler(member *Member) *AuthEnableHandler {
	return &AuthEnableHandler{member: member}
}

func (h *AuthEnableHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	m := h.member

	m.m.Lock()
	defer m.m.Unlock()

	if m.authEnabled {
		m.writeApiError(w, http.StatusConflict, &kvadmin.ApiError{
			ErrorCode: ErrCodeAuthAlreadyEnabled,
			Message:   "auth is already enabled",
		})
		return
	}

	if _, ok := m.users["root"]; !ok {
		m.writeApiError(w, http.StatusBadRequest, &kvadmin.ApiError{
			ErrorCode: ErrCodeRootUserRequired,
			Message:   "a root user must exist before auth can be enabled",
		})
		return
	}

	m.authEnabled = true
	m.bump()

	m.writeJSON(w, http.StatusOK, &authState{Enabled: true})
}

// ---------------------------------------------------------------

// AuthDisableHandler turns authentication off, which needs root
// credentials while auth is on.
type AuthDisableHandler struct {
	member *Member
}

func NewAuthDisableHandler(member *Member) *AuthDisableHandler {
	return &AuthDisableHandler{member: member}
}

func (h *AuthDisableHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	m := h.member

	m.m.Lock()
	defer m.m.Unlock()

	if !m.authEnabled {
		m.writeApiError(w, http.StatusConflict, &kvadmin.ApiError{
			ErrorCode: ErrCodeAuthAlreadyDisabled,
			Message:   "auth is already disabled",
		})
		return
	}

	if !m.rootAuthedLOCKED(req) {
		m.writeApiError(w, http.StatusUnauthorized, &kvadmin.ApiError{
			ErrorCode: ErrCodeUnauthorized,
			Message:   "root credentials are required to disable auth",
		})
		return
	}

	m.authEnabled = false
	m.bump()

	m.writeJSON(w, http.StatusOK, &authState{Enabled: false})
}

// ---------------------------------------------------------------

// AuthStatusHandler reports whether authentication is on, and is
// never itself gated by authentication.
type AuthStatusHandler struct {
	member *Member
}

func NewAuthStatusHandler(member *Member) *AuthStatusHandler {
	return &AuthStatusHandler{member: member}
}

func (h *AuthStatusHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	m := h.member

	m.m.Lock()
	defer m.m.Unlock()

	m.writeJSON(w, http.StatusOK, &authState{Enabled: m.authEnabled})
}
