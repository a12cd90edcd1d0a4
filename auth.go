//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package kvadmin

import (
	"context"
	"encoding/json"
	"net/http"
)

// EnableAuth is the outcome set of Client.EnableAuth.
type EnableAuth int

const (
	EnableAuthUnknown EnableAuth = iota
	EnableAuthEnabled
	EnableAuthAlreadyEnabled
	EnableAuthRootUserRequired
)

func (e EnableAuth) String() string {
	switch e {
	case EnableAuthEnabled:
		return "enabled"
	case EnableAuthAlreadyEnabled:
		return "alreadyEnabled"
	case EnableAuthRootUserRequired:
		return "rootUserRequired"
	}
	return "unknown"
}

// IsEnabled reports whether auth is on after the outcome: true for a
// fresh enable and for an already-enabled conflict alike.
func (e EnableAuth) IsEnabled() bool {
	return e == EnableAuthEnabled || e == EnableAuthAlreadyEnabled
}

// DisableAuth is the outcome set of Client.DisableAuth.
type DisableAuth int

const (
	DisableAuthUnknown DisableAuth = iota
	DisableAuthDisabled
	DisableAuthAlreadyDisabled
	DisableAuthUnauthorized
)

func (d DisableAuth) String() string {
	switch d {
	case DisableAuthDisabled:
		return "disabled"
	case DisableAuthAlreadyDisabled:
		return "alreadyDisabled"
	case DisableAuthUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// IsDisabled reports whether auth is off after the outcome: true for
// a fresh disable and for an already-disabled conflict alike.
func (d DisableAuth) IsDisabled() bool {
	return d == DisableAuthDisabled || d == DisableAuthAlreadyDisabled
}

// MapEnableAuthStatus maps a response status code to an EnableAuth
// outcome.  Total over all codes: anything outside the known set
// yields an UnexpectedStatusError carrying that exact code.
func MapEnableAuthStatus(statusCode int) (EnableAuth, error) {
	switch statusCode {
	case http.StatusOK:
		return EnableAuthEnabled, nil
	case http.StatusBadRequest:
		return EnableAuthRootUserRequired, nil
	case http.StatusConflict:
		return EnableAuthAlreadyEnabled, nil
	}
	return EnableAuthUnknown, &UnexpectedStatusError{StatusCode: statusCode}
}

// MapDisableAuthStatus maps a response status code to a DisableAuth
// outcome.  Total over all codes, like MapEnableAuthStatus.
func MapDisableAuthStatus(statusCode int) (DisableAuth, error) {
	switch statusCode {
	case http.StatusOK:
		return DisableAuthDisabled, nil
	case http.StatusConflict:
		return DisableAuthAlreadyDisabled, nil
	case http.StatusUnauthorized:
		return DisableAuthUnauthorized, nil
	}
	return DisableAuthUnknown, &UnexpectedStatusError{StatusCode: statusCode}
}

func decodeEnableAuth(resp *http.Response) (interface{}, error) {
	rv, err := MapEnableAuthStatus(resp.StatusCode)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func decodeDisableAuth(resp *http.Response) (interface{}, error) {
	rv, err := MapDisableAuthStatus(resp.StatusCode)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// authStatus is the success body of the auth status endpoint.
type authStatus struct {
	Enabled bool `json:"enabled"`
}

var decodeAuthEnabled = decodeJSONOn(map[int]bool{http.StatusOK: true},
	func(body []byte) (interface{}, error) {
		st := &authStatus{}
		err := json.Unmarshal(body, st)
		if err != nil {
			return nil, &SerializationError{Err: err}
		}
		return st.Enabled, nil
	})

// EnableAuth switches the store's auth system on.  The store demands
// an existing root user first, surfaced as the RootUserRequired
// outcome.
func (c *Client) EnableAuth(ctx context.Context) (
	EnableAuth, ClusterInfo, error) {
	rv, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.enable",
		Method: "PUT",
		Suffix: "/enable",
		Body:   EMPTY_BYTES,
		Decode: decodeEnableAuth,
	})
	if err != nil {
		return EnableAuthUnknown, ClusterInfo{}, err
	}
	return rv.(EnableAuth), info, nil
}

// DisableAuth switches the store's auth system off.  Once auth is on,
// the store only honors this from the root user, surfaced as the
// Unauthorized outcome otherwise.
func (c *Client) DisableAuth(ctx context.Context) (
	DisableAuth, ClusterInfo, error) {
	rv, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.disable",
		Method: "DELETE",
		Suffix: "/enable",
		Decode: decodeDisableAuth,
	})
	if err != nil {
		return DisableAuthUnknown, ClusterInfo{}, err
	}
	return rv.(DisableAuth), info, nil
}

// AuthEnabled reports whether the store's auth system is on.
func (c *Client) AuthEnabled(ctx context.Context) (
	bool, ClusterInfo, error) {
	rv, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.status",
		Method: "GET",
		Suffix: "/enable",
		Decode: decodeAuthEnabled,
	})
	if err != nil {
		return false, ClusterInfo{}, err
	}
	return rv.(bool), info, nil
}
