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
	"fmt"
	"net/http"
	"net/url"
)

// A User is an existing user of the store's auth system, together
// with the roles granted to them.
type User struct {
	Name  string `json:"name"`
	Roles []Role `json:"roles,omitempty"`
}

// A NewUser carries the parameters to create a user.
type NewUser struct {
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

// AddRole grants a role to the user being created.
func (u *NewUser) AddRole(role string) {
	u.Roles = append(u.Roles, role)
}

// A UserUpdate carries changes to an existing user: optionally a new
// password, roles being granted, and roles being revoked.
type UserUpdate struct {
	Name     string   `json:"name"`
	Password string   `json:"password,omitempty"`
	Grant    []string `json:"grant,omitempty"`
	Revoke   []string `json:"revoke,omitempty"`
}

// GrantRole adds a role to the set being granted.
func (u *UserUpdate) GrantRole(role string) {
	u.Grant = append(u.Grant, role)
}

// RevokeRole adds a role to the set being revoked.
func (u *UserUpdate) RevokeRole(role string) {
	u.Revoke = append(u.Revoke, role)
}

// usersList is the success body of the users listing endpoint.
type usersList struct {
	Users []User `json:"users"`
}

var statusOK = map[int]bool{
	http.StatusOK: true,
}

var statusOKCreated = map[int]bool{
	http.StatusOK:      true,
	http.StatusCreated: true,
}

func parseUser(body []byte) (interface{}, error) {
	rv := &User{}
	err := json.Unmarshal(body, rv)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return rv, nil
}

var decodeUserGet = decodeJSONOn(statusOK, parseUser)
var decodeUserPut = decodeJSONOn(statusOKCreated, parseUser)

var decodeUsersList = decodeJSONOn(statusOK,
	func(body []byte) (interface{}, error) {
		rv := &usersList{}
		err := json.Unmarshal(body, rv)
		if err != nil {
			return nil, &SerializationError{Err: err}
		}
		return rv.Users, nil
	})

// decodeDeleted accepts a bare 200 and ignores whatever body came
// with it; any other status takes the application-error path.
var decodeDeleted = decodeJSONOn(statusOK,
	func(body []byte) (interface{}, error) {
		return true, nil
	})

// ListUsers retrieves every user known to the auth system.
func (c *Client) ListUsers(ctx context.Context) (
	[]User, ClusterInfo, error) {
	rv, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.users.list",
		Method: "GET",
		Suffix: "/users",
		Decode: decodeUsersList,
	})
	if err != nil {
		return nil, ClusterInfo{}, err
	}
	return rv.([]User), info, nil
}

// GetUser retrieves one user by name.
func (c *Client) GetUser(ctx context.Context, name string) (
	*User, ClusterInfo, error) {
	if name == "" {
		return nil, ClusterInfo{},
			fmt.Errorf("auth_users: user name is required")
	}

	rv, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.users.get",
		Method: "GET",
		Suffix: "/users/" + url.PathEscape(name),
		Decode: decodeUserGet,
	})
	if err != nil {
		return nil, ClusterInfo{}, err
	}
	return rv.(*User), info, nil
}

// CreateUser creates a user, answering the stored user record.  The
// store answers 201 for a fresh user and 200 when the put landed on
// an existing one.
func (c *Client) CreateUser(ctx context.Context, user *NewUser) (
	*User, ClusterInfo, error) {
	if user == nil || user.Name == "" || user.Password == "" {
		return nil, ClusterInfo{},
			fmt.Errorf("auth_users: user name and password are required")
	}

	body, err := json.Marshal(user)
	if err != nil {
		return nil, ClusterInfo{},
			fmt.Errorf("auth_users: CreateUser marshal, err: %v", err)
	}

	rv, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.users.create",
		Method: "PUT",
		Suffix: "/users/" + url.PathEscape(user.Name),
		Body:   body,
		Decode: decodeUserPut,
	})
	if err != nil {
		return nil, ClusterInfo{}, err
	}
	return rv.(*User), info, nil
}

// UpdateUser applies a UserUpdate to an existing user, answering the
// user record as stored afterwards.
func (c *Client) UpdateUser(ctx context.Context, update *UserUpdate) (
	*User, ClusterInfo, error) {
	if update == nil || update.Name == "" {
		return nil, ClusterInfo{},
			fmt.Errorf("auth_users: user name is required")
	}

	body, err := json.Marshal(update)
	if err != nil {
		return nil, ClusterInfo{},
			fmt.Errorf("auth_users: UpdateUser marshal, err: %v", err)
	}

	rv, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.users.update",
		Method: "PUT",
		Suffix: "/users/" + url.PathEscape(update.Name),
		Body:   body,
		Decode: decodeUserPut,
	})
	if err != nil {
		return nil, ClusterInfo{}, err
	}
	return rv.(*User), info, nil
}

// DeleteUser removes a user by name.
func (c *Client) DeleteUser(ctx context.Context, name string) (
	ClusterInfo, error) {
	if name == "" {
		return ClusterInfo{}, fmt.Errorf("auth_users: user name is required")
	}

	_, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.users.delete",
		Method: "DELETE",
		Suffix: "/users/" + url.PathEscape(name),
		Decode: decodeDeleted,
	})
	if err != nil {
		return ClusterInfo{}, err
	}
	return info, nil
}
