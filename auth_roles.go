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
	"net/url"
)

// A Role names a set of access permissions over the store's
// resources, grantable to users.
type Role struct {
	Name        string      `json:"name"`
	Permissions Permissions `json:"permissions"`
}

// NewRole returns a Role with no permissions granted yet.
func NewRole(name string) *Role {
	return &Role{
		Name:        name,
		Permissions: NewPermissions(),
	}
}

// AddKvReadPermission grants the role read access to a kv path.
func (r *Role) AddKvReadPermission(path string) {
	r.Permissions.Kv.AddReadPermission(path)
}

// AddKvWritePermission grants the role write access to a kv path.
func (r *Role) AddKvWritePermission(path string) {
	r.Permissions.Kv.AddWritePermission(path)
}

// KvReadPermissions lists the kv paths the role may read.
func (r *Role) KvReadPermissions() []string {
	return r.Permissions.Kv.Read
}

// KvWritePermissions lists the kv paths the role may write.
func (r *Role) KvWritePermissions() []string {
	return r.Permissions.Kv.Write
}

// A RoleUpdate carries changes to an existing role: permissions
// being granted and permissions being revoked.
type RoleUpdate struct {
	Name   string      `json:"name"`
	Grant  Permissions `json:"grant"`
	Revoke Permissions `json:"revoke"`
}

// NewRoleUpdate returns an empty update for the named role.
func NewRoleUpdate(name string) *RoleUpdate {
	return &RoleUpdate{
		Name:   name,
		Grant:  NewPermissions(),
		Revoke: NewPermissions(),
	}
}

// GrantKvReadPermission adds read access on a kv path to the grants.
func (r *RoleUpdate) GrantKvReadPermission(path string) {
	r.Grant.Kv.AddReadPermission(path)
}

// GrantKvWritePermission adds write access on a kv path to the grants.
func (r *RoleUpdate) GrantKvWritePermission(path string) {
	r.Grant.Kv.AddWritePermission(path)
}

// RevokeKvReadPermission adds read access on a kv path to the
// revocations.
func (r *RoleUpdate) RevokeKvReadPermission(path string) {
	r.Revoke.Kv.AddReadPermission(path)
}

// RevokeKvWritePermission adds write access on a kv path to the
// revocations.
func (r *RoleUpdate) RevokeKvWritePermission(path string) {
	r.Revoke.Kv.AddWritePermission(path)
}

// Permissions groups a role's per-resource permissions; kv is the
// only resource kind the store defines today.
type Permissions struct {
	Kv Permission `json:"kv"`
}

// NewPermissions returns an empty Permissions whose path lists
// marshal as [] rather than null.
func NewPermissions() Permissions {
	return Permissions{
		Kv: Permission{
			Read:  []string{},
			Write: []string{},
		},
	}
}

// A Permission lists the resource paths allowed to be read and
// written.
type Permission struct {
	Read  []string `json:"read"`
	Write []string `json:"write"`
}

// AddReadPermission grants read access to a path.
func (p *Permission) AddReadPermission(path string) {
	p.Read = append(p.Read, path)
}

// AddWritePermission grants write access to a path.
func (p *Permission) AddWritePermission(path string) {
	p.Write = append(p.Write, path)
}

// RemoveReadPermission drops read access to a path, if present.
func (p *Permission) RemoveReadPermission(path string) {
	p.Read = StringsRemoveStrings(p.Read, []string{path})
}

// RemoveWritePermission drops write access to a path, if present.
func (p *Permission) RemoveWritePermission(path string) {
	p.Write = StringsRemoveStrings(p.Write, []string{path})
}

// rolesList is the success body of the roles listing endpoint.
type rolesList struct {
	Roles []Role `json:"roles"`
}

func parseRole(body []byte) (interface{}, error) {
	rv := &Role{}
	err := json.Unmarshal(body, rv)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return rv, nil
}

var decodeRoleGet = decodeJSONOn(statusOK, parseRole)
var decodeRolePut = decodeJSONOn(statusOKCreated, parseRole)

var decodeRolesList = decodeJSONOn(statusOK,
	func(body []byte) (interface{}, error) {
		rv := &rolesList{}
		err := json.Unmarshal(body, rv)
		if err != nil {
			return nil, &SerializationError{Err: err}
		}
		return rv.Roles, nil
	})

// ListRoles retrieves every role known to the auth system.
func (c *Client) ListRoles(ctx context.Context) (
	[]Role, ClusterInfo, error) {
	rv, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.roles.list",
		Method: "GET",
		Suffix: "/roles",
		Decode: decodeRolesList,
	})
	if err != nil {
		return nil, ClusterInfo{}, err
	}
	return rv.([]Role), info, nil
}

// GetRole retrieves one role by name.
func (c *Client) GetRole(ctx context.Context, name string) (
	*Role, ClusterInfo, error) {
	if name == "" {
		return nil, ClusterInfo{},
			fmt.Errorf("auth_roles: role name is required")
	}

	rv, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.roles.get",
		Method: "GET",
		Suffix: "/roles/" + url.PathEscape(name),
		Decode: decodeRoleGet,
	})
	if err != nil {
		return nil, ClusterInfo{}, err
	}
	return rv.(*Role), info, nil
}

// CreateRole creates a role, answering the stored role record.  The
// store answers 201 for a fresh role and 200 when the put landed on
// an existing one.
func (c *Client) CreateRole(ctx context.Context, role *Role) (
	*Role, ClusterInfo, error) {
	if role == nil || role.Name == "" {
		return nil, ClusterInfo{},
			fmt.Errorf("auth_roles: role name is required")
	}

	body, err := json.Marshal(role)
	if err != nil {
		return nil, ClusterInfo{},
			fmt.Errorf("auth_roles: CreateRole marshal, err: %v", err)
	}

	rv, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.roles.create",
		Method: "PUT",
		Suffix: "/roles/" + url.PathEscape(role.Name),
		Body:   body,
		Decode: decodeRolePut,
	})
	if err != nil {
		return nil, ClusterInfo{}, err
	}
	return rv.(*Role), info, nil
}

// UpdateRole applies a RoleUpdate to an existing role, answering the
// role record as stored afterwards.
func (c *Client) UpdateRole(ctx context.Context, update *RoleUpdate) (
	*Role, ClusterInfo, error) {
	if update == nil || update.Name == "" {
		return nil, ClusterInfo{},
			fmt.Errorf("auth_roles: role name is required")
	}

	body, err := json.Marshal(update)
	if err != nil {
		return nil, ClusterInfo{},
			fmt.Errorf("auth_roles: UpdateRole marshal, err: %v", err)
	}

	rv, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.roles.update",
		Method: "PUT",
		Suffix: "/roles/" + url.PathEscape(update.Name),
		Body:   body,
		Decode: decodeRolePut,
	})
	if err != nil {
		return nil, ClusterInfo{}, err
	}
	return rv.(*Role), info, nil
}

// DeleteRole removes a role by name.
func (c *Client) DeleteRole(ctx context.Context, name string) (
	ClusterInfo, error) {
	if name == "" {
		return ClusterInfo{}, fmt.Errorf("auth_roles: role name is required")
	}

	_, info, err := c.dispatch(ctx, &opDef{
		Name:   "auth.roles.delete",
		Method: "DELETE",
		Suffix: "/roles/" + url.PathEscape(name),
		Decode: decodeDeleted,
	})
	if err != nil {
		return ClusterInfo{}, err
	}
	return info, nil
}
