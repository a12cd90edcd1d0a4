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
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestNewUserAddRole(t *testing.T) {
	u := &NewUser{Name: "alice", Password: "pw"}
	u.AddRole("readers")
	u.AddRole("writers")
	if !reflect.DeepEqual(u.Roles, []string{"readers", "writers"}) {
		t.Errorf("expected the roles appended, got: %v", u.Roles)
	}
}

func TestUserUpdateGrantRevoke(t *testing.T) {
	u := &UserUpdate{Name: "alice"}
	u.GrantRole("writers")
	u.RevokeRole("readers")
	if !reflect.DeepEqual(u.Grant, []string{"writers"}) ||
		!reflect.DeepEqual(u.Revoke, []string{"readers"}) {
		t.Errorf("expected grant and revoke sets, got: %v, %v",
			u.Grant, u.Revoke)
	}
}

func TestUserOpsRequireNames(t *testing.T) {
	client, err := NewClient([]string{"http://unused:1"}, nil)
	if err != nil {
		t.Fatalf("NewClient, err: %v", err)
	}

	ctx := context.Background()

	if _, _, err = client.GetUser(ctx, ""); err == nil {
		t.Errorf("expected GetUser to demand a name")
	}
	if _, _, err = client.CreateUser(ctx, nil); err == nil {
		t.Errorf("expected CreateUser to demand a user")
	}
	if _, _, err = client.CreateUser(ctx,
		&NewUser{Name: "alice"}); err == nil {
		t.Errorf("expected CreateUser to demand a password")
	}
	if _, _, err = client.CreateUser(ctx,
		&NewUser{Password: "pw"}); err == nil {
		t.Errorf("expected CreateUser to demand a name")
	}
	if _, _, err = client.UpdateUser(ctx, &UserUpdate{}); err == nil {
		t.Errorf("expected UpdateUser to demand a name")
	}
	if _, err = client.DeleteUser(ctx, ""); err == nil {
		t.Errorf("expected DeleteUser to demand a name")
	}

	// None of the guards should have touched the network.
	c := client.Stats().CountersSnapshot()
	if c.TotDispatch != 0 || c.TotProbe != 0 {
		t.Errorf("expected no dispatches, got: %+v", c)
	}
}

func TestListUsers(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method != "GET" || r.URL.Path != "/v2/auth/users" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			w.Write([]byte(`{"users":[` +
				`{"name":"root"},` +
				`{"name":"alice","roles":[{"name":"readers",` +
				`"permissions":{"kv":{"read":["/a"],"write":[]}}}]}]}`))
		}))
	defer s.Close()

	client, err := NewClient([]string{s.URL}, nil)
	if err != nil {
		t.Fatalf("NewClient, err: %v", err)
	}

	users, _, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers, err: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got: %d", len(users))
	}
	if users[0].Name != "root" || len(users[0].Roles) != 0 {
		t.Errorf("expected a bare root user, got: %+v", users[0])
	}
	if users[1].Name != "alice" || len(users[1].Roles) != 1 ||
		users[1].Roles[0].Name != "readers" ||
		!reflect.DeepEqual(users[1].Roles[0].KvReadPermissions(),
			[]string{"/a"}) {
		t.Errorf("expected alice with the readers role, got: %+v", users[1])
	}
}

func TestGetUser(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v2/auth/users/alice" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Write([]byte(`{"name":"alice","roles":[]}`))
		}))
	defer s.Close()

	client, err := NewClient([]string{s.URL}, nil)
	if err != nil {
		t.Fatalf("NewClient, err: %v", err)
	}

	user, _, err := client.GetUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUser, err: %v", err)
	}
	if user.Name != "alice" {
		t.Errorf("expected alice, got: %+v", user)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := statusServer(404,
		`{"errorCode":101,"message":"user not found: ghost"}`)
	defer s.Close()

	client, err := NewClient([]string{s.URL}, nil)
	if err != nil {
		t.Fatalf("NewClient, err: %v", err)
	}

	_, _, err = client.GetUser(context.Background(), "ghost")

	de, ok := err.(*DispatchError)
	if !ok {
		t.Fatalf("expected DispatchError, got: %#v", err)
	}
	apiErr, ok := de.Errs[0].(*ApiError)
	if !ok || apiErr.ErrorCode != 101 {
		t.Errorf("expected the not-found api err, got: %#v", de.Errs[0])
	}
}

func TestCreateUserWire(t *testing.T) {
	var method, path, ctype string
	var reqBody []byte

	s := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			path = r.URL.Path
			ctype = r.Header.Get("Content-Type")
			reqBody, _ = io.ReadAll(r.Body)

			w.Header().Set(HeaderClusterId, "c1")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"name":"alice","roles":[]}`))
		}))
	defer s.Close()

	client, err := NewClient([]string{s.URL}, nil)
	if err != nil {
		t.Fatalf("NewClient, err: %v", err)
	}

	newUser := &NewUser{Name: "alice", Password: "pw"}
	newUser.AddRole("readers")

	user, info, err := client.CreateUser(context.Background(), newUser)
	if err != nil {
		t.Fatalf("CreateUser, err: %v", err)
	}
	if user.Name != "alice" {
		t.Errorf("expected the stored record, got: %+v", user)
	}
	if info.ClusterId != "c1" {
		t.Errorf("expected cluster info, got: %+v", info)
	}

	if method != "PUT" || path != "/v2/auth/users/alice" {
		t.Errorf("unexpected request: %s %s", method, path)
	}
	if ctype != "application/json" {
		t.Errorf("expected a json content-type, got: %s", ctype)
	}

	sent := &NewUser{}
	err = json.Unmarshal(reqBody, sent)
	if err != nil || sent.Name != "alice" || sent.Password != "pw" ||
		!reflect.DeepEqual(sent.Roles, []string{"readers"}) {
		t.Errorf("unexpected request body: %s, err: %v", reqBody, err)
	}
}

func TestUpdateUserWire(t *testing.T) {
	var reqBody []byte

	s := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			reqBody, _ = io.ReadAll(r.Body)
			w.Write([]byte(`{"name":"alice",` +
				`"roles":[{"name":"writers",` +
				`"permissions":{"kv":{"read":[],"write":[]}}}]}`))
		}))
	defer s.Close()

	client, err := NewClient([]string{s.URL}, nil)
	if err != nil {
		t.Fatalf("NewClient, err: %v", err)
	}

	update := &UserUpdate{Name: "alice"}
	update.GrantRole("writers")
	update.RevokeRole("readers")

	user, _, err := client.UpdateUser(context.Background(), update)
	if err != nil {
		t.Fatalf("UpdateUser, err: %v", err)
	}
	if len(user.Roles) != 1 || user.Roles[0].Name != "writers" {
		t.Errorf("expected the updated record, got: %+v", user)
	}

	sent := &UserUpdate{}
	err = json.Unmarshal(reqBody, sent)
	if err != nil ||
		!reflect.DeepEqual(sent.Grant, []string{"writers"}) ||
		!reflect.DeepEqual(sent.Revoke, []string{"readers"}) {
		t.Errorf("unexpected request body: %s, err: %v", reqBody, err)
	}
}

func TestDeleteUser(t *testing.T) {
	var method, path string

	s := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			path = r.URL.Path
			w.Header().Set(HeaderKvIndex, "44")
			w.Write([]byte(`{"deleted":true}`))
		}))
	defer s.Close()

	client, err := NewClient([]string{s.URL}, nil)
	if err != nil {
		t.Fatalf("NewClient, err: %v", err)
	}

	info, err := client.DeleteUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("DeleteUser, err: %v", err)
	}
	if info.KvIndex != 44 {
		t.Errorf("expected cluster info, got: %+v", info)
	}
	if method != "DELETE" || path != "/v2/auth/users/alice" {
		t.Errorf("unexpected request: %s %s", method, path)
	}
}
