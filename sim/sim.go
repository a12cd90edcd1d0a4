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
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gorilla/mux"

	log "github.com/couchbase/clog"

	"github.com/couchbase/kvadmin"
)

// Error codes carried in the store's error payloads.
const (
	ErrCodeInvalidRequest      = 100
	ErrCodeUserNotFound        = 101
	ErrCodeRoleNotFound        = 102
	ErrCodeRootUserRequired    = 110
	ErrCodeUnauthorized        = 111
	ErrCodeAuthAlreadyEnabled  = 112
	ErrCodeAuthAlreadyDisabled = 113
	ErrCodeRootUndeletable     = 114
)

// MemberOptions holds optional identity settings for NewMember.
type MemberOptions struct {
	ClusterId string // Defaults to a fresh UUID.
	Leader    string // Defaults to the member's own UUID.
	RaftTerm  uint64 // Defaults to 2.

	// RootPassword, when non-empty, seeds a root user so that auth
	// can be enabled right away.
	RootPassword string
}

// A Member simulates one cluster member of a replicated KV store,
// serving the store's auth administration API over HTTP with
// in-memory state.  Its auth semantics: enabling requires a root
// user; once enabled, everything except the status check demands
// root basic-auth credentials; create puts answer 201 and update
// puts 200.  A Member is an http.Handler, so it mounts directly on
// an httptest.Server or an http.Server.
type Member struct {
	uuid      string
	clusterId string
	leader    string
	raftTerm  uint64

	kvIndex     uint64 // Accessed via sync/atomic.
	raftIndex   uint64 // Accessed via sync/atomic.
	totRequests uint64 // Accessed via sync/atomic.

	m sync.Mutex // Protects the fields that follow.

	authEnabled bool
	users       map[string]*memberUser
	roles       map[string]*kvadmin.Role

	router *mux.Router
}

// A memberUser is a user record as stored, with role names rather
// than resolved role records.
type memberUser struct {
	Name     string
	Password string
	Roles    []string
}

// NewMember returns a ready-to-serve Member.
func NewMember(options *MemberOptions) *Member {
	m := &Member{
		uuid:      kvadmin.NewUUID(),
		raftTerm:  2,
		kvIndex:   1,
		raftIndex: 1,
		users:     map[string]*memberUser{},
		roles:     map[string]*kvadmin.Role{},
	}

	m.clusterId = kvadmin.NewUUID()
	m.leader = m.uuid

	if options != nil {
		if options.ClusterId != "" {
			m.clusterId = options.ClusterId
		}
		if options.Leader != "" {
			m.leader = options.Leader
		}
		if options.RaftTerm > 0 {
			m.raftTerm = options.RaftTerm
		}
		if options.RootPassword != "" {
			m.users["root"] = &memberUser{
				Name:     "root",
				Password: options.RootPassword,
			}
		}
	}

	m.initRouter()

	log.Printf("sim: NewMember, uuid: %s, clusterId: %s, leader: %s",
		m.uuid, m.clusterId, m.leader)

	return m
}

func (m *Member) initRouter() {
	r := mux.NewRouter()
	r.StrictSlash(true)

	handle := func(path string, method string, h http.Handler) {
		r.Handle(path, h).Methods(method).Name(path)
	}

	root := "/" + kvadmin.APIRoot

	handle(root+"/enable", "PUT", NewAuthEnableHandler(m))
	handle(root+"/enable", "DELETE", NewAuthDisableHandler(m))
	handle(root+"/enable", "GET", NewAuthStatusHandler(m))

	handle(root+"/users", "GET", NewUsersListHandler(m))
	handle(root+"/users/{user}", "GET", NewUserGetHandler(m))
	handle(root+"/users/{user}", "PUT", NewUserPutHandler(m))
	handle(root+"/users/{user}", "DELETE", NewUserDeleteHandler(m))

	handle(root+"/roles", "GET", NewRolesListHandler(m))
	handle(root+"/roles/{role}", "GET", NewRoleGetHandler(m))
	handle(root+"/roles/{role}", "PUT", NewRolePutHandler(m))
	handle(root+"/roles/{role}", "DELETE", NewRoleDeleteHandler(m))

	m.router = r
}

func (m *Member) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	atomic.AddUint64(&m.totRequests, 1)
	m.router.ServeHTTP(w, req)
}

// UUID returns the member's own identity.
func (m *Member) UUID() string {
	return m.uuid
}

// TotRequests returns how many requests the member has received,
// including ones that matched no route.
func (m *Member) TotRequests() uint64 {
	return atomic.LoadUint64(&m.totRequests)
}

// AuthEnabled reports the member's current auth state.
func (m *Member) AuthEnabled() bool {
	m.m.Lock()
	rv := m.authEnabled
	m.m.Unlock()
	return rv
}

// bump advances the store and raft indexes after a mutation.
func (m *Member) bump() {
	atomic.AddUint64(&m.kvIndex, 1)
	atomic.AddUint64(&m.raftIndex, 1)
}

// stamp writes the member's cluster metadata headers, which go onto
// every response, success or failure.
func (m *Member) stamp(w http.ResponseWriter) {
	h := w.Header()
	h.Set(kvadmin.HeaderClusterId, m.clusterId)
	h.Set(kvadmin.HeaderLeader, m.leader)
	h.Set(kvadmin.HeaderKvIndex,
		strconv.FormatUint(atomic.LoadUint64(&m.kvIndex), 10))
	h.Set(kvadmin.HeaderRaftTerm,
		strconv.FormatUint(m.raftTerm, 10))
	h.Set(kvadmin.HeaderRaftIndex,
		strconv.FormatUint(atomic.LoadUint64(&m.raftIndex), 10))
}

// writeJSON stamps metadata headers and answers v as JSON with the
// given status code.
func (m *Member) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	m.stamp(w)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	MustEncode(w, v)
}

// writeApiError stamps metadata headers and answers the store's
// error payload with the given status code.
func (m *Member) writeApiError(w http.ResponseWriter, code int,
	apiErr *kvadmin.ApiError) {
	log.Debugf("sim: writeApiError, code: %d, err: %v", code, apiErr)

	apiErr.Index = atomic.LoadUint64(&m.kvIndex)

	m.stamp(w)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	MustEncode(w, apiErr)
}

// rootAuthed reports whether the request carries valid root
// credentials.  Callers must hold m.m.
func (m *Member) rootAuthedLOCKED(req *http.Request) bool {
	user, password, ok := req.BasicAuth()
	if !ok || user != "root" {
		return false
	}
	root, ok := m.users["root"]
	return ok && root.Password == password
}

// authOkLOCKED answers a 401 error payload and reports false when
// auth is enabled and the request lacks root credentials.  Callers
// must hold m.m.
func (m *Member) authOkLOCKED(w http.ResponseWriter, req *http.Request) bool {
	if m.authEnabled && !m.rootAuthedLOCKED(req) {
		m.writeApiError(w, http.StatusUnauthorized, &kvadmin.ApiError{
			ErrorCode: ErrCodeUnauthorized,
			Message:   "root credentials are required",
		})
		return false
	}
	return true
}

// userRecordLOCKED resolves a stored user into the wire record,
// expanding role names into full role records.  Callers must hold
// m.m.
func (m *Member) userRecordLOCKED(u *memberUser) *kvadmin.User {
	rv := &kvadmin.User{Name: u.Name, Roles: []kvadmin.Role{}}
	for _, name := range u.Roles {
		if role, ok := m.roles[name]; ok {
			rv.Roles = append(rv.Roles, *role)
		} else {
			rv.Roles = append(rv.Roles, *kvadmin.NewRole(name))
		}
	}
	return rv
}

// MustEncode writes i as JSON to w, logging instead of failing when
// the encode goes wrong mid-stream.
func MustEncode(w io.Writer, i interface{}) {
	err := json.NewEncoder(w).Encode(i)
	if err != nil {
		log.Errorf("sim: MustEncode, err: %v", err)
	}
}
