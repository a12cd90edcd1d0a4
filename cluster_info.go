//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package kvadmin

import (
	"net/http"
	"strconv"
)

// Header names stamped by a cluster member onto its admin API
// responses.
const (
	HeaderClusterId = "X-Kv-Cluster-Id"
	HeaderLeader    = "X-Kv-Leader"
	HeaderKvIndex   = "X-Kv-Index"
	HeaderRaftTerm  = "X-Raft-Term"
	HeaderRaftIndex = "X-Raft-Index"
)

// ClusterInfo identifies which cluster, and best-effort which raft
// state, answered a successful operation.  A field is zero when the
// answering member omitted its header; extraction never fails, as the
// metadata annotates an outcome rather than deciding it.
type ClusterInfo struct {
	ClusterId string
	Leader    string
	KvIndex   uint64
	RaftTerm  uint64
	RaftIndex uint64
}

// ClusterInfoFromHeaders derives ClusterInfo from a response's header
// set.  Missing or malformed headers leave the matching fields zero.
func ClusterInfoFromHeaders(h http.Header) ClusterInfo {
	return ClusterInfo{
		ClusterId: h.Get(HeaderClusterId),
		Leader:    h.Get(HeaderLeader),
		KvIndex:   headerUint64(h, HeaderKvIndex),
		RaftTerm:  headerUint64(h, HeaderRaftTerm),
		RaftIndex: headerUint64(h, HeaderRaftIndex),
	}
}

func headerUint64(h http.Header, name string) uint64 {
	v := h.Get(name)
	if v == "" {
		return 0
	}

	rv, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}

	return rv
}
