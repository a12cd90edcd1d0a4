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

	log "github.com/couchbase/clog"
)

// BasicAuth carries the credentials a store demands on admin calls
// once its auth system is enabled.
type BasicAuth struct {
	User     string
	Password string
}

// ClientOptions holds optional settings for NewClient.
type ClientOptions struct {
	// BasicAuth credentials, attached to every request when non-nil.
	BasicAuth *BasicAuth

	// HttpClient to issue requests with, overriding the package
	// shared HttpClient().  Whatever timeout it carries bounds each
	// endpoint probe; the dispatcher imposes none of its own.
	HttpClient *http.Client
}

// A Client issues admin operations against the members of one
// replicated KV store cluster.  Each operation is dispatched across
// the member endpoints and the first definitive answer wins; when no
// member answers, the caller receives every member's error.
//
// A Client is safe for concurrent use and holds no state besides its
// configuration and stats; every operation builds its requests fresh
// and discards them when the call resolves.
type Client struct {
	endpoints  []string // Caller-supplied order, never changed.
	basicAuth  *BasicAuth
	httpClient *http.Client
	stats      *ClientStats
}

// NewClient returns a Client over the given cluster member endpoints.
// The endpoint list is used exactly as supplied: no reordering, no
// deduplication, no ranking.  At least one endpoint is required.
func NewClient(endpoints []string, options *ClientOptions) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	rv := &Client{
		endpoints:  append([]string(nil), endpoints...),
		httpClient: HttpClient(),
		stats:      NewClientStats(),
	}

	if options != nil {
		rv.basicAuth = options.BasicAuth
		if options.HttpClient != nil {
			rv.httpClient = options.HttpClient
		}
	}

	log.Printf("client: NewClient, endpoints: %v, basicAuth: %t",
		rv.endpoints, rv.basicAuth != nil)

	return rv, nil
}

// Endpoints returns a copy of the endpoint list, in the order the
// caller supplied it.
func (c *Client) Endpoints() []string {
	return append([]string(nil), c.endpoints...)
}

// Stats returns the client's live stats; counters keep advancing
// after this call.
func (c *Client) Stats() *ClientStats {
	return c.stats
}
