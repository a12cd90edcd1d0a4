//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package kvadmin

import (
	"fmt"
	"net/http"
)

// ErrNoEndpoints is returned when a client or a dispatch is handed an
// empty endpoint list; the failover contract requires at least one
// candidate member to attempt.
var ErrNoEndpoints = fmt.Errorf("kvadmin: no endpoints provided")

// A TransportError records a network-level failure against one
// endpoint: a composed URL that was malformed, a connection that
// could not be established or timed out, or a response body that
// could not be read off the wire.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: url: %s, err: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// A SerializationError records a response body that parsed neither as
// the operation's success shape nor as the store's error payload.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization: err: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// An UnexpectedStatusError records a response status code outside the
// set that the attempted operation defines outcomes for.  The code is
// preserved exactly as received.
type UnexpectedStatusError struct {
	StatusCode int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s",
		e.StatusCode, http.StatusText(e.StatusCode))
}

// An ApiError is the JSON payload a member returns when it rejects a
// request for application-level reasons, such as a missing user or
// insufficient credentials.
type ApiError struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
	Cause     string `json:"cause,omitempty"`
	Index     uint64 `json:"index,omitempty"`
}

func (e *ApiError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("api: %d, %s, cause: %s",
			e.ErrorCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("api: %d, %s", e.ErrorCode, e.Message)
}

// A DispatchError is returned when every endpoint of a dispatch
// failed.  Errs holds one classified error per endpoint, ordered the
// same as the caller-supplied endpoints, never by arrival order.
type DispatchError struct {
	Op        string
	Endpoints []string
	Errs      []error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch: op: %s, all endpoints failed,"+
		" errs: %d, %v", e.Op, len(e.Errs), e.Errs)
}

func (e *DispatchError) Unwrap() []error { return e.Errs }
