//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package kvadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	log "github.com/couchbase/clog"
)

// An opDef describes one logical operation, endpoint-agnostic: a
// method, a path suffix under APIRoot, an optional JSON body, and a
// decode func that turns one member's response into an outcome.
type opDef struct {
	Name   string // Ex: "auth.enable".
	Method string
	Suffix string // Ex: "/enable".
	Body   []byte

	// Decode classifies one received response, yielding either the
	// operation's domain outcome or a typed error: transport,
	// serialization, api, or unexpected status.  Decode owns the
	// decision of whether the response body is read at all.
	Decode func(resp *http.Response) (interface{}, error)
}

// BuildURL composes the absolute URL for one endpoint and one
// operation path suffix: the endpoint base with exactly one trailing
// slash, then the fixed APIRoot, then the suffix.
func BuildURL(endpoint, suffix string) (string, error) {
	rv := strings.TrimRight(endpoint, "/") + "/" + APIRoot + suffix

	u, err := url.Parse(rv)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("dispatch: not an absolute url: %s", rv)
	}

	return rv, nil
}

// probe attempts op against a single endpoint: compose the URL, issue
// the request, pull cluster metadata off the headers, and decode the
// response.  The returned ClusterInfo is only meaningful when err is
// nil; metadata from a failed attempt is discarded with it.
func (c *Client) probe(ctx context.Context, endpoint string, op *opDef) (
	interface{}, ClusterInfo, error) {
	atomic.AddUint64(&c.stats.TotProbe, 1)

	var rv interface{}
	var info ClusterInfo

	err := Timer(func() error {
		url, err := BuildURL(endpoint, op.Suffix)
		if err != nil {
			return &TransportError{URL: endpoint, Err: err}
		}

		var bodyReader io.Reader
		if op.Body != nil {
			bodyReader = bytes.NewReader(op.Body)
		}

		req, err := http.NewRequestWithContext(ctx, op.Method, url, bodyReader)
		if err != nil {
			return &TransportError{URL: url, Err: err}
		}
		if len(op.Body) > 0 {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.basicAuth != nil {
			req.SetBasicAuth(c.basicAuth.User, c.basicAuth.Password)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &TransportError{URL: url, Err: err}
		}
		defer resp.Body.Close()

		// Headers are inspected before the status code so that a
		// winning response's metadata is already in hand; the error
		// path below simply drops it.
		info = ClusterInfoFromHeaders(resp.Header)

		rv, err = op.Decode(resp)
		return err
	}, c.stats.TimerProbe)

	if err != nil {
		c.countProbeErr(err)
		return nil, ClusterInfo{}, err
	}

	atomic.AddUint64(&c.stats.TotProbeOK, 1)
	return rv, info, nil
}

func (c *Client) countProbeErr(err error) {
	switch err.(type) {
	case *TransportError:
		atomic.AddUint64(&c.stats.TotProbeTransportErr, 1)
	case *SerializationError:
		atomic.AddUint64(&c.stats.TotProbeSerializationErr, 1)
	case *ApiError:
		atomic.AddUint64(&c.stats.TotProbeApiErr, 1)
	case *UnexpectedStatusError:
		atomic.AddUint64(&c.stats.TotProbeUnexpectedStatus, 1)
	}
}

type probeRes struct {
	idx     int
	outcome interface{}
	info    ClusterInfo
	err     error
}

// dispatch races op against every endpoint and takes the first
// success, cancelling the probes still in flight.  When every
// endpoint fails, the per-endpoint errors come back as one
// DispatchError whose entries follow the caller-supplied endpoint
// order, not arrival order.
func (c *Client) dispatch(ctx context.Context, op *opDef) (
	interface{}, ClusterInfo, error) {
	atomic.AddUint64(&c.stats.TotDispatch, 1)

	if len(c.endpoints) == 0 {
		atomic.AddUint64(&c.stats.TotDispatchErr, 1)
		return nil, ClusterInfo{}, ErrNoEndpoints
	}

	var rv interface{}
	var info ClusterInfo

	err := Timer(func() error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		// Buffered to the endpoint count, so losing probes that
		// resolve after the winner can send and exit without anyone
		// draining them.
		resCh := make(chan *probeRes, len(c.endpoints))

		for i, endpoint := range c.endpoints {
			go func(idx int, endpoint string) {
				outcome, probeInfo, err := c.probe(ctx, endpoint, op)
				resCh <- &probeRes{
					idx:     idx,
					outcome: outcome,
					info:    probeInfo,
					err:     err,
				}
			}(i, endpoint)
		}

		// One failure slot per endpoint, keyed by endpoint index.
		errs := make([]error, len(c.endpoints))

		for i := 0; i < len(c.endpoints); i++ {
			res := <-resCh
			if res.err == nil {
				rv, info = res.outcome, res.info
				return nil
			}

			log.Debugf("dispatch: op: %s, endpoint: %s, err: %v",
				op.Name, c.endpoints[res.idx], res.err)

			errs[res.idx] = res.err
		}

		return &DispatchError{
			Op:        op.Name,
			Endpoints: append([]string(nil), c.endpoints...),
			Errs:      errs,
		}
	}, c.stats.TimerDispatch)

	if err != nil {
		atomic.AddUint64(&c.stats.TotDispatchErr, 1)
		log.Warnf("dispatch: op: %s, err: %v", op.Name, err)
		return nil, ClusterInfo{}, err
	}

	atomic.AddUint64(&c.stats.TotDispatchOK, 1)
	return rv, info, nil
}

// readBody slurps a response body, classifying read failures as
// transport errors since the bytes never arrived intact.
func readBody(resp *http.Response) ([]byte, error) {
	rv, err := io.ReadAll(resp.Body)
	if err != nil {
		url := ""
		if resp.Request != nil && resp.Request.URL != nil {
			url = resp.Request.URL.String()
		}
		return nil, &TransportError{URL: url, Err: err}
	}
	return rv, nil
}

// decodeApiError parses a non-success response body as the store's
// error payload.  A body that is not recognizable as that payload is
// a serialization error.
func decodeApiError(statusCode int, body []byte) error {
	apiErr := &ApiError{}
	err := json.Unmarshal(body, apiErr)
	if err != nil {
		return &SerializationError{Err: err}
	}
	if apiErr.ErrorCode == 0 && apiErr.Message == "" {
		return &SerializationError{Err: fmt.Errorf(
			"dispatch: unrecognized error payload, status: %d", statusCode)}
	}
	return apiErr
}

// decodeJSONOn builds a Decode func for body-carrying operations: on
// any of the given success statuses the body parses via parse, and on
// every other status the body takes the application-error path.
func decodeJSONOn(successStatuses map[int]bool,
	parse func(body []byte) (interface{}, error)) func(
	resp *http.Response) (interface{}, error) {
	return func(resp *http.Response) (interface{}, error) {
		body, err := readBody(resp)
		if err != nil {
			return nil, err
		}

		if successStatuses[resp.StatusCode] {
			return parse(body)
		}

		return nil, decodeApiError(resp.StatusCode, body)
	}
}
