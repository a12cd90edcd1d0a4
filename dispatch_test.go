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
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		endpoint  string
		suffix    string
		expected  string
		expectErr bool
	}{
		{"http://127.0.0.1:9440", "/enable",
			"http://127.0.0.1:9440/v2/auth/enable", false},
		{"http://127.0.0.1:9440/", "/enable",
			"http://127.0.0.1:9440/v2/auth/enable", false},
		{"http://127.0.0.1:9440///", "/enable",
			"http://127.0.0.1:9440/v2/auth/enable", false},
		{"https://h:1/base", "/users",
			"https://h:1/base/v2/auth/users", false},
		{"https://h:1/base/", "/users/alice",
			"https://h:1/base/v2/auth/users/alice", false},
		{"", "/enable", "", true},
		{"127.0.0.1:9440", "/enable", "", true},
		{"/relative/only", "/enable", "", true},
	}

	for i, test := range tests {
		actual, err := BuildURL(test.endpoint, test.suffix)
		if test.expectErr {
			if err == nil {
				t.Errorf("test: %d, expected err, got: %s", i, actual)
			}
			continue
		}
		if err != nil {
			t.Errorf("test: %d, expected no err, got: %v", i, err)
			continue
		}
		if actual != test.expected {
			t.Errorf("test: %d, expected: %s, got: %s",
				i, test.expected, actual)
		}
	}
}

func TestDispatchEmptyEndpoints(t *testing.T) {
	c := &Client{httpClient: HttpClient(), stats: NewClientStats()}

	_, _, err := c.dispatch(context.Background(), &opDef{
		Name:   "test.op",
		Method: "GET",
		Suffix: "/enable",
		Decode: decodeAuthEnabled,
	})
	if err != ErrNoEndpoints {
		t.Errorf("expected ErrNoEndpoints, got: %v", err)
	}

	s := c.Stats().CountersSnapshot()
	if s.TotDispatch != 1 || s.TotDispatchErr != 1 || s.TotProbe != 0 {
		t.Errorf("expected a failed dispatch with no probes, got: %+v", s)
	}
}

func countingServer(hits *uint64, delay time.Duration,
	status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddUint64(hits, 1)
			if delay > 0 {
				time.Sleep(delay)
			}
			w.WriteHeader(status)
			w.Write([]byte(body))
		}))
}

func TestDispatchFirstSuccessWins(t *testing.T) {
	var hits1, hits3 uint64

	s1 := countingServer(&hits1, 0, 500, `{"errorCode":7,"message":"boom"}`)
	defer s1.Close()

	s2 := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderClusterId, "c1")
			w.Header().Set(HeaderLeader, "m2")
			w.Header().Set(HeaderKvIndex, "12")
			w.Header().Set(HeaderRaftTerm, "3")
			w.Header().Set(HeaderRaftIndex, "40")
			w.Write([]byte(`{"enabled":true}`))
		}))
	defer s2.Close()

	s3 := countingServer(&hits3, 0, 500, `{"errorCode":7,"message":"boom"}`)
	defer s3.Close()

	client, err := NewClient([]string{s1.URL, s2.URL, s3.URL}, nil)
	if err != nil {
		t.Fatalf("expected NewClient to work, err: %v", err)
	}

	enabled, info, err := client.AuthEnabled(context.Background())
	if err != nil {
		t.Fatalf("expected a winner, err: %v", err)
	}
	if !enabled {
		t.Errorf("expected enabled")
	}
	if info.ClusterId != "c1" || info.Leader != "m2" ||
		info.KvIndex != 12 || info.RaftTerm != 3 || info.RaftIndex != 40 {
		t.Errorf("expected cluster info from the winner, got: %+v", info)
	}

	c := client.Stats().CountersSnapshot()
	if c.TotDispatch != 1 || c.TotDispatchOK != 1 || c.TotDispatchErr != 0 {
		t.Errorf("expected one ok dispatch, got: %+v", c)
	}
}

func TestDispatchTotalFailureKeepsEndpointOrder(t *testing.T) {
	var hits1, hits2 uint64

	s0 := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {}))
	s0.Close() // Closed on purpose, so connections are refused.

	// The inverted delays make arrival order the reverse of
	// endpoint order.
	s1 := countingServer(&hits1, 100*time.Millisecond, 500,
		`{"errorCode":42,"message":"nope"}`)
	defer s1.Close()

	s2 := countingServer(&hits2, 0, 200, "{{{")
	defer s2.Close()

	endpoints := []string{s0.URL, s1.URL, s2.URL}

	client, err := NewClient(endpoints, nil)
	if err != nil {
		t.Fatalf("expected NewClient to work, err: %v", err)
	}

	_, _, err = client.AuthEnabled(context.Background())
	if err == nil {
		t.Fatalf("expected total failure")
	}

	de, ok := err.(*DispatchError)
	if !ok {
		t.Fatalf("expected DispatchError, got: %#v", err)
	}
	if len(de.Errs) != len(endpoints) {
		t.Fatalf("expected %d errs, got: %d", len(endpoints), len(de.Errs))
	}
	if !reflect.DeepEqual(de.Endpoints, endpoints) {
		t.Errorf("expected endpoints in caller order, got: %v", de.Endpoints)
	}

	if _, ok := de.Errs[0].(*TransportError); !ok {
		t.Errorf("expected a transport err first, got: %#v", de.Errs[0])
	}
	apiErr, ok := de.Errs[1].(*ApiError)
	if !ok || apiErr.ErrorCode != 42 {
		t.Errorf("expected api err 42 second, got: %#v", de.Errs[1])
	}
	if _, ok := de.Errs[2].(*SerializationError); !ok {
		t.Errorf("expected a serialization err third, got: %#v", de.Errs[2])
	}

	if atomic.LoadUint64(&hits1) != 1 || atomic.LoadUint64(&hits2) != 1 {
		t.Errorf("expected one probe per endpoint, got: %d, %d",
			atomic.LoadUint64(&hits1), atomic.LoadUint64(&hits2))
	}

	c := client.Stats().CountersSnapshot()
	if c.TotProbe != 3 || c.TotProbeOK != 0 ||
		c.TotProbeTransportErr != 1 || c.TotProbeApiErr != 1 ||
		c.TotProbeSerializationErr != 1 {
		t.Errorf("expected classified probe counters, got: %+v", c)
	}
	if c.TotDispatch != 1 || c.TotDispatchErr != 1 {
		t.Errorf("expected one failed dispatch, got: %+v", c)
	}
}

func TestDispatchAllUnexpectedStatus(t *testing.T) {
	mk := func() *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}))
	}

	s0, s1, s2 := mk(), mk(), mk()
	defer s0.Close()
	defer s1.Close()
	defer s2.Close()

	client, err := NewClient([]string{s0.URL, s1.URL, s2.URL}, nil)
	if err != nil {
		t.Fatalf("expected NewClient to work, err: %v", err)
	}

	_, _, err = client.EnableAuth(context.Background())

	de, ok := err.(*DispatchError)
	if !ok {
		t.Fatalf("expected DispatchError, got: %#v", err)
	}

	for i, e := range de.Errs {
		use, ok := e.(*UnexpectedStatusError)
		if !ok || use.StatusCode != http.StatusTeapot {
			t.Errorf("test: %d, expected unexpected status 418, got: %#v",
				i, e)
		}
	}

	c := client.Stats().CountersSnapshot()
	if c.TotProbeUnexpectedStatus != 3 {
		t.Errorf("expected 3 unexpected statuses counted, got: %+v", c)
	}
}

func TestDispatchWinnerDoesNotWaitForLosers(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
			w.Write([]byte(`{"enabled":true}`))
		}))
	defer slow.Close()

	fast := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"enabled":false}`))
		}))
	defer fast.Close()

	client, err := NewClient([]string{slow.URL, fast.URL}, nil)
	if err != nil {
		t.Fatalf("expected NewClient to work, err: %v", err)
	}

	start := time.Now()
	enabled, _, err := client.AuthEnabled(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("expected the fast member to answer, err: %v", err)
	}
	if enabled {
		t.Errorf("expected the fast member's answer to win")
	}
	if elapsed > 400*time.Millisecond {
		t.Errorf("expected resolution before the slow member, took: %v",
			elapsed)
	}
}

func TestDispatchMalformedEndpoint(t *testing.T) {
	client, err := NewClient([]string{"127.0.0.1:9440"}, nil)
	if err != nil {
		t.Fatalf("expected NewClient to work, err: %v", err)
	}

	_, _, err = client.AuthEnabled(context.Background())

	de, ok := err.(*DispatchError)
	if !ok || len(de.Errs) != 1 {
		t.Fatalf("expected a 1-entry DispatchError, got: %#v", err)
	}
	if _, ok := de.Errs[0].(*TransportError); !ok {
		t.Errorf("expected a transport err, got: %#v", de.Errs[0])
	}
}

func TestDispatchFailsOverPastMalformedEndpoint(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"enabled":true}`))
		}))
	defer good.Close()

	client, err := NewClient([]string{"127.0.0.1:0", good.URL}, nil)
	if err != nil {
		t.Fatalf("expected NewClient to work, err: %v", err)
	}

	enabled, _, err := client.AuthEnabled(context.Background())
	if err != nil || !enabled {
		t.Errorf("expected the good endpoint to win, got: %v, err: %v",
			enabled, err)
	}
}

func TestDispatchRequestShape(t *testing.T) {
	var method, path, ctype, user, password string
	var okAuth bool

	s := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			path = r.URL.Path
			ctype = r.Header.Get("Content-Type")
			user, password, okAuth = r.BasicAuth()
			w.WriteHeader(http.StatusOK)
		}))
	defer s.Close()

	client, err := NewClient([]string{s.URL}, &ClientOptions{
		BasicAuth: &BasicAuth{User: "root", Password: "swordfish"},
	})
	if err != nil {
		t.Fatalf("expected NewClient to work, err: %v", err)
	}

	outcome, _, err := client.EnableAuth(context.Background())
	if err != nil || outcome != EnableAuthEnabled {
		t.Fatalf("expected enabled, got: %v, err: %v", outcome, err)
	}

	if method != "PUT" {
		t.Errorf("expected PUT, got: %s", method)
	}
	if path != "/v2/auth/enable" {
		t.Errorf("expected the enable path, got: %s", path)
	}
	if ctype != "" {
		t.Errorf("expected no content-type on an empty body, got: %s", ctype)
	}
	if !okAuth || user != "root" || password != "swordfish" {
		t.Errorf("expected basic-auth to arrive, got: %s, %s, %t",
			user, password, okAuth)
	}
}
