//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package kvadmin

import (
	"crypto/tls"
	"net/http"
	"reflect"
	"testing"
)

func TestNewClientNoEndpoints(t *testing.T) {
	c, err := NewClient(nil, nil)
	if err != ErrNoEndpoints || c != nil {
		t.Errorf("expected ErrNoEndpoints for nil, got: %v, %v", c, err)
	}

	c, err = NewClient([]string{}, nil)
	if err != ErrNoEndpoints || c != nil {
		t.Errorf("expected ErrNoEndpoints for empty, got: %v, %v", c, err)
	}
}

func TestNewClientCopiesEndpoints(t *testing.T) {
	endpoints := []string{"http://a:1", "http://b:2"}

	client, err := NewClient(endpoints, nil)
	if err != nil {
		t.Fatalf("NewClient, err: %v", err)
	}

	endpoints[0] = "http://mutated:9"
	if client.Endpoints()[0] != "http://a:1" {
		t.Errorf("expected the client to keep its own copy, got: %v",
			client.Endpoints())
	}

	got := client.Endpoints()
	got[1] = "http://mutated:9"
	if client.Endpoints()[1] != "http://b:2" {
		t.Errorf("expected Endpoints() to hand out copies, got: %v",
			client.Endpoints())
	}

	if !reflect.DeepEqual(client.Endpoints(),
		[]string{"http://a:1", "http://b:2"}) {
		t.Errorf("expected the supplied order kept, got: %v",
			client.Endpoints())
	}
}

func TestNewClientOptions(t *testing.T) {
	client, err := NewClient([]string{"http://a:1"}, nil)
	if err != nil {
		t.Fatalf("NewClient, err: %v", err)
	}
	if client.httpClient != HttpClient() {
		t.Errorf("expected the shared http client by default")
	}
	if client.basicAuth != nil {
		t.Errorf("expected no basic auth by default")
	}
	if client.Stats() == nil {
		t.Errorf("expected stats to be ready")
	}

	custom := &http.Client{}
	auth := &BasicAuth{User: "root", Password: "pw"}

	client, err = NewClient([]string{"http://a:1"}, &ClientOptions{
		BasicAuth:  auth,
		HttpClient: custom,
	})
	if err != nil {
		t.Fatalf("NewClient, err: %v", err)
	}
	if client.httpClient != custom {
		t.Errorf("expected the supplied http client")
	}
	if client.basicAuth != auth {
		t.Errorf("expected the supplied basic auth")
	}
}

func TestRegisterHttpClient(t *testing.T) {
	RegisterHttpClient(nil)

	client := HttpClient()
	if client == nil || client == http.DefaultClient {
		t.Fatalf("expected a freshly built http client")
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected an http.Transport")
	}
	if transport.MaxIdleConnsPerHost != HttpTransportMaxIdleConnsPerHost {
		t.Errorf("expected the transport knobs applied, got: %d",
			transport.MaxIdleConnsPerHost)
	}
	if transport.TLSClientConfig != nil {
		t.Errorf("expected no tls config by default")
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: true}
	RegisterHttpClient(tlsConfig)

	transport, ok = HttpClient().Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected an http.Transport")
	}
	if transport.TLSClientConfig == nil ||
		!transport.TLSClientConfig.InsecureSkipVerify {
		t.Errorf("expected the caller's tls config installed")
	}

	h2 := false
	for _, proto := range transport.TLSClientConfig.NextProtos {
		if proto == "h2" {
			h2 = true
		}
	}
	if !h2 {
		t.Errorf("expected http2 negotiated over tls, protos: %v",
			transport.TLSClientConfig.NextProtos)
	}
}
