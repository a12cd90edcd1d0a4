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
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

var HttpTransportDialContextTimeout = 30 * time.Second   // Go's default is 30 secs.
var HttpTransportDialContextKeepAlive = 30 * time.Second // Go's default is 30 secs.
var HttpTransportMaxIdleConns = 300                      // Go's default is 100 (0 means no limit).
var HttpTransportMaxIdleConnsPerHost = 100               // Go's default is 2.
var HttpTransportIdleConnTimeout = 90 * time.Second      // Go's default is 90 secs.
var HttpTransportTLSHandshakeTimeout = 10 * time.Second  // Go's default is 10 secs.
var HttpTransportExpectContinueTimeout = 1 * time.Second // Go's default is 1 secs.

var httpClientM sync.RWMutex
var httpClient = http.DefaultClient

// RegisterHttpClient builds the package's shared http client from the
// transport knobs above and an optional, caller-owned TLS config, and
// installs it as the client returned by HttpClient().  When a TLS
// config is present the transport is upgraded to speak HTTP/2.
func RegisterHttpClient(tlsConfig *tls.Config) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   HttpTransportDialContextTimeout,
			KeepAlive: HttpTransportDialContextKeepAlive,
		}).DialContext,
		MaxIdleConns:          HttpTransportMaxIdleConns,
		MaxIdleConnsPerHost:   HttpTransportMaxIdleConnsPerHost,
		IdleConnTimeout:       HttpTransportIdleConnTimeout,
		TLSHandshakeTimeout:   HttpTransportTLSHandshakeTimeout,
		ExpectContinueTimeout: HttpTransportExpectContinueTimeout,
	}

	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
		_ = http2.ConfigureTransport(transport)
	}

	client := &http.Client{
		Transport: transport,
	}

	httpClientM.Lock()
	httpClient = client
	httpClientM.Unlock()
}

// HttpClient returns the http client shared by Clients that were not
// handed one explicitly.
func HttpClient() *http.Client {
	httpClientM.RLock()
	client := httpClient
	httpClientM.RUnlock()
	return client
}
