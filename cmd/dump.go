//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

//go:build !windows
// +build !windows

package cmd

import (
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	log "github.com/couchbase/clog"
)

// profileNames are the pprof profiles dumped on signal.
var profileNames = []string{"goroutine", "heap"}

// DumpOnSignalForPlatform writes pprof profiles to stderr whenever
// the process receives SIGUSR2.
func DumpOnSignalForPlatform() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGUSR2)
	for range c {
		for _, name := range profileNames {
			log.Printf("dump: %s...", name)
			pprof.Lookup(name).WriteTo(os.Stderr, 1)
		}
	}
}
