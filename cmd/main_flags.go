//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package cmd

import (
	"flag"
	"os"
	"runtime"
	"strings"

	log "github.com/couchbase/clog"
)

// MainCommon performs startup steps shared by the command-line
// tools: GOMAXPROCS defaulting, a startup banner, the dump-on-signal
// helper, and flag logging.
func MainCommon(version string, flagAliases map[string][]string) {
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	log.Printf("main: %s started (%s)", os.Args[0], version)

	go DumpOnSignalForPlatform()

	LogFlags(flagAliases)
}

// LogFlags logs the aliased command-line flags and their values.
func LogFlags(flagAliases map[string][]string) {
	flag.VisitAll(func(f *flag.Flag) {
		if flagAliases[f.Name] != nil {
			log.Printf("  -%s=%q\n", f.Name, f.Value)
		}
	})
	log.Printf("  GOMAXPROCS=%d", runtime.GOMAXPROCS(-1))
}

// SplitList splits a comma-separated flag value, trimming
// whitespace and dropping empty entries.
func SplitList(s string) []string {
	rv := []string(nil)
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			rv = append(rv, v)
		}
	}
	return rv
}
