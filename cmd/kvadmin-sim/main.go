//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	log "github.com/couchbase/clog"

	"github.com/couchbase/kvadmin"
	"github.com/couchbase/kvadmin/cmd"
	"github.com/couchbase/kvadmin/sim"
)

func main() {
	flag.Parse()

	if flags.Help {
		flag.Usage()
		os.Exit(2)
	}

	if flags.Version {
		fmt.Printf("%s: %s\n", path.Base(os.Args[0]), kvadmin.VERSION)
		os.Exit(0)
	}

	cmd.MainCommon(kvadmin.VERSION, flagAliases)

	member := sim.NewMember(&sim.MemberOptions{
		ClusterId:    flags.ClusterId,
		Leader:       flags.Leader,
		RaftTerm:     uint64(flags.RaftTerm),
		RootPassword: flags.RootPassword,
	})

	bindHttp := flags.BindHttp
	if bindHttp[0] == ':' {
		bindHttp = "localhost" + bindHttp
	}
	if strings.HasPrefix(bindHttp, "0.0.0.0:") {
		bindHttp = "localhost" + bindHttp[len("0.0.0.0"):]
	}

	http.Handle("/", member)

	log.Printf("------------------------------------------------------------")
	log.Printf("member API is available: http://%s/%s",
		bindHttp, kvadmin.APIRoot)
	log.Printf("------------------------------------------------------------")

	err := http.ListenAndServe(bindHttp, nil) // Blocks.
	if err != nil {
		log.Fatalf("main: listen, err: %v\n"+
			"  Please check that your -bindHttp parameter (%q)\n"+
			"  is correct and available.", err, bindHttp)
	}
}
