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
	"os"
	"path"
	"sort"
	"strings"
)

type Flags struct {
	BindHttp     string
	ClusterId    string
	Help         bool
	Leader       string
	RaftTerm     int
	RootPassword string
	Version      bool
}

var flags Flags
var flagAliases map[string][]string

func init() {
	flagAliases = initFlags(&flags)
}

func initFlags(flags *Flags) map[string][]string {
	flagAliases := map[string][]string{} // main flag name => all aliases.
	flagKinds := map[string]string{}

	s := func(v *string, names []string, kind string,
		defaultVal, usage string) { // String cmd-line param.
		for _, name := range names {
			flag.StringVar(v, name, defaultVal, usage)
		}
		flagAliases[names[0]] = names
		flagKinds[names[0]] = kind
	}

	i := func(v *int, names []string, kind string,
		defaultVal int, usage string) { // Integer cmd-line param.
		for _, name := range names {
			flag.IntVar(v, name, defaultVal, usage)
		}
		flagAliases[names[0]] = names
		flagKinds[names[0]] = kind
	}

	b := func(v *bool, names []string, kind string,
		defaultVal bool, usage string) { // Bool cmd-line param.
		for _, name := range names {
			flag.BoolVar(v, name, defaultVal, usage)
		}
		flagAliases[names[0]] = names
		flagKinds[names[0]] = kind
	}

	s(&flags.BindHttp,
		[]string{"bindHttp", "b"}, "ADDR:PORT", "0.0.0.0:9440",
		"local address:port where the member will listen and"+
			"\nserve requests; default is '0.0.0.0:9440'.")
	s(&flags.ClusterId,
		[]string{"clusterId"}, "CLUSTER-ID", "",
		"optional cluster id reported in response headers;"+
			"\ndefault is a fresh UUID.")
	b(&flags.Help,
		[]string{"help", "?", "H", "h"}, "", false,
		"print this usage message and exit.")
	s(&flags.Leader,
		[]string{"leader"}, "MEMBER-ID", "",
		"optional leader id reported in response headers;"+
			"\ndefault is the member's own UUID.")
	i(&flags.RaftTerm,
		[]string{"raftTerm"}, "INTEGER", 0,
		"optional raft term reported in response headers.")
	s(&flags.RootPassword,
		[]string{"rootPassword"}, "PASSWORD", "",
		"optional password for a pre-created root user, so that"+
			"\nauth can be enabled right away.")
	b(&flags.Version,
		[]string{"version", "v"}, "", false,
		"print version string and exit.")

	flag.Usage = func() {
		if !flags.Help {
			return
		}

		base := path.Base(os.Args[0])

		fmt.Fprintf(os.Stderr,
			"%s: single-member simulator of a replicated kv store's"+
				" auth API\n", base)
		fmt.Fprintf(os.Stderr, "\nUsage: %s [flags]\n", base)
		fmt.Fprintf(os.Stderr, "\nFlags:\n")

		flagsByName := map[string]*flag.Flag{}
		flag.VisitAll(func(f *flag.Flag) {
			flagsByName[f.Name] = f
		})

		flags := []string(nil)
		for name := range flagAliases {
			flags = append(flags, name)
		}
		sort.Strings(flags)

		for _, name := range flags {
			aliases := flagAliases[name]
			a := []string(nil)
			for i := len(aliases) - 1; i >= 0; i-- {
				a = append(a, aliases[i])
			}
			f := flagsByName[name]
			fmt.Fprintf(os.Stderr, "  -%s %s\n",
				strings.Join(a, ", -"), flagKinds[name])
			fmt.Fprintf(os.Stderr, "      %s\n",
				strings.Join(strings.Split(f.Usage, "\n"),
					"\n      "))
		}

		fmt.Fprintf(os.Stderr, "\nExamples:")
		fmt.Fprintf(os.Stderr, examples)
	}

	return flagAliases
}

const examples = `
  Run a member with a seeded root user on the default port:
    ./kvadmin-sim -rootPassword=swordfish

  Run two members that report the same cluster id:
    ./kvadmin-sim -bindHttp=:9440 -clusterId=test-cluster
    ./kvadmin-sim -bindHttp=:9441 -clusterId=test-cluster
`
