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
	Endpoints   string
	Grant       string
	GrantRead   string
	GrantWrite  string
	Help        bool
	Name        string
	NewPassword string
	Op          string
	Password    string
	Read        string
	Revoke      string
	RevokeRead  string
	RevokeWrite string
	Roles       string
	Stats       bool
	TimeoutSecs int
	Username    string
	Version     bool
	Write       string
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

	s(&flags.Endpoints,
		[]string{"endpoints", "e"}, "URL-LIST", "",
		"required, comma-separated list of member URL's to try in"+
			"\norder until one answers; for example:"+
			"\n'http://127.0.0.1:9440,http://127.0.0.1:9441'.")
	s(&flags.Grant,
		[]string{"grant"}, "ROLE-LIST", "",
		"comma-separated list of role names to grant;"+
			"\nused by the user-update op.")
	s(&flags.GrantRead,
		[]string{"grantRead"}, "PATH-LIST", "",
		"comma-separated list of kv paths to grant read access on;"+
			"\nused by the role-update op.")
	s(&flags.GrantWrite,
		[]string{"grantWrite"}, "PATH-LIST", "",
		"comma-separated list of kv paths to grant write access on;"+
			"\nused by the role-update op.")
	b(&flags.Help,
		[]string{"help", "?", "H", "h"}, "", false,
		"print this usage message and exit.")
	s(&flags.Name,
		[]string{"name"}, "NAME", "",
		"user or role name; required by the user-get, user-create,"+
			"\nuser-update, user-delete, role-get, role-create,"+
			"\nrole-update and role-delete ops.")
	s(&flags.NewPassword,
		[]string{"newPassword"}, "PASSWORD", "",
		"password to assign; required by user-create and optional"+
			"\nfor user-update.")
	s(&flags.Op,
		[]string{"op"}, "OP", "auth-status",
		"operation to run against the cluster;"+
			"\nauth ops:"+
			"\n  auth-enable  = turn authentication on;"+
			"\n  auth-disable = turn authentication off;"+
			"\n  auth-status  = report whether authentication is on;"+
			"\nuser ops:"+
			"\n  users-list, user-get, user-create, user-update, user-delete;"+
			"\nrole ops:"+
			"\n  roles-list, role-get, role-create, role-update, role-delete.")
	s(&flags.Password,
		[]string{"password", "p"}, "PASSWORD", "",
		"password for basic-auth against the cluster.")
	s(&flags.Read,
		[]string{"read"}, "PATH-LIST", "",
		"comma-separated list of kv paths the new role may read;"+
			"\nused by the role-create op.")
	s(&flags.Revoke,
		[]string{"revoke"}, "ROLE-LIST", "",
		"comma-separated list of role names to revoke;"+
			"\nused by the user-update op.")
	s(&flags.RevokeRead,
		[]string{"revokeRead"}, "PATH-LIST", "",
		"comma-separated list of kv paths to revoke read access on;"+
			"\nused by the role-update op.")
	s(&flags.RevokeWrite,
		[]string{"revokeWrite"}, "PATH-LIST", "",
		"comma-separated list of kv paths to revoke write access on;"+
			"\nused by the role-update op.")
	s(&flags.Roles,
		[]string{"roles"}, "ROLE-LIST", "",
		"comma-separated list of role names for the new user;"+
			"\nused by the user-create op.")
	b(&flags.Stats,
		[]string{"stats"}, "", false,
		"log the client's request counters and timings after the op.")
	i(&flags.TimeoutSecs,
		[]string{"timeoutSecs", "t"}, "SECS", 30,
		"seconds allowed for the whole op across all endpoints;"+
			"\n0 means no timeout.")
	s(&flags.Username,
		[]string{"username", "u"}, "USER", "",
		"user name for basic-auth against the cluster.")
	b(&flags.Version,
		[]string{"version", "v"}, "", false,
		"print version string and exit.")
	s(&flags.Write,
		[]string{"write"}, "PATH-LIST", "",
		"comma-separated list of kv paths the new role may write;"+
			"\nused by the role-create op.")

	flag.Usage = func() {
		if !flags.Help {
			return
		}

		base := path.Base(os.Args[0])

		fmt.Fprintf(os.Stderr,
			"%s: auth administration for a replicated kv store\n", base)
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
  Check whether auth is enabled, trying two members in order:
    ./kvadmin-ctl -endpoints=http://127.0.0.1:9440,http://127.0.0.1:9441

  Create a root user, then turn auth on:
    ./kvadmin-ctl -e=http://127.0.0.1:9440 -op=user-create \
        -name=root -newPassword=swordfish
    ./kvadmin-ctl -e=http://127.0.0.1:9440 -op=auth-enable

  Grant a role read access to a kv path, as root:
    ./kvadmin-ctl -e=http://127.0.0.1:9440 -u=root -p=swordfish \
        -op=role-update -name=readers -grantRead=/apps/prod
`
