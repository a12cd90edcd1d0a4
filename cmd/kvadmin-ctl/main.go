//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"time"

	log "github.com/couchbase/clog"

	"github.com/couchbase/kvadmin"
	"github.com/couchbase/kvadmin/cmd"
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

	if flags.Endpoints == "" {
		log.Fatalf("main: the -endpoints flag is required")
		return
	}

	var options *kvadmin.ClientOptions
	if flags.Username != "" {
		options = &kvadmin.ClientOptions{
			BasicAuth: &kvadmin.BasicAuth{
				User:     flags.Username,
				Password: flags.Password,
			},
		}
	}

	client, err := kvadmin.NewClient(cmd.SplitList(flags.Endpoints), options)
	if err != nil {
		log.Fatalf("main: NewClient, err: %v", err)
		return
	}

	ctx := context.Background()
	if flags.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx,
			time.Duration(flags.TimeoutSecs)*time.Second)
		defer cancel()
	}

	rv, info, err := runOp(ctx, client)
	if err != nil {
		log.Fatalf("main: op: %s, err: %v", flags.Op, err)
		return
	}

	log.Printf("main: op: %s, clusterId: %s, leader: %s,"+
		" kvIndex: %d, raftTerm: %d, raftIndex: %d",
		flags.Op, info.ClusterId, info.Leader,
		info.KvIndex, info.RaftTerm, info.RaftIndex)

	if flags.Stats {
		var buf bytes.Buffer
		client.Stats().WriteJSON(&buf)
		log.Printf("main: stats: %s", buf.String())
	}

	fmt.Println(kvadmin.IndentJSON(rv, "", "  "))
}

// needName returns the -name flag, exiting when it is missing.
func needName() string {
	if flags.Name == "" {
		log.Fatalf("main: op: %s needs the -name flag", flags.Op)
	}
	return flags.Name
}

func runOp(ctx context.Context, client *kvadmin.Client) (
	interface{}, kvadmin.ClusterInfo, error) {
	switch flags.Op {
	case "auth-enable":
		outcome, info, err := client.EnableAuth(ctx)
		if err != nil {
			return nil, info, err
		}
		return map[string]interface{}{
			"outcome": outcome.String(),
			"enabled": outcome.IsEnabled(),
		}, info, nil

	case "auth-disable":
		outcome, info, err := client.DisableAuth(ctx)
		if err != nil {
			return nil, info, err
		}
		return map[string]interface{}{
			"outcome":  outcome.String(),
			"disabled": outcome.IsDisabled(),
		}, info, nil

	case "auth-status":
		enabled, info, err := client.AuthEnabled(ctx)
		if err != nil {
			return nil, info, err
		}
		return map[string]interface{}{
			"enabled": enabled,
		}, info, nil

	case "users-list":
		return client.ListUsers(ctx)

	case "user-get":
		return client.GetUser(ctx, needName())

	case "user-create":
		name := needName()
		if flags.NewPassword == "" {
			log.Fatalf("main: op: user-create needs the -newPassword flag")
		}
		user := &kvadmin.NewUser{
			Name:     name,
			Password: flags.NewPassword,
			Roles:    cmd.SplitList(flags.Roles),
		}
		return client.CreateUser(ctx, user)

	case "user-update":
		update := &kvadmin.UserUpdate{
			Name:     needName(),
			Password: flags.NewPassword,
			Grant:    cmd.SplitList(flags.Grant),
			Revoke:   cmd.SplitList(flags.Revoke),
		}
		return client.UpdateUser(ctx, update)

	case "user-delete":
		info, err := client.DeleteUser(ctx, needName())
		if err != nil {
			return nil, info, err
		}
		return map[string]interface{}{
			"deleted": flags.Name,
		}, info, nil

	case "roles-list":
		return client.ListRoles(ctx)

	case "role-get":
		return client.GetRole(ctx, needName())

	case "role-create":
		role := kvadmin.NewRole(needName())
		for _, p := range cmd.SplitList(flags.Read) {
			role.AddKvReadPermission(p)
		}
		for _, p := range cmd.SplitList(flags.Write) {
			role.AddKvWritePermission(p)
		}
		return client.CreateRole(ctx, role)

	case "role-update":
		update := kvadmin.NewRoleUpdate(needName())
		for _, p := range cmd.SplitList(flags.GrantRead) {
			update.GrantKvReadPermission(p)
		}
		for _, p := range cmd.SplitList(flags.GrantWrite) {
			update.GrantKvWritePermission(p)
		}
		for _, p := range cmd.SplitList(flags.RevokeRead) {
			update.RevokeKvReadPermission(p)
		}
		for _, p := range cmd.SplitList(flags.RevokeWrite) {
			update.RevokeKvWritePermission(p)
		}
		return client.UpdateRole(ctx, update)

	case "role-delete":
		info, err := client.DeleteRole(ctx, needName())
		if err != nil {
			return nil, info, err
		}
		return map[string]interface{}{
			"deleted": flags.Name,
		}, info, nil
	}

	return nil, kvadmin.ClusterInfo{},
		fmt.Errorf("main: unknown op: %s", flags.Op)
}
