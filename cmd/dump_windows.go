//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

//go:build windows
// +build windows

package cmd

import (
	log "github.com/couchbase/clog"
)

// DumpOnSignalForPlatform is a no-op: windows has no SIGUSR2.
func DumpOnSignalForPlatform() {
}

func init() {
	log.DisableColor()
}
