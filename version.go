//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package kvadmin

// The kvadmin.VERSION tracks the admin API generation this library
// speaks (URL layout, status code contracts, metadata headers).  The
// main.VERSION from "git describe" that's part of an executable
// command, in contrast, is an overall "product" version, and may move
// without any wire-level change here.
const VERSION = "0.3.1"

// APIRoot is the fixed path prefix under which a cluster member
// serves its auth administration endpoints.
const APIRoot = "v2/auth"
