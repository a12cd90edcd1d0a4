//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package kvadmin

import (
	"fmt"
	"io"

	"github.com/rcrowley/go-metrics"
)

// ClientCounters holds a Client's operation counters.  All fields
// are uint64's accessed via sync/atomic.
type ClientCounters struct {
	TotDispatch              uint64
	TotDispatchOK            uint64
	TotDispatchErr           uint64
	TotProbe                 uint64
	TotProbeOK               uint64
	TotProbeTransportErr     uint64
	TotProbeSerializationErr uint64
	TotProbeApiErr           uint64
	TotProbeUnexpectedStatus uint64
}

// ClientStats holds the common stats or metrics for a Client.
type ClientStats struct {
	ClientCounters

	TimerDispatch metrics.Timer
	TimerProbe    metrics.Timer
}

// NewClientStats creates a new, ready-to-use ClientStats.
func NewClientStats() *ClientStats {
	return &ClientStats{
		TimerDispatch: metrics.NewTimer(),
		TimerProbe:    metrics.NewTimer(),
	}
}

// CountersSnapshot returns an atomically-read copy of the counters.
func (s *ClientStats) CountersSnapshot() *ClientCounters {
	rv := &ClientCounters{}
	AtomicCopyMetrics(&s.ClientCounters, rv, nil)
	return rv
}

// WriteJSON writes stats as JSON to the given writer.
func (s *ClientStats) WriteJSON(w io.Writer) {
	c := s.CountersSnapshot()
	w.Write(JsonOpenBrace)
	fmt.Fprintf(w, `"TotDispatch":%d`, c.TotDispatch)
	fmt.Fprintf(w, `,"TotDispatchOK":%d`, c.TotDispatchOK)
	fmt.Fprintf(w, `,"TotDispatchErr":%d`, c.TotDispatchErr)
	fmt.Fprintf(w, `,"TotProbe":%d`, c.TotProbe)
	fmt.Fprintf(w, `,"TotProbeOK":%d`, c.TotProbeOK)
	fmt.Fprintf(w, `,"TotProbeTransportErr":%d`, c.TotProbeTransportErr)
	fmt.Fprintf(w, `,"TotProbeSerializationErr":%d`, c.TotProbeSerializationErr)
	fmt.Fprintf(w, `,"TotProbeApiErr":%d`, c.TotProbeApiErr)
	fmt.Fprintf(w, `,"TotProbeUnexpectedStatus":%d`, c.TotProbeUnexpectedStatus)

	w.Write([]byte(`,"TimerDispatch":`))
	WriteTimerJSON(w, s.TimerDispatch)
	w.Write([]byte(`,"TimerProbe":`))
	WriteTimerJSON(w, s.TimerProbe)

	w.Write(JsonCloseBrace)
}
