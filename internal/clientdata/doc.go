// Package clientdata implements the per-connection message aggregate.
//
// A ClientData receives decoded message batches from the transport, admits
// those addressed to the local device, and either buffers them in a per-kind
// raw log (logging-only mode) or routes each to exactly one sub-store
// (routing mode). Derived views over the raw log and the alert collections
// are memoized on container versions and recomputed only after a mutation.
//
// # Lifecycle
//
//	cd := clientdata.New("device-7", sender)
//	res := cd.AddData(batch)        // sole ingestion entry point
//	cd.LogOnlyRawMessages(true)     // sole mode switch
//	acc := cd.AccelerationData()    // views never mutate state
//
// # Concurrency
//
// ClientData is not safe for concurrent use. All calls, reads included, must
// come from one goroutine; internal/engine provides that goroutine.
package clientdata
