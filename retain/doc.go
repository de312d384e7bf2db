// Package retain provides the reclaimer behind lazy.Soft: a bounded, sharded
// pool of strong references to values that are otherwise only weakly
// reachable.
//
// Go has no soft references. A weak.Pointer is cleared by the next garbage
// collection once its target is unreachable, which is far too eager for a
// cache. A Retainer supplies the missing retention: while a value's cell is
// in the pool it stays alive; once the pool releases it, the collector is
// free to reclaim it and the owning holder recomputes on its next access.
//
// Design
//
//   - Concurrency: the pool is split into shards, each protected by a mutex
//     held only for O(1) list and map updates. Ids are mixed before picking a
//     shard so sequentially allocated holders spread evenly.
//
//   - Policies: which reference goes first is pluggable via the policy
//     package. LRU is the default; policy/twoq keeps one-shot holders from
//     flushing frequently read ones.
//
//   - Idle expiry: Options.IdleTTL releases references that were not kept
//     again in time, mirroring soft references that are cleared after a
//     period without access.
//
//   - Memory pressure: Shrink and Purge are explicit triggers. With
//     Options.HeapLimit and Options.CheckEvery set, a watcher releases half
//     of the pool whenever live heap bytes exceed the limit.
//
// Exact parity with a JVM's memory-pressure behaviour is not a goal: release
// is decided by capacity, idleness and the heap watcher, and the collector
// reclaims released values at its own pace.
//
// Usage
//
//	r := retain.New(retain.Options{Capacity: 10_000, IdleTTL: time.Minute, CheckEvery: 10 * time.Second})
//	defer r.Close()
//	v := lazy.NewSoft(loadTable, lazy.WithRetainer(r))
package retain
