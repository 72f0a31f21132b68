// Package cache implements the filesystem-backed key/value cache. Every key is
// namespaced with the instance prefix, hashed with SHA-1 and stored as a single
// msgpack envelope at <root>/<hh>/<hh>/<sha1>.cache. Writes go through a temp
// file + rename so readers never see a partial envelope; unreadable or corrupt
// files are reported as misses. Expiration is evaluated lazily on every read,
// there is no background sweep and no in-memory layer.
//
// Note on Get: a value-only view cannot tell "never cached" from "cached a
// false-like value". The comma-ok bool carries the hit/miss outcome, so a
// stored false comes back as (false, true) while a miss is (nil, false). Callers that only inspect the value still see both as falsy.
package cache
