// Package dineauth implements the client-side authentication session core for
// the Hostline restaurant platform: credential login, the two-factor
// challenge/response step, transparent access-token refresh, and durable
// session persistence across restarts.
//
// The package owns a single authoritative [Session] per [Core]. All session
// mutation flows through internal transition functions, so a caller can never
// observe a half-authenticated state (an access token without a user profile,
// or a pending two-factor challenge alongside a full token pair).
//
// # Architecture boundaries
//
// dineauth is the public surface. It exposes [Core], [Builder], [Config], the
// session value types, and [Transport]. Token persistence lives in the
// tokenstore sub-package behind the [tokenstore.Store] interface; audit
// dispatch lives under internal/ and is re-exported as type aliases.
//
// The REST backend, UI rendering, and navigation are external collaborators.
// dineauth never renders anything and never decides what a failure means for
// the user; it reports structured sentinel errors and leaves presentation to
// the embedding application.
//
// # Concurrency contract
//
// Core methods are safe to call from multiple goroutines after construction
// through [Builder.Build]. At most one token refresh is in flight at any
// time; concurrent callers that need a refresh await the same result instead
// of issuing their own.
package dineauth
