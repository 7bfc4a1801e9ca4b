// Package repository implements request scoped data access on top of Bun.
//
// A Session holds one pooled connection and stages writes; Repository[T]
// builds deferred Query[T] reads and stages Create/Update/Remove on the
// session; Wrapper exposes the owner and account repositories of a session
// and commits them with Save.
package repository
