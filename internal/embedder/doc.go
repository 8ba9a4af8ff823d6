// Package embedder derives semantic vectors from text and coordinates
// access to the embedding backend.
//
// A Backend is a single, possibly slow-to-warm embedding model instance.
// The Coordinator owns its lifecycle: initialization is lazy, shared by all
// concurrent callers through a single-flight group, and a backend report
// that a duplicate instance already exists is treated as success, since a
// peer initializer produced a usable instance. Once ready, the backend is
// treated as a pure function; a transient per-call failure is reported to
// that caller only.
//
// Vectors handed to callers are always independent copies, never aliased to
// a backend or cache buffer.
//
// Two backends ship with the server: an Ollama HTTP backend for real local
// models and a deterministic hash backend used offline and in tests.
package embedder
