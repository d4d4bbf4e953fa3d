/*
Package ports defines the driven ports (interfaces) of rcflow.

These interfaces decouple the runtime from external implementations, allowing
interactions and projects to live in memory, on disk, in Redis, in Postgres or
in a document repository.

# Key Interfaces

  - ProjectSource: Read-only access to project documents (e.g., a Loam repository).
  - ProjectStore: Read/write persistence of project documents.
  - SessionStore: Persistence of runtime interactions, keyed by session ID.
  - DistributedLocker: Distributed locking for concurrent access to a session.

The package also exports contract suites (RunProjectStoreContract,
RunSessionStoreContract) that every adapter runs in its own tests.
*/
package ports
