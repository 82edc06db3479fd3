// Package postgres provides PostgreSQL implementations of the repository
// interfaces declared in internal/repository, each backed by database/sql
// over the jackc/pgx/v5 stdlib driver registered in internal/infra/db. Each
// interface gets its own facade type (NodeRepo, SubscriptionRepo, ...)
// wrapping its own *sql.DB handle, the same one-struct-per-interface shape
// internal/infra/adapter/persistence/memory uses.
package postgres

