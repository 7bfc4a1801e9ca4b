// Package database owns the Bun connection for the service: connection and
// pool management for sqlite, mysql and postgres, health checks, versioned
// migrations built from registered models, indexes and foreign keys, SQL
// seed files and driver error classification.
package database
