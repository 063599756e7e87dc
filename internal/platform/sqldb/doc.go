// Package sqldb connects the unit of work to database/sql. It opens the
// pooled *sql.DB for the configured driver (pgx for PostgreSQL, or the
// pure-Go sqlite driver), hands out one dedicated *sql.Conn per handle,
// maps driver errors onto the store sentinels and applies the embedded
// goose migrations.
package sqldb
