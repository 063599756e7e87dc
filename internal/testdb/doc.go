// Package testdb provides migrated databases for tests. By default each
// test gets its own sqlite file under t.TempDir(); setting
// HANDLESCOPE_TEST_DATABASE_URL runs the same tests against PostgreSQL.
package testdb
