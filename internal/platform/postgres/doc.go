// Package postgres implements store.UserStore on PostgreSQL through the pgx
// database/sql driver. The schema is managed by the goose migrations embedded
// in the migrations subpackage.
package postgres
