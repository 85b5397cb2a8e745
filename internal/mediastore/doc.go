// Package mediastore persists media records and answers the selection
// queries batch commands run against the library.
//
// Two backends implement Repository: Store keeps records in a local SQLite
// database (the default) and PostgresStore talks to a shared PostgreSQL
// server through a pgx pool. Both return records in ascending id order and
// treat identifiers as opaque strings: lookups by id match the textual form of
// the stored key, so unmatched or malformed ids are simply absent from the
// result.
//
// Schema changes bump schemaVersion; users clear the database to adopt the
// new schema.
package mediastore
