// package repositories provides the local persistence layer: the durable
// session tier and the per-book progress snapshot cache, both backed by
// SQLite.
package repositories
