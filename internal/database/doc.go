// Package database provides SQLite-backed storage for crawled pages and
// their content hierarchies.
//
// The schema is two tables: pages, keyed by a generated identity, and
// contents, holding one row per content node with a foreign key to its
// page. A page and its entire content subtree commit in one transaction;
// a page row without its content rows is never observable.
package database
