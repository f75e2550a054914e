// Package migrations generates PostgreSQL migrations that extend range-partitioned
// log tables with yearly partitions.
//
// For every configured table and every year of the range it emits one
// CREATE TABLE ... PARTITION OF statement covering [YYYY-01-01, YYYY+1-01-01)
// followed by one CREATE INDEX statement per configured index. All statements are
// guarded with IF NOT EXISTS. Output depends only on the Config, so regenerating
// with the same Config produces a byte-identical file.
package migrations
