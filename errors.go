package partitiongen

import "errors"

var (
	// ErrInvalidRange indicates the start year is after the end year.
	ErrInvalidRange = errors.New("invalid year range")

	// ErrInvalidIdentifier indicates a schema, table, column or suffix name is not a safe SQL identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrNoTables indicates the configuration lists no tables to partition.
	ErrNoTables = errors.New("no tables configured")

	// ErrDuplicateTable indicates two table specs share a name.
	// Partition and index names would collide.
	ErrDuplicateTable = errors.New("duplicate table")

	// ErrDuplicateIndex indicates two indexes of one table share a suffix.
	ErrDuplicateIndex = errors.New("duplicate index suffix")

	// ErrInvalidColumnTemplate indicates an index column template is missing the
	// time column placeholder or contains characters outside a column list.
	ErrInvalidColumnTemplate = errors.New("invalid column template")
)
