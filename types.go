package partitiongen

import (
	"fmt"
	"strings"
)

// TimeColumnPlaceholder is substituted with a table's time column in index column templates.
const TimeColumnPlaceholder = "{time_column}"

// IndexSpec is a named index template applied to every yearly partition of a table.
type IndexSpec struct {
	// Suffix is appended to the generated index name (idx_<partition>_<suffix>).
	Suffix string `yaml:"suffix"`

	// ColumnTemplate is the index column list, e.g. "tenant_id, {time_column} DESC".
	ColumnTemplate string `yaml:"columns"`
}

// Columns resolves the column template for the given time column.
func (i IndexSpec) Columns(timeColumn string) string {
	return strings.ReplaceAll(i.ColumnTemplate, TimeColumnPlaceholder, timeColumn)
}

// TableSpec identifies a range-partitioned table to extend with yearly partitions.
type TableSpec struct {
	// Name is the parent table name.
	Name string `yaml:"name"`

	// TimeColumn is the column the table is range partitioned on.
	TimeColumn string `yaml:"time_column"`

	// Indexes are created on each partition, in order.
	Indexes []IndexSpec `yaml:"indexes"`
}

// PartitionName returns the name of the partition holding the given year.
func (t TableSpec) PartitionName(year int) string {
	return PartitionName(t.Name, year)
}

// PartitionName returns "<table>_<year>".
func PartitionName(table string, year int) string {
	return fmt.Sprintf("%s_%d", table, year)
}

// IndexName returns "idx_<table>_<year>_<suffix>".
func IndexName(table string, year int, suffix string) string {
	return fmt.Sprintf("idx_%s_%s", PartitionName(table, year), suffix)
}

// Range is an inclusive span of calendar years.
type Range struct {
	StartYear int `yaml:"start_year"`
	EndYear   int `yaml:"end_year"`
}

// Years returns the number of years in the range.
func (r Range) Years() int {
	return r.EndYear - r.StartYear + 1
}

// Validate reports ErrInvalidRange when the range is empty.
func (r Range) Validate() error {
	if r.StartYear > r.EndYear {
		return fmt.Errorf("%w: start year %d is after end year %d", ErrInvalidRange, r.StartYear, r.EndYear)
	}
	return nil
}

// String formats the range as "2033-2075".
func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.StartYear, r.EndYear)
}
