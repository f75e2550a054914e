package migrations

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	partitiongen "github.com/AIDEN1973/partition-gen"
)

// propertyConfig builds a valid config with tableCount tables named t0..tN.
// Table i carries (i+indexSeed)%4 indexes so index counts vary across tables.
func propertyConfig(tableCount, indexSeed, startYear, span int) Config {
	tables := make([]partitiongen.TableSpec, tableCount)
	for i := range tables {
		indexes := make([]partitiongen.IndexSpec, (i+indexSeed)%4)
		for j := range indexes {
			indexes[j] = partitiongen.IndexSpec{
				Suffix:         fmt.Sprintf("i%d", j),
				ColumnTemplate: fmt.Sprintf("c%d, {time_column} DESC", j),
			}
		}
		tables[i] = partitiongen.TableSpec{
			Name:       fmt.Sprintf("t%d", i),
			TimeColumn: fmt.Sprintf("ts%d", i),
			Indexes:    indexes,
		}
	}

	return Config{
		SchemaName: "public",
		Range:      partitiongen.Range{StartYear: startYear, EndYear: startYear + span},
		Tables:     tables,
	}
}

func partitionPrefix(table string, year int) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS public.%s ", partitiongen.PartitionName(table, year))
}

func indexMarker(table string, year int) string {
	return fmt.Sprintf(" ON public.%s(", partitiongen.PartitionName(table, year))
}

func TestProperty_StatementCounts(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	// Property: every table/year pair gets one partition and len(indexes) index statements
	properties.Property("one partition and len(indexes) indexes per table and year", prop.ForAll(
		func(tableCount, indexSeed, startYear, span int) bool {
			config := propertyConfig(tableCount, indexSeed, startYear, span)
			lines, err := Generate(&config)
			if err != nil {
				return false
			}

			for _, table := range config.Tables {
				for year := config.Range.StartYear; year <= config.Range.EndYear; year++ {
					partitions, indexes := 0, 0
					for _, line := range lines {
						if strings.HasPrefix(line, partitionPrefix(table.Name, year)) {
							partitions++
						}
						if strings.HasPrefix(line, "CREATE INDEX") && strings.Contains(line, indexMarker(table.Name, year)) {
							indexes++
						}
					}
					if partitions != 1 || indexes != len(table.Indexes) {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 4),
		gen.IntRange(0, 3),
		gen.IntRange(1900, 2200),
		gen.IntRange(0, 12),
	))

	properties.TestingRun(t)
}

func TestProperty_Ordering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	// Property: years ascend per table and a partition precedes all of its indexes
	properties.Property("partitions ascend by year and precede their indexes", prop.ForAll(
		func(tableCount, indexSeed, startYear, span int) bool {
			config := propertyConfig(tableCount, indexSeed, startYear, span)
			lines, err := Generate(&config)
			if err != nil {
				return false
			}

			for _, table := range config.Tables {
				previous := -1
				for year := config.Range.StartYear; year <= config.Range.EndYear; year++ {
					position := -1
					for i, line := range lines {
						if strings.HasPrefix(line, partitionPrefix(table.Name, year)) {
							position = i
							break
						}
					}
					if position <= previous {
						return false
					}

					// Index statements for this partition follow it directly, in configured order.
					for j, idx := range table.Indexes {
						want := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s%s%s);",
							partitiongen.IndexName(table.Name, year, idx.Suffix),
							indexMarker(table.Name, year),
							idx.Columns(table.TimeColumn))
						if position+1+j >= len(lines) || lines[position+1+j] != want {
							return false
						}
					}
					previous = position
				}
			}
			return true
		},
		gen.IntRange(1, 4),
		gen.IntRange(0, 3),
		gen.IntRange(1900, 2200),
		gen.IntRange(0, 12),
	))

	properties.TestingRun(t)
}

func TestProperty_Deterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	// Property: identical configuration renders identical output
	properties.Property("generation is deterministic", prop.ForAll(
		func(tableCount, indexSeed, startYear, span int) bool {
			first := propertyConfig(tableCount, indexSeed, startYear, span)
			second := propertyConfig(tableCount, indexSeed, startYear, span)

			a, errA := Generate(&first)
			b, errB := Generate(&second)
			if errA != nil || errB != nil {
				return false
			}
			return Render(a) == Render(b)
		},
		gen.IntRange(1, 4),
		gen.IntRange(0, 3),
		gen.IntRange(1900, 2200),
		gen.IntRange(0, 12),
	))

	properties.TestingRun(t)
}

func TestProperty_SingleYearBoundary(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	// Property: start == end yields exactly one partition statement per table
	properties.Property("single year range emits one year per table", prop.ForAll(
		func(tableCount, indexSeed, year int) bool {
			config := propertyConfig(tableCount, indexSeed, year, 0)
			lines, err := Generate(&config)
			if err != nil {
				return false
			}

			partitions := 0
			for _, line := range lines {
				if strings.HasPrefix(line, "CREATE TABLE IF NOT EXISTS") {
					partitions++
				}
			}
			bounds := fmt.Sprintf("FROM ('%04d-01-01') TO ('%04d-01-01')", year, year+1)
			return partitions == tableCount && strings.Count(Render(lines), bounds) == tableCount
		},
		gen.IntRange(1, 4),
		gen.IntRange(0, 3),
		gen.IntRange(1, 9998),
	))

	properties.TestingRun(t)
}

func TestProperty_PlaceholderSubstitution(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	// Property: every placeholder is replaced and no other text changes
	properties.Property("placeholders resolve to the time column only", prop.ForAll(
		func(mask uint8, width int) bool {
			template := make([]string, width)
			expected := make([]string, width)
			for i := 0; i < width; i++ {
				if mask&(1<<uint(i)) != 0 {
					template[i] = partitiongen.TimeColumnPlaceholder
					expected[i] = "occurred_at"
				} else {
					template[i] = fmt.Sprintf("col_%d", i)
					expected[i] = template[i]
				}
			}

			idx := partitiongen.IndexSpec{Suffix: "p", ColumnTemplate: strings.Join(template, ", ") + " DESC"}
			return idx.Columns("occurred_at") == strings.Join(expected, ", ")+" DESC"
		},
		gen.UInt8(),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}
