package migrations

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	partitiongen "github.com/AIDEN1973/partition-gen"
)

var (
	identifierRegex     = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	columnTemplateRegex = regexp.MustCompile(`^[a-zA-Z0-9_, ()]+$`)
)

const (
	minYear = 1
	maxYear = 9998

	rule     = "-- ============================================================================"
	thinRule = "-- ----------------------------------------------------------------------------"
)

// validateIdentifier ensures an identifier contains only safe characters for SQL.
// Returns an error if the identifier contains characters that could be used for SQL injection.
func validateIdentifier(name, fieldName string) error {
	if name == "" {
		return fmt.Errorf("%w: %s cannot be empty", partitiongen.ErrInvalidIdentifier, fieldName)
	}
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%w: %s must start with a letter and contain only letters, numbers, and underscores (got: %s)",
			partitiongen.ErrInvalidIdentifier, fieldName, name)
	}
	return nil
}

// validateColumnTemplate requires the time column placeholder and nothing but a plain column list around it.
func validateColumnTemplate(template, fieldName string) error {
	if !strings.Contains(template, partitiongen.TimeColumnPlaceholder) {
		return fmt.Errorf("%w: %s must reference %s (got: %s)",
			partitiongen.ErrInvalidColumnTemplate, fieldName, partitiongen.TimeColumnPlaceholder, template)
	}
	rest := strings.ReplaceAll(template, partitiongen.TimeColumnPlaceholder, "")
	if rest != "" && !columnTemplateRegex.MatchString(rest) {
		return fmt.Errorf("%w: %s may only contain column names, commas, spaces and parentheses (got: %s)",
			partitiongen.ErrInvalidColumnTemplate, fieldName, template)
	}
	return nil
}

// validateConfig validates all configuration values to prevent SQL injection and name collisions.
func validateConfig(config *Config) error {
	if err := validateIdentifier(config.SchemaName, "SchemaName"); err != nil {
		return err
	}
	if err := config.Range.Validate(); err != nil {
		return err
	}
	if config.Range.StartYear < minYear || config.Range.EndYear > maxYear {
		return fmt.Errorf("%w: years must be within %d-%d (got: %s)", partitiongen.ErrInvalidRange, minYear, maxYear, config.Range)
	}
	if config.BaseYear > config.Range.StartYear {
		return fmt.Errorf("%w: base year %d is after start year %d", partitiongen.ErrInvalidRange, config.BaseYear, config.Range.StartYear)
	}
	if len(config.Tables) == 0 {
		return partitiongen.ErrNoTables
	}

	seenTables := make(map[string]struct{}, len(config.Tables))
	for i, table := range config.Tables {
		if err := validateIdentifier(table.Name, fmt.Sprintf("Tables[%d].Name", i)); err != nil {
			return err
		}
		if _, ok := seenTables[table.Name]; ok {
			return fmt.Errorf("%w: %s", partitiongen.ErrDuplicateTable, table.Name)
		}
		seenTables[table.Name] = struct{}{}

		if err := validateIdentifier(table.TimeColumn, table.Name+".TimeColumn"); err != nil {
			return err
		}

		seenSuffixes := make(map[string]struct{}, len(table.Indexes))
		for j, idx := range table.Indexes {
			field := fmt.Sprintf("%s.Indexes[%d]", table.Name, j)
			if err := validateIdentifier(idx.Suffix, field+".Suffix"); err != nil {
				return err
			}
			if _, ok := seenSuffixes[idx.Suffix]; ok {
				return fmt.Errorf("%w: %s on %s", partitiongen.ErrDuplicateIndex, idx.Suffix, table.Name)
			}
			seenSuffixes[idx.Suffix] = struct{}{}

			if err := validateColumnTemplate(idx.ColumnTemplate, field+".ColumnTemplate"); err != nil {
				return err
			}
		}
	}
	return nil
}

// Config configures yearly partition migration generation.
type Config struct {
	// OutputFolder is the directory where the migration file will be written.
	// It must already exist.
	OutputFolder string `yaml:"output_folder"`

	// OutputFilename is the name of the migration file
	OutputFilename string `yaml:"output_filename"`

	// SchemaName is the schema holding the parent tables and their partitions
	SchemaName string `yaml:"schema"`

	// Range is the inclusive span of years to create partitions for.
	Range partitiongen.Range `yaml:",inline"`

	// BaseYear is the first year already covered by existing partitions.
	// It only feeds the "years total" table comment. Zero means StartYear.
	BaseYear int `yaml:"base_year"`

	// Tables are the partitioned tables to extend, in output order.
	Tables []partitiongen.TableSpec `yaml:"tables"`

	// Logger is for observability (optional).
	Logger logrus.FieldLogger `yaml:"-"`
}

// OutputPath returns the full path of the migration file.
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputFolder, c.OutputFilename)
}

func (c *Config) baseYear() int {
	if c.BaseYear == 0 {
		return c.Range.StartYear
	}
	return c.BaseYear
}

// DefaultTables returns the audit and automation log tables extended by the default migration.
func DefaultTables() []partitiongen.TableSpec {
	return []partitiongen.TableSpec{
		{
			Name:       "execution_audit_runs",
			TimeColumn: "occurred_at",
			Indexes: []partitiongen.IndexSpec{
				{Suffix: "tenant_occurred", ColumnTemplate: "tenant_id, {time_column} DESC"},
				{Suffix: "status", ColumnTemplate: "tenant_id, status, {time_column} DESC"},
				{Suffix: "operation_type", ColumnTemplate: "tenant_id, operation_type, {time_column} DESC"},
			},
		},
		{
			Name:       "execution_audit_steps",
			TimeColumn: "occurred_at",
			Indexes: []partitiongen.IndexSpec{
				{Suffix: "run", ColumnTemplate: "run_id, {time_column}"},
				{Suffix: "tenant_occurred", ColumnTemplate: "tenant_id, {time_column} DESC"},
			},
		},
		{
			Name:       "automation_actions",
			TimeColumn: "executed_at",
			Indexes: []partitiongen.IndexSpec{
				{Suffix: "tenant_executed", ColumnTemplate: "tenant_id, {time_column} DESC"},
				{Suffix: "action_type", ColumnTemplate: "tenant_id, action_type, {time_column} DESC"},
				{Suffix: "dedup", ColumnTemplate: "tenant_id, dedup_key, {time_column}"},
			},
		},
	}
}

// DefaultConfig returns the configuration of the 2033-2075 partition extension.
func DefaultConfig() Config {
	return Config{
		OutputFolder:   filepath.Join("infra", "supabase", "supabase", "migrations"),
		OutputFilename: "20260112000014_extend_partitions_to_2075.sql",
		SchemaName:     "public",
		Range:          partitiongen.Range{StartYear: 2033, EndYear: 2075},
		BaseYear:       2025,
		Tables:         DefaultTables(),
	}
}

// TableResult summarizes the statements generated for one table.
type TableResult struct {
	Name       string
	Partitions int
	Indexes    int
}

// Result describes a written migration file.
type Result struct {
	Path   string
	Lines  int
	Range  partitiongen.Range
	Tables []TableResult
}

// Partitions returns the number of partition statements across all tables.
func (r Result) Partitions() int {
	total := 0
	for _, t := range r.Tables {
		total += t.Partitions
	}
	return total
}

// Indexes returns the number of index statements across all tables.
func (r Result) Indexes() int {
	total := 0
	for _, t := range r.Tables {
		total += t.Indexes
	}
	return total
}

// Generate validates the configuration and returns the migration as ordered lines.
// The same configuration always yields the same lines.
func Generate(config *Config) ([]string, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return generatePostgresLines(config), nil
}

// Render joins generated lines into file content terminated by a newline.
func Render(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

// GeneratePostgres generates the PostgreSQL partition migration and writes it,
// replacing any existing file at the output path.
func GeneratePostgres(config *Config) (Result, error) {
	lines, err := Generate(config)
	if err != nil {
		return Result{}, err
	}

	outputPath := config.OutputPath()
	if err := writeFile(outputPath, Render(lines)); err != nil {
		return Result{}, fmt.Errorf("failed to write migration file: %w", err)
	}

	result := Result{
		Path:   outputPath,
		Lines:  len(lines),
		Range:  config.Range,
		Tables: make([]TableResult, 0, len(config.Tables)),
	}
	for _, table := range config.Tables {
		tr := tableResult(config.Range, table)
		result.Tables = append(result.Tables, tr)

		if config.Logger != nil {
			config.Logger.WithFields(logrus.Fields{
				"table":      tr.Name,
				"partitions": tr.Partitions,
				"indexes":    tr.Indexes,
			}).Debug("partitions generated")
		}
	}

	return result, nil
}

func writeFile(path, content string) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.WriteString(f, content)
	return err
}

func tableResult(r partitiongen.Range, table partitiongen.TableSpec) TableResult {
	return TableResult{
		Name:       table.Name,
		Partitions: r.Years(),
		Indexes:    r.Years() * len(table.Indexes),
	}
}

func qualify(schema, name string) string {
	return schema + "." + name
}

func tableNames(tables []partitiongen.TableSpec) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

func generatePostgresLines(config *Config) []string {
	r := config.Range

	lines := []string{
		rule,
		fmt.Sprintf("-- Extend yearly partitions to %d", r.EndYear),
		fmt.Sprintf("-- Range: %s (%d years added)", r, r.Years()),
		fmt.Sprintf("-- Tables: %s", strings.Join(tableNames(config.Tables), ", ")),
		"-- Partitions cover half-open yearly ranges [YYYY-01-01, YYYY+1-01-01).",
		"-- Statements are guarded with IF NOT EXISTS and safe to re-run.",
		"-- Generated by partition-gen. Do not edit by hand.",
		rule,
		"",
	}

	for _, table := range config.Tables {
		lines = append(lines, generateTableLines(config, table)...)
	}

	return append(lines, generateNoticeLines(config)...)
}

func generateTableLines(config *Config, table partitiongen.TableSpec) []string {
	r := config.Range
	parent := qualify(config.SchemaName, table.Name)

	lines := []string{
		thinRule,
		fmt.Sprintf("-- %s: %s (+%d years)", table.Name, r, r.Years()),
		thinRule,
		"",
	}

	for year := r.StartYear; year <= r.EndYear; year++ {
		nextYear := year + 1
		partition := qualify(config.SchemaName, table.PartitionName(year))

		lines = append(lines, fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s PARTITION OF %s FOR VALUES FROM ('%04d-01-01') TO ('%04d-01-01');",
			partition, parent, year, nextYear,
		))

		for _, idx := range table.Indexes {
			lines = append(lines, fmt.Sprintf(
				"CREATE INDEX IF NOT EXISTS %s ON %s(%s);",
				partitiongen.IndexName(table.Name, year, idx.Suffix), partition, idx.Columns(table.TimeColumn),
			))
		}

		lines = append(lines, "")
	}

	summary := fmt.Sprintf("Yearly range partitions on %s, %d-%d (%d years total)",
		table.TimeColumn, config.baseYear(), r.EndYear, r.EndYear-config.baseYear()+1)

	return append(lines,
		fmt.Sprintf("COMMENT ON TABLE %s IS %s;", parent, pq.QuoteLiteral(summary)),
		"",
	)
}

// generateNoticeLines builds a DO block that reports completion when the migration runs.
// Messages never contain '%', which RAISE would treat as a parameter marker.
func generateNoticeLines(config *Config) []string {
	r := config.Range

	lines := []string{
		"DO $$",
		"BEGIN",
		raiseNotice(fmt.Sprintf("Yearly partitions extended to %d: %s (%d years added)", r.EndYear, r, r.Years())),
	}

	var partitions, indexes int
	for _, table := range config.Tables {
		tr := tableResult(r, table)
		partitions += tr.Partitions
		indexes += tr.Indexes
		lines = append(lines, raiseNotice(fmt.Sprintf("  %s: %d partitions, %d indexes", tr.Name, tr.Partitions, tr.Indexes)))
	}

	return append(lines,
		raiseNotice(fmt.Sprintf("Total: %d partitions, %d indexes across %d tables", partitions, indexes, len(config.Tables))),
		"END $$;",
	)
}

func raiseNotice(message string) string {
	return "  RAISE NOTICE " + pq.QuoteLiteral(message) + ";"
}
