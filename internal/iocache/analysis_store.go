package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/schema"
)

// Table names for analysis tracking.
const (
	AnalysisRunsTable      = "repoquality_analysis_runs"
	RepositoryRecordsTable = "repoquality_repository_records"

	// MigrationsTable is the version table kept by golang-migrate.
	MigrationsTable = "schema_migrations"
)

// recordColumns lists the repository record columns in insert order.
var recordColumns = []string{
	"analysis_id", "repository", "analysis_time", "metrics_source", "strategy",
	"loc", "comments", "stars", "age_years", "releases", "size_kb",
	"cbo_mean", "dit_mean", "lcom_mean", "wmc_mean", "record_json",
}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{AnalysisRunsTable, getCreateAnalysisRunsQuery(backend)},
		{RepositoryRecordsTable, getCreateRepositoryRecordsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for the analysis runs table.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(AnalysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_repositories INT,
				succeeded_repositories INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_repositories INT,
				succeeded_repositories INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_repositories INTEGER,
				succeeded_repositories INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateRepositoryRecordsQuery returns the CREATE TABLE query for the repository records table.
func getCreateRepositoryRecordsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(RepositoryRecordsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				repository VARCHAR(255) NOT NULL,
				analysis_time DATETIME(6) NOT NULL,
				metrics_source VARCHAR(20) NOT NULL,
				strategy VARCHAR(50),
				loc INT NOT NULL,
				comments INT NOT NULL,
				stars INT NOT NULL,
				age_years DOUBLE NOT NULL,
				releases INT NOT NULL,
				size_kb INT NOT NULL,
				cbo_mean DOUBLE,
				dit_mean DOUBLE,
				lcom_mean DOUBLE,
				wmc_mean DOUBLE,
				record_json MEDIUMTEXT NOT NULL,
				PRIMARY KEY (analysis_id, repository)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				repository TEXT NOT NULL,
				analysis_time TIMESTAMPTZ NOT NULL,
				metrics_source TEXT NOT NULL,
				strategy TEXT,
				loc INT NOT NULL,
				comments INT NOT NULL,
				stars INT NOT NULL,
				age_years DOUBLE PRECISION NOT NULL,
				releases INT NOT NULL,
				size_kb INT NOT NULL,
				cbo_mean DOUBLE PRECISION,
				dit_mean DOUBLE PRECISION,
				lcom_mean DOUBLE PRECISION,
				wmc_mean DOUBLE PRECISION,
				record_json TEXT NOT NULL,
				PRIMARY KEY (analysis_id, repository)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				repository TEXT NOT NULL,
				analysis_time TEXT NOT NULL,
				metrics_source TEXT NOT NULL,
				strategy TEXT,
				loc INTEGER NOT NULL,
				comments INTEGER NOT NULL,
				stars INTEGER NOT NULL,
				age_years REAL NOT NULL,
				releases INTEGER NOT NULL,
				size_kb INTEGER NOT NULL,
				cbo_mean REAL,
				dit_mean REAL,
				lcom_mean REAL,
				wmc_mean REAL,
				record_json TEXT NOT NULL,
				PRIMARY KEY (analysis_id, repository)
			);
		`, quotedTableName)
	}
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(AnalysisRunsTable, as.backend)

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, formatTime(startTime, as.backend), string(configJSON)).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, formatTime(startTime, as.backend), string(configJSON))
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, totalRepositories int, succeeded int) error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(AnalysisRunsTable, as.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, placeholder(as.backend, 1))

	var raw any
	if err := as.db.QueryRow(query, analysisID).Scan(&raw); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	startTime, err := scanTime(raw)
	if err != nil {
		return fmt.Errorf("failed to parse start_time: %w", err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_repositories = %s, succeeded_repositories = %s WHERE analysis_id = %s`,
		quotedTableName,
		placeholder(as.backend, 1), placeholder(as.backend, 2), placeholder(as.backend, 3),
		placeholder(as.backend, 4), placeholder(as.backend, 5))
	if _, err := as.db.Exec(update, formatTime(endTime, as.backend), durationMs, totalRepositories, succeeded, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordRepository stores one repository record for the run.
func (as *AnalysisStoreImpl) RecordRepository(analysisID int64, record schema.RepositoryAnalysisRecord) error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record for %s: %w", record.Repository, err)
	}

	analysisTime := record.AnalysisDate
	if analysisTime.IsZero() {
		analysisTime = time.Now()
	}
	var strategy *string
	if record.Strategy != "" {
		strategy = &record.Strategy
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(RepositoryRecordsTable, as.backend),
		strings.Join(recordColumns, ", "),
		placeholders(as.backend, len(recordColumns)))
	_, err = as.db.Exec(query,
		analysisID, record.Repository, formatTime(analysisTime, as.backend), string(record.Source), strategy,
		record.LOC, record.Comments, record.Stars, record.AgeYears, record.Releases, record.SizeKB,
		metricOrNil(record, "cbo_mean"), metricOrNil(record, "dit_mean"),
		metricOrNil(record, "lcom_mean"), metricOrNil(record, "wmc_mean"),
		string(recordJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert repository record for %s: %w", record.Repository, err)
	}
	return nil
}

// metricOrNil returns a pointer to a summary statistic, or nil when it is absent.
func metricOrNil(record schema.RepositoryAnalysisRecord, key string) *float64 {
	v, ok := record.Metrics[key]
	if !ok {
		return nil
	}
	return &v
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(AnalysisRunsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastRaw, oldestRaw any
		lastQuery := fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runsTable)
		if err := as.db.QueryRow(lastQuery).Scan(&status.LastRunID, &lastRaw); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runsTable)
		if err := as.db.QueryRow(oldestQuery).Scan(&oldestRaw); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		var err error
		if status.LastRunTime, err = scanTime(lastRaw); err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		if status.OldestRunTime, err = scanTime(oldestRaw); err != nil {
			return status, fmt.Errorf("failed to parse oldest run time: %w", err)
		}

		totalQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_repositories), 0) FROM %s", runsTable)
		if err := as.db.QueryRow(totalQuery).Scan(&status.TotalRepositories); err != nil {
			return status, fmt.Errorf("failed to get total repositories: %w", err)
		}
	}

	for _, table := range []string{AnalysisRunsTable, RepositoryRecordsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, start_time, end_time, run_duration_ms, total_repositories, succeeded_repositories, config_params
		FROM %s ORDER BY analysis_id`, quoteTableName(AnalysisRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var (
			record           schema.AnalysisRunRecord
			startRaw, endRaw any
			duration         sql.NullInt32
			total, succeeded sql.NullInt32
			configParams     sql.NullString
		)
		if err := rows.Scan(&record.AnalysisID, &startRaw, &endRaw, &duration, &total, &succeeded, &configParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		if record.StartTime, err = scanTime(startRaw); err != nil {
			return nil, fmt.Errorf("failed to parse start time: %w", err)
		}
		if endRaw != nil {
			end, err := scanTime(endRaw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end time: %w", err)
			}
			record.EndTime = &end
		}
		if duration.Valid {
			record.RunDurationMs = &duration.Int32
		}
		record.TotalRepositories = total.Int32
		record.Succeeded = succeeded.Int32
		if configParams.Valid {
			record.ConfigParams = &configParams.String
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllRepositoryRecords retrieves all repository records from the store.
func (as *AnalysisStoreImpl) GetAllRepositoryRecords() ([]schema.RepositoryRecordRow, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY analysis_id, repository`,
		strings.Join(recordColumns, ", "), quoteTableName(RepositoryRecordsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query repository records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RepositoryRecordRow
	for rows.Next() {
		var (
			row      schema.RepositoryRecordRow
			timeRaw  any
			strategy sql.NullString
			cbo, dit sql.NullFloat64
			lcom     sql.NullFloat64
			wmc      sql.NullFloat64
		)
		if err := rows.Scan(
			&row.AnalysisID, &row.Repository, &timeRaw, &row.MetricsSource, &strategy,
			&row.LOC, &row.Comments, &row.Stars, &row.AgeYears, &row.Releases, &row.SizeKB,
			&cbo, &dit, &lcom, &wmc, &row.RecordJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan repository record: %w", err)
		}
		if row.AnalysisTime, err = scanTime(timeRaw); err != nil {
			return nil, fmt.Errorf("failed to parse analysis time: %w", err)
		}
		if strategy.Valid {
			row.Strategy = &strategy.String
		}
		row.CBOMean = nullableFloat(cbo)
		row.DITMean = nullableFloat(dit)
		row.LCOMMean = nullableFloat(lcom)
		row.WMCMean = nullableFloat(wmc)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repository records: %w", err)
	}
	return results, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
