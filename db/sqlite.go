package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"supply-risk/models"
	"supply-risk/utils"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

type SQLiteClient struct {
	db *sql.DB
}

func NewSQLiteClient(dataSourceName string) (*SQLiteClient, error) {
	// Extract the file path before query parameters
	dbPath := dataSourceName
	if idx := strings.Index(dataSourceName, "?"); idx != -1 {
		dbPath = dataSourceName[:idx]
	}

	dbDir := filepath.Dir(dbPath)
	if dbDir != "." && dbDir != "" {
		if err := utils.CreateFolder(dbDir); err != nil {
			return nil, fmt.Errorf("error creating database directory: %s", err)
		}
	}

	// Add busy timeout param to DSN (milliseconds)
	if !strings.Contains(dataSourceName, "_busy_timeout") {
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&_busy_timeout=5000"
		} else {
			dataSourceName += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to SQLite: %s", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("error creating tables: %s", err)
	}

	return &SQLiteClient{db: db}, nil
}

func createTables(db *sql.DB) error {
	createAssessmentsTable := `
    CREATE TABLE IF NOT EXISTS assessments (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        kind TEXT NOT NULL,
        risk_level TEXT NOT NULL,
        score REAL NOT NULL DEFAULT 0,
        carrier TEXT,
        payload TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_assessments_timestamp ON assessments(timestamp);
    CREATE INDEX IF NOT EXISTS idx_assessments_risk_level ON assessments(risk_level);
    `

	_, err := db.Exec(createAssessmentsTable)
	if err != nil {
		return fmt.Errorf("error creating assessments table: %s", err)
	}

	return nil
}

func (c *SQLiteClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// StoreAssessment appends one assessment row.
func (c *SQLiteClient) StoreAssessment(assessment *models.Assessment) error {
	result, err := c.db.Exec(`
		INSERT INTO assessments (timestamp, kind, risk_level, score, carrier, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		assessment.Timestamp,
		assessment.Kind,
		assessment.RiskLevel,
		assessment.Score,
		assessment.Carrier,
		string(assessment.Payload),
	)
	if err != nil {
		return fmt.Errorf("error storing assessment: %s", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		assessment.ID = id
	}
	return nil
}

// GetAllAssessments retrieves the stored history, newest first.
func (c *SQLiteClient) GetAllAssessments() ([]models.Assessment, error) {
	rows, err := c.db.Query(`
		SELECT id, timestamp, kind, risk_level, score, carrier, payload
		FROM assessments
		ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("error querying assessments: %s", err)
	}
	defer rows.Close()

	var assessments []models.Assessment
	for rows.Next() {
		var a models.Assessment
		var carrier sql.NullString
		var payload string

		if err := rows.Scan(&a.ID, &a.Timestamp, &a.Kind, &a.RiskLevel, &a.Score, &carrier, &payload); err != nil {
			return nil, fmt.Errorf("error scanning assessment: %s", err)
		}

		a.Carrier = carrier.String
		a.Payload = []byte(payload)
		assessments = append(assessments, a)
	}

	return assessments, rows.Err()
}

// GetAssessmentStats aggregates stored assessments by risk level and kind.
func (c *SQLiteClient) GetAssessmentStats() (models.AssessmentStats, error) {
	stats := models.AssessmentStats{
		ByRiskLevel: make(map[string]int),
		ByKind:      make(map[string]int),
	}

	rows, err := c.db.Query(`SELECT risk_level, kind, COUNT(*) FROM assessments GROUP BY risk_level, kind`)
	if err != nil {
		return stats, fmt.Errorf("error aggregating assessments: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var riskLevel, kind string
		var count int
		if err := rows.Scan(&riskLevel, &kind, &count); err != nil {
			return stats, fmt.Errorf("error scanning aggregate row: %s", err)
		}
		stats.ByRiskLevel[riskLevel] += count
		stats.ByKind[kind] += count
		stats.Total += count
	}

	return stats, rows.Err()
}
