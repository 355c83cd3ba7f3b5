package db

import (
	"fmt"

	"supply-risk/models"
	"supply-risk/utils"
)

// Client is the storage interface for assessment history. Two backends are
// supported: SQLite (default, file-local) and MongoDB.
type Client interface {
	Close() error
	StoreAssessment(assessment *models.Assessment) error
	GetAllAssessments() ([]models.Assessment, error)
	GetAssessmentStats() (models.AssessmentStats, error)
}

// NewDBClient builds the storage client selected by DB_TYPE.
func NewDBClient() (Client, error) {
	switch dbType := utils.GetEnv("DB_TYPE", "sqlite"); dbType {
	case "sqlite":
		return NewSQLiteClient(utils.GetEnv("SQLITE_DB_PATH", "storage/assessments.db"))
	case "mongo":
		return NewMongoClient(utils.GetEnv("MONGO_URI", "mongodb://localhost:27017"))
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE: %s", dbType)
	}
}
