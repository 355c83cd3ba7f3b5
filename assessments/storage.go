package assessments

import (
	"errors"
	"sync"
	"time"

	"supply-risk/db"
	"supply-risk/models"
)

// Recorder persists assessment history through a db.Client. Persistence is
// best-effort from the transport layer's point of view: the analytical
// result has already been computed and a storage failure must not fail the
// request, only the history.
var (
	mu     sync.RWMutex
	client db.Client
)

// Init installs the storage client used by the package-level operations.
func Init(c db.Client) {
	mu.Lock()
	client = c
	mu.Unlock()
}

// SaveAssessment stores one assessment, stamping ID and timestamp if unset.
func SaveAssessment(assessment *models.Assessment) error {
	mu.RLock()
	c := client
	mu.RUnlock()

	if c == nil {
		return errors.New("assessment storage not initialized")
	}

	if assessment.Timestamp.IsZero() {
		assessment.Timestamp = time.Now().UTC()
	}
	return c.StoreAssessment(assessment)
}

// LoadAssessments returns the stored history, newest first.
func LoadAssessments() ([]models.Assessment, error) {
	mu.RLock()
	c := client
	mu.RUnlock()

	if c == nil {
		return nil, errors.New("assessment storage not initialized")
	}

	assessments, err := c.GetAllAssessments()
	if err != nil {
		return nil, err
	}
	if assessments == nil {
		assessments = []models.Assessment{}
	}
	return assessments, nil
}

// Stats aggregates the stored history for the dashboard endpoint.
func Stats() (models.AssessmentStats, error) {
	mu.RLock()
	c := client
	mu.RUnlock()

	if c == nil {
		return models.AssessmentStats{}, errors.New("assessment storage not initialized")
	}
	return c.GetAssessmentStats()
}
