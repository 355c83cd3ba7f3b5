package db

import (
	"context"
	"fmt"
	"time"

	"supply-risk/models"
	"supply-risk/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoClient struct {
	client *mongo.Client
	dbName string
}

const mongoConnectTimeout = 10 * time.Second

func NewMongoClient(uri string) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %s", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("error pinging MongoDB: %s", err)
	}

	return &MongoClient{
		client: client,
		dbName: utils.GetEnv("MONGO_DB_NAME", "supply-risk"),
	}, nil
}

func (c *MongoClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()
	return c.client.Disconnect(ctx)
}

func (c *MongoClient) assessments() *mongo.Collection {
	return c.client.Database(c.dbName).Collection("assessments")
}

// StoreAssessment appends one assessment document.
func (c *MongoClient) StoreAssessment(assessment *models.Assessment) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	if assessment.ID == 0 {
		assessment.ID = time.Now().UnixNano()
	}

	doc := bson.M{
		"_id":        assessment.ID,
		"timestamp":  assessment.Timestamp,
		"kind":       assessment.Kind,
		"risk_level": assessment.RiskLevel,
		"score":      assessment.Score,
		"carrier":    assessment.Carrier,
		"payload":    string(assessment.Payload),
	}

	if _, err := c.assessments().InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("error storing assessment: %s", err)
	}
	return nil
}

// GetAllAssessments retrieves the stored history, newest first.
func (c *MongoClient) GetAllAssessments() ([]models.Assessment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := c.assessments().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying assessments: %s", err)
	}
	defer cursor.Close(ctx)

	var assessments []models.Assessment
	for cursor.Next(ctx) {
		var doc struct {
			ID        int64     `bson:"_id"`
			Timestamp time.Time `bson:"timestamp"`
			Kind      string    `bson:"kind"`
			RiskLevel string    `bson:"risk_level"`
			Score     float64   `bson:"score"`
			Carrier   string    `bson:"carrier"`
			Payload   string    `bson:"payload"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding assessment: %s", err)
		}
		assessments = append(assessments, models.Assessment{
			ID:        doc.ID,
			Timestamp: doc.Timestamp,
			Kind:      doc.Kind,
			RiskLevel: doc.RiskLevel,
			Score:     doc.Score,
			Carrier:   doc.Carrier,
			Payload:   []byte(doc.Payload),
		})
	}

	return assessments, cursor.Err()
}

// GetAssessmentStats aggregates stored assessments by risk level and kind.
func (c *MongoClient) GetAssessmentStats() (models.AssessmentStats, error) {
	stats := models.AssessmentStats{
		ByRiskLevel: make(map[string]int),
		ByKind:      make(map[string]int),
	}

	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "risk_level", Value: "$risk_level"},
				{Key: "kind", Value: "$kind"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := c.assessments().Aggregate(ctx, pipeline)
	if err != nil {
		return stats, fmt.Errorf("error aggregating assessments: %s", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var group struct {
			ID struct {
				RiskLevel string `bson:"risk_level"`
				Kind      string `bson:"kind"`
			} `bson:"_id"`
			Count int `bson:"count"`
		}
		if err := cursor.Decode(&group); err != nil {
			return stats, fmt.Errorf("error decoding aggregate row: %s", err)
		}
		stats.ByRiskLevel[group.ID.RiskLevel] += group.Count
		stats.ByKind[group.ID.Kind] += group.Count
		stats.Total += group.Count
	}

	return stats, cursor.Err()
}
