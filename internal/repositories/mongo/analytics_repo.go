package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hirelens/hirelens/internal/models"
)

type StatusCount struct {
	Status string `bson:"_id" json:"status"`
	Count  int64  `bson:"count" json:"count"`
}

type SkillCount struct {
	Skill         string  `bson:"_id" json:"skill"`
	Count         int64   `bson:"count" json:"count"`
	AvgExperience float64 `bson:"avg_experience,omitempty" json:"avg_experience,omitempty"`
}

type AnalyticsRepository interface {
	ActiveResumeCount(ctx context.Context) (int64, error)
	ActiveJobCount(ctx context.Context) (int64, error)
	TotalApplications(ctx context.Context) (int64, error)
	ApplicationsByStatus(ctx context.Context) ([]StatusCount, error)
	TopSkills(ctx context.Context, limit int64) ([]SkillCount, error)
	AverageMatchScore(ctx context.Context) (float64, error)
	TopJobsByApplicants(ctx context.Context, limit int64) ([]models.Job, error)
}

type analyticsRepo struct {
	resumes *mongo.Collection
	jobs    *mongo.Collection
}

func NewAnalyticsRepo(db *mongo.Database) AnalyticsRepository {
	return &analyticsRepo{
		resumes: db.Collection("resumes"),
		jobs:    db.Collection("jobs"),
	}
}

func (r *analyticsRepo) ActiveResumeCount(ctx context.Context) (int64, error) {
	return r.resumes.CountDocuments(ctx, bson.M{"status": models.ResumeActive})
}

func (r *analyticsRepo) ActiveJobCount(ctx context.Context) (int64, error) {
	return r.jobs.CountDocuments(ctx, bson.M{"status": models.JobActive})
}

func (r *analyticsRepo) TotalApplications(ctx context.Context) (int64, error) {
	cur, err := r.resumes.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$unwind", Value: "$job_applications"}},
		{{Key: "$count", Value: "total"}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var out []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}

func (r *analyticsRepo) ApplicationsByStatus(ctx context.Context) ([]StatusCount, error) {
	cur, err := r.resumes.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$unwind", Value: "$job_applications"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$job_applications.status",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var counts []StatusCount
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *analyticsRepo) TopSkills(ctx context.Context, limit int64) ([]SkillCount, error) {
	cur, err := r.resumes.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.ResumeActive}}},
		{{Key: "$unwind", Value: "$skills"}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$skills",
			"count":          bson.M{"$sum": 1},
			"avg_experience": bson.M{"$avg": "$experience"},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: limit}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var skills []SkillCount
	if err := cur.All(ctx, &skills); err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *analyticsRepo) AverageMatchScore(ctx context.Context) (float64, error) {
	cur, err := r.resumes.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$unwind", Value: "$job_applications"}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"avg_score": bson.M{"$avg": "$job_applications.match_score"},
		}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var out []struct {
		AvgScore float64 `bson:"avg_score"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].AvgScore, nil
}

func (r *analyticsRepo) TopJobsByApplicants(ctx context.Context, limit int64) ([]models.Job, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "applicants_count", Value: -1}}).
		SetLimit(limit)

	cur, err := r.jobs.Find(ctx, bson.M{"status": models.JobActive}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var jobs []models.Job
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}
