package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hirelens/hirelens/internal/models"
	"github.com/hirelens/hirelens/internal/utils"
)

type ResumeFilter struct {
	Search        string
	Skills        []string
	MinExperience int
	MaxExperience int
	Status        string
	Page          int64
	Limit         int64
}

type ResumeRepository interface {
	Create(ctx context.Context, res *models.Resume) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Resume, error)
	List(ctx context.Context, f ResumeFilter) ([]models.Resume, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	FindByStatus(ctx context.Context, status models.ResumeStatus) ([]models.Resume, error)
	FindAppliedToJob(ctx context.Context, jobID primitive.ObjectID) ([]models.Resume, error)

	FindApplication(ctx context.Context, resumeID, jobID primitive.ObjectID) (*models.JobApplication, error)
	AppendApplication(ctx context.Context, resumeID primitive.ObjectID, app models.JobApplication) (created bool, err error)
	UpdateApplicationScore(ctx context.Context, resumeID, jobID primitive.ObjectID, score int) error
	CountApplicantsForJob(ctx context.Context, jobID primitive.ObjectID) (int64, error)
}

type resumeRepo struct {
	col *mongo.Collection
}

func NewResumeRepo(db *mongo.Database) ResumeRepository {
	return &resumeRepo{col: db.Collection("resumes")}
}

func (r *resumeRepo) Create(ctx context.Context, res *models.Resume) error {
	now := time.Now().UTC()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now
	if res.Status == "" {
		res.Status = models.ResumeActive
	}
	if res.JobApplications == nil {
		res.JobApplications = []models.JobApplication{}
	}

	out, err := r.col.InsertOne(ctx, res)
	if err != nil {
		return err
	}
	if oid, ok := out.InsertedID.(primitive.ObjectID); ok {
		res.ID = oid
	}
	return nil
}

func (r *resumeRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Resume, error) {
	var res models.Resume
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &res, err
}

func (r *resumeRepo) List(ctx context.Context, f ResumeFilter) ([]models.Resume, int64, error) {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	} else {
		query["status"] = models.ResumeActive
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: f.Search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"candidate_name": rx},
			bson.M{"email": rx},
			bson.M{"skills": rx},
		}
	}
	if len(f.Skills) > 0 {
		query["skills"] = bson.M{"$in": f.Skills}
	}
	if f.MinExperience > 0 || f.MaxExperience > 0 {
		exp := bson.M{}
		if f.MinExperience > 0 {
			exp["$gte"] = f.MinExperience
		}
		if f.MaxExperience > 0 {
			exp["$lte"] = f.MaxExperience
		}
		query["experience"] = exp
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((f.Page - 1) * f.Limit).
		SetLimit(f.Limit)

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var resumes []models.Resume
	if err := cur.All(ctx, &resumes); err != nil {
		return nil, 0, err
	}
	return resumes, total, nil
}

func (r *resumeRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// FindByStatus returns resumes sorted by creation time so batch runs walk the
// corpus in a deterministic order.
func (r *resumeRepo) FindByStatus(ctx context.Context, status models.ResumeStatus) ([]models.Resume, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var resumes []models.Resume
	if err := cur.All(ctx, &resumes); err != nil {
		return nil, err
	}
	return resumes, nil
}

func (r *resumeRepo) FindAppliedToJob(ctx context.Context, jobID primitive.ObjectID) ([]models.Resume, error) {
	cur, err := r.col.Find(ctx, bson.M{
		"job_applications.job_id": jobID,
		"status":                  models.ResumeActive,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var resumes []models.Resume
	if err := cur.All(ctx, &resumes); err != nil {
		return nil, err
	}
	return resumes, nil
}

func (r *resumeRepo) FindApplication(ctx context.Context, resumeID, jobID primitive.ObjectID) (*models.JobApplication, error) {
	var res models.Resume
	err := r.col.FindOne(ctx,
		bson.M{"_id": resumeID, "job_applications.job_id": jobID},
		options.FindOne().SetProjection(bson.M{"job_applications.$": 1}),
	).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(res.JobApplications) == 0 {
		return nil, utils.ErrNotFound
	}
	return &res.JobApplications[0], nil
}

// AppendApplication pushes the record only when no application for the same
// job is present, in one filtered update. The check-then-act race collapses
// into the store's atomicity: a concurrent duplicate simply reports
// created=false.
func (r *resumeRepo) AppendApplication(ctx context.Context, resumeID primitive.ObjectID, app models.JobApplication) (bool, error) {
	if app.AppliedDate.IsZero() {
		app.AppliedDate = time.Now().UTC()
	}
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"_id":                     resumeID,
			"job_applications.job_id": bson.M{"$ne": app.JobID},
		},
		bson.M{
			"$push": bson.M{"job_applications": app},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *resumeRepo) UpdateApplicationScore(ctx context.Context, resumeID, jobID primitive.ObjectID, score int) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": resumeID, "job_applications.job_id": jobID},
		bson.M{"$set": bson.M{
			"job_applications.$.match_score": score,
			"updated_at":                     time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// CountApplicantsForJob derives the applicant count from the persisted
// records, which is the source of truth for Job.ApplicantsCount.
func (r *resumeRepo) CountApplicantsForJob(ctx context.Context, jobID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"job_applications.job_id": jobID})
}
