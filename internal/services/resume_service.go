package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hirelens/hirelens/internal/extract"
	"github.com/hirelens/hirelens/internal/matching"
	"github.com/hirelens/hirelens/internal/models"
	"github.com/hirelens/hirelens/internal/providers/mlservice"
	mongorepo "github.com/hirelens/hirelens/internal/repositories/mongo"
	"github.com/hirelens/hirelens/internal/storage"
	"github.com/hirelens/hirelens/internal/utils"
)

// MaxResumeSize bounds uploaded files to 5 MB.
const MaxResumeSize = 5 << 20

type UploadResumeInput struct {
	CandidateName string
	Email         string
	Phone         string
	FileName      string
	FileType      string // pdf|docx|txt
	ContentType   string
	Data          []byte
	UploadedBy    string
	Tags          []string
}

type ResumeService interface {
	Upload(ctx context.Context, in UploadResumeInput) (*models.Resume, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Resume, error)
	List(ctx context.Context, f mongorepo.ResumeFilter) ([]models.Resume, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type resumeService struct {
	resumes mongorepo.ResumeRepository
	parser  mlservice.Parser
	store   storage.Store
	log     *logrus.Logger
}

func NewResumeService(
	resumes mongorepo.ResumeRepository,
	parser mlservice.Parser,
	store storage.Store,
	log *logrus.Logger,
) ResumeService {
	return &resumeService{
		resumes: resumes,
		parser:  parser,
		store:   store,
		log:     log,
	}
}

// Upload extracts the resume text, enriches it with parsed candidate data and
// persists both the file and the record. An unreachable parser degrades to the
// local skill bank; a file the extractor cannot read is a hard failure.
func (s *resumeService) Upload(ctx context.Context, in UploadResumeInput) (*models.Resume, error) {
	const op = "ResumeService.Upload"

	fileType := strings.ToLower(strings.TrimSpace(in.FileType))
	switch fileType {
	case "pdf", "docx", "txt":
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "unsupported file type, expected pdf, docx or txt", nil)
	}
	if len(in.Data) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file is empty", nil)
	}
	if len(in.Data) > MaxResumeSize {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file exceeds the 5MB limit", nil)
	}

	text, err := extract.Text(in.Data, fileType)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "failed to extract text from file", err)
	}

	resume := &models.Resume{
		CandidateName: strings.TrimSpace(in.CandidateName),
		Email:         strings.TrimSpace(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		FileName:      in.FileName,
		FileType:      fileType,
		ExtractedText: text,
		UploadedBy:    in.UploadedBy,
		Tags:          in.Tags,
		Status:        models.ResumeActive,
	}
	s.applyParsed(ctx, resume, text)

	objectName := fmt.Sprintf("resumes/%s.%s", uuid.NewString(), fileType)
	storedPath, err := s.store.Upload(ctx, objectName, in.ContentType, bytes.NewReader(in.Data))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to store file", err)
	}
	resume.FilePath = storedPath

	if err := s.resumes.Create(ctx, resume); err != nil {
		// Keep the store and the records consistent on a failed insert.
		if rmErr := s.store.Remove(ctx, storedPath); rmErr != nil {
			s.log.WithError(rmErr).WithField("path", storedPath).
				Warn("failed to remove orphaned file")
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to persist resume", err)
	}

	s.log.WithFields(logrus.Fields{
		"resume_id": resume.ID.Hex(),
		"file_type": fileType,
		"skills":    len(resume.Skills),
	}).Info("resume uploaded")

	return resume, nil
}

// applyParsed fills the structured fields from the external parser, falling
// back to the local skill bank when the parser is unavailable. Caller-supplied
// contact details win over parsed ones.
func (s *resumeService) applyParsed(ctx context.Context, resume *models.Resume, text string) {
	parsed, err := s.parser.ParseResume(ctx, text)
	if err != nil {
		s.log.WithError(err).Warn("resume parser unavailable, using local skill extraction")
		resume.Skills = matching.ExtractSkills(text)
		return
	}

	resume.Skills = parsed.Skills
	if len(resume.Skills) == 0 {
		resume.Skills = matching.ExtractSkills(text)
	}
	resume.Experience = parsed.Experience
	resume.Certifications = parsed.Certifications
	for _, edu := range parsed.Education {
		resume.Education = append(resume.Education, models.Education{
			Degree:      edu.Degree,
			Institution: edu.Institution,
			Year:        edu.Year,
		})
	}
	if resume.Email == "" {
		resume.Email = parsed.Email
	}
	if resume.Phone == "" {
		resume.Phone = parsed.Phone
	}
}

func (s *resumeService) Get(ctx context.Context, id primitive.ObjectID) (*models.Resume, error) {
	const op = "ResumeService.Get"

	resume, err := s.resumes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load resume", err)
	}
	return resume, nil
}

func (s *resumeService) List(ctx context.Context, f mongorepo.ResumeFilter) ([]models.Resume, int64, error) {
	const op = "ResumeService.List"

	resumes, total, err := s.resumes.List(ctx, f)
	if err != nil {
		return nil, 0, utils.E(utils.CodeInternal, op, "failed to list resumes", err)
	}
	return resumes, total, nil
}

// Delete removes the record first, then the stored file. A file that cannot be
// deleted is logged and left behind rather than resurrecting the record.
func (s *resumeService) Delete(ctx context.Context, id primitive.ObjectID) error {
	const op = "ResumeService.Delete"

	resume, err := s.resumes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to load resume", err)
	}

	if err := s.resumes.Delete(ctx, id); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete resume", err)
	}

	if resume.FilePath != "" {
		if err := s.store.Remove(ctx, resume.FilePath); err != nil {
			s.log.WithError(err).WithField("path", resume.FilePath).
				Warn("failed to remove resume file")
		}
	}

	s.log.WithField("resume_id", id.Hex()).Info("resume deleted")
	return nil
}
