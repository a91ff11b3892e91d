package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type timetableRepository interface {
	Upsert(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	FindBySemesterBatch(ctx context.Context, semester, batch string) (*models.Timetable, error)
	ListBySemester(ctx context.Context, semester string) ([]models.TimetableSummary, error)
}

type facultyHandlingReader interface {
	ListByCourseCodes(ctx context.Context, codes []string) ([]models.FacultyCourseHandling, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type timetableCache interface {
	Remember(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func(context.Context) error) error
	Invalidate(ctx context.Context, pattern string) error
}

// TimetableConfig governs timetable generation.
type TimetableConfig struct {
	Enabled     bool
	Phases      []scheduler.Phase
	CacheTTL    time.Duration
	ProposalTTL time.Duration
	// StrictAudit refuses to store a timetable with invariant violations.
	StrictAudit bool
}

// TimetableService generates, previews and serves weekly batch timetables.
type TimetableService struct {
	timetables timetableRepository
	faculty    facultyHandlingReader
	tx         txProvider
	cache      timetableCache
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	config     TimetableConfig
	store      *proposalStore
	now        func() time.Time
}

// NewTimetableService wires timetable dependencies.
func NewTimetableService(
	timetables timetableRepository,
	faculty facultyHandlingReader,
	tx txProvider,
	cache timetableCache,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &TimetableService{
		timetables: timetables,
		faculty:    faculty,
		tx:         tx,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		config:     cfg,
		store:      newProposalStore(cfg.ProposalTTL),
		now:        time.Now,
	}
}

// Generate runs the scheduler and stores one timetable per batch, replacing
// whatever was stored for the same semester and batch.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest, actor string) (*dto.GenerateTimetableResponse, error) {
	run, err := s.run(ctx, "generate", req)
	if err != nil {
		return nil, err
	}
	if s.config.StrictAudit && len(run.Violations) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrInvariantViolation, run.Violations)
	}
	run.RequestedBy = actor
	if err := s.persist(ctx, run); err != nil {
		return nil, err
	}
	return s.response(run, false), nil
}

// Preview runs the scheduler without storing anything. The result is kept
// for ProposalTTL so it can be committed unchanged.
func (s *TimetableService) Preview(ctx context.Context, req dto.GenerateTimetableRequest, actor string) (*dto.GenerateTimetableResponse, error) {
	run, err := s.run(ctx, "preview", req)
	if err != nil {
		return nil, err
	}
	run.ID = uuid.NewString()
	run.RequestedBy = actor
	s.store.Save(run)
	return s.response(run, true), nil
}

// Commit stores a previewed timetable.
func (s *TimetableService) Commit(ctx context.Context, req dto.CommitProposalRequest, actor string) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid commit payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if s.config.StrictAudit && len(proposal.Violations) > 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrConflict, "proposal violates scheduling invariants"), proposal.Violations)
	}
	if actor != "" {
		proposal.RequestedBy = actor
	}
	if err := s.persist(ctx, proposal); err != nil {
		return nil, err
	}
	s.store.Delete(proposal.ID)
	return s.response(proposal, false), nil
}

// Get returns the stored timetable of one batch.
func (s *TimetableService) Get(ctx context.Context, semester, batch string) (*dto.TimetableResponse, error) {
	if semester == "" || batch == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester and batch are required")
	}
	var resp dto.TimetableResponse
	load := func(ctx context.Context) error {
		loaded, err := s.loadTimetable(ctx, semester, batch)
		if err != nil {
			return err
		}
		resp = *loaded
		return nil
	}
	var err error
	if s.cache != nil {
		err = s.cache.Remember(ctx, timetableCacheKey(semester, batch), &resp, s.config.CacheTTL, load)
	} else {
		err = load(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *TimetableService) loadTimetable(ctx context.Context, semester, batch string) (*dto.TimetableResponse, error) {
	record, err := s.timetables.FindBySemesterBatch(ctx, semester, batch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	stored, err := decodeTimetable(record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode timetable")
	}

	return &dto.TimetableResponse{
		ID:          record.ID,
		RunID:       record.RunID,
		Semester:    record.Semester,
		Batch:       record.Batch,
		StudentType: record.StudentType,
		Grid:        weeklyGrid(stored.Grid),
		Unscheduled: unscheduledItems(stored.Unscheduled),
		Stats:       stored.Stats,
		UpdatedAt:   record.UpdatedAt,
	}, nil
}

// List returns summaries of every stored batch for the semester.
func (s *TimetableService) List(ctx context.Context, semester string) ([]models.TimetableSummary, error) {
	if semester == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester is required")
	}
	summaries, err := s.timetables.ListBySemester(ctx, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	if summaries == nil {
		summaries = []models.TimetableSummary{}
	}
	return summaries, nil
}

// Hours resolves the weekly session demand for a credit/category pair.
func (s *TimetableService) Hours(credits int, category string) dto.HoursResponse {
	return dto.HoursResponse{
		Credits:  credits,
		Category: category,
		Hours:    scheduler.ResolveHours(credits, courseCategory(category)),
	}
}

func (s *TimetableService) run(ctx context.Context, mode string, req dto.GenerateTimetableRequest) (timetableProposal, error) {
	if !s.config.Enabled {
		return timetableProposal{}, appErrors.Clone(appErrors.ErrFeatureDisabled, "timetable generation is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return timetableProposal{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}

	phases := s.config.Phases
	if len(req.Phases) > 0 {
		parsed, err := scheduler.ParsePhases(req.Phases)
		if err != nil {
			return timetableProposal{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduler phases")
		}
		phases = parsed
	}

	input, err := s.buildInput(ctx, req)
	if err != nil {
		s.metrics.RecordSchedulerFailure(mode)
		return timetableProposal{}, err
	}

	engine := scheduler.New(scheduler.Options{Phases: phases})
	start := time.Now()
	result := engine.Run(input)
	elapsed := time.Since(start)
	violations := scheduler.Audit(result)
	s.metrics.ObserveSchedulerRun(mode, result, violations, elapsed)

	runID := uuid.NewString()
	s.logger.Info("timetable run finished",
		zap.String("mode", mode),
		zap.String("run_id", runID),
		zap.String("semester", req.Semester),
		zap.Strings("batches", result.Batches),
		zap.Int("courses", len(req.Courses)),
		zap.Int("first_hour_placed", result.Stats.FirstHourPlaced),
		zap.Int("lab_blocks_placed", result.Stats.LabBlocksPlaced),
		zap.Int("theory_placed", result.Stats.TheoryPlaced),
		zap.Int("unscheduled", len(result.Unscheduled)),
		zap.Int("forced_clears", result.Stats.ForcedClears),
		zap.Int("balancer_moves", result.Stats.BalancerMoves),
		zap.Int("violations", len(violations)),
		zap.Duration("duration", elapsed),
	)
	for _, v := range violations {
		s.logger.Warn("timetable invariant violated",
			zap.String("run_id", runID),
			zap.String("kind", v.Kind),
			zap.String("batch", v.Batch),
			zap.String("faculty", v.Faculty),
			zap.String("course_code", v.CourseCode),
		)
	}

	return timetableProposal{
		RunID:       runID,
		Request:     req,
		Phases:      engine.Phases(),
		Result:      result,
		Violations:  violations,
		RequestedAt: s.now(),
	}, nil
}

func (s *TimetableService) buildInput(ctx context.Context, req dto.GenerateTimetableRequest) (scheduler.Input, error) {
	courses := make([]scheduler.Course, 0, len(req.Courses))
	codes := make([]string, 0, len(req.Courses))
	seen := make(map[string]bool, len(req.Courses))
	for _, c := range req.Courses {
		courses = append(courses, scheduler.Course{
			Code:     c.Code,
			Credits:  c.Credits,
			Category: courseCategory(c.Category),
			Batch:    c.Batch,
			Semester: c.Semester,
		})
		if !seen[c.Code] {
			seen[c.Code] = true
			codes = append(codes, c.Code)
		}
	}

	var links []scheduler.FacultyLink
	if len(req.Faculty) > 0 {
		links = make([]scheduler.FacultyLink, 0, len(req.Faculty))
		for _, f := range req.Faculty {
			links = append(links, scheduler.FacultyLink{
				Faculty:    f.FacultyName,
				CourseCode: f.CourseCode,
				Role:       f.Role,
				Batch:      f.Batch,
			})
		}
	} else if s.faculty != nil {
		rows, err := s.faculty.ListByCourseCodes(ctx, codes)
		if err != nil {
			return scheduler.Input{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty assignments")
		}
		links = make([]scheduler.FacultyLink, 0, len(rows))
		for _, row := range rows {
			link := scheduler.FacultyLink{Faculty: row.FacultyName, CourseCode: row.CourseCode, Role: row.Role}
			if row.Batch != nil {
				link.Batch = *row.Batch
			}
			links = append(links, link)
		}
	}

	return scheduler.Input{
		Semester:    req.Semester,
		StudentType: req.StudentType,
		Batches:     req.Batches,
		Courses:     courses,
		Links:       links,
	}, nil
}

// courseCategory accepts spelling variants. Unknown names pass through and
// resolve to zero demand.
func courseCategory(raw string) scheduler.Category {
	if category, ok := scheduler.ParseCategory(raw); ok {
		return category
	}
	return scheduler.Category(raw)
}

func (s *TimetableService) persist(ctx context.Context, run timetableProposal) (err error) {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	records, err := timetableRecords(run)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, record := range records {
		if err = s.timetables.Upsert(ctx, tx, record); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to store timetable for batch %s", record.Batch))
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetables")
		return err
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, timetableCacheKey(run.Request.Semester, "*"))
	}
	s.logger.Info("timetables stored",
		zap.String("run_id", run.RunID),
		zap.String("semester", run.Request.Semester),
		zap.Int("batches", len(records)),
	)
	return nil
}

func timetableRecords(run timetableProposal) ([]*models.Timetable, error) {
	stats, err := json.Marshal(run.Result.Stats)
	if err != nil {
		return nil, err
	}
	var generatedBy *string
	if run.RequestedBy != "" {
		actor := run.RequestedBy
		generatedBy = &actor
	}

	records := make([]*models.Timetable, 0, len(run.Result.Batches))
	for _, batch := range run.Result.Batches {
		grid, err := json.Marshal(run.Result.Grids[batch])
		if err != nil {
			return nil, err
		}
		unscheduled, err := json.Marshal(unscheduledForBatch(run.Result.Unscheduled, batch))
		if err != nil {
			return nil, err
		}
		records = append(records, &models.Timetable{
			RunID:       run.RunID,
			Semester:    run.Request.Semester,
			Batch:       batch,
			StudentType: run.Request.StudentType,
			Grid:        types.JSONText(grid),
			Unscheduled: types.JSONText(unscheduled),
			Stats:       types.JSONText(stats),
			GeneratedBy: generatedBy,
		})
	}
	return records, nil
}

type storedTimetable struct {
	Grid        *scheduler.Grid
	Unscheduled []scheduler.UnscheduledEntry
	Stats       scheduler.Stats
}

func decodeTimetable(record *models.Timetable) (*storedTimetable, error) {
	out := &storedTimetable{Grid: &scheduler.Grid{}}
	if err := record.Grid.Unmarshal(out.Grid); err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}
	if len(record.Unscheduled) > 0 {
		if err := record.Unscheduled.Unmarshal(&out.Unscheduled); err != nil {
			return nil, fmt.Errorf("decode unscheduled: %w", err)
		}
	}
	if len(record.Stats) > 0 {
		if err := record.Stats.Unmarshal(&out.Stats); err != nil {
			return nil, fmt.Errorf("decode stats: %w", err)
		}
	}
	return out, nil
}

func (s *TimetableService) response(run timetableProposal, preview bool) *dto.GenerateTimetableResponse {
	grids := make(map[string]dto.WeeklyGrid, len(run.Result.Batches))
	for _, batch := range run.Result.Batches {
		grids[batch] = weeklyGrid(run.Result.Grids[batch])
	}
	resp := &dto.GenerateTimetableResponse{
		RunID:       run.RunID,
		Semester:    run.Request.Semester,
		Phases:      phaseNames(run.Phases),
		Timetable:   grids,
		Unscheduled: unscheduledItems(run.Result.Unscheduled),
		Stats:       run.Result.Stats,
		Warnings:    run.Violations,
	}
	if preview {
		expires := s.store.expiresAt(run)
		resp.ProposalID = run.ID
		resp.ExpiresAt = &expires
	}
	return resp
}

func timetableCacheKey(semester, batch string) string {
	return fmt.Sprintf("timetable:%s:%s", semester, batch)
}
