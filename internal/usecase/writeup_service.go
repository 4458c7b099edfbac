package usecase

import (
	"context"
	"encoding/json"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/workshop-backend/internal/clock"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/dto"
	domainErrors "github.com/wekeepgrowing/workshop-backend/internal/domain/errors"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/model"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/repository"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase/autosave"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase/realtime"
	pkgerrors "github.com/wekeepgrowing/workshop-backend/pkg/errors"
)

const statusChangeReason = "write-up saved"

// ChangePublisher broadcasts row changes to other service instances
type ChangePublisher interface {
	Publish(ctx context.Context, event realtime.ChangeEvent) error
}

// StatusNotifier is told about every applied job status transition
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, job *model.Job, from, to model.JobStatus, changedBy string) error
}

// WriteupRepositories groups the stores the write-up service reads and writes
type WriteupRepositories struct {
	Jobs           repository.JobRepository
	Writeups       repository.WriteupRepository
	Authorizations repository.AuthorizationRepository
	Parts          repository.PartsRequestRepository
	Requests       repository.JobRequestRepository
}

// WriteupService handles the technician write-up of a job
type WriteupService struct {
	repos      WriteupRepositories
	reconciler *writeup.Reconciler
	publisher  ChangePublisher
	notifier   StatusNotifier
	clock      clock.Clock
	vatRate    decimal.Decimal
	newCauseID func() (string, error)
	logger     *zap.Logger
}

type WriteupServiceOption func(*WriteupService)

// WithReconciler replaces the task reconciler
func WithReconciler(r *writeup.Reconciler) WriteupServiceOption {
	return func(s *WriteupService) { s.reconciler = r }
}

// WithCauseIDGenerator replaces the nanoid cause id generator
func WithCauseIDGenerator(fn func() (string, error)) WriteupServiceOption {
	return func(s *WriteupService) { s.newCauseID = fn }
}

// NewWriteupService creates a new write-up service
func NewWriteupService(
	repos WriteupRepositories,
	publisher ChangePublisher,
	notifier StatusNotifier,
	clk clock.Clock,
	vatRate decimal.Decimal,
	logger *zap.Logger,
	opts ...WriteupServiceOption,
) *WriteupService {
	s := &WriteupService{
		repos:      repos,
		reconciler: writeup.NewReconciler(),
		publisher:  publisher,
		notifier:   notifier,
		clock:      clk,
		vatRate:    vatRate,
		newCauseID: func() (string, error) { return gonanoid.New() },
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// writeupState is the decoded stored write-up. record is never nil.
type writeupState struct {
	record  *model.JobWriteup
	tasks   []writeup.Task
	causes  []writeup.CauseEntry
	editors writeup.SectionEditors
}

func (s *WriteupService) loadJob(ctx context.Context, jobNumber string) (*model.Job, error) {
	job, err := s.repos.Jobs.FindByNumber(ctx, jobNumber)
	if err != nil {
		s.logger.Error("failed to load job",
			zap.String("job_number", jobNumber),
			zap.Error(err))
		return nil, pkgerrors.Internal("failed to load job", err)
	}
	if job == nil {
		return nil, domainErrors.JobNotFound(jobNumber)
	}
	return job, nil
}

func (s *WriteupService) loadState(ctx context.Context, job *model.Job) (*writeupState, error) {
	record, err := s.repos.Writeups.FindByJobID(ctx, job.ID)
	if err != nil {
		s.logger.Error("failed to load write-up",
			zap.String("job_number", job.JobNumber),
			zap.Error(err))
		return nil, pkgerrors.Internal("failed to load write-up", err)
	}
	if record == nil {
		record = &model.JobWriteup{JobID: job.ID, JobNumber: job.JobNumber}
	}

	state := &writeupState{record: record}
	if state.tasks, err = record.Tasks(); err != nil {
		return nil, pkgerrors.Internal("stored task checklist is corrupt", err)
	}
	if state.causes, err = record.Causes(); err != nil {
		return nil, pkgerrors.Internal("stored cause entries are corrupt", err)
	}
	if state.editors, err = record.Editors(); err != nil {
		return nil, pkgerrors.Internal("stored section editors are corrupt", err)
	}
	return state, nil
}

func (s *WriteupService) authorizedItems(ctx context.Context, job *model.Job) ([]writeup.AuthorizedItem, error) {
	items, err := s.repos.Authorizations.ListAuthorized(ctx, job)
	if err != nil {
		s.logger.Error("failed to load authorized items",
			zap.String("job_number", job.JobNumber),
			zap.Error(err))
		if domainErrors.IsAuthorizationSourceError(err) {
			return nil, domainErrors.FromAuthorizationSource(err)
		}
		return nil, pkgerrors.Internal("failed to load authorizations", err)
	}
	return items, nil
}

// withRequestTasks adds a request task for each customer request on the job
// that the checklist does not carry yet.
func (s *WriteupService) withRequestTasks(ctx context.Context, job *model.Job, tasks []writeup.Task) ([]writeup.Task, error) {
	rows, err := s.repos.Requests.ListByJob(ctx, job.ID)
	if err != nil {
		s.logger.Error("failed to load job requests",
			zap.String("job_number", job.JobNumber),
			zap.Error(err))
		return nil, pkgerrors.Internal("failed to load job requests", err)
	}
	return s.reconciler.ForJob(job.JobNumber).EnsureRequestTasks(tasks, model.JobRequestsForChecklist(rows)), nil
}

// reconcile seeds request tasks and then reconciles the VHC tasks against
// items.
func (s *WriteupService) reconcile(
	ctx context.Context,
	job *model.Job,
	tasks []writeup.Task,
	items []writeup.AuthorizedItem,
) ([]writeup.Task, error) {
	tasks, err := s.withRequestTasks(ctx, job, tasks)
	if err != nil {
		return nil, err
	}
	return s.reconciler.ForJob(job.JobNumber).EnsureAuthorizedTasks(tasks, items), nil
}

func (s *WriteupService) buildView(job *model.Job, state *writeupState, tasks []writeup.Task, items []writeup.AuthorizedItem) *dto.WriteupView {
	causes := state.causes
	if causes == nil {
		causes = []writeup.CauseEntry{}
	}
	if tasks == nil {
		tasks = []writeup.Task{}
	}
	return &dto.WriteupView{
		JobNumber:        job.JobNumber,
		JobStatus:        string(job.Status),
		Fault:            state.record.Fault,
		Cause:            state.record.Cause,
		Rectification:    state.record.Rectification,
		Tasks:            tasks,
		Causes:           causes,
		SectionEditors:   state.editors,
		Extras:           state.record.Extras(),
		CompletionStatus: writeup.DeriveCompletionStatus(tasks),
		Pricing:          writeup.PriceAuthorizedItems(items, s.vatRate),
		UpdatedBy:        state.record.UpdatedBy,
	}
}

// GetWriteup returns the write-up with tasks reconciled against the current
// authorizations. Nothing is persisted.
func (s *WriteupService) GetWriteup(ctx context.Context, jobNumber string) (*dto.WriteupView, error) {
	job, err := s.loadJob(ctx, jobNumber)
	if err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, job)
	if err != nil {
		return nil, err
	}
	items, err := s.authorizedItems(ctx, job)
	if err != nil {
		return nil, err
	}

	tasks, err := s.reconcile(ctx, job, state.tasks, items)
	if err != nil {
		return nil, err
	}
	return s.buildView(job, state, tasks, items), nil
}

// LoadDraft is the starting point of an autosave session.
func (s *WriteupService) LoadDraft(ctx context.Context, jobNumber string) (autosave.Draft, error) {
	view, err := s.GetWriteup(ctx, jobNumber)
	if err != nil {
		return autosave.Draft{}, err
	}
	return autosave.Draft{
		Fields: writeup.SectionText{
			Fault:         view.Fault,
			Cause:         view.Cause,
			Rectification: view.Rectification,
		},
		Tasks:  view.Tasks,
		Extras: view.Extras,
	}, nil
}

// SaveWriteup stores the whole form and applies the job status the saved
// tasks call for.
func (s *WriteupService) SaveWriteup(
	ctx context.Context,
	jobNumber string,
	editor string,
	req dto.SaveWriteupRequest,
) (*dto.SaveWriteupResponse, error) {
	job, err := s.loadJob(ctx, jobNumber)
	if err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, job)
	if err != nil {
		return nil, err
	}
	items, err := s.authorizedItems(ctx, job)
	if err != nil {
		return nil, err
	}

	tasks, err := s.reconcile(ctx, job, dto.ToTasks(req.Tasks), items)
	if err != nil {
		return nil, err
	}

	causes, err := s.buildCauses(job, state.causes, req.Causes, editor)
	if err != nil {
		return nil, err
	}
	if err := writeup.ValidateCauses(causes, tasks); err != nil {
		return nil, domainErrors.FromWriteup(err)
	}

	sections := writeup.SectionText{
		Fault:         req.Fault,
		Cause:         req.Cause,
		Rectification: req.Rectification,
	}
	editors := state.editors.Clone()
	for _, section := range writeup.ChangedSections(state.record.Sections(), sections) {
		_ = editors.Record(section, editor)
	}

	record := &model.JobWriteup{
		JobID:               job.ID,
		JobNumber:           job.JobNumber,
		Fault:               sections.Fault,
		Cause:               sections.Cause,
		Rectification:       sections.Rectification,
		CompletionStatus:    string(writeup.DeriveCompletionStatus(tasks)),
		WarrantyClaimNumber: req.Extras.WarrantyClaimNumber,
		OdometerReading:     req.Extras.OdometerReading,
		AdditionalNotes:     req.Extras.AdditionalNotes,
		UpdatedBy:           editor,
	}
	if err := record.SetTasks(tasks); err != nil {
		return nil, pkgerrors.Internal("failed to encode tasks", err)
	}
	if err := record.SetCauses(causes); err != nil {
		return nil, pkgerrors.Internal("failed to encode cause entries", err)
	}
	if err := record.SetEditors(editors); err != nil {
		return nil, pkgerrors.Internal("failed to encode section editors", err)
	}

	if err := s.repos.Writeups.Upsert(ctx, record); err != nil {
		return nil, pkgerrors.Internal("failed to save write-up", err)
	}

	s.logger.Info("write-up saved",
		zap.String("job_number", job.JobNumber),
		zap.String("editor", editor),
		zap.Int("tasks", len(tasks)),
		zap.String("completion_status", record.CompletionStatus))

	transition, err := s.applyJobStatus(ctx, job, tasks, editor)
	if err != nil {
		return nil, err
	}

	saved := autosave.Draft{Fields: sections, Tasks: tasks, Extras: record.Extras()}
	for _, ch := range autosave.Channels {
		s.publishDraft(ctx, job, ch, saved)
	}

	view := s.buildView(job, &writeupState{record: record, tasks: tasks, causes: causes, editors: editors}, tasks, items)
	return &dto.SaveWriteupResponse{Writeup: view, Transition: transition}, nil
}

func (s *WriteupService) buildCauses(job *model.Job, existing []writeup.CauseEntry, inputs []dto.CauseInput, editor string) ([]writeup.CauseEntry, error) {
	byID := make(map[string]writeup.CauseEntry, len(existing))
	for _, e := range existing {
		byID[e.ID] = e
	}

	now := s.clock.Now().UTC()
	out := make([]writeup.CauseEntry, 0, len(inputs))
	for _, in := range inputs {
		entry := writeup.CauseEntry{
			ID:         in.ID,
			RequestKey: in.RequestKey,
			Text:       strings.TrimSpace(in.Text),
			JobNumber:  job.JobNumber,
			CreatedBy:  in.CreatedBy,
			UpdatedAt:  now,
		}
		if prev, ok := byID[in.ID]; ok && in.ID != "" {
			entry.CreatedBy = prev.CreatedBy
			if prev.Text == entry.Text && prev.RequestKey == entry.RequestKey {
				entry.UpdatedAt = prev.UpdatedAt
			}
		} else {
			if entry.ID == "" {
				id, err := s.newCauseID()
				if err != nil {
					return nil, pkgerrors.Internal("failed to generate cause id", err)
				}
				entry.ID = id
			}
			if entry.CreatedBy == "" {
				entry.CreatedBy = editor
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// applyJobStatus moves the job to the status the tasks call for. A
// concurrent status change wins over the derived one.
func (s *WriteupService) applyJobStatus(ctx context.Context, job *model.Job, tasks []writeup.Task, editor string) (*dto.StatusTransition, error) {
	parts, err := s.repos.Parts.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, pkgerrors.Internal("failed to load parts requests", err)
	}

	next, ok := writeup.DetermineJobStatusFromTasks(tasks, model.PartsRequestsForStatus(parts))
	if !ok || model.JobStatus(next) == job.Status {
		return nil, nil
	}

	from, to := job.Status, model.JobStatus(next)
	if _, err := s.repos.Jobs.TransitionStatus(ctx, job.ID, from, to, editor, statusChangeReason); err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.ErrConflict {
			s.logger.Warn("job status changed concurrently, keeping it",
				zap.String("job_number", job.JobNumber),
				zap.String("derived_status", string(to)))
			return nil, nil
		}
		return nil, pkgerrors.Internal("failed to update job status", err)
	}
	job.Status = to

	if s.notifier != nil {
		if err := s.notifier.NotifyStatusChange(ctx, job, from, to, editor); err != nil {
			s.logger.Warn("failed to send status notification",
				zap.String("job_number", job.JobNumber),
				zap.Error(err))
		}
	}
	s.publish(ctx, realtime.ChangeEvent{
		Table:     realtime.TableJobs,
		JobID:     job.ID,
		JobNumber: job.JobNumber,
	})

	return &dto.StatusTransition{From: string(from), To: string(to)}, nil
}

// SavePartial stores one autosave channel.
func (s *WriteupService) SavePartial(ctx context.Context, jobNumber string, snap autosave.Snapshot) error {
	job, err := s.loadJob(ctx, jobNumber)
	if err != nil {
		return err
	}

	columns := map[string]interface{}{}
	if snap.Editor != "" {
		columns[model.ColumnUpdatedBy] = snap.Editor
	}
	published := snap.Draft.Clone()

	switch snap.Channel {
	case autosave.ChannelFields:
		state, err := s.loadState(ctx, job)
		if err != nil {
			return err
		}
		editors := state.editors.Clone()
		for _, section := range writeup.ChangedSections(state.record.Sections(), snap.Draft.Fields) {
			_ = editors.Record(section, snap.Editor)
		}
		raw, err := model.EncodeEditors(editors)
		if err != nil {
			return pkgerrors.Internal("failed to encode section editors", err)
		}
		columns[model.ColumnFault] = snap.Draft.Fields.Fault
		columns[model.ColumnCause] = snap.Draft.Fields.Cause
		columns[model.ColumnRectification] = snap.Draft.Fields.Rectification
		columns[model.ColumnSectionEditors] = raw

	case autosave.ChannelTasks:
		items, err := s.authorizedItems(ctx, job)
		if err != nil {
			return err
		}
		tasks, err := s.reconcile(ctx, job, snap.Draft.Tasks, items)
		if err != nil {
			return err
		}
		raw, err := writeup.EncodeTaskChecklist(tasks)
		if err != nil {
			return pkgerrors.Internal("failed to encode tasks", err)
		}
		columns[model.ColumnTaskChecklist] = raw
		columns[model.ColumnCompletionStatus] = string(writeup.DeriveCompletionStatus(tasks))
		published.Tasks = tasks

	case autosave.ChannelExtras:
		columns[model.ColumnWarrantyClaimNumber] = snap.Draft.Extras.WarrantyClaimNumber
		columns[model.ColumnOdometerReading] = snap.Draft.Extras.OdometerReading
		columns[model.ColumnAdditionalNotes] = snap.Draft.Extras.AdditionalNotes

	default:
		return domainErrors.UnknownDraftChannel(string(snap.Channel))
	}

	if err := s.repos.Writeups.UpdateColumns(ctx, job.ID, job.JobNumber, columns); err != nil {
		return pkgerrors.Internal("failed to save draft", err)
	}
	s.publishDraft(ctx, job, snap.Channel, published)
	return nil
}

// RefreshAuthorizedTasks reconciles the stored tasks against the current
// authorizations and stores them when they changed.
func (s *WriteupService) RefreshAuthorizedTasks(ctx context.Context, jobNumber string) ([]writeup.Task, error) {
	job, err := s.loadJob(ctx, jobNumber)
	if err != nil {
		return nil, err
	}
	return s.refreshJob(ctx, job)
}

func (s *WriteupService) refreshJob(ctx context.Context, job *model.Job) ([]writeup.Task, error) {
	state, err := s.loadState(ctx, job)
	if err != nil {
		return nil, err
	}
	items, err := s.authorizedItems(ctx, job)
	if err != nil {
		return nil, err
	}

	tasks, err := s.reconcile(ctx, job, state.tasks, items)
	if err != nil {
		return nil, err
	}
	if writeup.TaskSignature(tasks) == writeup.TaskSignature(state.tasks) {
		return tasks, nil
	}

	raw, err := writeup.EncodeTaskChecklist(tasks)
	if err != nil {
		return nil, pkgerrors.Internal("failed to encode tasks", err)
	}
	if err := s.repos.Writeups.UpdateColumns(ctx, job.ID, job.JobNumber, map[string]interface{}{
		model.ColumnTaskChecklist:    raw,
		model.ColumnCompletionStatus: string(writeup.DeriveCompletionStatus(tasks)),
	}); err != nil {
		return nil, pkgerrors.Internal("failed to store refreshed tasks", err)
	}

	s.logger.Info("authorized tasks refreshed",
		zap.String("job_number", job.JobNumber),
		zap.Int("before", len(state.tasks)),
		zap.Int("after", len(tasks)))
	s.publishDraft(ctx, job, autosave.ChannelTasks, autosave.Draft{Tasks: tasks})
	return tasks, nil
}

// RefreshOpenJobs refreshes every open job and returns how many were
// processed. A failing job is logged and skipped.
func (s *WriteupService) RefreshOpenJobs(ctx context.Context) (int, error) {
	jobs, err := s.repos.Jobs.ListOpen(ctx)
	if err != nil {
		return 0, pkgerrors.Internal("failed to list open jobs", err)
	}

	done := 0
	for i := range jobs {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if _, err := s.refreshJob(ctx, &jobs[i]); err != nil {
			pkgerrors.LogError(s.logger, err, "failed to refresh job",
				zap.String("job_number", jobs[i].JobNumber))
			continue
		}
		done++
	}
	return done, nil
}

// Status summarizes completion and the job status a save would apply.
func (s *WriteupService) Status(ctx context.Context, jobNumber string) (*dto.StatusView, error) {
	job, err := s.loadJob(ctx, jobNumber)
	if err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, job)
	if err != nil {
		return nil, err
	}
	items, err := s.authorizedItems(ctx, job)
	if err != nil {
		return nil, err
	}
	parts, err := s.repos.Parts.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, pkgerrors.Internal("failed to load parts requests", err)
	}

	tasks, err := s.reconcile(ctx, job, state.tasks, items)
	if err != nil {
		return nil, err
	}
	view := &dto.StatusView{
		JobNumber:        job.JobNumber,
		CompletionStatus: writeup.DeriveCompletionStatus(tasks),
		JobStatus:        string(job.Status),
	}
	if next, ok := writeup.DetermineJobStatusFromTasks(tasks, model.PartsRequestsForStatus(parts)); ok && model.JobStatus(next) != job.Status {
		view.SuggestedStatus = string(next)
	}
	return view, nil
}

// AddCause appends a cause entry for a request task.
func (s *WriteupService) AddCause(ctx context.Context, jobNumber, editor string, req dto.AddCauseRequest) (*writeup.CauseEntry, error) {
	job, err := s.loadJob(ctx, jobNumber)
	if err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, job)
	if err != nil {
		return nil, err
	}

	id, err := s.newCauseID()
	if err != nil {
		return nil, pkgerrors.Internal("failed to generate cause id", err)
	}
	tasks, err := s.withRequestTasks(ctx, job, state.tasks)
	if err != nil {
		return nil, err
	}
	entries, err := writeup.AddCause(state.causes, tasks, writeup.CauseEntry{
		ID:         id,
		RequestKey: req.RequestKey,
		Text:       req.Text,
		JobNumber:  job.JobNumber,
		CreatedBy:  editor,
		UpdatedAt:  s.clock.Now().UTC(),
	})
	if err != nil {
		return nil, domainErrors.FromWriteup(err)
	}

	if err := s.saveCauses(ctx, job, state, entries, editor); err != nil {
		return nil, err
	}
	added := entries[len(entries)-1]
	return &added, nil
}

// UpdateCause replaces the text of a cause entry.
func (s *WriteupService) UpdateCause(ctx context.Context, jobNumber, editor, causeID string, req dto.UpdateCauseRequest) (*writeup.CauseEntry, error) {
	job, err := s.loadJob(ctx, jobNumber)
	if err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, job)
	if err != nil {
		return nil, err
	}

	entries, err := writeup.UpdateCause(state.causes, causeID, req.Text, s.clock.Now().UTC())
	if err != nil {
		return nil, domainErrors.FromWriteup(err)
	}
	if err := s.saveCauses(ctx, job, state, entries, editor); err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == causeID {
			return &entries[i], nil
		}
	}
	return nil, pkgerrors.Internal("updated cause entry missing", nil)
}

func (s *WriteupService) DeleteCause(ctx context.Context, jobNumber, editor, causeID string) error {
	job, err := s.loadJob(ctx, jobNumber)
	if err != nil {
		return err
	}
	state, err := s.loadState(ctx, job)
	if err != nil {
		return err
	}

	entries, err := writeup.RemoveCause(state.causes, causeID)
	if err != nil {
		return domainErrors.FromWriteup(err)
	}
	return s.saveCauses(ctx, job, state, entries, editor)
}

// saveCauses stores the entries and credits the editor on the cause section.
func (s *WriteupService) saveCauses(ctx context.Context, job *model.Job, state *writeupState, entries []writeup.CauseEntry, editor string) error {
	raw, err := writeup.EncodeCauseEntries(entries)
	if err != nil {
		return pkgerrors.Internal("failed to encode cause entries", err)
	}
	editors := state.editors.Clone()
	_ = editors.Record(writeup.SectionCause, editor)
	editorsRaw, err := model.EncodeEditors(editors)
	if err != nil {
		return pkgerrors.Internal("failed to encode section editors", err)
	}

	columns := map[string]interface{}{
		model.ColumnCauseEntries:   raw,
		model.ColumnSectionEditors: editorsRaw,
	}
	if editor != "" {
		columns[model.ColumnUpdatedBy] = editor
	}
	if err := s.repos.Writeups.UpdateColumns(ctx, job.ID, job.JobNumber, columns); err != nil {
		return pkgerrors.Internal("failed to save cause entries", err)
	}

	s.publish(ctx, realtime.ChangeEvent{
		Table:     realtime.TableJobWriteups,
		JobID:     job.ID,
		JobNumber: job.JobNumber,
	})
	return nil
}

func (s *WriteupService) publishDraft(ctx context.Context, job *model.Job, ch autosave.Channel, draft autosave.Draft) {
	raw, err := json.Marshal(draft)
	if err != nil {
		s.logger.Warn("failed to encode draft snapshot", zap.Error(err))
		return
	}
	s.publish(ctx, realtime.ChangeEvent{
		Table:     realtime.TableJobWriteups,
		JobID:     job.ID,
		JobNumber: job.JobNumber,
		Channel:   string(ch),
		Snapshot:  raw,
	})
}

func (s *WriteupService) publish(ctx context.Context, event realtime.ChangeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish change",
			zap.String("table", event.Table),
			zap.String("job_number", event.JobNumber),
			zap.Error(err))
	}
}
