package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase/autosave"
)

// TaskRefresher reconciles and stores a job's tasks against current
// authorizations.
type TaskRefresher interface {
	RefreshAuthorizedTasks(ctx context.Context, jobNumber string) ([]writeup.Task, error)
}

// SessionSync applies foreign changes to live autosave sessions.
type SessionSync struct {
	refresher TaskRefresher
	sessions  *autosave.Registry
	logger    *zap.Logger
}

func NewSessionSync(refresher TaskRefresher, sessions *autosave.Registry, logger *zap.Logger) *SessionSync {
	return &SessionSync{
		refresher: refresher,
		sessions:  sessions,
		logger:    logger,
	}
}

func (s *SessionSync) HandleChange(ctx context.Context, event ChangeEvent) error {
	switch event.Table {
	case TableJobWriteups:
		return s.applyDraft(event)
	case TableVHCAuthorizations, TablePartsRequests, TableJobs:
		return s.refreshTasks(ctx, event.JobNumber)
	default:
		return fmt.Errorf("unexpected table %q", event.Table)
	}
}

func (s *SessionSync) applyDraft(event ChangeEvent) error {
	session, ok := s.sessions.Get(event.JobNumber)
	if !ok || len(event.Snapshot) == 0 {
		return nil
	}
	ch, err := autosave.ParseChannel(event.Channel)
	if err != nil {
		return err
	}
	var remote autosave.Draft
	if err := json.Unmarshal(event.Snapshot, &remote); err != nil {
		return fmt.Errorf("decode %s snapshot: %w", ch, err)
	}

	applied := session.ApplyRemote(ch, remote)
	s.logger.Debug("remote draft change",
		zap.String("job_number", event.JobNumber),
		zap.String("channel", string(ch)),
		zap.Bool("applied", applied))
	return nil
}

func (s *SessionSync) refreshTasks(ctx context.Context, jobNumber string) error {
	tasks, err := s.refresher.RefreshAuthorizedTasks(ctx, jobNumber)
	if err != nil {
		return err
	}
	if session, ok := s.sessions.Get(jobNumber); ok {
		session.ApplyRemote(autosave.ChannelTasks, autosave.Draft{Tasks: tasks})
	}
	return nil
}
