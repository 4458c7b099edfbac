package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/dto"
	domainErrors "github.com/wekeepgrowing/workshop-backend/internal/domain/errors"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
	"github.com/wekeepgrowing/workshop-backend/internal/middleware/auth"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase/autosave"
	pkgerrors "github.com/wekeepgrowing/workshop-backend/pkg/errors"
)

// WriteupUsecase is the write-up service as seen by the HTTP layer
type WriteupUsecase interface {
	GetWriteup(ctx context.Context, jobNumber string) (*dto.WriteupView, error)
	SaveWriteup(ctx context.Context, jobNumber, editor string, req dto.SaveWriteupRequest) (*dto.SaveWriteupResponse, error)
	RefreshAuthorizedTasks(ctx context.Context, jobNumber string) ([]writeup.Task, error)
	Status(ctx context.Context, jobNumber string) (*dto.StatusView, error)
	AddCause(ctx context.Context, jobNumber, editor string, req dto.AddCauseRequest) (*writeup.CauseEntry, error)
	UpdateCause(ctx context.Context, jobNumber, editor, causeID string, req dto.UpdateCauseRequest) (*writeup.CauseEntry, error)
	DeleteCause(ctx context.Context, jobNumber, editor, causeID string) error
}

// DraftSessions holds the live autosave sessions
type DraftSessions interface {
	Open(ctx context.Context, jobNumber string) (*autosave.Session, error)
	Get(jobNumber string) (*autosave.Session, bool)
	Discard(jobNumber string) bool
}

// WriteupHandler handles write-up HTTP requests
type WriteupHandler struct {
	logger   *zap.Logger
	writeups WriteupUsecase
	drafts   DraftSessions
}

// NewWriteupHandler creates a new write-up handler instance
func NewWriteupHandler(
	logger *zap.Logger,
	writeups WriteupUsecase,
	drafts DraftSessions,
) *WriteupHandler {
	return &WriteupHandler{
		logger:   logger,
		writeups: writeups,
		drafts:   drafts,
	}
}

// Register mounts the write-up routes on g
func (h *WriteupHandler) Register(g *echo.Group) {
	w := g.Group("/jobs/:jobNumber/writeup")
	w.GET("", h.GetWriteup)
	w.PUT("", h.SaveWriteup)
	w.POST("/reconcile", h.Reconcile)
	w.GET("/status", h.GetStatus)

	w.PATCH("/draft/:channel", h.PatchDraft)
	w.POST("/draft/flush", h.FlushDraft)
	w.DELETE("/draft", h.DiscardDraft)

	w.POST("/causes", h.AddCause)
	w.PUT("/causes/:causeId", h.UpdateCause)
	w.DELETE("/causes/:causeId", h.DeleteCause)
}

func editorName(c echo.Context) (string, error) {
	name, err := auth.GetEditorName(c)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
			"error": "Authentication required",
			"code":  "AUTH_REQUIRED",
		})
	}
	return name, nil
}

func (h *WriteupHandler) fail(c echo.Context, err error, msg string) error {
	if pkgerrors.CodeOf(err) == pkgerrors.ErrInternal {
		pkgerrors.LogError(h.logger, err, msg,
			zap.String("job_number", c.Param("jobNumber")))
	}
	return pkgerrors.ToHTTPError(err)
}

// GetWriteup handles GET /api/v1/jobs/:jobNumber/writeup
func (h *WriteupHandler) GetWriteup(c echo.Context) error {
	view, err := h.writeups.GetWriteup(c.Request().Context(), c.Param("jobNumber"))
	if err != nil {
		return h.fail(c, err, "failed to get write-up")
	}
	return c.JSON(http.StatusOK, view)
}

// SaveWriteup handles PUT /api/v1/jobs/:jobNumber/writeup
func (h *WriteupHandler) SaveWriteup(c echo.Context) error {
	editor, err := editorName(c)
	if err != nil {
		return err
	}

	var req dto.SaveWriteupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return pkgerrors.ToHTTPError(err)
	}

	jobNumber := c.Param("jobNumber")
	// the submitted form supersedes the live draft; its pending autosaves
	// must not land after the full save
	h.drafts.Discard(jobNumber)

	resp, err := h.writeups.SaveWriteup(c.Request().Context(), jobNumber, editor, req)
	if err != nil {
		return h.fail(c, err, "failed to save write-up")
	}
	return c.JSON(http.StatusOK, resp)
}

// Reconcile handles POST /api/v1/jobs/:jobNumber/writeup/reconcile
func (h *WriteupHandler) Reconcile(c echo.Context) error {
	jobNumber := c.Param("jobNumber")
	tasks, err := h.writeups.RefreshAuthorizedTasks(c.Request().Context(), jobNumber)
	if err != nil {
		return h.fail(c, err, "failed to reconcile tasks")
	}
	if session, ok := h.drafts.Get(jobNumber); ok {
		session.ApplyRemote(autosave.ChannelTasks, autosave.Draft{Tasks: tasks})
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

// GetStatus handles GET /api/v1/jobs/:jobNumber/writeup/status
func (h *WriteupHandler) GetStatus(c echo.Context) error {
	view, err := h.writeups.Status(c.Request().Context(), c.Param("jobNumber"))
	if err != nil {
		return h.fail(c, err, "failed to get write-up status")
	}
	return c.JSON(http.StatusOK, view)
}

// PatchDraft handles PATCH /api/v1/jobs/:jobNumber/writeup/draft/:channel.
// The change is applied to the live draft and saved after the channel's
// debounce delay.
func (h *WriteupHandler) PatchDraft(c echo.Context) error {
	editor, err := editorName(c)
	if err != nil {
		return err
	}

	ch, err := autosave.ParseChannel(c.Param("channel"))
	if err != nil {
		return pkgerrors.ToHTTPError(domainErrors.UnknownDraftChannel(c.Param("channel")))
	}

	var req dto.DraftPatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return pkgerrors.ToHTTPError(err)
	}

	mutate, err := draftMutation(ch, req.Snapshot)
	if err != nil {
		return pkgerrors.ToHTTPError(err)
	}

	jobNumber := c.Param("jobNumber")
	session, err := h.drafts.Open(c.Request().Context(), jobNumber)
	if err != nil {
		return h.fail(c, err, "failed to open draft")
	}
	if err := session.Update(ch, editor, mutate); err != nil {
		return h.fail(c, pkgerrors.Conflict("draft was closed, retry", err), "failed to update draft")
	}
	return c.JSON(http.StatusAccepted, draftView(jobNumber, session))
}

// draftMutation decodes the channel's snapshot shape.
func draftMutation(ch autosave.Channel, raw json.RawMessage) (func(*autosave.Draft), error) {
	switch ch {
	case autosave.ChannelFields:
		var fields writeup.SectionText
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, domainErrors.InvalidSnapshot(string(ch), err)
		}
		return func(d *autosave.Draft) { d.Fields = fields }, nil
	case autosave.ChannelTasks:
		var tasks []writeup.Task
		if err := json.Unmarshal(raw, &tasks); err != nil {
			return nil, domainErrors.InvalidSnapshot(string(ch), err)
		}
		return func(d *autosave.Draft) { d.Tasks = tasks }, nil
	case autosave.ChannelExtras:
		var extras writeup.ExtraFields
		if err := json.Unmarshal(raw, &extras); err != nil {
			return nil, domainErrors.InvalidSnapshot(string(ch), err)
		}
		return func(d *autosave.Draft) { d.Extras = extras }, nil
	default:
		return nil, domainErrors.UnknownDraftChannel(string(ch))
	}
}

func draftView(jobNumber string, session *autosave.Session) dto.DraftView {
	draft := session.Draft()
	pending := []string{}
	for _, ch := range session.Dirty() {
		pending = append(pending, string(ch))
	}
	tasks := draft.Tasks
	if tasks == nil {
		tasks = []writeup.Task{}
	}
	return dto.DraftView{
		JobNumber: jobNumber,
		Fields:    draft.Fields,
		Tasks:     tasks,
		Extras:    draft.Extras,
		Pending:   pending,
	}
}

// FlushDraft handles POST /api/v1/jobs/:jobNumber/writeup/draft/flush
func (h *WriteupHandler) FlushDraft(c echo.Context) error {
	jobNumber := c.Param("jobNumber")
	session, ok := h.drafts.Get(jobNumber)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	if err := session.Flush(c.Request().Context()); err != nil {
		h.logger.Error("failed to flush draft",
			zap.String("job_number", jobNumber),
			zap.Error(err))
		return pkgerrors.ToHTTPError(pkgerrors.Internal("failed to save draft", err))
	}
	return c.JSON(http.StatusOK, draftView(jobNumber, session))
}

// DiscardDraft handles DELETE /api/v1/jobs/:jobNumber/writeup/draft
func (h *WriteupHandler) DiscardDraft(c echo.Context) error {
	h.drafts.Discard(c.Param("jobNumber"))
	return c.NoContent(http.StatusNoContent)
}

// AddCause handles POST /api/v1/jobs/:jobNumber/writeup/causes
func (h *WriteupHandler) AddCause(c echo.Context) error {
	editor, err := editorName(c)
	if err != nil {
		return err
	}

	var req dto.AddCauseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return pkgerrors.ToHTTPError(err)
	}

	entry, err := h.writeups.AddCause(c.Request().Context(), c.Param("jobNumber"), editor, req)
	if err != nil {
		return h.fail(c, err, "failed to add cause entry")
	}
	return c.JSON(http.StatusCreated, entry)
}

// UpdateCause handles PUT /api/v1/jobs/:jobNumber/writeup/causes/:causeId
func (h *WriteupHandler) UpdateCause(c echo.Context) error {
	editor, err := editorName(c)
	if err != nil {
		return err
	}

	var req dto.UpdateCauseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return pkgerrors.ToHTTPError(err)
	}

	entry, err := h.writeups.UpdateCause(c.Request().Context(), c.Param("jobNumber"), editor, c.Param("causeId"), req)
	if err != nil {
		return h.fail(c, err, "failed to update cause entry")
	}
	return c.JSON(http.StatusOK, entry)
}

// DeleteCause handles DELETE /api/v1/jobs/:jobNumber/writeup/causes/:causeId
func (h *WriteupHandler) DeleteCause(c echo.Context) error {
	editor, err := editorName(c)
	if err != nil {
		return err
	}

	if err := h.writeups.DeleteCause(c.Request().Context(), c.Param("jobNumber"), editor, c.Param("causeId")); err != nil {
		return h.fail(c, err, "failed to delete cause entry")
	}
	return c.NoContent(http.StatusNoContent)
}
