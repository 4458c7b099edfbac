package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/workshop-backend/internal/clock"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/dto"
	domainErrors "github.com/wekeepgrowing/workshop-backend/internal/domain/errors"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
	"github.com/wekeepgrowing/workshop-backend/internal/middleware/auth"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase/autosave"
	pkgerrors "github.com/wekeepgrowing/workshop-backend/pkg/errors"
)

type MockWriteupUsecase struct {
	mock.Mock
}

func (m *MockWriteupUsecase) GetWriteup(ctx context.Context, jobNumber string) (*dto.WriteupView, error) {
	args := m.Called(ctx, jobNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.WriteupView), args.Error(1)
}

func (m *MockWriteupUsecase) SaveWriteup(ctx context.Context, jobNumber, editor string, req dto.SaveWriteupRequest) (*dto.SaveWriteupResponse, error) {
	args := m.Called(ctx, jobNumber, editor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SaveWriteupResponse), args.Error(1)
}

func (m *MockWriteupUsecase) RefreshAuthorizedTasks(ctx context.Context, jobNumber string) ([]writeup.Task, error) {
	args := m.Called(ctx, jobNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]writeup.Task), args.Error(1)
}

func (m *MockWriteupUsecase) Status(ctx context.Context, jobNumber string) (*dto.StatusView, error) {
	args := m.Called(ctx, jobNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StatusView), args.Error(1)
}

func (m *MockWriteupUsecase) AddCause(ctx context.Context, jobNumber, editor string, req dto.AddCauseRequest) (*writeup.CauseEntry, error) {
	args := m.Called(ctx, jobNumber, editor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*writeup.CauseEntry), args.Error(1)
}

func (m *MockWriteupUsecase) UpdateCause(ctx context.Context, jobNumber, editor, causeID string, req dto.UpdateCauseRequest) (*writeup.CauseEntry, error) {
	args := m.Called(ctx, jobNumber, editor, causeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*writeup.CauseEntry), args.Error(1)
}

func (m *MockWriteupUsecase) DeleteCause(ctx context.Context, jobNumber, editor, causeID string) error {
	args := m.Called(ctx, jobNumber, editor, causeID)
	return args.Error(0)
}

type stubLoader struct{ draft autosave.Draft }

func (l stubLoader) LoadDraft(ctx context.Context, jobNumber string) (autosave.Draft, error) {
	return l.draft.Clone(), nil
}

type recordingSaver struct {
	mu    sync.Mutex
	saves []autosave.Snapshot
}

func (r *recordingSaver) SavePartial(ctx context.Context, jobNumber string, snap autosave.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, snap)
	return nil
}

func (r *recordingSaver) snapshots() []autosave.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]autosave.Snapshot(nil), r.saves...)
}

type handlerFixture struct {
	echo     *echo.Echo
	usecase  *MockWriteupUsecase
	registry *autosave.Registry
	saver    *recordingSaver
	clock    *clock.FakeClock
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	logger := zap.NewNop()
	f := &handlerFixture{
		usecase: new(MockWriteupUsecase),
		saver:   &recordingSaver{},
		clock:   clock.Fake(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)),
	}
	f.registry = autosave.NewRegistry(stubLoader{}, f.saver, f.clock, autosave.DefaultDelays, logger)
	t.Cleanup(func() {
		_ = f.registry.CloseAll(context.Background())
		f.usecase.AssertExpectations(t)
	})

	e := echo.New()
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = pkgerrors.NewEchoErrorHandler(logger)
	api := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := &auth.AuthUser{UserID: "user-1", DisplayName: "Alex"}
			c.SetRequest(c.Request().WithContext(auth.WithUser(c.Request().Context(), user)))
			return next(c)
		}
	})
	NewWriteupHandler(logger, f.usecase, f.registry).Register(api)
	f.echo = e
	return f
}

func (f *handlerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func TestWriteupHandler_GetWriteup(t *testing.T) {
	f := newHandlerFixture(t)
	f.usecase.On("GetWriteup", mock.Anything, "J1001").Return(&dto.WriteupView{
		JobNumber: "J1001",
		Tasks:     []writeup.Task{{TaskID: "t1", Source: writeup.TaskSourceRequest, SourceKey: "r1", Label: "Service", Status: writeup.TaskStatusComplete}},
	}, nil)

	rec := f.do(http.MethodGet, "/api/v1/jobs/J1001/writeup", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var view dto.WriteupView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "J1001", view.JobNumber)
	require.Len(t, view.Tasks, 1)
}

func TestWriteupHandler_GetWriteup_NotFound(t *testing.T) {
	f := newHandlerFixture(t)
	f.usecase.On("GetWriteup", mock.Anything, "J404").Return(nil, domainErrors.JobNotFound("J404"))

	rec := f.do(http.MethodGet, "/api/v1/jobs/J404/writeup", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), pkgerrors.ErrNotFound)
}

func TestWriteupHandler_SaveWriteup(t *testing.T) {
	f := newHandlerFixture(t)
	f.usecase.On("SaveWriteup", mock.Anything, "J1001", "Alex", mock.MatchedBy(func(req dto.SaveWriteupRequest) bool {
		return req.Fault == "Noise" && len(req.Tasks) == 1 && req.Tasks[0].SourceKey == "r1"
	})).Return(&dto.SaveWriteupResponse{
		Writeup:    &dto.WriteupView{JobNumber: "J1001"},
		Transition: &dto.StatusTransition{From: "In Progress", To: "Technician Work Completed"},
	}, nil)

	rec := f.do(http.MethodPut, "/api/v1/jobs/J1001/writeup",
		`{"fault":"Noise","tasks":[{"source":"request","sourceKey":"r1","label":"Service","status":"complete"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Technician Work Completed")
}

func TestWriteupHandler_SaveWriteup_DiscardsLiveDraft(t *testing.T) {
	f := newHandlerFixture(t)
	_, err := f.registry.Open(context.Background(), "J1001")
	require.NoError(t, err)
	f.usecase.On("SaveWriteup", mock.Anything, "J1001", "Alex", mock.Anything).
		Return(&dto.SaveWriteupResponse{Writeup: &dto.WriteupView{JobNumber: "J1001"}}, nil)

	rec := f.do(http.MethodPut, "/api/v1/jobs/J1001/writeup", `{"fault":"Noise"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.registry.Len())
}

func TestWriteupHandler_SaveWriteup_PendingAutosaveDoesNotFollow(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.do(http.MethodPatch, "/api/v1/jobs/J1001/writeup/draft/fields",
		`{"snapshot":{"fault":"abc","cause":"","rectification":""}}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	f.usecase.On("SaveWriteup", mock.Anything, "J1001", "Alex", mock.MatchedBy(func(req dto.SaveWriteupRequest) bool {
		return req.Fault == "abcd"
	})).Run(func(mock.Arguments) {
		// the debounce delay elapses while the full save is running
		f.clock.Advance(autosave.DefaultDelays.Fields)
	}).Return(&dto.SaveWriteupResponse{Writeup: &dto.WriteupView{JobNumber: "J1001", Fault: "abcd"}}, nil)

	rec = f.do(http.MethodPut, "/api/v1/jobs/J1001/writeup", `{"fault":"abcd"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.saver.snapshots())
	assert.Equal(t, 0, f.registry.Len())
}

func TestWriteupHandler_SaveWriteup_ValidationError(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPut, "/api/v1/jobs/J1001/writeup",
		`{"tasks":[{"source":"request","sourceKey":"r1","label":"Service","status":"done"}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), pkgerrors.ErrInvalidArgument)
}

func TestWriteupHandler_Reconcile_MergesIntoCleanDraft(t *testing.T) {
	f := newHandlerFixture(t)
	_, err := f.registry.Open(context.Background(), "J1001")
	require.NoError(t, err)
	tasks := []writeup.Task{{TaskID: "t2", Source: writeup.TaskSourceVHC, SourceKey: "v1", Label: "Brake pads", Status: writeup.TaskStatusAdditionalWork}}
	f.usecase.On("RefreshAuthorizedTasks", mock.Anything, "J1001").Return(tasks, nil)

	rec := f.do(http.MethodPost, "/api/v1/jobs/J1001/writeup/reconcile", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	session, ok := f.registry.Get("J1001")
	require.True(t, ok)
	assert.Equal(t, tasks, session.Draft().Tasks)
}

func TestWriteupHandler_GetStatus(t *testing.T) {
	f := newHandlerFixture(t)
	f.usecase.On("Status", mock.Anything, "J1001").Return(&dto.StatusView{
		JobNumber:        "J1001",
		CompletionStatus: writeup.CompletionComplete,
		JobStatus:        "In Progress",
		SuggestedStatus:  "Technician Work Completed",
	}, nil)

	rec := f.do(http.MethodGet, "/api/v1/jobs/J1001/writeup/status", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"suggestedStatus":"Technician Work Completed"`)
}

func TestWriteupHandler_PatchDraft_DebouncesThenSaves(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPatch, "/api/v1/jobs/J1001/writeup/draft/fields",
		`{"snapshot":{"fault":"Knocking","cause":"","rectification":""}}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var view dto.DraftView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "Knocking", view.Fields.Fault)
	assert.Equal(t, []string{"fields"}, view.Pending)
	assert.Empty(t, f.saver.snapshots())

	f.clock.Advance(autosave.DefaultDelays.Fields)

	saves := f.saver.snapshots()
	require.Len(t, saves, 1)
	assert.Equal(t, autosave.ChannelFields, saves[0].Channel)
	assert.Equal(t, "Alex", saves[0].Editor)
	assert.Equal(t, "Knocking", saves[0].Draft.Fields.Fault)
}

func TestWriteupHandler_PatchDraft_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "unknown channel", path: "/api/v1/jobs/J1001/writeup/draft/photos", body: `{"snapshot":{}}`},
		{name: "missing snapshot", path: "/api/v1/jobs/J1001/writeup/draft/fields", body: `{}`},
		{name: "wrong shape", path: "/api/v1/jobs/J1001/writeup/draft/tasks", body: `{"snapshot":{"fault":"x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			rec := f.do(http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, f.registry.Len())
		})
	}
}

func TestWriteupHandler_FlushDraft(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/jobs/J1001/writeup/draft/flush", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodPatch, "/api/v1/jobs/J1001/writeup/draft/extras",
		`{"snapshot":{"warrantyClaimNumber":"W-1"}}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/jobs/J1001/writeup/draft/flush", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending":[]`)
	saves := f.saver.snapshots()
	require.Len(t, saves, 1)
	assert.Equal(t, "W-1", saves[0].Draft.Extras.WarrantyClaimNumber)
}

func TestWriteupHandler_DiscardDraft(t *testing.T) {
	f := newHandlerFixture(t)
	_, err := f.registry.Open(context.Background(), "J1001")
	require.NoError(t, err)

	rec := f.do(http.MethodDelete, "/api/v1/jobs/J1001/writeup/draft", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, f.registry.Len())
}

func TestWriteupHandler_Causes(t *testing.T) {
	f := newHandlerFixture(t)
	entry := &writeup.CauseEntry{ID: "c1", RequestKey: "r1", Text: "Worn pads", CreatedBy: "Alex"}
	f.usecase.On("AddCause", mock.Anything, "J1001", "Alex", dto.AddCauseRequest{RequestKey: "r1", Text: "Worn pads"}).
		Return(entry, nil)
	f.usecase.On("UpdateCause", mock.Anything, "J1001", "Alex", "c1", dto.UpdateCauseRequest{Text: "Worn discs"}).
		Return(&writeup.CauseEntry{ID: "c1", RequestKey: "r1", Text: "Worn discs"}, nil)
	f.usecase.On("DeleteCause", mock.Anything, "J1001", "Alex", "c9").
		Return(pkgerrors.NotFound("cause entry not found", nil))

	rec := f.do(http.MethodPost, "/api/v1/jobs/J1001/writeup/causes", `{"requestKey":"r1","text":"Worn pads"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/jobs/J1001/writeup/causes", `{"requestKey":"r1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPut, "/api/v1/jobs/J1001/writeup/causes/c1", `{"text":"Worn discs"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Worn discs")

	rec = f.do(http.MethodDelete, "/api/v1/jobs/J1001/writeup/causes/c9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
