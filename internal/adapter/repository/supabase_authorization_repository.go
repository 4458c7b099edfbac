package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/wekeepgrowing/workshop-backend/internal/domain/errors"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/workshop-backend/internal/domain/repository"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
)

// SupabaseAuthorizationRepository reads vhc_authorizations through the Supabase REST API
type SupabaseAuthorizationRepository struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewSupabaseAuthorizationRepository creates a new Supabase authorization repository
func NewSupabaseAuthorizationRepository(
	baseURL string,
	apiKey string,
	logger *zap.Logger,
) domainRepo.AuthorizationRepository {
	return &SupabaseAuthorizationRepository{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// ListAuthorized fetches the job's authorized rows ordered by id
func (r *SupabaseAuthorizationRepository) ListAuthorized(ctx context.Context, job *model.Job) ([]writeup.AuthorizedItem, error) {
	startTime := time.Now()

	params := url.Values{}
	params.Add("job_id", fmt.Sprintf("eq.%d", job.ID))
	params.Add("decision", fmt.Sprintf("eq.%s", model.DecisionAuthorized))
	params.Add("select", "*")
	params.Add("order", "id.asc")
	queryURL := fmt.Sprintf("%s/rest/v1/vhc_authorizations?%s", r.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, domainErrors.NewSupabaseConnectionError(job.ID,
			fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("SupabaseRepository: HTTP request failed",
			zap.String("job_number", job.JobNumber),
			zap.Duration("request_duration", time.Since(startTime)),
			zap.Error(err))
		return nil, domainErrors.NewSupabaseConnectionError(job.ID,
			fmt.Errorf("http request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)

		r.logger.Warn("SupabaseRepository: Supabase API returned non-200 status",
			zap.String("job_number", job.JobNumber),
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("response_body", errorBody))

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, domainErrors.NewSupabaseUnauthorizedError(job.ID)
		}
		return nil, domainErrors.NewSupabaseBadResponseError(job.ID,
			fmt.Errorf("supabase API error: status %d", resp.StatusCode))
	}

	var rows []model.VHCAuthorization
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, domainErrors.NewSupabaseBadResponseError(job.ID,
			fmt.Errorf("failed to decode response: %w", err))
	}

	items := make([]writeup.AuthorizedItem, len(rows))
	for i, row := range rows {
		items[i] = row.AuthorizedItem()
	}

	r.logger.Debug("SupabaseRepository: authorizations fetched",
		zap.String("job_number", job.JobNumber),
		zap.String("job_id", strconv.FormatUint(uint64(job.ID), 10)),
		zap.Int("count", len(items)),
		zap.Duration("total_repository_duration", time.Since(startTime)))

	return items, nil
}
