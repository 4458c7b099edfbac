package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/model"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/repository"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase/realtime"
)

var seedFile string

// seedCmd loads fixtures for local development
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load jobs, requests, authorizations and parts requests from YAML",
	Long: `Loads a fixtures file into the database. Jobs that already exist are
left untouched together with their authorizations and parts requests.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Fixtures YAML file")
	_ = seedCmd.MarkFlagRequired("file")
}

type fixturesFile struct {
	Jobs []jobFixture `yaml:"jobs"`
}

type jobFixture struct {
	JobNumber           string                 `yaml:"job_number"`
	Status              string                 `yaml:"status"`
	Registration        string                 `yaml:"registration"`
	CustomerName        string                 `yaml:"customer_name"`
	ServiceAdvisorName  string                 `yaml:"service_advisor_name"`
	ServiceAdvisorEmail string                 `yaml:"service_advisor_email"`
	Requests            []requestFixture       `yaml:"requests"`
	Authorizations      []authorizationFixture `yaml:"authorizations"`
	PartsRequests       []partsFixture         `yaml:"parts_requests"`
}

type requestFixture struct {
	Key         string `yaml:"key"`
	Description string `yaml:"description"`
}

type authorizationFixture struct {
	VHCItemID        string `yaml:"vhc_item_id"`
	RequestID        string `yaml:"request_id"`
	Source           string `yaml:"source"`
	Category         string `yaml:"category"`
	Label            string `yaml:"label"`
	Description      string `yaml:"description"`
	IssueDescription string `yaml:"issue_description"`
	Decision         string `yaml:"decision"`
	WorkStatus       string `yaml:"work_status"`
	PartsCost        string `yaml:"parts_cost"`
	LabourCost       string `yaml:"labour_cost"`
}

type partsFixture struct {
	PartNumber  string `yaml:"part_number"`
	Description string `yaml:"description"`
	Quantity    int    `yaml:"quantity"`
	Status      string `yaml:"status"`
}

// seedStore is what seeding writes to
type seedStore struct {
	jobs           repository.JobRepository
	authorizations interface {
		Create(ctx context.Context, a *model.VHCAuthorization) error
	}
	parts interface {
		Create(ctx context.Context, p *model.PartsRequest) error
	}
	requests interface {
		Create(ctx context.Context, r *model.JobRequest) error
	}
	events usecase.ChangePublisher
}

func runSeed(cmd *cobra.Command, args []string) error {
	fixtures, err := loadFixtures(seedFile)
	if err != nil {
		return err
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	store := seedStore{
		jobs:           e.repos.Job,
		authorizations: e.repos.Authorizations,
		parts:          e.repos.Parts,
		requests:       e.repos.Requests,
		events:         e.publisher,
	}
	created, err := seedFixtures(cmd.Context(), store, fixtures, e.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d jobs\n", created, len(fixtures.Jobs))
	return nil
}

func loadFixtures(path string) (*fixturesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &fixturesFile{}, nil
	}

	var file fixturesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal fixtures yaml: %w", err)
	}
	for i, j := range file.Jobs {
		if strings.TrimSpace(j.JobNumber) == "" {
			return nil, fmt.Errorf("jobs[%d]: job_number is required", i)
		}
		for k, r := range j.Requests {
			if strings.TrimSpace(r.Description) == "" {
				return nil, fmt.Errorf("jobs[%d].requests[%d]: description is required", i, k)
			}
		}
		for k, a := range j.Authorizations {
			if _, err := parseMoney(a.PartsCost); err != nil {
				return nil, fmt.Errorf("jobs[%d].authorizations[%d].parts_cost: %w", i, k, err)
			}
			if _, err := parseMoney(a.LabourCost); err != nil {
				return nil, fmt.Errorf("jobs[%d].authorizations[%d].labour_cost: %w", i, k, err)
			}
		}
	}
	return &file, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}

// seedFixtures creates every job that does not exist yet and returns how
// many were created.
func seedFixtures(ctx context.Context, store seedStore, fixtures *fixturesFile, logger *zap.Logger) (int, error) {
	created := 0
	for _, fx := range fixtures.Jobs {
		existing, err := store.jobs.FindByNumber(ctx, fx.JobNumber)
		if err != nil {
			return created, err
		}
		if existing != nil {
			logger.Info("Job already exists, skipping", zap.String("job_number", fx.JobNumber))
			continue
		}

		job := &model.Job{
			JobNumber:           fx.JobNumber,
			Status:              model.JobStatus(fx.Status),
			Registration:        fx.Registration,
			CustomerName:        fx.CustomerName,
			ServiceAdvisorName:  fx.ServiceAdvisorName,
			ServiceAdvisorEmail: fx.ServiceAdvisorEmail,
		}
		if job.Status == "" {
			job.Status = model.JobStatusBooked
		}
		if err := store.jobs.Create(ctx, job); err != nil {
			return created, err
		}

		for _, r := range fx.Requests {
			row := &model.JobRequest{
				JobID:       job.ID,
				RequestKey:  r.Key,
				Description: r.Description,
			}
			if err := store.requests.Create(ctx, row); err != nil {
				return created, err
			}
		}

		for _, a := range fx.Authorizations {
			parts, _ := parseMoney(a.PartsCost)
			labour, _ := parseMoney(a.LabourCost)
			row := &model.VHCAuthorization{
				JobID:            job.ID,
				VHCItemID:        a.VHCItemID,
				RequestID:        a.RequestID,
				Source:           a.Source,
				Category:         a.Category,
				Label:            a.Label,
				Description:      a.Description,
				IssueDescription: a.IssueDescription,
				Decision:         model.AuthorizationDecision(a.Decision),
				WorkStatus:       a.WorkStatus,
				PartsCost:        parts,
				LabourCost:       labour,
			}
			if row.Category == "" {
				row.Category = "general"
			}
			if row.Decision == "" {
				row.Decision = model.DecisionPending
			}
			if err := store.authorizations.Create(ctx, row); err != nil {
				return created, err
			}
		}

		for _, p := range fx.PartsRequests {
			row := &model.PartsRequest{
				JobID:       job.ID,
				PartNumber:  p.PartNumber,
				Description: p.Description,
				Quantity:    p.Quantity,
				Status:      p.Status,
			}
			if row.Quantity == 0 {
				row.Quantity = 1
			}
			if row.Status == "" {
				row.Status = "requested"
			}
			if err := store.parts.Create(ctx, row); err != nil {
				return created, err
			}
		}

		publishSeeded(ctx, store.events, job, fx, logger)
		logger.Info("Job seeded",
			zap.String("job_number", job.JobNumber),
			zap.Int("requests", len(fx.Requests)),
			zap.Int("authorizations", len(fx.Authorizations)),
			zap.Int("parts_requests", len(fx.PartsRequests)))
		created++
	}
	return created, nil
}

// publishSeeded announces the new rows so running services refresh the
// job's checklist.
func publishSeeded(ctx context.Context, events usecase.ChangePublisher, job *model.Job, fx jobFixture, logger *zap.Logger) {
	if events == nil {
		return
	}
	tables := []string{realtime.TableJobs}
	if len(fx.Authorizations) > 0 {
		tables = append(tables, realtime.TableVHCAuthorizations)
	}
	if len(fx.PartsRequests) > 0 {
		tables = append(tables, realtime.TablePartsRequests)
	}
	for _, table := range tables {
		err := events.Publish(ctx, realtime.ChangeEvent{
			Table:     table,
			JobID:     job.ID,
			JobNumber: job.JobNumber,
		})
		if err != nil {
			logger.Warn("Failed to publish seeded change",
				zap.String("table", table),
				zap.String("job_number", job.JobNumber),
				zap.Error(err))
		}
	}
}
