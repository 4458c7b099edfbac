package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/workshop-backend/internal/adapter/repository"
	"github.com/wekeepgrowing/workshop-backend/internal/config"
	domainRepo "github.com/wekeepgrowing/workshop-backend/internal/domain/repository"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase"
)

// Repositories holds all repository instances
type Repositories struct {
	Job            domainRepo.JobRepository
	Writeup        domainRepo.WriteupRepository
	Parts          *repository.PartsRequestRepository
	Authorizations *repository.AuthorizationRepository
	Requests       *repository.JobRequestRepository
	// AuthorizationSource is where authorized VHC work is read from; the
	// local table or Supabase depending on config
	AuthorizationSource domainRepo.AuthorizationRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, cfg *config.ServiceConfig, logger *zap.Logger) *Repositories {
	repos := &Repositories{
		Job:            repository.NewJobRepository(db, logger),
		Writeup:        repository.NewWriteupRepository(db, logger),
		Parts:          repository.NewPartsRequestRepository(db, logger),
		Authorizations: repository.NewAuthorizationRepository(db, logger),
		Requests:       repository.NewJobRequestRepository(db, logger),
	}

	repos.AuthorizationSource = repos.Authorizations
	if cfg.AuthorizationSource == config.AuthorizationSourceSupabase {
		repos.AuthorizationSource = repository.NewSupabaseAuthorizationRepository(
			cfg.Supabase.ProjectURL,
			cfg.Supabase.APIKey,
			logger,
		)
	}
	return repos
}

// WriteupRepositories returns the set the write-up service works on
func (r *Repositories) WriteupRepositories() usecase.WriteupRepositories {
	return usecase.WriteupRepositories{
		Jobs:           r.Job,
		Writeups:       r.Writeup,
		Authorizations: r.AuthorizationSource,
		Parts:          r.Parts,
		Requests:       r.Requests,
	}
}
