package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
	"github.com/karoldydo/i18n-mate-sub003/internal/repositories"
)

// ProjectServiceDeps enumerates collaborators required to construct the service.
type ProjectServiceDeps struct {
	Projects    repositories.ProjectRepository
	Locales     repositories.LocaleRepository
	Clock       func() time.Time
	IDGenerator func() string
}

type projectService struct {
	projects repositories.ProjectRepository
	locales  repositories.LocaleRepository
	clock    func() time.Time
	newID    func() string
}

// NewProjectService wires dependencies into a ProjectService implementation.
func NewProjectService(deps ProjectServiceDeps) (ProjectService, error) {
	if deps.Projects == nil {
		return nil, errors.New("project service: project repository is required")
	}
	if deps.Locales == nil {
		return nil, errors.New("project service: locale repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	return &projectService{
		projects: deps.Projects,
		locales:  deps.Locales,
		clock:    func() time.Time { return clock().UTC() },
		newID:    idGen,
	}, nil
}

func (s *projectService) CreateProject(ctx context.Context, cmd CreateProjectCommand) (domain.Project, error) {
	ownerID := strings.TrimSpace(cmd.OwnerID)
	name := strings.TrimSpace(cmd.Name)
	prefix := strings.TrimSpace(cmd.Prefix)
	defaultLocale := strings.TrimSpace(cmd.DefaultLocale)

	if ownerID == "" {
		return domain.Project{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if name == "" {
		return domain.Project{}, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}
	if err := domain.ValidatePrefix(prefix); err != nil {
		return domain.Project{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := domain.ValidateLocale(defaultLocale); err != nil {
		return domain.Project{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.clock()
	project := domain.Project{
		ID:            s.newID(),
		OwnerID:       ownerID,
		Name:          name,
		Description:   strings.TrimSpace(cmd.Description),
		Prefix:        prefix,
		DefaultLocale: defaultLocale,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.projects.Insert(ctx, project); err != nil {
		if isRepoConflict(err) {
			return domain.Project{}, ErrDuplicateName
		}
		return domain.Project{}, err
	}

	// The default locale rides along with every project.
	locale := domain.ProjectLocale{
		ProjectID: project.ID,
		Code:      defaultLocale,
		Label:     defaultLocale,
		IsDefault: true,
		CreatedAt: now,
	}
	if err := s.locales.Insert(ctx, locale); err != nil && !isRepoConflict(err) {
		return domain.Project{}, err
	}

	return project, nil
}

func (s *projectService) GetProject(ctx context.Context, ownerID, projectID string) (domain.Project, error) {
	return s.loadOwnedProject(ctx, ownerID, projectID)
}

func (s *projectService) ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	return s.projects.ListByOwner(ctx, ownerID)
}

func (s *projectService) UpdateProject(ctx context.Context, cmd UpdateProjectCommand) (domain.Project, error) {
	project, err := s.loadOwnedProject(ctx, cmd.OwnerID, cmd.ProjectID)
	if err != nil {
		return domain.Project{}, err
	}

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return domain.Project{}, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}

	project.Name = name
	project.Description = strings.TrimSpace(cmd.Description)
	project.UpdatedAt = s.clock()

	if err := s.projects.Update(ctx, project); err != nil {
		if isRepoConflict(err) {
			return domain.Project{}, ErrDuplicateName
		}
		return domain.Project{}, err
	}
	return project, nil
}

func (s *projectService) DeleteProject(ctx context.Context, ownerID, projectID string) error {
	project, err := s.loadOwnedProject(ctx, ownerID, projectID)
	if err != nil {
		return err
	}
	return s.projects.Delete(ctx, project.ID)
}

func (s *projectService) AddLocale(ctx context.Context, cmd AddLocaleCommand) (domain.ProjectLocale, error) {
	project, err := s.loadOwnedProject(ctx, cmd.OwnerID, cmd.ProjectID)
	if err != nil {
		return domain.ProjectLocale{}, err
	}

	code := strings.TrimSpace(cmd.Code)
	if err := domain.ValidateLocale(code); err != nil {
		return domain.ProjectLocale{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	label := strings.TrimSpace(cmd.Label)
	if label == "" {
		label = code
	}

	locale := domain.ProjectLocale{
		ProjectID: project.ID,
		Code:      code,
		Label:     label,
		IsDefault: false,
		CreatedAt: s.clock(),
	}
	if err := s.locales.Insert(ctx, locale); err != nil {
		if isRepoConflict(err) {
			return domain.ProjectLocale{}, ErrDuplicateLocale
		}
		return domain.ProjectLocale{}, err
	}
	return locale, nil
}

func (s *projectService) ListLocales(ctx context.Context, ownerID, projectID string) ([]domain.ProjectLocale, error) {
	project, err := s.loadOwnedProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	return s.locales.ListByProject(ctx, project.ID)
}

func (s *projectService) DeleteLocale(ctx context.Context, ownerID, projectID, code string) error {
	project, err := s.loadOwnedProject(ctx, ownerID, projectID)
	if err != nil {
		return err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: locale code is required", ErrInvalidInput)
	}
	if code == project.DefaultLocale {
		return ErrDefaultLocale
	}

	if err := s.locales.Delete(ctx, project.ID, code); err != nil {
		if isRepoNotFound(err) {
			return ErrLocaleNotFound
		}
		if isRepoConflict(err) {
			return ErrDefaultLocale
		}
		return err
	}
	return nil
}

func (s *projectService) loadOwnedProject(ctx context.Context, ownerID, projectID string) (domain.Project, error) {
	ownerID = strings.TrimSpace(ownerID)
	projectID = strings.TrimSpace(projectID)
	if ownerID == "" || projectID == "" {
		return domain.Project{}, fmt.Errorf("%w: owner id and project id are required", ErrInvalidInput)
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}
	if project.OwnerID != ownerID {
		// Ownership failures are indistinguishable from missing projects.
		return domain.Project{}, ErrProjectNotFound
	}
	return project, nil
}
