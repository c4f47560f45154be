package services

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/resilience"
	"fintrack/internal/result"
	"fintrack/internal/storage"
)

// DescriptionService manages the description register.
type DescriptionService struct {
	descriptions storage.DescriptionRepository
	exec         *resilience.Executor
	logger       *log.Logger
}

func NewDescriptionService(descriptions storage.DescriptionRepository, exec *resilience.Executor, logger *log.Logger) *DescriptionService {
	return &DescriptionService{
		descriptions: descriptions,
		exec:         exec,
		logger:       logger.WithComponent(log.ComponentService),
	}
}

func (s *DescriptionService) Create(ctx context.Context, description core.Description) result.ServiceResult[core.Description] {
	description.Name = core.NormalizeName(description.Name)
	description.ActiveStatus = true
	if err := description.Validate(); err != nil {
		return result.Classify[core.Description](err)
	}

	created, err := resilience.Execute(ctx, s.exec, "description.insert", func(ctx context.Context) (core.Description, error) {
		return s.descriptions.Insert(ctx, description)
	})
	if err != nil {
		return result.Classify[core.Description](err)
	}
	return result.Success(created)
}

func (s *DescriptionService) Get(ctx context.Context, name string) result.ServiceResult[core.Description] {
	description, err := resilience.Execute(ctx, s.exec, "description.find", func(ctx context.Context) (*core.Description, error) {
		return s.descriptions.FindByName(ctx, core.NormalizeName(name))
	})
	if err != nil {
		return result.Classify[core.Description](err)
	}
	return result.Success(*description)
}

func (s *DescriptionService) List(ctx context.Context) result.ServiceResult[[]core.Description] {
	descriptions, err := resilience.Execute(ctx, s.exec, "description.list", func(ctx context.Context) ([]core.Description, error) {
		return s.descriptions.List(ctx)
	})
	if err != nil {
		return result.Classify[[]core.Description](err)
	}
	return result.Success(descriptions)
}

func (s *DescriptionService) Deactivate(ctx context.Context, name string) result.ServiceResult[struct{}] {
	_, err := resilience.Execute(ctx, s.exec, "description.deactivate", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.descriptions.SetActiveStatus(ctx, core.NormalizeName(name), false)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}
	return result.Success(struct{}{})
}

func (s *DescriptionService) Delete(ctx context.Context, name string) result.ServiceResult[struct{}] {
	_, err := resilience.Execute(ctx, s.exec, "description.delete", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.descriptions.Delete(ctx, core.NormalizeName(name))
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}
	return result.Success(struct{}{})
}

// Merge moves every transaction from the source description onto the target
// and deactivates the source.
func (s *DescriptionService) Merge(ctx context.Context, source, target string) result.ServiceResult[core.Description] {
	source = core.NormalizeName(source)
	target = core.NormalizeName(target)
	if source == target {
		return result.Business[core.Description](result.CodeSelfReference,
			"cannot merge a description into itself")
	}

	if _, err := resilience.Execute(ctx, s.exec, "description.find", func(ctx context.Context) (*core.Description, error) {
		return s.descriptions.FindByName(ctx, target)
	}); err != nil {
		return result.Classify[core.Description](err)
	}

	reassigned, err := resilience.Execute(ctx, s.exec, "description.merge", func(ctx context.Context) (int64, error) {
		return s.descriptions.Merge(ctx, source, target)
	})
	if err != nil {
		return result.Classify[core.Description](err)
	}

	s.logger.InfoContext(ctx, "descriptions merged",
		log.FieldOperation, log.OpMerge,
		log.FieldDescription, target,
		"merged_from", source,
		"reassigned", reassigned)
	return s.Get(ctx, target)
}
