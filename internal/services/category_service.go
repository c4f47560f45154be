package services

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/resilience"
	"fintrack/internal/result"
	"fintrack/internal/storage"
)

// CategoryService manages the category register.
type CategoryService struct {
	categories storage.CategoryRepository
	exec       *resilience.Executor
	logger     *log.Logger
}

func NewCategoryService(categories storage.CategoryRepository, exec *resilience.Executor, logger *log.Logger) *CategoryService {
	return &CategoryService{
		categories: categories,
		exec:       exec,
		logger:     logger.WithComponent(log.ComponentService),
	}
}

func (s *CategoryService) Create(ctx context.Context, category core.Category) result.ServiceResult[core.Category] {
	category.Name = core.NormalizeName(category.Name)
	category.ActiveStatus = true
	if err := category.Validate(); err != nil {
		return result.Classify[core.Category](err)
	}

	created, err := resilience.Execute(ctx, s.exec, "category.insert", func(ctx context.Context) (core.Category, error) {
		return s.categories.Insert(ctx, category)
	})
	if err != nil {
		return result.Classify[core.Category](err)
	}
	return result.Success(created)
}

func (s *CategoryService) Get(ctx context.Context, name string) result.ServiceResult[core.Category] {
	category, err := resilience.Execute(ctx, s.exec, "category.find", func(ctx context.Context) (*core.Category, error) {
		return s.categories.FindByName(ctx, core.NormalizeName(name))
	})
	if err != nil {
		return result.Classify[core.Category](err)
	}
	return result.Success(*category)
}

func (s *CategoryService) List(ctx context.Context) result.ServiceResult[[]core.Category] {
	categories, err := resilience.Execute(ctx, s.exec, "category.list", func(ctx context.Context) ([]core.Category, error) {
		return s.categories.List(ctx)
	})
	if err != nil {
		return result.Classify[[]core.Category](err)
	}
	return result.Success(categories)
}

func (s *CategoryService) Deactivate(ctx context.Context, name string) result.ServiceResult[struct{}] {
	_, err := resilience.Execute(ctx, s.exec, "category.deactivate", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.categories.SetActiveStatus(ctx, core.NormalizeName(name), false)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}
	return result.Success(struct{}{})
}

func (s *CategoryService) Delete(ctx context.Context, name string) result.ServiceResult[struct{}] {
	_, err := resilience.Execute(ctx, s.exec, "category.delete", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.categories.Delete(ctx, core.NormalizeName(name))
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}
	return result.Success(struct{}{})
}

// Merge moves every transaction from the source category onto the target and
// deactivates the source. The returned category carries the target's
// recounted transaction total.
func (s *CategoryService) Merge(ctx context.Context, source, target string) result.ServiceResult[core.Category] {
	source = core.NormalizeName(source)
	target = core.NormalizeName(target)
	if source == target {
		return result.Business[core.Category](result.CodeSelfReference,
			"cannot merge a category into itself")
	}

	// The target must exist before any transactions are repointed at it.
	if _, err := resilience.Execute(ctx, s.exec, "category.find", func(ctx context.Context) (*core.Category, error) {
		return s.categories.FindByName(ctx, target)
	}); err != nil {
		return result.Classify[core.Category](err)
	}

	reassigned, err := resilience.Execute(ctx, s.exec, "category.merge", func(ctx context.Context) (int64, error) {
		return s.categories.Merge(ctx, source, target)
	})
	if err != nil {
		return result.Classify[core.Category](err)
	}

	s.logger.InfoContext(ctx, "categories merged",
		log.FieldOperation, log.OpMerge,
		log.FieldCategory, target,
		"merged_from", source,
		"reassigned", reassigned)
	return s.Get(ctx, target)
}
