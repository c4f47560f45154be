package services

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/resilience"
	"fintrack/internal/result"
	"fintrack/internal/storage"
)

// ParameterService manages runtime parameters such as the default payment
// funding account.
type ParameterService struct {
	parameters storage.ParameterRepository
	exec       *resilience.Executor
	logger     *log.Logger
}

func NewParameterService(parameters storage.ParameterRepository, exec *resilience.Executor, logger *log.Logger) *ParameterService {
	return &ParameterService{
		parameters: parameters,
		exec:       exec,
		logger:     logger.WithComponent(log.ComponentService),
	}
}

func (s *ParameterService) Create(ctx context.Context, parameter core.Parameter) result.ServiceResult[core.Parameter] {
	parameter.ActiveStatus = true
	if err := parameter.Validate(); err != nil {
		return result.Classify[core.Parameter](err)
	}

	created, err := resilience.Execute(ctx, s.exec, "parameter.insert", func(ctx context.Context) (core.Parameter, error) {
		return s.parameters.Insert(ctx, parameter)
	})
	if err != nil {
		return result.Classify[core.Parameter](err)
	}
	return result.Success(created)
}

func (s *ParameterService) Get(ctx context.Context, name string) result.ServiceResult[core.Parameter] {
	parameter, err := resilience.Execute(ctx, s.exec, "parameter.find", func(ctx context.Context) (*core.Parameter, error) {
		return s.parameters.FindByName(ctx, name)
	})
	if err != nil {
		return result.Classify[core.Parameter](err)
	}
	return result.Success(*parameter)
}

func (s *ParameterService) List(ctx context.Context) result.ServiceResult[[]core.Parameter] {
	parameters, err := resilience.Execute(ctx, s.exec, "parameter.list", func(ctx context.Context) ([]core.Parameter, error) {
		return s.parameters.List(ctx)
	})
	if err != nil {
		return result.Classify[[]core.Parameter](err)
	}
	return result.Success(parameters)
}

func (s *ParameterService) Update(ctx context.Context, parameter core.Parameter) result.ServiceResult[core.Parameter] {
	if err := parameter.Validate(); err != nil {
		return result.Classify[core.Parameter](err)
	}

	_, err := resilience.Execute(ctx, s.exec, "parameter.update", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.parameters.Update(ctx, parameter)
	})
	if err != nil {
		return result.Classify[core.Parameter](err)
	}
	return s.Get(ctx, parameter.Name)
}

func (s *ParameterService) Delete(ctx context.Context, name string) result.ServiceResult[struct{}] {
	_, err := resilience.Execute(ctx, s.exec, "parameter.delete", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.parameters.Delete(ctx, name)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}
	return result.Success(struct{}{})
}
