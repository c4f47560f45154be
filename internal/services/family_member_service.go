package services

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/resilience"
	"fintrack/internal/result"
	"fintrack/internal/storage"
)

// FamilyMemberService manages the family members medical expenses are
// attributed to.
type FamilyMemberService struct {
	members storage.FamilyMemberRepository
	exec    *resilience.Executor
	logger  *log.Logger
}

func NewFamilyMemberService(members storage.FamilyMemberRepository, exec *resilience.Executor, logger *log.Logger) *FamilyMemberService {
	return &FamilyMemberService{
		members: members,
		exec:    exec,
		logger:  logger.WithComponent(log.ComponentService),
	}
}

func (s *FamilyMemberService) Create(ctx context.Context, member core.FamilyMember) result.ServiceResult[core.FamilyMember] {
	member.Owner = core.NormalizeName(member.Owner)
	member.MemberName = core.NormalizeName(member.MemberName)
	member.ActiveStatus = true
	if member.Relationship == "" {
		member.Relationship = core.RelationshipSelf
	}
	if err := member.Validate(); err != nil {
		return result.Classify[core.FamilyMember](err)
	}

	created, err := resilience.Execute(ctx, s.exec, "family_member.insert", func(ctx context.Context) (core.FamilyMember, error) {
		return s.members.Insert(ctx, member)
	})
	if err != nil {
		return result.Classify[core.FamilyMember](err)
	}
	return result.Success(created)
}

func (s *FamilyMemberService) Get(ctx context.Context, id int64) result.ServiceResult[core.FamilyMember] {
	member, err := resilience.Execute(ctx, s.exec, "family_member.find", func(ctx context.Context) (*core.FamilyMember, error) {
		return s.members.FindByID(ctx, id)
	})
	if err != nil {
		return result.Classify[core.FamilyMember](err)
	}
	return result.Success(*member)
}

func (s *FamilyMemberService) ListByOwner(ctx context.Context, owner string) result.ServiceResult[[]core.FamilyMember] {
	members, err := resilience.Execute(ctx, s.exec, "family_member.list", func(ctx context.Context) ([]core.FamilyMember, error) {
		return s.members.ListByOwner(ctx, core.NormalizeName(owner))
	})
	if err != nil {
		return result.Classify[[]core.FamilyMember](err)
	}
	return result.Success(members)
}

func (s *FamilyMemberService) Update(ctx context.Context, member core.FamilyMember) result.ServiceResult[core.FamilyMember] {
	member.Owner = core.NormalizeName(member.Owner)
	member.MemberName = core.NormalizeName(member.MemberName)
	if err := member.Validate(); err != nil {
		return result.Classify[core.FamilyMember](err)
	}

	_, err := resilience.Execute(ctx, s.exec, "family_member.update", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.members.Update(ctx, member)
	})
	if err != nil {
		return result.Classify[core.FamilyMember](err)
	}
	return s.Get(ctx, member.FamilyMemberID)
}

func (s *FamilyMemberService) Deactivate(ctx context.Context, id int64) result.ServiceResult[struct{}] {
	_, err := resilience.Execute(ctx, s.exec, "family_member.deactivate", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.members.SetActiveStatus(ctx, id, false)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}
	return result.Success(struct{}{})
}
