package services

import (
	"context"

	"ewarranty/internal/domain"
	"ewarranty/internal/repos"
)

type ContactService struct {
	Contacts *repos.ContactRepo
}

func NewContactService(contacts *repos.ContactRepo) *ContactService {
	return &ContactService{Contacts: contacts}
}

func (s *ContactService) Submit(ctx context.Context, m domain.ContactMessage) (domain.ContactMessage, error) {
	id, err := s.Contacts.Create(ctx, m)
	if err != nil {
		return domain.ContactMessage{}, err
	}
	m.ID = id
	return m, nil
}

func (s *ContactService) List(ctx context.Context, limit int) ([]domain.ContactMessage, error) {
	return s.Contacts.ListLatest(ctx, limit)
}

type DashboardService struct {
	Stats *repos.StatsRepo
}

func NewDashboardService(stats *repos.StatsRepo) *DashboardService {
	return &DashboardService{Stats: stats}
}

func (s *DashboardService) Overview(ctx context.Context) (domain.DashboardStats, error) {
	return s.Stats.Dashboard(ctx)
}
