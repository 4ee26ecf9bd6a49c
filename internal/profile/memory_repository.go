package profile

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository,
// used in tests.
type InMemoryRepository struct {
	mu        sync.RWMutex
	profiles  map[string]*Profile
	work      map[string][]*WorkEntry
	education map[string][]*EducationEntry
	portfolio map[string][]*PortfolioItem
	skills    map[string][]*Skill
}

// NewInMemoryRepository creates a new in-memory profile repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles:  make(map[string]*Profile),
		work:      make(map[string][]*WorkEntry),
		education: make(map[string][]*EducationEntry),
		portfolio: make(map[string][]*PortfolioItem),
		skills:    make(map[string][]*Skill),
	}
}

// GetRecords assembles every profile record the user owns.
func (r *InMemoryRepository) GetRecords(_ context.Context, userID string) (*Records, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := &Records{}
	if p, ok := r.profiles[userID]; ok {
		cp := *p
		records.Profile = &cp
	}
	for _, e := range r.work[userID] {
		cp := *e
		records.Work = append(records.Work, &cp)
	}
	for _, e := range r.education[userID] {
		cp := *e
		records.Education = append(records.Education, &cp)
	}
	for _, e := range r.portfolio[userID] {
		cp := *e
		records.Portfolio = append(records.Portfolio, &cp)
	}
	for _, e := range r.skills[userID] {
		cp := *e
		records.Skills = append(records.Skills, &cp)
	}
	return records, nil
}

// UpsertProfile creates or replaces the free-text profile.
func (r *InMemoryRepository) UpsertProfile(_ context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

// AddWorkEntry appends a work-history position.
func (r *InMemoryRepository) AddWorkEntry(_ context.Context, entry *WorkEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *entry
	r.work[entry.UserID] = append(r.work[entry.UserID], &cp)
	return nil
}

// AddEducationEntry appends an education record.
func (r *InMemoryRepository) AddEducationEntry(_ context.Context, entry *EducationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *entry
	r.education[entry.UserID] = append(r.education[entry.UserID], &cp)
	return nil
}

// AddPortfolioItem appends a portfolio item.
func (r *InMemoryRepository) AddPortfolioItem(_ context.Context, item *PortfolioItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *item
	r.portfolio[item.UserID] = append(r.portfolio[item.UserID], &cp)
	return nil
}

// AddSkill appends a skill.
func (r *InMemoryRepository) AddSkill(_ context.Context, skill *Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *skill
	r.skills[skill.UserID] = append(r.skills[skill.UserID], &cp)
	return nil
}

// DeleteAllForUser removes every profile record the user owns.
func (r *InMemoryRepository) DeleteAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.profiles, userID)
	delete(r.work, userID)
	delete(r.education, userID)
	delete(r.portfolio, userID)
	delete(r.skills, userID)
	return nil
}
