package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core/inquiry"
)

type inquiryRepository struct {
	db *DB
}

var _ inquiry.Repository = (*inquiryRepository)(nil) // interface compliance check

func NewInquiryRepository(db *DB) inquiry.Repository {
	return &inquiryRepository{db: db}
}

// query returns inquiries matching `keep` (all when nil), newest first.
func (repo *inquiryRepository) query(keep func(inq inquiry.Inquiry) bool) []inquiry.Inquiry {
	inquiries := make([]inquiry.Inquiry, 0, len(repo.db.inquiries))
	for _, inq := range repo.db.inquiries {
		if keep == nil || keep(*inq) {
			inquiries = append(inquiries, *inq)
		}
	}
	sort.Slice(inquiries, func(i, j int) bool {
		if inquiries[i].CreatedDate.Equal(inquiries[j].CreatedDate) {
			return inquiries[i].ID > inquiries[j].ID
		}
		return inquiries[i].CreatedDate.After(inquiries[j].CreatedDate)
	})
	return inquiries
}

func (repo *inquiryRepository) CreateInquiry(_ context.Context, inq inquiry.Inquiry) (inquiry.Inquiry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inq.ID = repo.db.nextPK("inquiries")
	repo.db.inquiries[inq.ID] = &inq
	return inq, nil
}

func (repo *inquiryRepository) QueryAllInquiries(context.Context) ([]inquiry.Inquiry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(nil), nil
}

func (repo *inquiryRepository) GetInquiryByID(_ context.Context, id int) (inquiry.Inquiry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inq, ok := repo.db.inquiries[id]; ok {
		return *inq, nil
	}
	return inquiry.Inquiry{}, inquiry.NotFound(id)
}

func (repo *inquiryRepository) FilterInquiriesByStatus(_ context.Context, status string) ([]inquiry.Inquiry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(inq inquiry.Inquiry) bool { return inq.Status == status }), nil
}

func (repo *inquiryRepository) FilterInquiriesByEmail(_ context.Context, email string) ([]inquiry.Inquiry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(inq inquiry.Inquiry) bool { return inq.Email == email }), nil
}

func (repo *inquiryRepository) CountInquiriesByStatus(ctx context.Context, status string) (int, error) {
	inquiries, err := repo.FilterInquiriesByStatus(ctx, status)
	return len(inquiries), err
}

func (repo *inquiryRepository) RecentInquiries(_ context.Context, limit int) ([]inquiry.Inquiry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	inquiries := repo.query(nil)
	if len(inquiries) > limit {
		inquiries = inquiries[:limit]
	}
	return inquiries, nil
}

func (repo *inquiryRepository) UpdateInquiry(_ context.Context, inq inquiry.Inquiry) (inquiry.Inquiry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	current, ok := repo.db.inquiries[inq.ID]
	if !ok {
		return inquiry.Inquiry{}, inquiry.NotFound(inq.ID)
	}
	inq.CreatedDate = current.CreatedDate
	repo.db.inquiries[inq.ID] = &inq
	return inq, nil
}

func (repo *inquiryRepository) DeleteInquiry(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.inquiries[id]; !ok {
		return inquiry.NotFound(id)
	}
	delete(repo.db.inquiries, id)
	return nil
}
