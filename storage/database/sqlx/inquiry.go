package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/inquiry"
)

const inquiryColumns = `id, name, email, phone, subject, message, status, created_date, response, response_date`

type inquiryRepository struct {
	db *DB
}

var _ inquiry.Repository = (*inquiryRepository)(nil) // interface compliance check

func NewInquiryRepository(db *DB) inquiry.Repository {
	return &inquiryRepository{db: db}
}

func (repo *inquiryRepository) selectInquiries(ctx context.Context, where, suffix string, args ...interface{}) ([]inquiry.Inquiry, error) {
	q := "SELECT " + inquiryColumns + " FROM inquiries"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY created_date DESC, id DESC" + suffix

	inquiries := make([]inquiry.Inquiry, 0)
	if err := repo.db.SelectContext(ctx, &inquiries, repo.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return inquiries, nil
}

func (repo *inquiryRepository) CreateInquiry(ctx context.Context, inq inquiry.Inquiry) (inquiry.Inquiry, error) {
	q := repo.db.Rebind(`INSERT INTO inquiries
		(name, email, phone, subject, message, status, created_date, response, response_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	err := repo.db.QueryRowxContext(ctx, q,
		inq.Name, inq.Email, inq.Phone, inq.Subject, inq.Message, inq.Status,
		inq.CreatedDate.UTC(), inq.Response, inq.ResponseDate,
	).Scan(&inq.ID)
	if err != nil {
		return inquiry.Inquiry{}, errors.Wrap(err, "inserting inquiry")
	}
	return inq, nil
}

func (repo *inquiryRepository) QueryAllInquiries(ctx context.Context) ([]inquiry.Inquiry, error) {
	inquiries, err := repo.selectInquiries(ctx, "", "")
	return inquiries, errors.Wrap(err, "querying inquiries")
}

func (repo *inquiryRepository) GetInquiryByID(ctx context.Context, id int) (inquiry.Inquiry, error) {
	var inq inquiry.Inquiry
	q := repo.db.Rebind("SELECT " + inquiryColumns + " FROM inquiries WHERE id = ?")
	if err := repo.db.GetContext(ctx, &inq, q, id); err != nil {
		return inquiry.Inquiry{}, trapNoRowsErr(err, inquiry.NotFound(id), "getting inquiry by id")
	}
	return inq, nil
}

func (repo *inquiryRepository) FilterInquiriesByStatus(ctx context.Context, status string) ([]inquiry.Inquiry, error) {
	inquiries, err := repo.selectInquiries(ctx, "status = ?", "", status)
	return inquiries, errors.Wrap(err, "filtering inquiries by status")
}

func (repo *inquiryRepository) FilterInquiriesByEmail(ctx context.Context, email string) ([]inquiry.Inquiry, error) {
	inquiries, err := repo.selectInquiries(ctx, "email = ?", "", email)
	return inquiries, errors.Wrap(err, "filtering inquiries by email")
}

func (repo *inquiryRepository) CountInquiriesByStatus(ctx context.Context, status string) (int, error) {
	var count int
	q := repo.db.Rebind("SELECT COUNT(*) FROM inquiries WHERE status = ?")
	if err := repo.db.GetContext(ctx, &count, q, status); err != nil {
		return 0, errors.Wrap(err, "counting inquiries by status")
	}
	return count, nil
}

func (repo *inquiryRepository) RecentInquiries(ctx context.Context, limit int) ([]inquiry.Inquiry, error) {
	inquiries, err := repo.selectInquiries(ctx, "", " LIMIT ?", limit)
	return inquiries, errors.Wrap(err, "querying recent inquiries")
}

func (repo *inquiryRepository) UpdateInquiry(ctx context.Context, inq inquiry.Inquiry) (inquiry.Inquiry, error) {
	q := repo.db.Rebind(`UPDATE inquiries SET
		name = ?, email = ?, phone = ?, subject = ?, message = ?, status = ?, response = ?, response_date = ?
		WHERE id = ?`)

	res, err := repo.db.ExecContext(ctx, q,
		inq.Name, inq.Email, inq.Phone, inq.Subject, inq.Message, inq.Status,
		inq.Response, inq.ResponseDate, inq.ID,
	)
	if err != nil {
		return inquiry.Inquiry{}, errors.Wrap(err, "updating inquiry")
	}
	if err = checkAffected(res, inquiry.NotFound(inq.ID), "updating inquiry"); err != nil {
		return inquiry.Inquiry{}, err
	}
	return repo.GetInquiryByID(ctx, inq.ID)
}

func (repo *inquiryRepository) DeleteInquiry(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM inquiries WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting inquiry")
	}
	return checkAffected(res, inquiry.NotFound(id), "deleting inquiry")
}
