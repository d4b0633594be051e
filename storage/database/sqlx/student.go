package sqlxrepos

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

const studentColumns = `id, first_name, last_name, email, phone, date_of_birth, gender, address, course, enrollment_date, status`

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) selectStudents(ctx context.Context, where, suffix string, args ...interface{}) ([]student.Student, error) {
	q := "SELECT " + studentColumns + " FROM students"
	if where != "" {
		q += " WHERE " + where
	}
	q += suffix

	students := make([]student.Student, 0)
	if err := repo.db.SelectContext(ctx, &students, repo.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return students, nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	q := repo.db.Rebind(`INSERT INTO students
		(first_name, last_name, email, phone, date_of_birth, gender, address, course, enrollment_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	err := repo.db.QueryRowxContext(ctx, q,
		st.FirstName, st.LastName, st.Email, st.Phone, st.DateOfBirth,
		st.Gender, st.Address, st.Course, st.EnrollmentDate.UTC(), st.Status,
	).Scan(&st.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.EmailExists(st.Email)
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context, ordering []core.DBOrdering) ([]student.Student, error) {
	students, err := repo.selectStudents(ctx, "", orderBy(ordering, student.OrderingFields))
	return students, errors.Wrap(err, "querying students")
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var st student.Student
	q := repo.db.Rebind("SELECT " + studentColumns + " FROM students WHERE id = ?")
	if err := repo.db.GetContext(ctx, &st, q, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.NotFound(id), "getting student by id")
	}
	return st, nil
}

func (repo *studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	var st student.Student
	q := repo.db.Rebind("SELECT " + studentColumns + " FROM students WHERE email = ?")
	if err := repo.db.GetContext(ctx, &st, q, email); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.NotFoundByEmail(email), "getting student by email")
	}
	return st, nil
}

func (repo *studentRepository) SearchStudents(ctx context.Context, term string) ([]student.Student, error) {
	lower, fold := repo.db.lowerFunc()
	pattern := containsPattern(term, fold)
	where := fmt.Sprintf(
		`%[1]s(first_name) LIKE ? ESCAPE '\' OR %[1]s(last_name) LIKE ? ESCAPE '\'
		OR %[1]s(email) LIKE ? ESCAPE '\' OR %[1]s(course) LIKE ? ESCAPE '\'`,
		lower,
	)
	students, err := repo.selectStudents(ctx, where, " ORDER BY id ASC", pattern, pattern, pattern, pattern)
	return students, errors.Wrap(err, "searching students")
}

func (repo *studentRepository) FilterStudentsByStatus(ctx context.Context, status string) ([]student.Student, error) {
	students, err := repo.selectStudents(ctx, "status = ?", " ORDER BY id ASC", status)
	return students, errors.Wrap(err, "filtering students by status")
}

func (repo *studentRepository) FilterStudentsByCourse(ctx context.Context, course string) ([]student.Student, error) {
	students, err := repo.selectStudents(ctx, "course = ?", " ORDER BY id ASC", course)
	return students, errors.Wrap(err, "filtering students by course")
}

func (repo *studentRepository) CountStudentsByStatus(ctx context.Context, status string) (int, error) {
	var count int
	q := repo.db.Rebind("SELECT COUNT(*) FROM students WHERE status = ?")
	if err := repo.db.GetContext(ctx, &count, q, status); err != nil {
		return 0, errors.Wrap(err, "counting students by status")
	}
	return count, nil
}

func (repo *studentRepository) CountStudentsEnrolledBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	q := repo.db.Rebind("SELECT COUNT(*) FROM students WHERE enrollment_date >= ? AND enrollment_date < ?")
	if err := repo.db.GetContext(ctx, &count, q, from.UTC(), to.UTC()); err != nil {
		return 0, errors.Wrap(err, "counting enrolled students")
	}
	return count, nil
}

func (repo *studentRepository) RecentStudents(ctx context.Context, limit int) ([]student.Student, error) {
	students, err := repo.selectStudents(ctx, "", " ORDER BY enrollment_date DESC, id DESC LIMIT ?", limit)
	return students, errors.Wrap(err, "querying recent students")
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	q := repo.db.Rebind(`UPDATE students SET
		first_name = ?, last_name = ?, email = ?, phone = ?, date_of_birth = ?,
		gender = ?, address = ?, course = ?, status = ?
		WHERE id = ?`)

	res, err := repo.db.ExecContext(ctx, q,
		st.FirstName, st.LastName, st.Email, st.Phone, st.DateOfBirth,
		st.Gender, st.Address, st.Course, st.Status, st.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.EmailExists(st.Email)
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if err = checkAffected(res, student.NotFound(st.ID), "updating student"); err != nil {
		return student.Student{}, err
	}
	return repo.GetStudentByID(ctx, st.ID)
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) error {
	return repo.db.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM fees WHERE student_id = ?"), id); err != nil {
			return errors.Wrap(err, "deleting student fees")
		}
		res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM students WHERE id = ?"), id)
		if err != nil {
			return errors.Wrap(err, "deleting student")
		}
		return checkAffected(res, student.NotFound(id), "deleting student")
	})
}
