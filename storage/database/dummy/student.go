package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

// query returns students matching `keep` (all when nil), ordered by ID.
func (repo *studentRepository) query(keep func(st student.Student) bool) []student.Student {
	students := make([]student.Student, 0, len(repo.db.students))
	for _, st := range repo.db.students {
		if keep == nil || keep(*st) {
			students = append(students, *st)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

// emailTaken must be called with the lock held.
func (repo *studentRepository) emailTaken(email string, exceptID int) bool {
	for _, st := range repo.db.students {
		if st.Email == email && st.ID != exceptID {
			return true
		}
	}
	return false
}

func (repo *studentRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.emailTaken(st.Email, 0) {
		return student.Student{}, student.EmailExists(st.Email)
	}

	st.ID = repo.db.nextPK("students")
	st.EnrollmentDate = st.EnrollmentDate.UTC()
	repo.db.students[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) QueryAllStudents(_ context.Context, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := repo.query(nil)
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range ordering {
			if c := compareStudents(students[i], students[j], ord.Field); c != 0 {
				return (c < 0) == ord.Ascending
			}
		}
		return false
	})
	return students, nil
}

// compareStudents compares `a` and `b` on one of student.OrderingFields.
func compareStudents(a, b student.Student, field string) int {
	switch field {
	case "id":
		return a.ID - b.ID
	case "firstName":
		return strings.Compare(a.FirstName, b.FirstName)
	case "lastName":
		return strings.Compare(a.LastName, b.LastName)
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "course":
		return strings.Compare(a.Course, b.Course)
	case "status":
		return strings.Compare(a.Status, b.Status)
	case "enrollmentDate":
		return a.EnrollmentDate.Compare(b.EnrollmentDate)
	}
	return 0
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if st, ok := repo.db.students[id]; ok {
		return *st, nil
	}
	return student.Student{}, student.NotFound(id)
}

func (repo *studentRepository) GetStudentByEmail(_ context.Context, email string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, st := range repo.db.students {
		if st.Email == email {
			return *st, nil
		}
	}
	return student.Student{}, student.NotFoundByEmail(email)
}

func (repo *studentRepository) SearchStudents(_ context.Context, term string) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.query(func(st student.Student) bool {
		return containsFold(st.FirstName, term) ||
			containsFold(st.LastName, term) ||
			containsFold(st.Email, term) ||
			containsFold(st.Course, term)
	}), nil
}

func (repo *studentRepository) FilterStudentsByStatus(_ context.Context, status string) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(st student.Student) bool { return st.Status == status }), nil
}

func (repo *studentRepository) FilterStudentsByCourse(_ context.Context, course string) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(st student.Student) bool { return st.Course == course }), nil
}

func (repo *studentRepository) CountStudentsByStatus(ctx context.Context, status string) (int, error) {
	students, err := repo.FilterStudentsByStatus(ctx, status)
	return len(students), err
}

func (repo *studentRepository) CountStudentsEnrolledBetween(_ context.Context, from, to time.Time) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := repo.query(func(st student.Student) bool {
		return !st.EnrollmentDate.Before(from) && st.EnrollmentDate.Before(to)
	})
	return len(students), nil
}

func (repo *studentRepository) RecentStudents(_ context.Context, limit int) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := repo.query(nil)
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].EnrollmentDate.Equal(students[j].EnrollmentDate) {
			return students[i].ID > students[j].ID
		}
		return students[i].EnrollmentDate.After(students[j].EnrollmentDate)
	})
	if len(students) > limit {
		students = students[:limit]
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	current, ok := repo.db.students[st.ID]
	if !ok {
		return student.Student{}, student.NotFound(st.ID)
	}
	if repo.emailTaken(st.Email, st.ID) {
		return student.Student{}, student.EmailExists(st.Email)
	}
	st.EnrollmentDate = current.EnrollmentDate
	repo.db.students[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return student.NotFound(id)
	}
	for feeID, f := range repo.db.fees {
		if f.StudentID == id {
			delete(repo.db.fees, feeID)
		}
	}
	delete(repo.db.students, id)
	return nil
}
