package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
	"github.com/sogrim/technion-sogrim-sub000/core/student"
)

const (
	studentColumns = "id, name, email, is_admin, catalog_id, details, created_at, updated_at"

	uniqueViolation = "23505"
)

type (
	studentRepository struct {
		db core.DB
	}

	studentRow struct {
		ID        string         `db:"id"`
		Name      string         `db:"name"`
		Email     null.String    `db:"email"`
		IsAdmin   bool           `db:"is_admin"`
		CatalogID null.String    `db:"catalog_id"`
		Details   types.JSONText `db:"details"`
		CreatedAt time.Time      `db:"created_at"`
		UpdatedAt time.Time      `db:"updated_at"`
	}

	// detailsDoc is the JSONB document of the details column. The catalog has its own column.
	detailsDoc struct {
		Courses  []course.Record `json:"courses"`
		Modified bool            `json:"modified"`
	}
)

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db core.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) boil(st student.Student) (studentRow, error) {
	doc, err := json.Marshal(detailsDoc{Courses: st.Details.Courses, Modified: st.Details.Modified})
	if err != nil {
		return studentRow{}, errors.Wrap(err, "encoding details")
	}
	return studentRow{
		ID:        st.ID,
		Name:      st.Name,
		Email:     null.NewString(st.Email, st.Email != ""),
		IsAdmin:   st.IsAdmin,
		CatalogID: null.NewString(st.Details.CatalogID, st.Details.CatalogID != ""),
		Details:   types.JSONText(doc),
		CreatedAt: st.CreatedAt.UTC(),
		UpdatedAt: st.UpdatedAt.UTC(),
	}, nil
}

func (repo studentRepository) unboil(row studentRow) (student.Student, error) {
	var doc detailsDoc
	if len(row.Details) > 0 {
		if err := row.Details.Unmarshal(&doc); err != nil {
			return student.Student{}, errors.Wrap(err, "decoding details")
		}
	}
	if doc.Courses == nil {
		doc.Courses = []course.Record{}
	}
	return student.Student{
		ID:      row.ID,
		Name:    row.Name,
		Email:   row.Email.String,
		IsAdmin: row.IsAdmin,
		Details: student.Details{
			CatalogID: row.CatalogID.String,
			Courses:   doc.Courses,
			Modified:  doc.Modified,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	row, err := repo.boil(st)
	if err != nil {
		return student.Student{}, err
	}

	q := `INSERT INTO student (` + studentColumns + `)
		VALUES (:id, :name, :email, :is_admin, :catalog_id, :details, :created_at, :updated_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return repo.unboil(row)
}

func (repo studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	if !validID(id) {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "selecting student")
	}
	return repo.unboil(row)
}

func (repo studentRepository) QueryStudents(ctx context.Context, ordering ...core.DBOrdering) ([]student.Student, error) {
	ordering = core.AllowedOrderings(ordering, student.OrderByName, student.OrderByEmail, student.OrderByCreatedAt)
	orderBy := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		orderBy = append(orderBy, ord.String())
	}
	orderBy = append(orderBy, "created_at ASC", "id ASC")

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+studentColumns+` FROM student ORDER BY `+strings.Join(orderBy, ", ")); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		st, err := repo.unboil(row)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, nil
}

func (repo studentRepository) UpdateDetails(ctx context.Context, id string, fn func(student.Details) (student.Details, error)) (_ student.Student, err error) {
	if !validID(id) {
		return student.Student{}, student.ErrNotFound
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "starting transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var row studentRow
	if err = tx.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM student WHERE id = $1 FOR UPDATE`, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "selecting student")
	}
	st, err := repo.unboil(row)
	if err != nil {
		return student.Student{}, err
	}

	details, err := fn(st.Details)
	if err != nil {
		return student.Student{}, err
	}
	st.Details = details
	st.UpdatedAt = time.Now().UTC()

	if row, err = repo.boil(st); err != nil {
		return student.Student{}, err
	}
	q := `UPDATE student SET catalog_id = :catalog_id, details = :details, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, q, row); err != nil {
		return student.Student{}, errors.Wrap(err, "updating details")
	}
	if err = tx.Commit(); err != nil {
		return student.Student{}, errors.Wrap(err, "committing details")
	}
	return st, nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id string) error {
	if !validID(id) {
		return student.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}
