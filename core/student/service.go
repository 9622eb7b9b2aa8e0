package student

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("כתובת הדואר האלקטרוני כבר רשומה")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, st Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		QueryStudents(ctx context.Context, ordering ...core.DBOrdering) ([]Student, error)
		// UpdateDetails replaces the student's details by fn's result, atomically.
		// Nothing is written when fn fails; its error is returned as is.
		UpdateDetails(ctx context.Context, id string, fn func(Details) (Details, error)) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
	}

	// Listener is notified of every action successfully applied to a student's details.
	Listener func(st Student, action Action)

	Service struct {
		repo     Repository
		validate *validator.Validate

		mu        sync.RWMutex
		listeners []subscription
		nextSubID int
	}

	subscription struct {
		id int
		fn Listener
	}
)

// Orderable fields of QueryStudents
const (
	OrderByName      = "name"
	OrderByEmail     = "email"
	OrderByCreatedAt = "created_at"
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	st := Student{
		Name:      ns.Name,
		Email:     ns.Email,
		IsAdmin:   ns.IsAdmin,
		Details:   Details{Courses: []course.Record{}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	st, err := svc.repo.CreateStudent(ctx, st)
	if errors.Cause(err) == ErrEmailExists {
		return Student{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	return st, err
}

func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Query(ctx context.Context, ordering ...core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, core.AllowedOrderings(ordering, OrderByName, OrderByEmail, OrderByCreatedAt)...)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}

// Dispatch applies action to the student's details, persists the result and notifies the listeners.
func (svc *Service) Dispatch(ctx context.Context, id string, action Action) (Student, error) {
	if rd, ok := action.(ReplaceDetails); ok {
		// report every invalid row at once
		if err := svc.validate.Struct(rd.Details); err != nil {
			return Student{}, err
		}
	}

	st, err := svc.repo.UpdateDetails(ctx, id, func(details Details) (Details, error) {
		return Reduce(details, action)
	})
	if err != nil {
		return Student{}, err
	}

	svc.notify(st, action)
	return st, nil
}

// Subscribe registers a listener and returns the function that removes it.
func (svc *Service) Subscribe(fn Listener) (unsubscribe func()) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.nextSubID++
	id := svc.nextSubID
	svc.listeners = append(svc.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			svc.mu.Lock()
			defer svc.mu.Unlock()
			for i, sub := range svc.listeners {
				if sub.id == id {
					svc.listeners = append(svc.listeners[:i:i], svc.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (svc *Service) notify(st Student, action Action) {
	svc.mu.RLock()
	listeners := make([]Listener, len(svc.listeners))
	for i, sub := range svc.listeners {
		listeners[i] = sub.fn
	}
	svc.mu.RUnlock()

	for _, fn := range listeners {
		fn(st, action)
	}
}
