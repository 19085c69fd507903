package course

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func validInput() CourseInput {
	return CourseInput{
		Title:         "Full-Stack Web Development",
		Slug:          "full-stack-web-development",
		Description:   "Twelve weeks of project-based learning.",
		Category:      "web",
		Level:         "beginner",
		PriceCents:    49900,
		DurationWeeks: 12,
		Published:     true,
	}
}

func TestCreateCourse(t *testing.T) {
	repo := newFakeCourseRepo()
	service := NewService(repo)

	stored, err := service.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if stored.ID == uuid.Nil {
		t.Fatalf("expected assigned ID")
	}
	if len(repo.courses) != 1 {
		t.Fatalf("expected one stored course, got %d", len(repo.courses))
	}
}

func TestCreateCourseValidation(t *testing.T) {
	service := NewService(newFakeCourseRepo())

	cases := []struct {
		name   string
		mutate func(*CourseInput)
	}{
		{"empty title", func(in *CourseInput) { in.Title = "  " }},
		{"bad slug", func(in *CourseInput) { in.Slug = "Not A Slug!" }},
		{"negative price", func(in *CourseInput) { in.PriceCents = -1 }},
		{"negative duration", func(in *CourseInput) { in.DurationWeeks = -2 }},
	}

	for _, tc := range cases {
		input := validInput()
		tc.mutate(&input)
		if _, err := service.Create(context.Background(), input); !errors.Is(err, ErrInvalidCourse) {
			t.Errorf("%s: expected ErrInvalidCourse, got %v", tc.name, err)
		}
	}
}

func TestCreateCourseDuplicateSlug(t *testing.T) {
	repo := newFakeCourseRepo()
	service := NewService(repo)

	if _, err := service.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("first create returned error: %v", err)
	}
	if _, err := service.Create(context.Background(), validInput()); !errors.Is(err, ErrSlugAlreadyExists) {
		t.Fatalf("expected ErrSlugAlreadyExists, got %v", err)
	}
}

func TestGetUnpublishedHiddenFromNonAdmin(t *testing.T) {
	repo := newFakeCourseRepo()
	service := NewService(repo)

	input := validInput()
	input.Published = false
	stored, err := service.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := service.Get(context.Background(), stored.ID, false); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected draft hidden from non-admin, got %v", err)
	}
	if _, err := service.Get(context.Background(), stored.ID, true); err != nil {
		t.Fatalf("admin get failed: %v", err)
	}
}

func TestListClampsLimit(t *testing.T) {
	repo := newFakeCourseRepo()
	service := NewService(repo)

	if _, err := service.List(context.Background(), ListQuery{Limit: 100000}, false); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.lastQuery.Limit != maxListLimit {
		t.Fatalf("expected limit clamped to %d, got %d", maxListLimit, repo.lastQuery.Limit)
	}
	if !repo.lastQuery.PublishedOnly {
		t.Fatalf("non-admin list must be restricted to published courses")
	}
}

func TestUpdateCourse(t *testing.T) {
	repo := newFakeCourseRepo()
	service := NewService(repo)

	stored, err := service.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	input := validInput()
	input.Title = "Full-Stack Web Development, 2nd Edition"
	updated, err := service.Update(context.Background(), stored.ID, input)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != input.Title {
		t.Fatalf("title not updated: %s", updated.Title)
	}
	if updated.ID != stored.ID {
		t.Fatalf("update must not change the ID")
	}
}

// --- fakes ---

type fakeCourseRepo struct {
	courses   map[uuid.UUID]Course
	lastQuery ListQuery
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[uuid.UUID]Course)}
}

func (f *fakeCourseRepo) Create(ctx context.Context, c Course) (Course, error) {
	for _, existing := range f.courses {
		if existing.Slug == c.Slug {
			return Course{}, ErrSlugAlreadyExists
		}
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.courses[c.ID] = c
	return c, nil
}

func (f *fakeCourseRepo) Get(ctx context.Context, courseID uuid.UUID) (Course, error) {
	c, ok := f.courses[courseID]
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return c, nil
}

func (f *fakeCourseRepo) GetBySlug(ctx context.Context, slug string) (Course, error) {
	for _, c := range f.courses {
		if c.Slug == slug {
			return c, nil
		}
	}
	return Course{}, ErrCourseNotFound
}

func (f *fakeCourseRepo) List(ctx context.Context, q ListQuery) ([]Course, error) {
	f.lastQuery = q
	var out []Course
	for _, c := range f.courses {
		if q.PublishedOnly && !c.Published {
			continue
		}
		if q.Category != "" && c.Category != q.Category {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, c Course) (Course, error) {
	if _, ok := f.courses[c.ID]; !ok {
		return Course{}, ErrCourseNotFound
	}
	c.UpdatedAt = time.Now()
	f.courses[c.ID] = c
	return c, nil
}

func (f *fakeCourseRepo) Delete(ctx context.Context, courseID uuid.UUID) error {
	if _, ok := f.courses[courseID]; !ok {
		return ErrCourseNotFound
	}
	delete(f.courses, courseID)
	return nil
}
