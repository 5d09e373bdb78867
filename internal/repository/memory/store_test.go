package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"videoingest/internal/domain"
)

func mkVideo(id, tenant, title string) domain.Video {
	return domain.Video{
		ID:        domain.VideoID(id),
		TenantID:  domain.TenantID(tenant),
		Title:     title,
		Status:    domain.StatusUploaded,
		CreatedAt: time.Now().UTC(),
	}
}

func TestCreateThenGet(t *testing.T) {
	s := New()
	ctx := context.Background()
	v := mkVideo("v1", "t1", "clip")
	if err := s.Create(ctx, v); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := s.Get(ctx, "v1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "clip" {
		t.Fatalf("Title = %q, want clip", got.Title)
	}
}

func TestCreateDuplicateConflicts(t *testing.T) {
	s := New()
	ctx := context.Background()
	v := mkVideo("v1", "t1", "clip")
	if err := s.Create(ctx, v); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, v); err != domain.ErrConflict {
		t.Fatalf("Create duplicate = %v, want ErrConflict", err)
	}
}

func TestUpdateUnknownNotFound(t *testing.T) {
	s := New()
	if err := s.Update(context.Background(), mkVideo("missing", "t1", "x")); err != domain.ErrNotFound {
		t.Fatalf("Update = %v, want ErrNotFound", err)
	}
}

func TestGetUnknownNotFound(t *testing.T) {
	s := New()
	if _, err := s.Get(context.Background(), "missing"); err != domain.ErrNotFound {
		t.Fatalf("Get = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Create(ctx, mkVideo("v1", "t1", "clip"))
	if err := s.Delete(ctx, "v1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "v1"); err != domain.ErrNotFound {
		t.Fatalf("Get after Delete = %v, want ErrNotFound", err)
	}
}

func TestListFiltersByTenant(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Create(ctx, mkVideo("v1", "t1", "a"))
	s.Create(ctx, mkVideo("v2", "t2", "b"))

	got, err := s.List(ctx, domain.VideoFilter{TenantID: "t1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != "v1" {
		t.Fatalf("List = %+v, want only v1", got)
	}
}

func TestListFiltersByStatusAndSearch(t *testing.T) {
	s := New()
	ctx := context.Background()
	safe := domain.StatusSafe
	v1 := mkVideo("v1", "t1", "kittens playing")
	v1.Status = domain.StatusSafe
	v2 := mkVideo("v2", "t1", "puppies running")
	v2.Status = domain.StatusFlagged
	s.Create(ctx, v1)
	s.Create(ctx, v2)

	got, err := s.List(ctx, domain.VideoFilter{TenantID: "t1", Status: &safe})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != "v1" {
		t.Fatalf("List by status = %+v, want only v1", got)
	}

	got, err = s.List(ctx, domain.VideoFilter{TenantID: "t1", Search: "puppies"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != "v2" {
		t.Fatalf("List by search = %+v, want only v2", got)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	older := mkVideo("v1", "t1", "a")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := mkVideo("v2", "t1", "b")
	newer.CreatedAt = time.Now()
	s.Create(ctx, older)
	s.Create(ctx, newer)

	got, err := s.List(ctx, domain.VideoFilter{TenantID: "t1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "v2" {
		t.Fatalf("List order = %+v, want v2 first", got)
	}
}

func TestListPagination(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		v := mkVideo(fmt.Sprintf("v%d", i), "t1", "x")
		v.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		s.Create(ctx, v)
	}
	got, err := s.List(ctx, domain.VideoFilter{TenantID: "t1", Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List = %d results, want 2", len(got))
	}
}
