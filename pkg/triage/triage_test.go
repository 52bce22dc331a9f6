package triage

import (
	"reflect"
	"testing"
	"time"

	"stagewise/models"
)

func lead(name, mobile, city, status string, created time.Time) models.Lead {
	return models.Lead{Name: name, MobileNumber: mobile, City: city, Status: status, CreatedAt: created}
}

func TestCompletedSentinel(t *testing.T) {
	for _, s := range []string{"completed", "Completed", "COMPLETED"} {
		if !Completed(s) {
			t.Errorf("%q should count as completed", s)
		}
	}
	for _, s := range []string{"", "new", "pending", "done", "completed "} {
		if Completed(s) {
			t.Errorf("%q should not count as completed", s)
		}
	}
}

func TestNextStatusIsOwnInverseByClass(t *testing.T) {
	// Toggling twice restores the completion class, re-normalized to "new"
	// for anything that was not completed.
	for _, start := range []string{"new", "", "follow-up", "Completed"} {
		once := NextStatus(start)
		twice := NextStatus(once)
		if Completed(start) != Completed(twice) {
			t.Errorf("toggle twice from %q: class changed (%q -> %q)", start, once, twice)
		}
	}
	if NextStatus("completed") != "new" {
		t.Errorf("completed should reset to new, got %q", NextStatus("completed"))
	}
	if NextStatus("whatever") != "completed" {
		t.Errorf("non-completed should become completed, got %q", NextStatus("whatever"))
	}
}

func TestSearch(t *testing.T) {
	now := time.Now()
	leads := []models.Lead{
		lead("Asha Patel", "9876543210", "Mumbai", "new", now),
		lead("Ravi Kumar", "9123456780", "Pune", "completed", now),
		lead("Kiran Rao", "9988776655", "Bengaluru", "new", now),
	}

	if got := Search(leads, "  "); !reflect.DeepEqual(got, leads) {
		t.Fatalf("blank query must return input unchanged")
	}
	if got := Search(leads, "RAVI"); len(got) != 1 || got[0].Name != "Ravi Kumar" {
		t.Fatalf("name match failed: %+v", got)
	}
	if got := Search(leads, "99887"); len(got) != 1 || got[0].Name != "Kiran Rao" {
		t.Fatalf("mobile match failed: %+v", got)
	}
	if got := Search(leads, "mumbai"); len(got) != 1 || got[0].Name != "Asha Patel" {
		t.Fatalf("city match failed: %+v", got)
	}
	if got := Search(leads, "zzz"); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestSearchIdempotent(t *testing.T) {
	now := time.Now()
	leads := []models.Lead{
		lead("Asha", "111", "Mumbai", "new", now),
		lead("Ravi", "222", "Pune", "completed", now),
	}
	once := Search(leads, "a")
	twice := Search(once, "a")
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("search not idempotent: %+v vs %+v", once, twice)
	}
}

func TestSortPartitionsAndRecency(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	t3 := t1.Add(48 * time.Hour)
	leads := []models.Lead{
		lead("Asha", "1", "Mumbai", "new", t2),
		lead("Ravi", "2", "Pune", "completed", t3),
		lead("Kiran", "3", "Delhi", "new", t1),
	}
	got := Sort(leads)
	wantNames := []string{"Asha", "Kiran", "Ravi"}
	for i, w := range wantNames {
		if got[i].Name != w {
			t.Fatalf("order = %v, want %v", names(got), wantNames)
		}
	}
	// input untouched
	if leads[1].Name != "Ravi" || leads[0].Name != "Asha" {
		t.Fatalf("Sort mutated its input: %v", names(leads))
	}
}

func TestSortProperty(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var leads []models.Lead
	statuses := []string{"new", "completed", "", "COMPLETED", "follow-up"}
	for i := 0; i < 25; i++ {
		leads = append(leads, lead("L", "0", "C", statuses[i%len(statuses)], base.Add(time.Duration(i*i%13)*time.Hour)))
	}
	got := Sort(leads)
	seenCompleted := false
	var prev models.Lead
	for i, l := range got {
		if Completed(l.Status) {
			seenCompleted = true
		} else if seenCompleted {
			t.Fatalf("non-completed lead after completed one at %d", i)
		}
		if i > 0 && Completed(prev.Status) == Completed(l.Status) {
			if prev.CreatedAt.Before(l.CreatedAt) {
				t.Fatalf("created_at increasing within partition at %d", i)
			}
		}
		prev = l
	}
}

func TestGuardIgnoresReentrantToggle(t *testing.T) {
	var g Guard
	if !g.Begin(7) {
		t.Fatal("first toggle should start")
	}
	if g.Begin(7) {
		t.Fatal("re-entrant toggle for same lead must be ignored")
	}
	// a different lead takes over the single in-flight slot
	if !g.Begin(8) {
		t.Fatal("different lead should start")
	}
	g.End(8)
	if !g.Begin(7) {
		t.Fatal("toggle should start again after completion")
	}
	g.End(7)
}

func names(ls []models.Lead) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Name
	}
	return out
}
