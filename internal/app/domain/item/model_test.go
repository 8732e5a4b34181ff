package item

import "testing"

func TestPriorityValid(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	for _, p := range []Priority{"", "urgent", "HIGH"} {
		if p.Valid() {
			t.Errorf("%q should be invalid", p)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusCompleted} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []Status{"", "done", "Pending"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	var i Item
	i.ApplyDefaults()
	if i.Priority != PriorityMedium || i.Status != StatusPending {
		t.Fatalf("expected medium/pending, got %s/%s", i.Priority, i.Status)
	}

	i = Item{Priority: PriorityHigh, Status: StatusCompleted}
	i.ApplyDefaults()
	if i.Priority != PriorityHigh || i.Status != StatusCompleted {
		t.Fatal("defaults must not overwrite set values")
	}
}
