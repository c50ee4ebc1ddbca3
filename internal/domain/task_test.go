package domain

import (
	"errors"
	"testing"
)

func TestTaskCategoryValidate(t *testing.T) {
	cases := []struct {
		name    string
		cat     TaskCategory
		wantErr bool
	}{
		{"continuous single week ok", TaskCategory{Name: "ER", DaysParameter: Continuous, NumberOfWeeks: 1}, false},
		{"multi week two weeks ok", TaskCategory{Name: "CTU", DaysParameter: MultiWeek, NumberOfWeeks: 2}, false},
		{"continuous with multiple weeks rejected", TaskCategory{Name: "ER", DaysParameter: Continuous, NumberOfWeeks: 2}, true},
		{"zero weeks rejected", TaskCategory{Name: "ER", DaysParameter: Continuous, NumberOfWeeks: 0}, true},
		{"empty name rejected", TaskCategory{Name: "", DaysParameter: Continuous, NumberOfWeeks: 1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cat.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestTaskDerivedFields(t *testing.T) {
	cat := TaskCategory{Name: "CTU", DaysParameter: MultiWeek, NumberOfWeeks: 2, WeekdayRevenue: 100, CallRevenue: 200}
	main := Task{CategoryName: "CTU", Type: TaskMain, Name: "CTU_A", Heaviness: 3}
	if got := main.NumberOfWeeks(cat); got != 2 {
		t.Fatalf("main.NumberOfWeeks() = %d, want 2", got)
	}
	if !main.IsHeavy() {
		t.Fatalf("expected heaviness 3 to be heavy")
	}
	if main.IsDiscontinuous(cat) {
		t.Fatalf("MultiWeek category must not be discontinuous")
	}
	if got := main.Revenue(cat); got != 100 {
		t.Fatalf("main.Revenue() = %v, want 100", got)
	}

	call := Task{CategoryName: "CTU", Type: TaskCall, Name: "CTU_CALL"}
	if got := call.NumberOfWeeks(cat); got != 1 {
		t.Fatalf("call.NumberOfWeeks() = %d, want 1 regardless of category", got)
	}
	if got := call.Revenue(cat); got != 200 {
		t.Fatalf("call.Revenue() = %v, want 200", got)
	}
}

func TestLinkageManagerRejectsWrongDirection(t *testing.T) {
	m := NewLinkageManager()
	main := Task{Type: TaskMain, Name: "CTU_A"}
	call := Task{Type: TaskCall, Name: "CTU_A_CALL"}

	if err := m.LinkTasks(main, call); err != nil {
		t.Fatalf("main -> call should be accepted: %v", err)
	}
	got, ok := m.GetLinkedCall("CTU_A")
	if !ok || got != "CTU_A_CALL" {
		t.Fatalf("GetLinkedCall() = (%q, %v), want (CTU_A_CALL, true)", got, ok)
	}

	if err := m.LinkTasks(call, main); err == nil {
		t.Fatalf("call -> main must be rejected")
	}
	if err := m.LinkTasks(main, main); err == nil {
		t.Fatalf("main -> main must be rejected")
	}
	if !errors.Is(func() error { return m.LinkTasks(call, main) }(), ErrInvalidConfig) {
		t.Fatalf("rejection must wrap ErrInvalidConfig")
	}
}

func TestLinkageManagerSharedCall(t *testing.T) {
	m := NewLinkageManager()
	a := Task{Type: TaskMain, Name: "CTU_A"}
	b := Task{Type: TaskMain, Name: "CTU_B"}
	shared := Task{Type: TaskCall, Name: "SHARED_CALL"}

	if err := m.LinkTasks(a, shared); err != nil {
		t.Fatal(err)
	}
	if err := m.LinkTasks(b, shared); err != nil {
		t.Fatal(err)
	}
	aCall, _ := m.GetLinkedCall("CTU_A")
	bCall, _ := m.GetLinkedCall("CTU_B")
	if aCall != "SHARED_CALL" || bCall != "SHARED_CALL" {
		t.Fatalf("both main tasks should link to the shared call, got %q and %q", aCall, bCall)
	}
}

func TestLinkageManagerRemoveTask(t *testing.T) {
	m := NewLinkageManager()
	main := Task{Type: TaskMain, Name: "CTU_A"}
	call := Task{Type: TaskCall, Name: "CTU_A_CALL"}
	if err := m.LinkTasks(main, call); err != nil {
		t.Fatal(err)
	}
	m.RemoveTask("CTU_A_CALL")
	if _, ok := m.GetLinkedCall("CTU_A"); ok {
		t.Fatalf("removing the call task should drop the main's linkage")
	}
}
