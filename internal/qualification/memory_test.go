package qualification

import "testing"

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestNewMemoryPointsAtBudget(t *testing.T) {
	m := NewMemory("conv-1", "agent-1")
	if m.NextSlot != SlotBudget {
		t.Fatalf("expected budget first, got %s", m.NextSlot)
	}
	if m.FlowActive() {
		t.Fatalf("fresh memory should not report an active flow")
	}
	if m.QualificationComplete() {
		t.Fatalf("fresh memory should not be complete")
	}
}

func TestApplyAdvancesNextSlotInOrder(t *testing.T) {
	m := NewMemory("conv-1", "agent-1")

	if !m.Apply(Update{Budget: &BudgetUpdate{Value: int64Ptr(500000)}}) {
		t.Fatalf("expected change")
	}
	if m.NextSlot != SlotAuthority {
		t.Fatalf("expected authority next, got %s", m.NextSlot)
	}
	if !m.FlowActive() {
		t.Fatalf("expected active flow after first slot")
	}

	m.Apply(Update{Authority: &SlotUpdate{Value: strPtr(AuthoritySole)}})
	if m.NextSlot != SlotNeed {
		t.Fatalf("expected need next, got %s", m.NextSlot)
	}

	m.Apply(Update{Need: &SlotUpdate{Value: strPtr(NeedPrimaryResidence)}})
	m.Apply(Update{Timeline: &SlotUpdate{Value: strPtr(TimelineShort)}})
	if m.NextSlot != SlotNone {
		t.Fatalf("expected no pending slot, got %s", m.NextSlot)
	}
	if !m.QualificationComplete() {
		t.Fatalf("expected complete qualification")
	}
	if m.FlowActive() {
		t.Fatalf("completed flow should not be active")
	}
}

func TestApplyOutOfOrderAnswerSkipsFilledSlot(t *testing.T) {
	m := NewMemory("conv-1", "agent-1")

	// Prospect volunteers a timeline while budget is pending.
	m.Apply(Update{Timeline: &SlotUpdate{Value: strPtr(TimelineImmediate)}})
	if m.NextSlot != SlotBudget {
		t.Fatalf("expected budget still pending, got %s", m.NextSlot)
	}

	m.Apply(Update{Budget: &BudgetUpdate{Value: int64Ptr(750000)}})
	m.Apply(Update{Authority: &SlotUpdate{Value: strPtr(AuthorityShared)}})
	m.Apply(Update{Need: &SlotUpdate{Value: strPtr(NeedInvestment)}})

	// Timeline was already captured, so the flow finishes without revisiting it.
	if m.NextSlot != SlotNone {
		t.Fatalf("expected flow done, got %s", m.NextSlot)
	}
}

func TestApplyUnanswerableMarksDiscussed(t *testing.T) {
	m := NewMemory("conv-1", "agent-1")

	m.Apply(Update{Budget: &BudgetUpdate{Unanswerable: true}})
	if !m.BudgetDiscussed {
		t.Fatalf("expected budget discussed")
	}
	if m.Budget != nil {
		t.Fatalf("expected no budget value")
	}
	if !m.Unanswerable[SlotBudget] {
		t.Fatalf("expected budget marked unanswerable")
	}
	if m.NextSlot != SlotAuthority {
		t.Fatalf("expected flow to move on, got %s", m.NextSlot)
	}
}

func TestApplyMentionedWithoutValueChangesNothing(t *testing.T) {
	m := NewMemory("conv-1", "agent-1")
	if m.Apply(Update{}) {
		t.Fatalf("empty update should not change memory")
	}
	if m.Apply(Update{Authority: &SlotUpdate{}}) {
		t.Fatalf("mention without value or unanswerable should not change memory")
	}
	if m.AuthorityDiscussed {
		t.Fatalf("discussed flag must only flip with a value or unanswerable")
	}
}

func TestApplyLaterValueWins(t *testing.T) {
	m := NewMemory("conv-1", "agent-1")
	m.Apply(Update{Budget: &BudgetUpdate{Value: int64Ptr(300000)}})
	m.Apply(Update{Budget: &BudgetUpdate{Value: int64Ptr(450000)}})
	if *m.Budget != 450000 {
		t.Fatalf("expected corrected budget, got %d", *m.Budget)
	}
}

func TestApplyContactMergesNonEmptyFields(t *testing.T) {
	m := NewMemory("conv-1", "agent-1")
	m.Apply(Update{Contact: &Contact{Name: "Dana"}})
	m.Apply(Update{Contact: &Contact{Phone: "+15550100"}})

	if m.Contact.Name != "Dana" || m.Contact.Phone != "+15550100" {
		t.Fatalf("expected merged contact, got %+v", m.Contact)
	}
	if !m.Contact.Complete() {
		t.Fatalf("name plus phone should be complete")
	}
}

func TestContactComplete(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		want    bool
	}{
		{"empty", Contact{}, false},
		{"name only", Contact{Name: "Dana"}, false},
		{"phone only", Contact{Phone: "+15550100"}, false},
		{"name and email", Contact{Name: "Dana", Email: "d@example.com"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.contact.Complete(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := NewMemory("conv-1", "agent-1")
	m.Apply(Update{Budget: &BudgetUpdate{Value: int64Ptr(100000)}})

	clone := m.Clone()
	clone.Apply(Update{Budget: &BudgetUpdate{Value: int64Ptr(999999)}})

	if *m.Budget != 100000 {
		t.Fatalf("mutating clone leaked into original: %d", *m.Budget)
	}
}
