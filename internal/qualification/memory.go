package qualification

import "time"

// Slot names one of the four BANT qualification dimensions.
type Slot string

const (
	SlotNone      Slot = ""
	SlotBudget    Slot = "budget"
	SlotAuthority Slot = "authority"
	SlotNeed      Slot = "need"
	SlotTimeline  Slot = "timeline"
)

// slotOrder is the order the qualification flow walks the dimensions.
var slotOrder = []Slot{SlotBudget, SlotAuthority, SlotNeed, SlotTimeline}

// Contact holds the lead's contact fields captured during qualification.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Complete reports whether enough contact data exists to hand off a lead.
func (c Contact) Complete() bool {
	return c.Name != "" && (c.Phone != "" || c.Email != "")
}

// Memory is the per-conversation qualification state. Persisted shape is read
// directly by analytics and CRM collaborators, so field names stay stable.
//
// Invariant: a Discussed flag is true only when the matching value slot is
// non-nil or the slot is marked unanswerable. Apply is the only mutator.
type Memory struct {
	ConversationID string `json:"conversation_id"`
	AgentID        string `json:"agent_id"`

	BudgetDiscussed    bool `json:"budget_discussed"`
	AuthorityDiscussed bool `json:"authority_discussed"`
	NeedDiscussed      bool `json:"need_discussed"`
	TimelineDiscussed  bool `json:"timeline_discussed"`

	Budget    *int64  `json:"budget"`
	Authority *string `json:"authority"`
	Need      *string `json:"need"`
	Timeline  *string `json:"timeline"`

	Unanswerable map[Slot]bool `json:"unanswerable,omitempty"`

	NextSlot Slot    `json:"next_slot"`
	Contact  Contact `json:"contact"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewMemory creates a fresh memory pointing at the first slot.
func NewMemory(conversationID, agentID string) *Memory {
	return &Memory{
		ConversationID: conversationID,
		AgentID:        agentID,
		NextSlot:       SlotBudget,
		Unanswerable:   map[Slot]bool{},
	}
}

// SlotUpdate carries one extracted categorical slot. A nil Value with
// Unanswerable false means the model saw the slot discussed without an answer,
// which leaves the memory untouched.
type SlotUpdate struct {
	Value        *string
	Unanswerable bool
}

// BudgetUpdate carries an extracted canonical budget.
type BudgetUpdate struct {
	Value        *int64
	Unanswerable bool
}

// Update is a partial extraction result: nil slots were not mentioned.
type Update struct {
	Budget    *BudgetUpdate
	Authority *SlotUpdate
	Need      *SlotUpdate
	Timeline  *SlotUpdate
	Contact   *Contact
}

// Empty reports whether the update carries no new data at all.
func (u Update) Empty() bool {
	return u.Budget == nil && u.Authority == nil && u.Need == nil && u.Timeline == nil && u.Contact == nil
}

// Apply folds an update into the memory, maintaining the discussed/value
// invariant and advancing NextSlot. Returns true when anything changed.
func (m *Memory) Apply(u Update) bool {
	if m.Unanswerable == nil {
		m.Unanswerable = map[Slot]bool{}
	}
	changed := false

	if u.Budget != nil {
		if u.Budget.Value != nil {
			m.Budget = u.Budget.Value
			m.BudgetDiscussed = true
			changed = true
		} else if u.Budget.Unanswerable {
			m.Unanswerable[SlotBudget] = true
			m.BudgetDiscussed = true
			changed = true
		}
	}
	if applySlot(u.Authority, &m.Authority, &m.AuthorityDiscussed, SlotAuthority, m.Unanswerable) {
		changed = true
	}
	if applySlot(u.Need, &m.Need, &m.NeedDiscussed, SlotNeed, m.Unanswerable) {
		changed = true
	}
	if applySlot(u.Timeline, &m.Timeline, &m.TimelineDiscussed, SlotTimeline, m.Unanswerable) {
		changed = true
	}

	if u.Contact != nil {
		if u.Contact.Name != "" && u.Contact.Name != m.Contact.Name {
			m.Contact.Name = u.Contact.Name
			changed = true
		}
		if u.Contact.Phone != "" && u.Contact.Phone != m.Contact.Phone {
			m.Contact.Phone = u.Contact.Phone
			changed = true
		}
		if u.Contact.Email != "" && u.Contact.Email != m.Contact.Email {
			m.Contact.Email = u.Contact.Email
			changed = true
		}
	}

	if changed {
		m.NextSlot = m.firstOpenSlot()
		m.UpdatedAt = time.Now().UTC()
	}
	return changed
}

func applySlot(u *SlotUpdate, value **string, discussed *bool, slot Slot, unanswerable map[Slot]bool) bool {
	if u == nil {
		return false
	}
	if u.Value != nil {
		*value = u.Value
		*discussed = true
		return true
	}
	if u.Unanswerable {
		unanswerable[slot] = true
		*discussed = true
		return true
	}
	return false
}

// firstOpenSlot returns the first dimension not yet discussed, or SlotNone.
func (m *Memory) firstOpenSlot() Slot {
	for _, slot := range slotOrder {
		if !m.discussed(slot) {
			return slot
		}
	}
	return SlotNone
}

func (m *Memory) discussed(slot Slot) bool {
	switch slot {
	case SlotBudget:
		return m.BudgetDiscussed
	case SlotAuthority:
		return m.AuthorityDiscussed
	case SlotNeed:
		return m.NeedDiscussed
	case SlotTimeline:
		return m.TimelineDiscussed
	}
	return false
}

// FlowActive reports whether a qualification flow is mid-slot: at least one
// dimension captured and at least one still pending.
func (m *Memory) FlowActive() bool {
	if m == nil {
		return false
	}
	started := m.BudgetDiscussed || m.AuthorityDiscussed || m.NeedDiscussed || m.TimelineDiscussed
	return started && m.NextSlot != SlotNone
}

// QualificationComplete reports whether all four dimensions were discussed.
func (m *Memory) QualificationComplete() bool {
	return m.BudgetDiscussed && m.AuthorityDiscussed && m.NeedDiscussed && m.TimelineDiscussed
}

// Clone returns a deep copy, used to keep a pre-turn snapshot.
func (m *Memory) Clone() *Memory {
	if m == nil {
		return nil
	}
	out := *m
	out.Unanswerable = make(map[Slot]bool, len(m.Unanswerable))
	for k, v := range m.Unanswerable {
		out.Unanswerable[k] = v
	}
	if m.Budget != nil {
		v := *m.Budget
		out.Budget = &v
	}
	out.Authority = cloneString(m.Authority)
	out.Need = cloneString(m.Need)
	out.Timeline = cloneString(m.Timeline)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
