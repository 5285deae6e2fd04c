package domain

type MutationState string

const (
	MutationPending    MutationState = "pending"
	MutationCommitted  MutationState = "committed"
	MutationRolledBack MutationState = "rolled_back"
)

// Mutation tracks one stock change from its tentative cache apply to its
// confirmed or compensated outcome.
type Mutation struct {
	ItemID     string
	Location   string
	Slot       Slot
	Delta      int
	Before     Item
	After      Item
	State      MutationState
	LogEntry   *LogEntry
	LogWarning error
}

func (m *Mutation) PreviousStock() int {
	return m.Before.Stock(m.Slot)
}

func (m *Mutation) NewStock() int {
	return m.After.Stock(m.Slot)
}

func (m *Mutation) Operation() Operation {
	return OperationForDelta(m.Delta)
}
