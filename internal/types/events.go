package types

// EventKind names one of the event record shapes accepted by the
// notification port
type EventKind string

const (
	EventQuantityChanged     EventKind = "quantity_changed"
	EventRelationshipChanged EventKind = "relationship_changed"
	EventStatChanged         EventKind = "stat_changed"
	EventEquipmentAdded      EventKind = "equipment_added"
	EventQuestStateChanged   EventKind = "quest_state_changed"
	EventDebtPayment         EventKind = "debt_payment"
	EventGameOver            EventKind = "game_over"
)

// Event is an immutable record published after a committed mutation
type Event interface {
	Kind() EventKind
	EntityID() string
}

// QuantityChanged reports a material stock delta
type QuantityChanged struct {
	MaterialID string `json:"material_id"`
	Delta      int    `json:"delta"`
	Quantity   int    `json:"quantity"`
}

func (e QuantityChanged) Kind() EventKind  { return EventQuantityChanged }
func (e QuantityChanged) EntityID() string { return e.MaterialID }

// RelationshipChanged reports a character's post-clamp relationship value
type RelationshipChanged struct {
	CharacterID string `json:"character_id"`
	TargetID    string `json:"target_id"`
	Value       int    `json:"value"`
}

func (e RelationshipChanged) Kind() EventKind  { return EventRelationshipChanged }
func (e RelationshipChanged) EntityID() string { return e.CharacterID }

// StatChanged reports a single applied party stat increase
type StatChanged struct {
	PartyID string   `json:"party_id"`
	Stat    StatKind `json:"stat"`
	Value   int      `json:"value"`
}

func (e StatChanged) Kind() EventKind  { return EventStatChanged }
func (e StatChanged) EntityID() string { return e.PartyID }

// EquipmentAdded reports a new item on a party's equipment list
type EquipmentAdded struct {
	PartyID     string `json:"party_id"`
	EquipmentID string `json:"equipment_id"`
	Name        string `json:"name"`
}

func (e EquipmentAdded) Kind() EventKind  { return EventEquipmentAdded }
func (e EquipmentAdded) EntityID() string { return e.PartyID }

// QuestStateChanged reports a committed lifecycle transition
type QuestStateChanged struct {
	QuestID string     `json:"quest_id"`
	From    QuestState `json:"from"`
	To      QuestState `json:"to"`
	PartyID string     `json:"party_id,omitempty"`
}

func (e QuestStateChanged) Kind() EventKind  { return EventQuestStateChanged }
func (e QuestStateChanged) EntityID() string { return e.QuestID }

// DebtPayment reports one appended payment record
type DebtPayment struct {
	DebtID           string `json:"debt_id"`
	Amount           int    `json:"amount"`
	Day              int    `json:"day"`
	RemainingBalance int    `json:"remaining_balance"`
}

func (e DebtPayment) Kind() EventKind  { return EventDebtPayment }
func (e DebtPayment) EntityID() string { return e.DebtID }

// GameOver is the fatal simulation-ending condition; the core never
// terminates the process itself, the driver reacts to this record
type GameOver struct {
	DebtID  string `json:"debt_id"`
	Day     int    `json:"day"`
	Balance int    `json:"balance"`
	Reason  string `json:"reason"`
}

func (e GameOver) Kind() EventKind  { return EventGameOver }
func (e GameOver) EntityID() string { return e.DebtID }
