package types

// Rarity classifies how hard a material is to come by
type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityEpic     Rarity = "epic"
)

// StatKind identifies one of the party stat categories
type StatKind string

const (
	StatExploration StatKind = "exploration"
	StatCombat      StatKind = "combat"
	StatAdmin       StatKind = "admin"
)

// PartyStatKinds lists the three stat categories every party carries,
// in the order used for random stat growth draws
var PartyStatKinds = []StatKind{StatExploration, StatCombat, StatAdmin}

// CharacterType distinguishes player records from NPCs
type CharacterType string

const (
	CharacterNPC    CharacterType = "npc"
	CharacterPlayer CharacterType = "player"
)

// Alignment is a combinable bitmask; Order and Chaos may be set together
type Alignment uint8

const (
	AlignmentNeutral Alignment = 0
	AlignmentOrder   Alignment = 1 << 0
	AlignmentChaos   Alignment = 1 << 1
)

// Has reports whether all bits of flag are set
func (a Alignment) Has(flag Alignment) bool {
	return a&flag == flag
}

// QuestState is one node in the quest lifecycle state machine
type QuestState string

const (
	QuestAvailable  QuestState = "available"
	QuestAssigned   QuestState = "assigned"
	QuestInProgress QuestState = "in_progress"
	QuestCompleted  QuestState = "completed"
	QuestFailed     QuestState = "failed"
)

// QuestStates lists every lifecycle state, used for exhaustive transition checks
var QuestStates = []QuestState{
	QuestAvailable,
	QuestAssigned,
	QuestInProgress,
	QuestCompleted,
	QuestFailed,
}

// DebtState tracks a debt obligation; Paid and Overdue are terminal
type DebtState string

const (
	DebtActive  DebtState = "active"
	DebtPaid    DebtState = "paid"
	DebtOverdue DebtState = "overdue"
)

// PaymentRecord is one immutable entry in a debt's payment history
type PaymentRecord struct {
	Amount           int `json:"amount"`
	Day              int `json:"day"`
	RemainingBalance int `json:"remaining_balance"`
}

// MaterialReward is a quest payout in goods
type MaterialReward struct {
	MaterialID string `json:"material_id"`
	Quantity   int    `json:"quantity"`
}

// MaterialDef is a material definition as loaded from data files
type MaterialDef struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Rarity    Rarity         `json:"rarity"`
	Category  string         `json:"category"`
	BaseValue int            `json:"base_value"`
	Quantity  int            `json:"quantity"`
	Recipe    map[string]int `json:"recipe,omitempty"`
}

// CharacterDef is a character definition as loaded from data files
type CharacterDef struct {
	Name          string           `json:"name"`
	Type          CharacterType    `json:"type"`
	Stats         map[StatKind]int `json:"stats"`
	Alignment     Alignment        `json:"alignment"`
	Relationships map[string]int   `json:"relationships,omitempty"`
}

// PartyDef is a party definition as loaded from data files
type PartyDef struct {
	Name    string           `json:"name"`
	Stats   map[StatKind]int `json:"stats"`
	Loyalty int              `json:"loyalty"`
}

// EquipmentDef is an equipment definition as loaded from data files
type EquipmentDef struct {
	Name        string           `json:"name"`
	Cost        int              `json:"cost"`
	StatBonuses map[StatKind]int `json:"stat_bonuses"`
}

// QuestDef is a quest definition as loaded from data files
type QuestDef struct {
	Name            string           `json:"name"`
	Difficulty      int              `json:"difficulty"`
	RequiredStats   map[StatKind]int `json:"required_stats"`
	Duration        int              `json:"duration"`
	RewardGold      int              `json:"reward_gold"`
	RewardMaterials []MaterialReward `json:"reward_materials,omitempty"`
}
