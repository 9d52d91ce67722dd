package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/user/guildmaster/config"
	"github.com/user/guildmaster/internal/interfaces"
	"github.com/user/guildmaster/internal/types"
)

// GuildManager owns the guild state and drives the single-writer
// simulation timeline. Every public operation takes the state lock; the
// entities themselves assume exactly one caller at a time.
type GuildManager struct {
	state     *GuildState
	stateLock sync.RWMutex
	storage   *StateStorage
	config    config.Config
	Logger    *zap.Logger
	dice      interfaces.Randomizer
	publisher interfaces.EventPublisher

	// dayClock mirrors state.Day. Event subscribers run synchronously
	// inside mutating operations, while the write lock is held; Day reads
	// this mirror instead of taking the lock so a subscriber can ask for
	// the current day without deadlocking.
	dayClock atomic.Int64
}

// DayReport summarizes what one simulated day changed
type DayReport struct {
	Day             int      `json:"day"`
	CompletedQuests []string `json:"completed_quests"`
	FailedQuests    []string `json:"failed_quests"`
	PaymentMade     bool     `json:"payment_made"`
	GameOver        bool     `json:"game_over"`
}

// NewGuildManager creates a guild manager, loading a saved state when one
// exists and otherwise opening a fresh guild with the configured debt.
func NewGuildManager(cfg config.Config) *GuildManager {
	storage := NewStateStorage(cfg.Game.SavePath)

	gm := &GuildManager{
		storage: storage,
		config:  cfg,
		Logger:  zap.NewNop(),
		dice:    NewDiceRoller(),
	}

	state, err := storage.LoadState()
	if err != nil || state.Debt == nil {
		state = gm.freshState()
	}
	gm.state = state
	gm.dayClock.Store(int64(state.Day))
	gm.rewire()

	return gm
}

// freshState builds the opening guild ledger
func (gm *GuildManager) freshState() *GuildState {
	debt := NewDebt(gm.config.Game.StartingDebt, gm.config.Game.QuarterlyPayment,
		gm.config.Game.AnnualInterestRate, gm.publisher, gm.Logger)
	if gm.config.Game.QuarterDays > 0 {
		debt.QuarterDays = gm.config.Game.QuarterDays
	}

	return &GuildState{
		Day:        0,
		Treasury:   gm.config.Game.StartingTreasury,
		Materials:  make(map[string]*Material),
		Characters: make(map[string]*Character),
		Parties:    make(map[string]*Party),
		Quests:     make(map[string]*Quest),
		Blueprints: make(map[string]types.EquipmentDef),
		Debt:       debt,
	}
}

// SetLogger wires the diagnostic logger through to every entity
func (gm *GuildManager) SetLogger(logger *zap.Logger) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	gm.Logger = logger
	gm.rewire()
}

// SetPublisher wires the notification port through to every entity
func (gm *GuildManager) SetPublisher(publisher interfaces.EventPublisher) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	gm.publisher = publisher
	gm.rewire()
}

// SetRandomizer substitutes the randomness source, mainly for tests
func (gm *GuildManager) SetRandomizer(rng interfaces.Randomizer) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	gm.dice = rng
	gm.rewire()
}

// rewire re-attaches ports to every entity. Needed after loading a
// snapshot, where only data fields survive. Callers hold the lock.
func (gm *GuildManager) rewire() {
	if gm.state == nil {
		return
	}
	for _, m := range gm.state.Materials {
		m.Attach(gm.publisher, gm.Logger)
	}
	for _, c := range gm.state.Characters {
		c.Attach(gm.publisher, gm.Logger)
	}
	for _, p := range gm.state.Parties {
		p.Attach(gm.dice, gm.publisher, gm.Logger)
		if gm.config.Game.LoyaltyThreshold > 0 {
			p.SetLoyaltyThreshold(gm.config.Game.LoyaltyThreshold)
		}
	}
	for _, q := range gm.state.Quests {
		q.Attach(gm.publisher, gm.Logger)
	}
	if gm.state.Debt != nil {
		gm.state.Debt.Attach(gm.publisher, gm.Logger)
	}
}

// saveState persists the current guild state
func (gm *GuildManager) saveState() error {
	return gm.storage.SaveState(gm.state)
}

// LoadMaterials adds material definitions to the guild stores
func (gm *GuildManager) LoadMaterials(defs []types.MaterialDef) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	for _, def := range defs {
		m := NewMaterial(def, gm.publisher, gm.Logger)
		if def.ID != "" {
			m.ID = def.ID
		}
		gm.state.Materials[m.ID] = m
	}

	if err := gm.saveState(); err != nil {
		gm.Logger.Error("Failed to save guild state after loading materials", zap.Error(err))
	}
}

// LoadQuests posts quest definitions on the guild board
func (gm *GuildManager) LoadQuests(defs []types.QuestDef) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	for _, def := range defs {
		q := NewQuest(def, gm.publisher, gm.Logger)
		q.IsValid() // log balance warnings at load time
		gm.state.Quests[q.ID] = q
	}

	if err := gm.saveState(); err != nil {
		gm.Logger.Error("Failed to save guild state after loading quests", zap.Error(err))
	}
}

// LoadCharacters adds character definitions to the roster
func (gm *GuildManager) LoadCharacters(defs []types.CharacterDef) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	for _, def := range defs {
		c := NewCharacter(def, gm.publisher, gm.Logger)
		gm.state.Characters[c.ID] = c
	}

	if err := gm.saveState(); err != nil {
		gm.Logger.Error("Failed to save guild state after loading characters", zap.Error(err))
	}
}

// LoadEquipmentBlueprints registers purchasable equipment definitions
func (gm *GuildManager) LoadEquipmentBlueprints(defs []types.EquipmentDef) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	for _, def := range defs {
		gm.state.Blueprints[def.Name] = def
	}

	if err := gm.saveState(); err != nil {
		gm.Logger.Error("Failed to save guild state after loading blueprints", zap.Error(err))
	}
}

// RegisterParty founds a new adventuring party
func (gm *GuildManager) RegisterParty(def types.PartyDef) (*Party, error) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	for _, existing := range gm.state.Parties {
		if existing.Name == def.Name {
			return nil, errors.New("party already registered")
		}
	}

	party := NewParty(def, gm.dice, gm.publisher, gm.Logger)
	if gm.config.Game.LoyaltyThreshold > 0 {
		party.SetLoyaltyThreshold(gm.config.Game.LoyaltyThreshold)
	}
	gm.state.Parties[party.ID] = party

	if err := gm.saveState(); err != nil {
		return nil, fmt.Errorf("failed to save guild state: %w", err)
	}

	return party, nil
}

// RecruitCharacter adds a single character to the roster
func (gm *GuildManager) RecruitCharacter(def types.CharacterDef) (*Character, error) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	character := NewCharacter(def, gm.publisher, gm.Logger)
	if !character.IsValid() {
		return nil, errors.New("character definition out of range")
	}
	gm.state.Characters[character.ID] = character

	if err := gm.saveState(); err != nil {
		return nil, fmt.Errorf("failed to save guild state: %w", err)
	}

	return character, nil
}

// EquipParty buys a blueprint out of the treasury and attaches the item
// to the party
func (gm *GuildManager) EquipParty(partyID, blueprintName string) (*Equipment, error) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	party, exists := gm.state.Parties[partyID]
	if !exists {
		return nil, errors.New("party not found")
	}

	def, exists := gm.state.Blueprints[blueprintName]
	if !exists {
		return nil, errors.New("blueprint not found")
	}

	if gm.state.Treasury < def.Cost {
		return nil, errors.New("insufficient treasury")
	}

	eq := NewEquipment(def)
	gm.state.Treasury -= def.Cost
	party.AddEquipment(eq)

	if err := gm.saveState(); err != nil {
		return nil, fmt.Errorf("failed to save guild state: %w", err)
	}

	return eq, nil
}

// CraftMaterial consumes a material's recipe ingredients from guild
// stock and adds one crafted unit. Check-then-act: nothing is consumed
// unless every ingredient is in stock.
func (gm *GuildManager) CraftMaterial(materialID string) error {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	material, exists := gm.state.Materials[materialID]
	if !exists {
		return errors.New("material not found")
	}
	if len(material.Recipe) == 0 {
		return errors.New("material has no recipe")
	}

	for id, count := range material.Recipe {
		ingredient, ok := gm.state.Materials[id]
		if !ok || ingredient.Quantity < count {
			return errors.New("insufficient ingredients")
		}
	}

	for _, id := range sortedKeys(material.Recipe) {
		gm.state.Materials[id].RemoveQuantity(material.Recipe[id])
	}
	material.AddQuantity(1)

	if err := gm.saveState(); err != nil {
		return fmt.Errorf("failed to save guild state: %w", err)
	}

	return nil
}

// AssignQuest binds an available quest to an available party. A party
// that misses the requirement profile may still take the quest; that is
// a gamble the caller makes, so it only logs a warning.
func (gm *GuildManager) AssignQuest(questID, partyID string) error {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	quest, exists := gm.state.Quests[questID]
	if !exists {
		return errors.New("quest not found")
	}

	party, exists := gm.state.Parties[partyID]
	if !exists {
		return errors.New("party not found")
	}

	if !party.Available {
		return errors.New("party unavailable")
	}

	if !party.MeetsRequirements(quest.RequiredStats) {
		gm.Logger.Warn("party assigned below quest requirements",
			zap.String("quest_id", quest.ID),
			zap.String("party_id", party.ID))
	}

	if !quest.AssignToParty(party.ID) {
		return errors.New("quest not available for assignment")
	}

	if err := gm.saveState(); err != nil {
		return fmt.Errorf("failed to save guild state: %w", err)
	}

	return nil
}

// StartQuest sends the assigned party out on the current day
func (gm *GuildManager) StartQuest(questID string) error {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	quest, exists := gm.state.Quests[questID]
	if !exists {
		return errors.New("quest not found")
	}

	if !quest.StartQuest(gm.state.Day) {
		return errors.New("quest cannot start")
	}

	if err := gm.saveState(); err != nil {
		return fmt.Errorf("failed to save guild state: %w", err)
	}

	return nil
}

// AdvanceDay moves the timeline one day forward: market drift, quest
// resolution, and — on quarterly days — debt interest followed by the
// scheduled payment. Interest is applied BEFORE the payment; this order
// is fixed here, not in Debt.
func (gm *GuildManager) AdvanceDay() (*DayReport, error) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	gm.state.Day++
	gm.dayClock.Store(int64(gm.state.Day))
	day := gm.state.Day
	report := &DayReport{Day: day}

	// Market drift.
	swing := gm.config.Game.MarketFluctuationPct
	if swing > 0 {
		for _, id := range sortedKeys(gm.state.Materials) {
			pct := gm.dice.NextInt(-swing, swing)
			gm.state.Materials[id].UpdateMarketValue(float64(pct) / 100.0)
		}
	}

	// Quests that have run their duration resolve today.
	for _, id := range sortedKeys(gm.state.Quests) {
		quest := gm.state.Quests[id]
		if quest.IsReadyToComplete(day) {
			gm.resolveQuest(quest, report)
		}
	}

	// Quarterly debt cycle.
	debt := gm.state.Debt
	if debt != nil && debt.State == types.DebtActive && debt.IsPaymentDue(day) {
		debt.ApplyInterest()
		recorded := len(debt.PaymentHistory)
		if debt.ProcessQuarterlyPayment(day) {
			// Only a payment recorded this cycle drains the treasury; a
			// misconfigured zero schedule is skipped, not paid
			if len(debt.PaymentHistory) > recorded {
				gm.state.Treasury -= debt.PaymentHistory[len(debt.PaymentHistory)-1].Amount
				report.PaymentMade = true
			}
		} else {
			report.GameOver = true
		}
	}

	if err := gm.saveState(); err != nil {
		return report, fmt.Errorf("failed to save guild state: %w", err)
	}

	gm.Logger.Info("day advanced",
		zap.Int("day", day),
		zap.Int("treasury", gm.state.Treasury),
		zap.Int("completed_quests", len(report.CompletedQuests)),
		zap.Int("failed_quests", len(report.FailedQuests)),
		zap.Bool("game_over", report.GameOver))

	return report, nil
}

// resolveQuest rolls the party's success rate and applies rewards or
// penalties. Caller holds the lock.
func (gm *GuildManager) resolveQuest(quest *Quest, report *DayReport) {
	party, exists := gm.state.Parties[quest.AssignedPartyID]
	if !exists {
		gm.Logger.Warn("quest resolved without party",
			zap.String("quest_id", quest.ID),
			zap.String("party_id", quest.AssignedPartyID))
		quest.Fail()
		report.FailedQuests = append(report.FailedQuests, quest.ID)
		return
	}

	rate := party.CalculateSuccessRate(quest)
	roll := gm.dice.NextInt(1, 100)

	if float64(roll) <= rate*100 {
		quest.Complete()
		gm.state.Treasury += quest.RewardGold
		for _, reward := range quest.RewardMaterials {
			if m, ok := gm.state.Materials[reward.MaterialID]; ok {
				m.AddQuantity(reward.Quantity)
			}
		}
		party.AddExperience(quest.Difficulty * gm.config.Game.ExperiencePerDifficulty)
		party.ModifyLoyalty(gm.config.Game.LoyaltySuccessGain)
		party.UpdateAvailability()
		report.CompletedQuests = append(report.CompletedQuests, quest.ID)
	} else {
		quest.Fail()
		party.ModifyLoyalty(-gm.config.Game.LoyaltyFailurePenalty)
		report.FailedQuests = append(report.FailedQuests, quest.ID)
	}

	gm.Logger.Info("quest resolved",
		zap.String("quest_id", quest.ID),
		zap.String("party_id", party.ID),
		zap.Float64("success_rate", rate),
		zap.Int("roll", roll),
		zap.String("state", string(quest.State)))
}

// Day returns the current simulation day. Lock-free, safe to call from
// an event subscriber while a mutating operation is in flight.
func (gm *GuildManager) Day() int {
	return int(gm.dayClock.Load())
}

// Treasury returns the guild gold balance
func (gm *GuildManager) Treasury() int {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	return gm.state.Treasury
}

// Debt returns the guild's debt obligation
func (gm *GuildManager) Debt() *Debt {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	return gm.state.Debt
}

// GetQuest retrieves a quest by id
func (gm *GuildManager) GetQuest(questID string) (*Quest, error) {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	quest, exists := gm.state.Quests[questID]
	if !exists {
		return nil, errors.New("quest not found")
	}
	return quest, nil
}

// GetParty retrieves a party by id
func (gm *GuildManager) GetParty(partyID string) (*Party, error) {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	party, exists := gm.state.Parties[partyID]
	if !exists {
		return nil, errors.New("party not found")
	}
	return party, nil
}

// GetMaterial retrieves a material by id
func (gm *GuildManager) GetMaterial(materialID string) (*Material, error) {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	material, exists := gm.state.Materials[materialID]
	if !exists {
		return nil, errors.New("material not found")
	}
	return material, nil
}

// GetCharacter retrieves a character by id
func (gm *GuildManager) GetCharacter(characterID string) (*Character, error) {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	character, exists := gm.state.Characters[characterID]
	if !exists {
		return nil, errors.New("character not found")
	}
	return character, nil
}

// AllQuests returns every quest in a consistent order
func (gm *GuildManager) AllQuests() []*Quest {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	quests := make([]*Quest, 0, len(gm.state.Quests))
	for _, id := range sortedKeys(gm.state.Quests) {
		quests = append(quests, gm.state.Quests[id])
	}
	return quests
}

// AvailableQuests returns the quests still open for assignment
func (gm *GuildManager) AvailableQuests() []*Quest {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	quests := make([]*Quest, 0)
	for _, id := range sortedKeys(gm.state.Quests) {
		if q := gm.state.Quests[id]; q.State == types.QuestAvailable {
			quests = append(quests, q)
		}
	}
	return quests
}

// AllParties returns every party in a consistent order
func (gm *GuildManager) AllParties() []*Party {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	parties := make([]*Party, 0, len(gm.state.Parties))
	for _, id := range sortedKeys(gm.state.Parties) {
		parties = append(parties, gm.state.Parties[id])
	}
	return parties
}

// AllMaterials returns every material in a consistent order
func (gm *GuildManager) AllMaterials() []*Material {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	materials := make([]*Material, 0, len(gm.state.Materials))
	for _, id := range sortedKeys(gm.state.Materials) {
		materials = append(materials, gm.state.Materials[id])
	}
	return materials
}

// SummaryJSON marshals the guild overview while holding the read lock.
// The scheduler goroutine mutates entities under the write lock, so
// encoding must not happen on live pointers after the lock is released.
func (gm *GuildManager) SummaryJSON() ([]byte, error) {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	return json.Marshal(map[string]interface{}{
		"day":      gm.state.Day,
		"treasury": gm.state.Treasury,
		"debt":     gm.state.Debt,
	})
}

// QuestsJSON marshals every quest while holding the read lock
func (gm *GuildManager) QuestsJSON() ([]byte, error) {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	quests := make([]*Quest, 0, len(gm.state.Quests))
	for _, id := range sortedKeys(gm.state.Quests) {
		quests = append(quests, gm.state.Quests[id])
	}
	return json.Marshal(quests)
}

// PartiesJSON marshals every party while holding the read lock
func (gm *GuildManager) PartiesJSON() ([]byte, error) {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	parties := make([]*Party, 0, len(gm.state.Parties))
	for _, id := range sortedKeys(gm.state.Parties) {
		parties = append(parties, gm.state.Parties[id])
	}
	return json.Marshal(parties)
}

// MaterialsJSON marshals every material while holding the read lock
func (gm *GuildManager) MaterialsJSON() ([]byte, error) {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()

	materials := make([]*Material, 0, len(gm.state.Materials))
	for _, id := range sortedKeys(gm.state.Materials) {
		materials = append(materials, gm.state.Materials[id])
	}
	return json.Marshal(materials)
}

// sortedKeys returns the map keys in sorted order for a stable iteration
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
