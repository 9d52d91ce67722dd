package game

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/user/guildmaster/internal/types"
)

// GuildState is the full simulation state: the day counter, the
// treasury, every entity, and the debt obligation
type GuildState struct {
	Day        int                           `json:"day"`
	Treasury   int                           `json:"treasury"`
	Materials  map[string]*Material          `json:"materials"`
	Characters map[string]*Character         `json:"characters"`
	Parties    map[string]*Party             `json:"parties"`
	Quests     map[string]*Quest             `json:"quests"`
	Blueprints map[string]types.EquipmentDef `json:"blueprints"`
	Debt       *Debt                         `json:"debt"`
}

// StateStorage handles persistence of the guild state snapshot
type StateStorage struct {
	savePath  string
	stateLock sync.RWMutex
}

// NewStateStorage creates a new state storage
func NewStateStorage(savePath string) *StateStorage {
	// Create data directory if it doesn't exist
	dir := filepath.Dir(savePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		// If we can't create the directory, we'll just use the default path
		savePath = "./data/guild_state.json"
	}

	return &StateStorage{
		savePath: savePath,
	}
}

// SaveState saves the guild state to disk
func (ss *StateStorage) SaveState(state *GuildState) error {
	ss.stateLock.Lock()
	defer ss.stateLock.Unlock()

	// Create directory if it doesn't exist
	dir := filepath.Dir(ss.savePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Marshal state to JSON
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal guild state: %w", err)
	}

	// Write to file
	if err := os.WriteFile(ss.savePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write guild state: %w", err)
	}

	return nil
}

// LoadState loads the guild state from disk. The caller re-attaches
// ports to the loaded entities.
func (ss *StateStorage) LoadState() (*GuildState, error) {
	ss.stateLock.Lock()
	defer ss.stateLock.Unlock()

	// Check if file exists
	if _, err := os.Stat(ss.savePath); os.IsNotExist(err) {
		// Return empty state if file doesn't exist
		return &GuildState{
			Materials:  make(map[string]*Material),
			Characters: make(map[string]*Character),
			Parties:    make(map[string]*Party),
			Quests:     make(map[string]*Quest),
			Blueprints: make(map[string]types.EquipmentDef),
		}, nil
	}

	// Read file
	data, err := os.ReadFile(ss.savePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read guild state file: %w", err)
	}

	// Unmarshal JSON
	var state GuildState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse guild state: %w", err)
	}

	// Ensure all maps are initialized
	if state.Materials == nil {
		state.Materials = make(map[string]*Material)
	}
	if state.Characters == nil {
		state.Characters = make(map[string]*Character)
	}
	if state.Parties == nil {
		state.Parties = make(map[string]*Party)
	}
	if state.Quests == nil {
		state.Quests = make(map[string]*Quest)
	}
	if state.Blueprints == nil {
		state.Blueprints = make(map[string]types.EquipmentDef)
	}

	// Ensure all parties have initialized equipment lists
	for _, party := range state.Parties {
		if party.Equipment == nil {
			party.Equipment = make([]*Equipment, 0)
		}
	}

	return &state, nil
}
