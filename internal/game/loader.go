package game

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/guildmaster/internal/types"
)

// DataLoader handles loading game definitions from files
type DataLoader struct {
	basePath string
}

// NewDataLoader creates a new data loader
func NewDataLoader(basePath string) *DataLoader {
	return &DataLoader{
		basePath: basePath,
	}
}

// LoadMaterials loads material definitions from file
func (dl *DataLoader) LoadMaterials() ([]types.MaterialDef, error) {
	path := filepath.Join(dl.basePath, "materials.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read materials file: %w", err)
	}

	var materials []types.MaterialDef
	if err := json.Unmarshal(data, &materials); err != nil {
		return nil, fmt.Errorf("failed to parse materials data: %w", err)
	}

	return materials, nil
}

// LoadQuests loads quest definitions from file
func (dl *DataLoader) LoadQuests() ([]types.QuestDef, error) {
	path := filepath.Join(dl.basePath, "quests.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quests file: %w", err)
	}

	var quests []types.QuestDef
	if err := json.Unmarshal(data, &quests); err != nil {
		return nil, fmt.Errorf("failed to parse quests data: %w", err)
	}

	return quests, nil
}

// LoadCharacters loads character definitions from file
func (dl *DataLoader) LoadCharacters() ([]types.CharacterDef, error) {
	path := filepath.Join(dl.basePath, "characters.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read characters file: %w", err)
	}

	var characters []types.CharacterDef
	if err := json.Unmarshal(data, &characters); err != nil {
		return nil, fmt.Errorf("failed to parse characters data: %w", err)
	}

	return characters, nil
}

// LoadParties loads party definitions from file
func (dl *DataLoader) LoadParties() ([]types.PartyDef, error) {
	path := filepath.Join(dl.basePath, "parties.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parties file: %w", err)
	}

	var parties []types.PartyDef
	if err := json.Unmarshal(data, &parties); err != nil {
		return nil, fmt.Errorf("failed to parse parties data: %w", err)
	}

	return parties, nil
}

// LoadEquipment loads equipment blueprint definitions from file
func (dl *DataLoader) LoadEquipment() ([]types.EquipmentDef, error) {
	path := filepath.Join(dl.basePath, "equipment.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read equipment file: %w", err)
	}

	var equipment []types.EquipmentDef
	if err := json.Unmarshal(data, &equipment); err != nil {
		return nil, fmt.Errorf("failed to parse equipment data: %w", err)
	}

	return equipment, nil
}
