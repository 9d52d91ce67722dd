package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds all configuration for the application
type Config struct {
	// Game configuration
	Game GameConfig `json:"game"`

	// Ledger journal configuration
	Ledger LedgerConfig `json:"ledger"`

	// Server configuration
	Server ServerConfig `json:"server"`
}

// GameConfig holds the simulation tuning knobs
type GameConfig struct {
	// Path of the JSON state snapshot
	SavePath string `json:"save_path"`

	// Directory holding quest/material/party definition files
	DataDir string `json:"data_dir"`

	// Starting guild treasury in gold
	StartingTreasury int `json:"starting_treasury"`

	// Opening debt balance
	StartingDebt int `json:"starting_debt"`

	// Fixed payment owed each quarter
	QuarterlyPayment int `json:"quarterly_payment"`

	// Annual interest rate on the debt (a quarter accrues per cycle)
	AnnualInterestRate float64 `json:"annual_interest_rate"`

	// Billing cycle length in days
	QuarterDays int `json:"quarter_days"`

	// Loyalty below this makes a party unavailable
	LoyaltyThreshold int `json:"loyalty_threshold"`

	// Maximum daily market fluctuation in percent (swing is +/- this)
	MarketFluctuationPct int `json:"market_fluctuation_pct"`

	// Experience granted per quest difficulty level on success
	ExperiencePerDifficulty int `json:"experience_per_difficulty"`

	// Loyalty gained on quest success
	LoyaltySuccessGain int `json:"loyalty_success_gain"`

	// Loyalty lost on quest failure
	LoyaltyFailurePenalty int `json:"loyalty_failure_penalty"`

	// Seconds between simulated days when the day scheduler runs
	DayIntervalSeconds int `json:"day_interval_seconds"`
}

// LedgerConfig holds the event journal configuration
type LedgerConfig struct {
	// Database driver (sqlite3)
	Driver string `json:"driver"`

	// Database connection string
	DSN string `json:"dsn"`
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	// Server port
	Port string `json:"port"`

	// Log level (debug, info, warn, error)
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Game: GameConfig{
			SavePath:                "./data/guild_state.json",
			DataDir:                 "./assets/data",
			StartingTreasury:        500,
			StartingDebt:            20000,
			QuarterlyPayment:        1500,
			AnnualInterestRate:      0.10,
			QuarterDays:             90,
			LoyaltyThreshold:        20,
			MarketFluctuationPct:    20,
			ExperiencePerDifficulty: 50,
			LoyaltySuccessGain:      5,
			LoyaltyFailurePenalty:   10,
			DayIntervalSeconds:      60,
		},
		Ledger: LedgerConfig{
			Driver: "sqlite3",
			DSN:    "./data/guild-ledger.db",
		},
		Server: ServerConfig{
			Port:     "8080",
			LogLevel: "info",
		},
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return config, err
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Create default config file
		if err := SaveConfig(config, path); err != nil {
			return config, err
		}
		return config, nil
	}

	// Read config file
	file, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, err
	}

	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config Config, path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Create or truncate file
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	// Write config to file
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return err
	}

	return nil
}
