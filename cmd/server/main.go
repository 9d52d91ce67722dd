package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/user/guildmaster/config"
	"github.com/user/guildmaster/internal/game"
	"github.com/user/guildmaster/internal/ledger"
	"github.com/user/guildmaster/internal/types"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "./config/config.json", "Path to configuration file")
	flag.Parse()

	// Set up logger
	logger := setupLogger()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Open the ledger journal
	journal, err := ledger.Open(cfg.Ledger.DSN)
	if err != nil {
		logger.Fatal("Failed to open ledger", zap.Error(err))
	}
	defer journal.Close()

	// Initialize guild manager
	guildManager := game.NewGuildManager(cfg)
	guildManager.SetLogger(logger)

	// Wire the notification port: every published event lands in the ledger
	bus := game.NewEventBus(logger)
	bus.Subscribe(func(event types.Event) {
		if err := journal.RecordEvent(guildManager.Day(), event); err != nil {
			logger.Error("Failed to journal event",
				zap.String("kind", string(event.Kind())),
				zap.Error(err))
		}
	})
	guildManager.SetPublisher(bus)

	// Load game data
	if err := loadGameData(guildManager, cfg, logger); err != nil {
		logger.Fatal("Failed to load game data", zap.Error(err))
	}

	// Set up HTTP server for driving and inspecting the simulation
	server := setupHTTPServer(cfg, guildManager, journal, logger)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	// Start the day scheduler after everything else is initialized
	scheduler := game.NewDayScheduler(guildManager, time.Duration(cfg.Game.DayIntervalSeconds)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()

	// Wait for shutdown signal
	waitForShutdown(logger)
}

func setupLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

func loadGameData(guildManager *game.GuildManager, cfg config.Config, logger *zap.Logger) error {
	// A resumed save already carries its quests and stock; seeding again
	// would duplicate the board and reset material quantities
	if guildManager.Day() > 0 || len(guildManager.AllQuests()) > 0 {
		logger.Info("Resuming saved guild state, skipping data seed",
			zap.Int("day", guildManager.Day()))
		return nil
	}

	// Create data loader
	dataLoader := game.NewDataLoader(cfg.Game.DataDir)

	// Load materials
	materials, err := dataLoader.LoadMaterials()
	if err != nil {
		return fmt.Errorf("failed to load materials: %w", err)
	}
	guildManager.LoadMaterials(materials)
	logger.Info("Loaded materials", zap.Int("count", len(materials)))

	// Load quests
	quests, err := dataLoader.LoadQuests()
	if err != nil {
		return fmt.Errorf("failed to load quests: %w", err)
	}
	guildManager.LoadQuests(quests)
	logger.Info("Loaded quests", zap.Int("count", len(quests)))

	// Load characters
	characters, err := dataLoader.LoadCharacters()
	if err != nil {
		return fmt.Errorf("failed to load characters: %w", err)
	}
	guildManager.LoadCharacters(characters)
	logger.Info("Loaded characters", zap.Int("count", len(characters)))

	// Load parties
	parties, err := dataLoader.LoadParties()
	if err != nil {
		return fmt.Errorf("failed to load parties: %w", err)
	}
	for _, def := range parties {
		if _, err := guildManager.RegisterParty(def); err != nil {
			logger.Warn("Skipping party", zap.String("name", def.Name), zap.Error(err))
		}
	}
	logger.Info("Loaded parties", zap.Int("count", len(parties)))

	// Load equipment blueprints
	equipment, err := dataLoader.LoadEquipment()
	if err != nil {
		return fmt.Errorf("failed to load equipment: %w", err)
	}
	guildManager.LoadEquipmentBlueprints(equipment)
	logger.Info("Loaded equipment blueprints", zap.Int("count", len(equipment)))

	return nil
}

func setupHTTPServer(cfg config.Config, guildManager *game.GuildManager, journal *ledger.DB, logger *zap.Logger) *http.Server {
	// Create router
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Set up routes
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Guild overview. State is marshaled inside the manager's read lock;
	// encoding live entity pointers out here would race the day scheduler.
	router.Get("/guild", func(w http.ResponseWriter, r *http.Request) {
		data, err := guildManager.SummaryJSON()
		if err != nil {
			http.Error(w, "Failed to read guild state", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	// Quest board
	router.Get("/quests", func(w http.ResponseWriter, r *http.Request) {
		data, err := guildManager.QuestsJSON()
		if err != nil {
			http.Error(w, "Failed to read quests", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	router.Post("/quests/{quest_id}/assign", func(w http.ResponseWriter, r *http.Request) {
		questID := chi.URLParam(r, "quest_id")

		var req struct {
			PartyID string `json:"party_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		if err := guildManager.AssignQuest(questID, req.PartyID); err != nil {
			logger.Error("Failed to assign quest",
				zap.String("quest_id", questID),
				zap.String("party_id", req.PartyID),
				zap.Error(err))
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		w.WriteHeader(http.StatusOK)
	})

	router.Post("/quests/{quest_id}/start", func(w http.ResponseWriter, r *http.Request) {
		questID := chi.URLParam(r, "quest_id")

		if err := guildManager.StartQuest(questID); err != nil {
			logger.Error("Failed to start quest",
				zap.String("quest_id", questID),
				zap.Error(err))
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		w.WriteHeader(http.StatusOK)
	})

	// Parties
	router.Get("/parties", func(w http.ResponseWriter, r *http.Request) {
		data, err := guildManager.PartiesJSON()
		if err != nil {
			http.Error(w, "Failed to read parties", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	router.Post("/parties/{party_id}/equip", func(w http.ResponseWriter, r *http.Request) {
		partyID := chi.URLParam(r, "party_id")

		var req struct {
			Blueprint string `json:"blueprint"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		eq, err := guildManager.EquipParty(partyID, req.Blueprint)
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(eq)
	})

	// Materials
	router.Get("/materials", func(w http.ResponseWriter, r *http.Request) {
		data, err := guildManager.MaterialsJSON()
		if err != nil {
			http.Error(w, "Failed to read materials", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	router.Post("/materials/{material_id}/craft", func(w http.ResponseWriter, r *http.Request) {
		materialID := chi.URLParam(r, "material_id")

		if err := guildManager.CraftMaterial(materialID); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		w.WriteHeader(http.StatusOK)
	})

	// Manual day advance, useful when the scheduler interval is long
	router.Post("/day/advance", func(w http.ResponseWriter, r *http.Request) {
		report, err := guildManager.AdvanceDay()
		if err != nil {
			logger.Error("Failed to advance day", zap.Error(err))
			http.Error(w, "Failed to advance day", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	})

	// Ledger journal
	router.Get("/ledger/events", func(w http.ResponseWriter, r *http.Request) {
		entries, err := journal.RecentEvents(100)
		if err != nil {
			logger.Error("Failed to read ledger", zap.Error(err))
			http.Error(w, "Failed to read ledger", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	})

	router.Get("/ledger/payments", func(w http.ResponseWriter, r *http.Request) {
		payments, err := journal.Payments()
		if err != nil {
			logger.Error("Failed to read payments", zap.Error(err))
			http.Error(w, "Failed to read payments", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payments)
	})

	// Create HTTP server
	return &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
}

func waitForShutdown(logger *zap.Logger) {
	// Set up channel for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	// Perform cleanup
	logger.Info("Shutting down")
}
