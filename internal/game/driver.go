package game

import (
	"time"

	"go.uber.org/zap"
)

// DayScheduler advances the simulation timeline on a fixed real-time
// interval. One tick equals one simulated day; ticking stops once the
// manager reports game over.
type DayScheduler struct {
	manager  *GuildManager
	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewDayScheduler creates a day scheduler
func NewDayScheduler(manager *GuildManager, dayInterval time.Duration) *DayScheduler {
	return &DayScheduler{
		manager:  manager,
		ticker:   time.NewTicker(dayInterval),
		stopChan: make(chan struct{}),
	}
}

// Start begins advancing days in the background
func (ds *DayScheduler) Start() {
	go func() {
		for {
			select {
			case <-ds.ticker.C:
				report, err := ds.manager.AdvanceDay()
				if err != nil {
					ds.manager.Logger.Error("Failed to advance day", zap.Error(err))
					continue
				}
				if report.GameOver {
					ds.manager.Logger.Warn("Simulation over: quarterly debt payment missed",
						zap.Int("day", report.Day))
					ds.ticker.Stop()
					return
				}
			case <-ds.stopChan:
				ds.ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the scheduler
func (ds *DayScheduler) Stop() {
	close(ds.stopChan)
}
