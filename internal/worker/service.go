package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"builderpulse/internal/clustering"
	"builderpulse/internal/collectors"
	"builderpulse/internal/scoring"
)

const (
	collectionInterval = 30 * time.Minute
	scoringInterval    = 15 * time.Minute
	clusteringInterval = 1 * time.Hour

	// Scoring and classification walk back this far from now.
	scoringWindowHours = 48
)

// WorkerService manages background workers for the application
type WorkerService struct {
	collectors        []collectors.Collector
	scoringPass       *scoring.PassService
	clusteringService *clustering.Service
	ctx               context.Context
	cancel            context.CancelFunc
	wg                sync.WaitGroup
	running           bool
	startedAt         time.Time
	mu                sync.RWMutex
}

// NewWorkerService creates a new worker service
func NewWorkerService(db *gorm.DB) *WorkerService {
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerService{
		collectors:        collectors.NewAll(db),
		scoringPass:       scoring.NewPassService(db),
		clusteringService: clustering.NewServiceFromEnv(db),
		ctx:               ctx,
		cancel:            cancel,
		running:           false,
	}
}

// Start starts all background workers
func (ws *WorkerService) Start() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.running {
		return nil // Already running
	}

	log.Println("Starting background workers...")

	ws.wg.Add(1)
	go func() {
		defer ws.wg.Done()
		ws.runPeriodicTasks()
	}()

	ws.running = true
	ws.startedAt = time.Now()
	log.Println("Background workers started successfully")

	return nil
}

// Stop stops all background workers
func (ws *WorkerService) Stop() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.running {
		return // Not running
	}

	log.Println("Stopping background workers...")

	// Cancel context to signal all workers to stop
	ws.cancel()

	// Wait for all workers to finish
	ws.wg.Wait()

	ws.running = false
	log.Println("Background workers stopped")
}

// IsRunning returns whether the worker service is currently running
func (ws *WorkerService) IsRunning() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.running
}

// runPeriodicTasks drives the collection, scoring, and clustering loops.
func (ws *WorkerService) runPeriodicTasks() {
	log.Println("Starting periodic tasks worker...")

	collectionTicker := time.NewTicker(collectionInterval)
	scoringTicker := time.NewTicker(scoringInterval)
	clusteringTicker := time.NewTicker(clusteringInterval)

	defer collectionTicker.Stop()
	defer scoringTicker.Stop()
	defer clusteringTicker.Stop()

	// Prime the pipeline so a fresh deployment has data before the first
	// ticks fire.
	ws.RunCollection()
	ws.RunScoring()

	for {
		select {
		case <-ws.ctx.Done():
			log.Println("Periodic tasks worker stopped")
			return

		case <-collectionTicker.C:
			ws.RunCollection()

		case <-scoringTicker.C:
			ws.RunScoring()

		case <-clusteringTicker.C:
			ws.RunClustering()
		}
	}
}

// RunCollection runs all platform collectors once.
func (ws *WorkerService) RunCollection() {
	log.Println("🔄 Running collection task...")
	results := collectors.RunAll(ws.ctx, ws.collectors)

	total := 0
	for _, result := range results {
		if result != nil {
			total += result.Collected
		}
	}
	log.Printf("✅ Collection task completed: %d posts", total)
}

// RunScoring runs the momentum scoring pass once.
func (ws *WorkerService) RunScoring() {
	log.Println("🔄 Running scoring task...")
	result, err := ws.scoringPass.Run(scoringWindowHours)
	if err != nil {
		log.Printf("❌ Scoring task failed: %v", err)
		return
	}
	log.Printf("✅ Scoring task completed: %d scored, %d breakouts, %d classified",
		result.Scored, result.Breakouts, result.Classified)
}

// RunClustering runs the embedding and topic clustering job once.
func (ws *WorkerService) RunClustering() {
	log.Println("🔄 Running clustering task...")
	result, err := ws.clusteringService.RunClusteringJob(ws.ctx)
	if err != nil {
		log.Printf("❌ Clustering task failed: %v", err)
		return
	}
	log.Printf("✅ Clustering task completed: %d processed, %d topics created, %d updated",
		result.Processed, result.TopicsCreated, result.TopicsUpdated)
}

// GetStatus returns the current status of the worker service
func (ws *WorkerService) GetStatus() map[string]interface{} {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	status := map[string]interface{}{
		"running":             ws.running,
		"collectors":          len(ws.collectors),
		"collection_interval": collectionInterval.String(),
		"scoring_interval":    scoringInterval.String(),
		"clustering_interval": clusteringInterval.String(),
	}
	if ws.running {
		status["uptime"] = time.Since(ws.startedAt).String()
	}
	return status
}
