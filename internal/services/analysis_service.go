package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"
	"time"

	"folivix/internal/models"
	"folivix/internal/network"
	"folivix/internal/providers"
	"folivix/internal/storage"
)

type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, image []byte) (models.AnalysisResult, error)
	SaveResult(result models.AnalysisResult, image []byte) error
	DeleteResult(resultID string) error
	GetResults() []models.AnalysisResult
	WatchResults() (<-chan []models.AnalysisResult, func())
	Statistics() models.AnalysisStatistics
	CurrentUserID() (string, bool)
	Close()
}

// AnalysisService is the registry for the active profile's analysis
// history. It follows the user registry's active-profile stream and
// re-syncs its cache from the file store whenever the selection changes.
type AnalysisService struct {
	store      storage.FileStoreInterface
	classifier network.ClassifierClientInterface
	metrics    providers.MetricsProviderInterface
	logger     providers.Logger

	mu            sync.RWMutex
	currentUserID string
	results       []models.AnalysisResult

	resultsState *models.State[[]models.AnalysisResult]
	cancelWatch  func()
	done         chan struct{}
}

func NewAnalysisService(store storage.FileStoreInterface, classifier network.ClassifierClientInterface, users UserServiceInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) AnalysisServiceInterface {
	as := &AnalysisService{
		store:        store,
		classifier:   classifier,
		metrics:      metrics,
		logger:       logger,
		results:      []models.AnalysisResult{},
		resultsState: models.NewState([]models.AnalysisResult{}),
		done:         make(chan struct{}),
	}

	ch, cancel := users.WatchCurrentUser()
	as.cancelWatch = cancel
	go as.followCurrentUser(ch)

	return as
}

func (as *AnalysisService) followCurrentUser(ch <-chan *models.User) {
	for {
		select {
		case user, ok := <-ch:
			if !ok {
				return
			}
			if user == nil {
				as.setResults("", []models.AnalysisResult{})
				continue
			}
			results, err := as.store.ListAnalysisResults(user.ID)
			if err != nil {
				as.logger.Errorf(providers.TypeApp, "Loading results for %s failed: %s", user.ID, err)
				results = []models.AnalysisResult{}
			}
			as.setResults(user.ID, results)
		case <-as.done:
			return
		}
	}
}

// Analyze submits the image to the remote classifier and builds an unsaved
// result from the reply. The classifier's label is translated to its
// display name here, so everything downstream (persistence, statistics,
// the Predictions/ folder layout) works on the translated form. The
// caller decides whether to keep the result.
func (as *AnalysisService) Analyze(ctx context.Context, image []byte) (models.AnalysisResult, error) {
	start := time.Now()
	prediction, err := as.classifier.Predict(ctx, image)
	as.metrics.ObserveClassificationDuration(time.Since(start))
	if err != nil {
		as.metrics.IncClassificationsTotal("failure")
		return models.AnalysisResult{}, err
	}
	as.metrics.IncClassificationsTotal("success")

	now := time.Now().UnixMilli()
	return models.AnalysisResult{
		ID:             strconv.FormatInt(now, 10),
		Timestamp:      now,
		DiseaseType:    models.DisplayName(prediction.ClassName),
		Confidence:     prediction.Confidence,
		ProcessingTime: strconv.FormatFloat(prediction.ProcessingTime, 'g', -1, 64),
	}, nil
}

// SaveResult persists the result for the active profile and prepends it to
// the cache, preserving the most-recent-first order of the listing.
// Without an active profile this is a logged no-op.
func (as *AnalysisService) SaveResult(result models.AnalysisResult, image []byte) error {
	as.mu.RLock()
	userID := as.currentUserID
	as.mu.RUnlock()

	if userID == "" {
		as.logger.Errorf(providers.TypeApp, "Cannot save result %s: no active user", result.ID)
		return nil
	}

	var img io.Reader
	if len(image) > 0 {
		img = bytes.NewReader(image)
	}
	if err := as.store.SaveAnalysisResult(userID, result, img); err != nil {
		return err
	}

	as.mu.Lock()
	as.results = append([]models.AnalysisResult{result}, as.results...)
	snapshot := as.snapshotLocked()
	as.mu.Unlock()

	as.publish(snapshot)
	return nil
}

// DeleteResult removes one entry from storage and the cache. Requires an
// active profile.
func (as *AnalysisService) DeleteResult(resultID string) error {
	as.mu.RLock()
	userID := as.currentUserID
	as.mu.RUnlock()

	if userID == "" {
		return fmt.Errorf("delete result %s: %w", resultID, storage.ErrUserNotFound)
	}

	if err := as.store.DeleteAnalysisResult(userID, resultID); err != nil {
		return err
	}

	as.mu.Lock()
	kept := as.results[:0]
	for _, r := range as.results {
		if r.ID != resultID {
			kept = append(kept, r)
		}
	}
	as.results = kept
	snapshot := as.snapshotLocked()
	as.mu.Unlock()

	as.publish(snapshot)
	return nil
}

func (as *AnalysisService) GetResults() []models.AnalysisResult {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.snapshotLocked()
}

func (as *AnalysisService) WatchResults() (<-chan []models.AnalysisResult, func()) {
	return as.resultsState.Watch()
}

func (as *AnalysisService) CurrentUserID() (string, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.currentUserID, as.currentUserID != ""
}

// Statistics aggregates the cached results. Every known disease is
// pre-seeded with "0-0%" so consumers can render a complete legend even
// with no data. Labels are translated to display names before grouping;
// unrecognized labels pass through unchanged.
func (as *AnalysisService) Statistics() models.AnalysisStatistics {
	as.mu.RLock()
	defer as.mu.RUnlock()

	stats := models.AnalysisStatistics{
		TotalLeaves:  len(as.results),
		DiseaseStats: make(map[string]string),
	}
	for _, name := range models.KnownDisplayNames() {
		stats.DiseaseStats[name] = "0-0%"
	}

	var sum float64
	counts := make(map[string]int)
	sums := make(map[string]float64)
	for _, r := range as.results {
		display := models.DisplayName(r.DiseaseType)
		sum += r.Confidence
		counts[display]++
		sums[display] += r.Confidence
	}

	if stats.TotalLeaves > 0 {
		stats.AverageAccuracy = percent(sum, stats.TotalLeaves)
	}
	for display, count := range counts {
		stats.DiseaseStats[display] = fmt.Sprintf("%d-%d%%", count, percent(sums[display], count))
	}
	return stats
}

func (as *AnalysisService) Close() {
	as.cancelWatch()
	close(as.done)
	as.resultsState.Close()
}

func (as *AnalysisService) setResults(userID string, results []models.AnalysisResult) {
	as.mu.Lock()
	as.currentUserID = userID
	as.results = results
	snapshot := as.snapshotLocked()
	as.mu.Unlock()

	as.publish(snapshot)
	as.logger.Infof(providers.TypeApp, "Loaded %d results for user %q", len(results), userID)
}

func (as *AnalysisService) snapshotLocked() []models.AnalysisResult {
	out := make([]models.AnalysisResult, len(as.results))
	copy(out, as.results)
	return out
}

func (as *AnalysisService) publish(snapshot []models.AnalysisResult) {
	as.metrics.SetResultsTotal(len(snapshot))
	as.resultsState.Set(snapshot)
}

func percent(sum float64, count int) int {
	return int(math.Round(sum / float64(count) * 100))
}
