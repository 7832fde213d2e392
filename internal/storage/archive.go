package storage

import (
	"time"

	json "github.com/goccy/go-json"

	"folivix/internal/models"
	"folivix/internal/providers"
	"folivix/internal/storage/interfaces"
)

// HistorySnapshot is the serialized form of one user's analysis history,
// produced by the export endpoint.
type HistorySnapshot struct {
	UserID     string                  `json:"user_id"`
	ExportedAt time.Time               `json:"exported_at"`
	Results    []models.AnalysisResult `json:"results"`
}

type ArchiverInterface interface {
	ExportHistory(userID string) ([]byte, error)
	Close()
}

// Archiver packs a user's full history into a zstd-compressed JSON blob.
// Image files are not included, only the metadata the statistics are
// computed from.
type Archiver struct {
	store      FileStoreInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewArchiver(store FileStoreInterface, compressor interfaces.CompressorInterface, logger providers.Logger) ArchiverInterface {
	return &Archiver{
		store:      store,
		compressor: compressor,
		logger:     logger,
	}
}

func (a *Archiver) ExportHistory(userID string) ([]byte, error) {
	results, err := a.store.ListAnalysisResults(userID)
	if err != nil {
		return nil, err
	}

	snapshot := HistorySnapshot{
		UserID:     userID,
		ExportedAt: time.Now(),
		Results:    results,
	}
	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	data, err := a.compressor.Compress(jsonData)
	if err != nil {
		return nil, err
	}

	a.logger.Infof(providers.TypeApp, "Exported %d results for %s (%d bytes)", len(results), userID, len(data))
	return data, nil
}

func (a *Archiver) Close() {
	a.compressor.Close()
}
