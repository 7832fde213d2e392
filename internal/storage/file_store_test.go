package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folivix/internal/models"
	"folivix/internal/providers"
	"folivix/internal/structures"
)

// local mock logger to avoid import cycle with testutil
type storeTestLogger struct{}

func (m *storeTestLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *storeTestLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *storeTestLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *storeTestLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *storeTestLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *storeTestLogger) Close()                                                  {}

func newTestStore(t *testing.T) (FileStoreInterface, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStore(&structures.Config{
		Storage: structures.StorageConfig{DataDir: dir},
	}, &storeTestLogger{})
	require.NoError(t, err)
	return store, dir
}

func TestFileStore_CreateUser_AllocatesLowestSlot(t *testing.T) {
	store, _ := newTestStore(t)

	ana, err := store.CreateUser("Ana", nil)
	require.NoError(t, err)
	assert.Equal(t, "User1", ana.ID)

	luis, err := store.CreateUser("Luis", nil)
	require.NoError(t, err)
	assert.Equal(t, "User2", luis.ID)
}

func TestFileStore_CreateUser_CapacityExceeded(t *testing.T) {
	store, _ := newTestStore(t)

	for _, name := range []string{"Ana", "Luis", "Marta"} {
		_, err := store.CreateUser(name, nil)
		require.NoError(t, err)
	}

	_, err := store.CreateUser("Pedro", nil)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestFileStore_CreateUser_ReusesFreedSlot(t *testing.T) {
	store, _ := newTestStore(t)

	for _, name := range []string{"Ana", "Luis", "Marta"} {
		_, err := store.CreateUser(name, nil)
		require.NoError(t, err)
	}
	require.NoError(t, store.DeleteUser("User2"))

	user, err := store.CreateUser("Pedro", nil)
	require.NoError(t, err)
	assert.Equal(t, "User2", user.ID)
}

func TestFileStore_CreateUser_EmptySlotDirIsFree(t *testing.T) {
	store, dir := newTestStore(t)

	// A bare User1 directory with no contents counts as free.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "User1"), 0755))

	user, err := store.CreateUser("Ana", nil)
	require.NoError(t, err)
	assert.Equal(t, "User1", user.ID)
}

func TestFileStore_CreateUser_WritesLayout(t *testing.T) {
	store, dir := newTestStore(t)

	user, err := store.CreateUser("Ana", bytes.NewReader([]byte("jpeg-bytes")))
	require.NoError(t, err)

	info, err := os.ReadFile(filepath.Join(dir, "User1", "UserData", "info.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Ana", string(info))

	img, err := os.ReadFile(filepath.Join(dir, "User1", "UserData", "profile_image.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(img))
	assert.NotEmpty(t, user.ImagePath)

	predInfo, err := os.Stat(filepath.Join(dir, "User1", "Predictions"))
	require.NoError(t, err)
	assert.True(t, predInfo.IsDir())
}

func TestFileStore_ListUsers_Empty(t *testing.T) {
	store, _ := newTestStore(t)

	users, err := store.ListUsers()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestFileStore_ListUsers_SkipsBrokenSlot(t *testing.T) {
	store, dir := newTestStore(t)

	_, err := store.CreateUser("Ana", nil)
	require.NoError(t, err)

	// Slot directory without UserData/info.txt is ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "User2", "UserData"), 0755))

	users, err := store.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "User1", users[0].ID)
	assert.Equal(t, "Ana", users[0].Name)
}

func TestFileStore_RenameUser(t *testing.T) {
	store, dir := newTestStore(t)

	_, err := store.CreateUser("Ana", nil)
	require.NoError(t, err)
	require.NoError(t, store.RenameUser("User1", "Ana María"))

	info, err := os.ReadFile(filepath.Join(dir, "User1", "UserData", "info.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Ana María", string(info))
}

func TestFileStore_RenameUser_MissingCreatesNothing(t *testing.T) {
	store, dir := newTestStore(t)

	err := store.RenameUser("User2", "Ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, statErr := os.Stat(filepath.Join(dir, "User2"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_DeleteUser_Missing(t *testing.T) {
	store, _ := newTestStore(t)
	assert.ErrorIs(t, store.DeleteUser("User3"), ErrUserNotFound)
}

func TestFileStore_SaveAnalysisResult_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.CreateUser("Ana", nil)
	require.NoError(t, err)

	saved := models.AnalysisResult{
		ID:             "1700000000000",
		Timestamp:      time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local).UnixMilli(),
		DiseaseType:    "Roya común",
		Confidence:     0.93,
		ProcessingTime: "1.25",
	}
	require.NoError(t, store.SaveAnalysisResult("User1", saved, bytes.NewReader([]byte("img"))))

	results, err := store.ListAnalysisResults("User1")
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, saved.DiseaseType, got.DiseaseType)
	assert.Equal(t, saved.Confidence, got.Confidence)
	assert.Equal(t, saved.ProcessingTime, got.ProcessingTime)
	assert.NotEmpty(t, got.ImagePath)

	// Timestamps survive at second precision only.
	assert.Equal(t, saved.Timestamp/1000, got.Timestamp/1000)
}

func TestFileStore_SaveAnalysisResult_MetadataFormat(t *testing.T) {
	store, dir := newTestStore(t)

	_, err := store.CreateUser("Ana", nil)
	require.NoError(t, err)

	ts := time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)
	result := models.AnalysisResult{
		ID:             "42",
		Timestamp:      ts.UnixMilli(),
		DiseaseType:    "Mancha gris",
		Confidence:     0.875,
		ProcessingTime: "0.80",
	}
	require.NoError(t, store.SaveAnalysisResult("User1", result, nil))

	data, err := os.ReadFile(filepath.Join(dir, "User1", "Predictions", "Mancha_gris", "Prediction_42", "metadata.txt"))
	require.NoError(t, err)

	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ClassPredicted: Mancha gris", lines[0])
	assert.Equal(t, "Confidence: 0.875", lines[1])
	assert.Equal(t, "Date: 2026-03-14 15:09:26", lines[2])
	assert.Equal(t, "TimeInference: 0.80", lines[3])
}

func TestFileStore_SaveAnalysisResult_MissingUser(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.SaveAnalysisResult("User1", models.AnalysisResult{ID: "1"}, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFileStore_ListAnalysisResults_DescendingByTimestamp(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.CreateUser("Ana", nil)
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local)
	for i, disease := range []string{"Roya común", "Saludable", "Mancha gris"} {
		result := models.AnalysisResult{
			ID:          "r" + string(rune('a'+i)),
			Timestamp:   base.Add(time.Duration(i) * time.Hour).UnixMilli(),
			DiseaseType: disease,
			Confidence:  0.5,
		}
		require.NoError(t, store.SaveAnalysisResult("User1", result, nil))
	}

	results, err := store.ListAnalysisResults("User1")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "rc", results[0].ID)
	assert.Equal(t, "rb", results[1].ID)
	assert.Equal(t, "ra", results[2].ID)
}

func TestFileStore_ListAnalysisResults_UnknownUserIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	results, err := store.ListAnalysisResults("User9")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFileStore_ListAnalysisResults_DegradedMetadata(t *testing.T) {
	store, dir := newTestStore(t)

	_, err := store.CreateUser("Ana", nil)
	require.NoError(t, err)

	predDir := filepath.Join(dir, "User1", "Predictions", "Roya_comun", "Prediction_7")
	require.NoError(t, os.MkdirAll(predDir, 0755))
	metadata := "ClassPredicted: Roya común\nConfidence: not-a-number\nDate: garbage\n"
	require.NoError(t, os.WriteFile(filepath.Join(predDir, "metadata.txt"), []byte(metadata), 0644))

	before := time.Now().UnixMilli()
	results, err := store.ListAnalysisResults("User1")
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, "7", got.ID)
	assert.Equal(t, "Roya común", got.DiseaseType)
	assert.Equal(t, float64(0), got.Confidence)
	assert.Equal(t, "0.0", got.ProcessingTime)
	assert.GreaterOrEqual(t, got.Timestamp, before)
	assert.Empty(t, got.ImagePath)
}

func TestFileStore_DeleteAnalysisResult(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.CreateUser("Ana", nil)
	require.NoError(t, err)

	result := models.AnalysisResult{ID: "del-me", Timestamp: time.Now().UnixMilli(), DiseaseType: "Saludable"}
	require.NoError(t, store.SaveAnalysisResult("User1", result, nil))
	require.NoError(t, store.DeleteAnalysisResult("User1", "del-me"))

	results, err := store.ListAnalysisResults("User1")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFileStore_DeleteAnalysisResult_Missing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.CreateUser("Ana", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteAnalysisResult("User1", "nope"), ErrResultNotFound)
	assert.ErrorIs(t, store.DeleteAnalysisResult("User9", "nope"), ErrUserNotFound)
}
