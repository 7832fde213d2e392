package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"folivix/internal/models"
	"folivix/internal/providers"
	"folivix/internal/structures"
)

const (
	MaxUsers = 3

	userFolderPrefix  = "User"
	userDataFolder    = "UserData"
	predictionsFolder = "Predictions"
	predictionPrefix  = "Prediction_"

	userInfoFile     = "info.txt"
	profileImageFile = "profile_image.jpg"
	metadataFile     = "metadata.txt"
	resultImageFile  = "image.jpg"

	// Persisted date format for metadata.txt, local timezone.
	metadataDateFormat = "2006-01-02 15:04:05"
)

type FileStoreInterface interface {
	CreateUser(name string, image io.Reader) (models.User, error)
	ListUsers() ([]models.User, error)
	RenameUser(id string, name string) error
	SetUserImage(id string, image io.Reader) error
	DeleteUser(id string) error
	SaveAnalysisResult(userID string, result models.AnalysisResult, image io.Reader) error
	ListAnalysisResults(userID string) ([]models.AnalysisResult, error)
	DeleteAnalysisResult(userID string, resultID string) error
}

// FileStore owns the on-disk layout:
//
//	<dataDir>/User<k>/UserData/{info.txt,profile_image.jpg}
//	<dataDir>/User<k>/Predictions/<Token>/Prediction_<id>/{metadata.txt,image.jpg}
//
// The layout is a compatibility contract with data directories written by
// earlier releases and must not change.
type FileStore struct {
	root   string
	logger providers.Logger
}

func NewFileStore(conf *structures.Config, logger providers.Logger) (FileStoreInterface, error) {
	if err := os.MkdirAll(conf.Storage.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{
		root:   conf.Storage.DataDir,
		logger: logger,
	}, nil
}

func (fs *FileStore) CreateUser(name string, image io.Reader) (models.User, error) {
	slot, err := fs.allocateSlot()
	if err != nil {
		return models.User{}, err
	}

	dataDir := filepath.Join(slot, userDataFolder)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return models.User{}, fmt.Errorf("create user data dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, userInfoFile), []byte(name), 0644); err != nil {
		return models.User{}, fmt.Errorf("write user info: %w", err)
	}

	imagePath := ""
	if image != nil {
		dst := filepath.Join(dataDir, profileImageFile)
		if err := copyToFile(dst, image); err != nil {
			// A profile without a picture is still a valid profile.
			fs.logger.Errorf(providers.TypeApp, "Failed to save profile image for %s: %s", filepath.Base(slot), err)
		} else {
			imagePath = dst
		}
	}

	if err := os.MkdirAll(filepath.Join(slot, predictionsFolder), 0755); err != nil {
		return models.User{}, fmt.Errorf("create predictions dir: %w", err)
	}

	user := models.User{
		ID:        filepath.Base(slot),
		Name:      name,
		ImagePath: imagePath,
	}
	fs.logger.Infof(providers.TypeApp, "Created user %s (%s)", user.ID, name)
	return user, nil
}

func (fs *FileStore) ListUsers() ([]models.User, error) {
	entries, err := os.ReadDir(fs.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.User{}, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	users := make([]models.User, 0, MaxUsers)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), userFolderPrefix) {
			continue
		}
		infoPath := filepath.Join(fs.root, entry.Name(), userDataFolder, userInfoFile)
		nameBytes, err := os.ReadFile(infoPath)
		if err != nil {
			fs.logger.Warnf(providers.TypeApp, "Skipping slot %s: %s", entry.Name(), err)
			continue
		}

		imagePath := filepath.Join(fs.root, entry.Name(), userDataFolder, profileImageFile)
		if _, err := os.Stat(imagePath); err != nil {
			imagePath = ""
		}

		users = append(users, models.User{
			ID:        entry.Name(),
			Name:      string(nameBytes),
			ImagePath: imagePath,
		})
	}
	return users, nil
}

func (fs *FileStore) RenameUser(id string, name string) error {
	slot := filepath.Join(fs.root, id)
	if !dirExists(slot) {
		return fmt.Errorf("rename %s: %w", id, ErrUserNotFound)
	}
	infoPath := filepath.Join(slot, userDataFolder, userInfoFile)
	if err := os.WriteFile(infoPath, []byte(name), 0644); err != nil {
		return fmt.Errorf("write user info: %w", err)
	}
	return nil
}

func (fs *FileStore) SetUserImage(id string, image io.Reader) error {
	slot := filepath.Join(fs.root, id)
	if !dirExists(slot) {
		return fmt.Errorf("update image %s: %w", id, ErrUserNotFound)
	}
	dst := filepath.Join(slot, userDataFolder, profileImageFile)
	if err := copyToFile(dst, image); err != nil {
		return fmt.Errorf("write profile image: %w", err)
	}
	return nil
}

func (fs *FileStore) DeleteUser(id string) error {
	slot := filepath.Join(fs.root, id)
	if !dirExists(slot) {
		return fmt.Errorf("delete %s: %w", id, ErrUserNotFound)
	}
	if err := os.RemoveAll(slot); err != nil {
		return fmt.Errorf("delete user slot: %w", err)
	}
	fs.logger.Infof(providers.TypeApp, "Deleted user %s", id)
	return nil
}

func (fs *FileStore) SaveAnalysisResult(userID string, result models.AnalysisResult, image io.Reader) error {
	slot := filepath.Join(fs.root, userID)
	if !dirExists(slot) {
		return fmt.Errorf("save result for %s: %w", userID, ErrUserNotFound)
	}

	classDir := filepath.Join(slot, predictionsFolder, models.FolderToken(result.DiseaseType))
	predictionDir := filepath.Join(classDir, predictionPrefix+result.ID)
	if err := os.MkdirAll(predictionDir, 0755); err != nil {
		return fmt.Errorf("create prediction dir: %w", err)
	}

	metadata := fmt.Sprintf("ClassPredicted: %s\nConfidence: %s\nDate: %s\nTimeInference: %s",
		result.DiseaseType,
		strconv.FormatFloat(result.Confidence, 'g', -1, 64),
		time.UnixMilli(result.Timestamp).Format(metadataDateFormat),
		result.ProcessingTime,
	)
	if err := os.WriteFile(filepath.Join(predictionDir, metadataFile), []byte(metadata), 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	if image != nil {
		dst := filepath.Join(predictionDir, resultImageFile)
		if err := copyToFile(dst, image); err != nil {
			fs.logger.Errorf(providers.TypeApp, "Failed to save result image for %s: %s", result.ID, err)
		}
	}

	fs.logger.Infof(providers.TypeApp, "Saved analysis result %s for %s (%s)", result.ID, userID, result.DiseaseType)
	return nil
}

func (fs *FileStore) ListAnalysisResults(userID string) ([]models.AnalysisResult, error) {
	results := make([]models.AnalysisResult, 0)

	predictionsDir := filepath.Join(fs.root, userID, predictionsFolder)
	classDirs, err := os.ReadDir(predictionsDir)
	if err != nil {
		// Absent user or predictions subtree means an empty history.
		return results, nil
	}

	for _, classDir := range classDirs {
		if !classDir.IsDir() {
			continue
		}
		classPath := filepath.Join(predictionsDir, classDir.Name())
		predictionDirs, err := os.ReadDir(classPath)
		if err != nil {
			fs.logger.Warnf(providers.TypeApp, "Skipping class dir %s: %s", classDir.Name(), err)
			continue
		}
		for _, predictionDir := range predictionDirs {
			if !predictionDir.IsDir() || !strings.HasPrefix(predictionDir.Name(), predictionPrefix) {
				continue
			}
			result, ok := fs.readPrediction(filepath.Join(classPath, predictionDir.Name()))
			if ok {
				results = append(results, result)
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp > results[j].Timestamp
	})
	return results, nil
}

func (fs *FileStore) DeleteAnalysisResult(userID string, resultID string) error {
	slot := filepath.Join(fs.root, userID)
	if !dirExists(slot) {
		return fmt.Errorf("delete result for %s: %w", userID, ErrUserNotFound)
	}

	predictionsDir := filepath.Join(slot, predictionsFolder)
	classDirs, err := os.ReadDir(predictionsDir)
	if err != nil {
		return fmt.Errorf("delete result %s: %w", resultID, ErrResultNotFound)
	}

	for _, classDir := range classDirs {
		if !classDir.IsDir() {
			continue
		}
		predictionDir := filepath.Join(predictionsDir, classDir.Name(), predictionPrefix+resultID)
		if dirExists(predictionDir) {
			if err := os.RemoveAll(predictionDir); err != nil {
				return fmt.Errorf("delete prediction dir: %w", err)
			}
			fs.logger.Infof(providers.TypeApp, "Deleted analysis result %s for %s", resultID, userID)
			return nil
		}
	}
	return fmt.Errorf("delete result %s: %w", resultID, ErrResultNotFound)
}

// readPrediction reconstructs a result from one Prediction_<id> directory.
// Missing or unparseable metadata fields degrade to defaults instead of
// failing the whole listing.
func (fs *FileStore) readPrediction(dir string) (models.AnalysisResult, bool) {
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return models.AnalysisResult{}, false
	}

	metadata := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, ":")
		if found {
			metadata[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}

	confidence, err := strconv.ParseFloat(metadata["Confidence"], 64)
	if err != nil {
		confidence = 0
	}

	timestamp := time.Now().UnixMilli()
	if parsed, err := time.ParseInLocation(metadataDateFormat, metadata["Date"], time.Local); err == nil {
		timestamp = parsed.UnixMilli()
	}

	processingTime := metadata["TimeInference"]
	if processingTime == "" {
		processingTime = "0.0"
	}

	imagePath := filepath.Join(dir, resultImageFile)
	if _, err := os.Stat(imagePath); err != nil {
		imagePath = ""
	}

	return models.AnalysisResult{
		ID:             strings.TrimPrefix(filepath.Base(dir), predictionPrefix),
		ImagePath:      imagePath,
		Timestamp:      timestamp,
		DiseaseType:    metadata["ClassPredicted"],
		Confidence:     confidence,
		ProcessingTime: processingTime,
	}, true
}

// allocateSlot returns the lowest-numbered free slot directory, creating it.
// A slot is free when it is absent or present but empty.
func (fs *FileStore) allocateSlot() (string, error) {
	for k := 1; k <= MaxUsers; k++ {
		slot := filepath.Join(fs.root, userFolderPrefix+strconv.Itoa(k))
		entries, err := os.ReadDir(slot)
		if os.IsNotExist(err) {
			if err := os.MkdirAll(slot, 0755); err != nil {
				return "", fmt.Errorf("create user slot: %w", err)
			}
			return slot, nil
		}
		if err == nil && len(entries) == 0 {
			return slot, nil
		}
	}
	return "", ErrCapacityExceeded
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func copyToFile(dst string, src io.Reader) error {
	file, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, src); err != nil {
		file.Close()
		os.Remove(dst)
		return err
	}
	return file.Close()
}
