package controllers

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"folivix/internal/models"
	"folivix/internal/network"
	"folivix/internal/providers"
	"folivix/internal/services"
	"folivix/internal/storage"
)

const maxUploadSize = 10 << 20 // 10 MB

type ApiController struct {
	logger   providers.Logger
	users    services.UserServiceInterface
	analysis services.AnalysisServiceInterface
	diseases services.DiseaseServiceInterface
	prefs    providers.PrefsProviderInterface
	cache    providers.CacheProviderInterface
	archiver storage.ArchiverInterface
}

func NewApiController(logger providers.Logger, users services.UserServiceInterface, analysis services.AnalysisServiceInterface, diseases services.DiseaseServiceInterface, prefs providers.PrefsProviderInterface, cache providers.CacheProviderInterface, archiver storage.ArchiverInterface) *ApiController {
	return &ApiController{
		logger:   logger,
		users:    users,
		analysis: analysis,
		diseases: diseases,
		prefs:    prefs,
		cache:    cache,
		archiver: archiver,
	}
}

// --- users ---

func (ac *ApiController) GetUsers(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "users", func() (any, error) {
		return ac.users.GetUsers(), nil
	})
}

func (ac *ApiController) CreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	name := r.FormValue("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	var image io.Reader
	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()
		image = file
	}

	user, err := ac.users.CreateUser(name, image)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	if err := ac.prefs.SetLastUserID(user.ID); err != nil {
		ac.logger.Errorf(providers.TypeApp, "Persisting last user failed: %s", err)
	}

	ac.cache.Del("users")
	ac.writeJSON(w, http.StatusCreated, user)
}

func (ac *ApiController) RenameUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ID == "" || payload.Name == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := ac.users.UpdateUserName(payload.ID, payload.Name); err != nil {
		ac.writeError(w, err)
		return
	}

	ac.cache.Del("users")
	w.WriteHeader(http.StatusOK)
}

func (ac *ApiController) UpdateUserImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	id := r.FormValue("id")
	file, _, err := r.FormFile("image")
	if id == "" || err != nil {
		http.Error(w, "id and image are required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := ac.users.UpdateUserImage(id, file); err != nil {
		ac.writeError(w, err)
		return
	}

	ac.cache.Del("users")
	w.WriteHeader(http.StatusOK)
}

func (ac *ApiController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := ac.users.DeleteUser(id); err != nil {
		ac.writeError(w, err)
		return
	}

	// Keep the persisted selection in line with the fallback the registry
	// applied.
	if current, ok := ac.users.GetCurrentUser(); ok {
		if err := ac.prefs.SetLastUserID(current.ID); err != nil {
			ac.logger.Errorf(providers.TypeApp, "Persisting last user failed: %s", err)
		}
	} else if err := ac.prefs.ClearLastUserID(); err != nil {
		ac.logger.Errorf(providers.TypeApp, "Clearing last user failed: %s", err)
	}

	ac.cache.Del("users")
	ac.cache.Del("results:" + id)
	ac.cache.Del("stats:" + id)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.users.GetCurrentUser()
	if !ok {
		http.Error(w, "no active user", http.StatusNotFound)
		return
	}
	ac.writeJSON(w, http.StatusOK, user)
}

func (ac *ApiController) SetCurrentUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := ac.users.SetCurrentUser(payload.ID); err != nil {
		ac.writeError(w, err)
		return
	}
	if err := ac.prefs.SetLastUserID(payload.ID); err != nil {
		ac.logger.Errorf(providers.TypeApp, "Persisting last user failed: %s", err)
	}
	w.WriteHeader(http.StatusOK)
}

// --- analysis ---

func (ac *ApiController) Analyze(w http.ResponseWriter, r *http.Request) {
	image, ok := ac.readImage(w, r)
	if !ok {
		return
	}

	result, err := ac.analysis.Analyze(r.Context(), image)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, result)
}

func (ac *ApiController) GetResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := ac.analysis.CurrentUserID()
	if !ok {
		ac.writeJSON(w, http.StatusOK, ac.analysis.GetResults())
		return
	}
	ac.serveFromCacheOrCompute(w, "results:"+userID, func() (any, error) {
		return ac.analysis.GetResults(), nil
	})
}

func (ac *ApiController) SaveResult(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(r.FormValue("result")), &result); err != nil || result.ID == "" {
		http.Error(w, "result is required", http.StatusBadRequest)
		return
	}
	// The stored image path is assigned by the storage layer, not the client.
	result.ImagePath = ""

	var image []byte
	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()
		image, err = io.ReadAll(file)
		if err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
	}

	if err := ac.analysis.SaveResult(result, image); err != nil {
		ac.writeError(w, err)
		return
	}

	if userID, ok := ac.analysis.CurrentUserID(); ok {
		ac.cache.Del("results:" + userID)
		ac.cache.Del("stats:" + userID)
	}
	w.WriteHeader(http.StatusCreated)
}

func (ac *ApiController) DeleteResult(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := ac.analysis.DeleteResult(id); err != nil {
		ac.writeError(w, err)
		return
	}

	if userID, ok := ac.analysis.CurrentUserID(); ok {
		ac.cache.Del("results:" + userID)
		ac.cache.Del("stats:" + userID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetStatistics(w http.ResponseWriter, r *http.Request) {
	userID, _ := ac.analysis.CurrentUserID()
	ac.serveFromCacheOrCompute(w, "stats:"+userID, func() (any, error) {
		return ac.analysis.Statistics(), nil
	})
}

func (ac *ApiController) ExportHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := ac.analysis.CurrentUserID()
	if !ok {
		http.Error(w, "no active user", http.StatusNotFound)
		return
	}

	data, err := ac.archiver.ExportHistory(userID)
	if err != nil {
		ac.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zstd")
	w.Header().Set("Content-Disposition", `attachment; filename="history_`+userID+`.json.zst"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// --- reference data & settings ---

func (ac *ApiController) GetDiseases(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "diseases", func() (any, error) {
		return ac.diseases.GetDiseaseInfo(), nil
	})
}

func (ac *ApiController) GetTip(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, http.StatusOK, map[string]string{"tip": ac.diseases.CurrentTip()})
}

func (ac *ApiController) GetServerHost(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, http.StatusOK, map[string]string{"host": ac.prefs.ServerHost()})
}

func (ac *ApiController) SetServerHost(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Host string `json:"host"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Host == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := ac.prefs.SetServerHost(payload.Host); err != nil {
		ac.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// --- helpers ---

func (ac *ApiController) readImage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, false
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image is required", http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) writeError(w http.ResponseWriter, err error) {
	var clsErr *network.ClassificationError
	switch {
	case errors.Is(err, storage.ErrUserNotFound), errors.Is(err, storage.ErrResultNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, storage.ErrCapacityExceeded):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, providers.ErrInvalidServerHost):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &clsErr):
		http.Error(w, clsErr.Message, http.StatusBadGateway)
	default:
		ac.logger.Errorf(providers.TypeApp, "Request failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
