package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"jazzmate/internal/services/aiservice"
	"jazzmate/internal/services/jazzmate"
)

// GenerateCall records one POST /recommend/by-review.
type GenerateCall struct {
	ReviewText string
	ReviewID   jazzmate.ID
	Limit      int
}

type pendingRecommendations struct {
	afterFetches int
	records      []jazzmate.RecommendationRecord
}

// FakeBackend serves the JazzMate backend and AI service endpoints from one
// in-process HTTP server backed by in-memory state.
type FakeBackend struct {
	server *httptest.Server

	mu             sync.Mutex
	nextID         int
	reviews        map[jazzmate.ID]*jazzmate.ReviewWithRecommendations
	order          []jazzmate.ID
	pending        map[jazzmate.ID]pendingRecommendations
	reviewFetches  map[jazzmate.ID]int
	reviewFailures map[jazzmate.ID]int
	tracks         map[jazzmate.ID]jazzmate.Track
	trackFailures  map[jazzmate.ID]int
	albums         []jazzmate.Album
	critics        []jazzmate.CriticsReview
	generateCalls  []GenerateCall
	generateStatus int
	dataQuality    *aiservice.DataQualityReport
	lastRequestIDs []string
	requestCount   int
}

// NewFakeBackend starts a fake backend that is shut down when the test ends.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		nextID:         1,
		reviews:        make(map[jazzmate.ID]*jazzmate.ReviewWithRecommendations),
		pending:        make(map[jazzmate.ID]pendingRecommendations),
		reviewFetches:  make(map[jazzmate.ID]int),
		reviewFailures: make(map[jazzmate.ID]int),
		tracks:         make(map[jazzmate.ID]jazzmate.Track),
		trackFailures:  make(map[jazzmate.ID]int),
		generateStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user-reviews", fb.listReviews)
	mux.HandleFunc("POST /api/user-reviews", fb.createReview)
	mux.HandleFunc("GET /api/user-reviews/{id}", fb.getReview)
	mux.HandleFunc("DELETE /api/user-reviews/{id}", fb.deleteReview)
	mux.HandleFunc("GET /api/user-reviews/{id}/recommendations", fb.getRecommendations)
	mux.HandleFunc("GET /api/tracks/{id}", fb.getTrack)
	mux.HandleFunc("GET /api/albums/search", fb.searchAlbums)
	mux.HandleFunc("GET /api/albums/{id}", fb.getAlbum)
	mux.HandleFunc("GET /api/critics", fb.listCritics)
	mux.HandleFunc("GET /api/critics/{id}", fb.getCritic)
	mux.HandleFunc("POST /recommend/by-review", fb.generate)
	mux.HandleFunc("GET /admin/data-quality", fb.getDataQuality)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	fb.server = httptest.NewServer(fb.recordRequestID(mux))
	t.Cleanup(fb.server.Close)
	return fb
}

// URL returns the base URL of the fake server.
func (fb *FakeBackend) URL() string {
	return fb.server.URL
}

// AddReview stores review under the next free id and returns that id.
func (fb *FakeBackend) AddReview(review jazzmate.Review) jazzmate.ID {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := jazzmate.ID(strconv.Itoa(fb.nextID))
	fb.nextID++
	fb.storeLocked(id, review)
	return id
}

// PutReview stores review under id, replacing any existing entry.
func (fb *FakeBackend) PutReview(id jazzmate.ID, review jazzmate.Review) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if n, err := strconv.Atoi(id.String()); err == nil && n >= fb.nextID {
		fb.nextID = n + 1
	}
	fb.storeLocked(id, review)
}

func (fb *FakeBackend) storeLocked(id jazzmate.ID, review jazzmate.Review) {
	review.ID = id
	if _, ok := fb.reviews[id]; !ok {
		fb.order = append(fb.order, id)
	}
	fb.reviews[id] = &jazzmate.ReviewWithRecommendations{Review: review}
}

// PublishRecommendations attaches records to the review immediately.
func (fb *FakeBackend) PublishRecommendations(id jazzmate.ID, records ...jazzmate.RecommendationRecord) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.publishLocked(id, records)
}

// PublishAfterFetches makes records visible starting with the n-th GET of the
// review (1-based), simulating asynchronous generation.
func (fb *FakeBackend) PublishAfterFetches(id jazzmate.ID, n int, records ...jazzmate.RecommendationRecord) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.pending[id] = pendingRecommendations{afterFetches: n, records: records}
}

func (fb *FakeBackend) publishLocked(id jazzmate.ID, records []jazzmate.RecommendationRecord) {
	review, ok := fb.reviews[id]
	if !ok {
		return
	}
	for i := range records {
		records[i].UserReviewID = id
	}
	review.Recommendations = append([]jazzmate.RecommendationRecord(nil), records...)
	review.HasRecommendations = len(records) > 0
}

// FailReview makes GET /api/user-reviews/{id} answer with status.
func (fb *FakeBackend) FailReview(id jazzmate.ID, status int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.reviewFailures[id] = status
}

// AddTrack registers a catalog track.
func (fb *FakeBackend) AddTrack(track jazzmate.Track) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.tracks[track.ID] = track
}

// FailTrack makes GET /api/tracks/{id} answer with status.
func (fb *FakeBackend) FailTrack(id jazzmate.ID, status int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.trackFailures[id] = status
}

// AddAlbum registers an album.
func (fb *FakeBackend) AddAlbum(album jazzmate.Album) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.albums = append(fb.albums, album)
}

// AddCritic registers a critic review.
func (fb *FakeBackend) AddCritic(review jazzmate.CriticsReview) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.critics = append(fb.critics, review)
}

// SetGenerateStatus sets the status returned by the generation endpoint.
func (fb *FakeBackend) SetGenerateStatus(status int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.generateStatus = status
}

// SetDataQuality sets the admin data-quality payload.
func (fb *FakeBackend) SetDataQuality(report aiservice.DataQualityReport) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.dataQuality = &report
}

// GenerateCalls returns the generation requests received so far.
func (fb *FakeBackend) GenerateCalls() []GenerateCall {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]GenerateCall(nil), fb.generateCalls...)
}

// ReviewFetches returns how many times the review was fetched.
func (fb *FakeBackend) ReviewFetches(id jazzmate.ID) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.reviewFetches[id]
}

// HasReview reports whether the review exists.
func (fb *FakeBackend) HasReview(id jazzmate.ID) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	_, ok := fb.reviews[id]
	return ok
}

// RequestIDs returns the X-Request-ID headers seen, in arrival order.
func (fb *FakeBackend) RequestIDs() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.lastRequestIDs...)
}

// RequestCount returns the number of requests served.
func (fb *FakeBackend) RequestCount() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.requestCount
}

func (fb *FakeBackend) recordRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.requestCount++
		if rid := r.Header.Get("X-Request-ID"); rid != "" {
			fb.lastRequestIDs = append(fb.lastRequestIDs, rid)
		}
		fb.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) listReviews(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	page, size := pageArgs(r, 20)

	fb.mu.Lock()
	matched := make([]jazzmate.Review, 0, len(fb.order))
	for i := len(fb.order) - 1; i >= 0; i-- {
		review := fb.reviews[fb.order[i]].Review
		if userID != "" && review.UserID != userID {
			continue
		}
		if userID == "" && !review.IsPublic {
			continue
		}
		matched = append(matched, review)
	}
	fb.mu.Unlock()

	writeJSON(w, http.StatusOK, paginate(matched, page, size))
}

func (fb *FakeBackend) createReview(w http.ResponseWriter, r *http.Request) {
	var req jazzmate.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
		return
	}
	if strings.TrimSpace(req.TrackName) == "" || strings.TrimSpace(req.ArtistName) == "" || strings.TrimSpace(req.ReviewContent) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "required field missing"})
		return
	}
	review := jazzmate.Review{
		UserID:          req.UserID,
		TrackName:       req.TrackName,
		ArtistName:      req.ArtistName,
		ReviewContent:   req.ReviewContent,
		Mood:            req.Mood,
		Genre:           req.Genre,
		VocalStyle:      req.VocalStyle,
		Instrumentation: req.Instrumentation,
		Tags:            req.Tags,
		IsPublic:        req.IsPublic,
	}
	if req.AlbumID != nil {
		review.AlbumID = *req.AlbumID
	}
	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.EnergyLevel != nil {
		review.EnergyLevel = *req.EnergyLevel
	}
	if req.BPM != nil {
		review.BPM = *req.BPM
	}
	id := fb.AddReview(review)
	review.ID = id
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "review saved",
		"data":    review,
	})
}

func (fb *FakeBackend) getReview(w http.ResponseWriter, r *http.Request) {
	id := jazzmate.ID(r.PathValue("id"))

	fb.mu.Lock()
	fb.reviewFetches[id]++
	fetches := fb.reviewFetches[id]
	if status, ok := fb.reviewFailures[id]; ok {
		fb.mu.Unlock()
		http.Error(w, "review unavailable", status)
		return
	}
	review, ok := fb.reviews[id]
	if !ok {
		fb.mu.Unlock()
		http.Error(w, "review not found", http.StatusNotFound)
		return
	}
	if p, ok := fb.pending[id]; ok && fetches >= p.afterFetches {
		fb.publishLocked(id, p.records)
		delete(fb.pending, id)
	}
	snapshot := *review
	snapshot.Recommendations = append([]jazzmate.RecommendationRecord(nil), review.Recommendations...)
	fb.mu.Unlock()

	writeJSON(w, http.StatusOK, snapshot)
}

func (fb *FakeBackend) deleteReview(w http.ResponseWriter, r *http.Request) {
	id := jazzmate.ID(r.PathValue("id"))
	fb.mu.Lock()
	_, ok := fb.reviews[id]
	if ok {
		delete(fb.reviews, id)
		for i, existing := range fb.order {
			if existing == id {
				fb.order = append(fb.order[:i], fb.order[i+1:]...)
				break
			}
		}
	}
	fb.mu.Unlock()
	if !ok {
		http.Error(w, "review not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "review deleted"})
}

func (fb *FakeBackend) getRecommendations(w http.ResponseWriter, r *http.Request) {
	id := jazzmate.ID(r.PathValue("id"))
	fb.mu.Lock()
	review, ok := fb.reviews[id]
	var records []jazzmate.RecommendationRecord
	if ok {
		records = append(records, review.Recommendations...)
	}
	fb.mu.Unlock()
	if !ok {
		http.Error(w, "review not found", http.StatusNotFound)
		return
	}
	if records == nil {
		records = []jazzmate.RecommendationRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (fb *FakeBackend) getTrack(w http.ResponseWriter, r *http.Request) {
	id := jazzmate.ID(r.PathValue("id"))
	fb.mu.Lock()
	status, failing := fb.trackFailures[id]
	track, ok := fb.tracks[id]
	fb.mu.Unlock()
	switch {
	case failing:
		http.Error(w, "track unavailable", status)
	case !ok:
		http.Error(w, "track not found", http.StatusNotFound)
	default:
		writeJSON(w, http.StatusOK, track)
	}
}

func (fb *FakeBackend) searchAlbums(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	page, size := pageArgs(r, 20)
	fb.mu.Lock()
	matched := make([]jazzmate.Album, 0)
	for _, album := range fb.albums {
		if strings.Contains(strings.ToLower(album.Artist), query) || strings.Contains(strings.ToLower(album.Title), query) {
			matched = append(matched, album)
		}
	}
	fb.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(matched, page, size))
}

func (fb *FakeBackend) getAlbum(w http.ResponseWriter, r *http.Request) {
	id := jazzmate.ID(r.PathValue("id"))
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, album := range fb.albums {
		if album.ID == id {
			writeJSON(w, http.StatusOK, album)
			return
		}
	}
	http.Error(w, "album not found", http.StatusNotFound)
}

func (fb *FakeBackend) listCritics(w http.ResponseWriter, r *http.Request) {
	page, size := pageArgs(r, 20)
	fb.mu.Lock()
	all := make([]jazzmate.CriticsReview, 0, len(fb.critics))
	for _, review := range fb.critics {
		if strings.TrimSpace(review.ReviewSummary) != "" {
			all = append(all, review)
		}
	}
	fb.mu.Unlock()

	content := paginate(all, page, size)
	totalPages := (len(all) + size - 1) / size
	writeJSON(w, http.StatusOK, jazzmate.CriticsPage{
		Content:       content,
		TotalElements: len(all),
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
		First:         page == 0,
		Last:          page >= totalPages-1,
	})
}

func (fb *FakeBackend) getCritic(w http.ResponseWriter, r *http.Request) {
	id := jazzmate.ID(r.PathValue("id"))
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, review := range fb.critics {
		if review.ID == id {
			writeJSON(w, http.StatusOK, review)
			return
		}
	}
	http.Error(w, "critic review not found", http.StatusNotFound)
}

func (fb *FakeBackend) generate(w http.ResponseWriter, r *http.Request) {
	var req aiservice.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}
	fb.mu.Lock()
	fb.generateCalls = append(fb.generateCalls, GenerateCall(req))
	status := fb.generateStatus
	fb.mu.Unlock()

	if status != http.StatusOK {
		writeJSON(w, status, map[string]any{"success": false, "error": "generation failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "generation started", "review_id": req.ReviewID})
}

func (fb *FakeBackend) getDataQuality(w http.ResponseWriter, _ *http.Request) {
	fb.mu.Lock()
	report := fb.dataQuality
	fb.mu.Unlock()
	if report == nil {
		writeJSON(w, http.StatusOK, aiservice.DataQualityReport{Success: false, Message: "no data-quality snapshots"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func pageArgs(r *http.Request, defaultSize int) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size <= 0 {
		size = defaultSize
	}
	return page, size
}

func paginate[T any](items []T, page, size int) []T {
	start := page * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
