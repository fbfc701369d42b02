package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"creator-crm/internal/constants"
	"creator-crm/internal/domain"
	"creator-crm/internal/errs"
	"creator-crm/internal/realtime"
	"creator-crm/internal/service"

	"github.com/rs/zerolog"
)

type CRMServer struct {
	creatorSvc *service.CreatorService
	rankingSvc *service.RankingService
	syncSvc    *service.SyncService
	reconciler *realtime.Reconciler
	logger     zerolog.Logger
}

func NewCRMServer(
	creatorSvc *service.CreatorService,
	rankingSvc *service.RankingService,
	syncSvc *service.SyncService,
	reconciler *realtime.Reconciler,
	logger zerolog.Logger,
) *CRMServer {
	return &CRMServer{
		creatorSvc: creatorSvc,
		rankingSvc: rankingSvc,
		syncSvc:    syncSvc,
		reconciler: reconciler,
		logger:     logger,
	}
}

func (s *CRMServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/creators", s.handleListCreators)
	mux.HandleFunc("GET /api/creators/{id}", s.handleGetCreator)
	mux.HandleFunc("PUT /api/creators/{id}/score", s.handleUpdateScore)
	mux.HandleFunc("GET /api/rankings", s.handleRankings)
	mux.HandleFunc("POST /api/events", s.handleChangeEvent)
	mux.HandleFunc("POST /api/sync", s.handleSync)
}

func (s *CRMServer) handleListCreators(w http.ResponseWriter, r *http.Request) {
	req := parseFilterRequest(r)

	page, err := s.creatorSvc.GetPage(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data := make([]creatorResponse, 0, len(page.Data))
	for _, c := range page.Data {
		data = append(data, toCreatorResponse(c))
	}
	s.writeJSON(w, http.StatusOK, pageResponse{
		Data:       data,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

func (s *CRMServer) handleGetCreator(w http.ResponseWriter, r *http.Request) {
	creator, err := s.creatorSvc.GetCreator(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCreatorResponse(*creator))
}

func (s *CRMServer) handleUpdateScore(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Score *float64 `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errs.Validation("invalid request body: %v", err))
		return
	}

	if err := s.creatorSvc.UpdateScore(r.Context(), r.PathValue("id"), body.Score); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CRMServer) handleRankings(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ranked, err := s.rankingSvc.TopCreators(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]rankedCreatorResponse, 0, len(ranked))
	for _, rc := range ranked {
		resp = append(resp, rankedCreatorResponse{
			creatorResponse:    toCreatorResponse(rc.Creator),
			PerformanceScore:   rc.PerformanceScore,
			IsManualScore:      rc.IsManualScore,
			TotalCampaigns:     rc.TotalCampaigns,
			CompletedCampaigns: rc.CompletedCampaigns,
			TotalEarned:        rc.TotalEarned,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleChangeEvent accepts backend change notifications and feeds them to
// the reconciler. The payload carries backend-native snake_case fields; the
// reconciler maps them before merging.
func (s *CRMServer) handleChangeEvent(w http.ResponseWriter, r *http.Request) {
	var event struct {
		Type   string         `json:"type"`
		Record map[string]any `json:"record"`
		ID     string         `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.writeError(w, errs.Validation("invalid event payload: %v", err))
		return
	}

	switch strings.ToUpper(event.Type) {
	case "INSERT":
		s.reconciler.OnInsert(event.Record)
	case "UPDATE":
		s.reconciler.OnUpdate(event.Record)
	case "DELETE":
		id := event.ID
		if id == "" {
			id, _ = event.Record["id"].(string)
		}
		s.reconciler.OnDelete(id)
	default:
		s.writeError(w, errs.Validation("unknown event type %q", event.Type))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CRMServer) handleSync(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		s.writeError(w, errs.Validation("source query parameter is required"))
		return
	}

	count, err := s.syncSvc.SyncSource(r.Context(), source)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"imported": count})
}

func parseFilterRequest(r *http.Request) domain.FilterRequest {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page == 0 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize == 0 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	return domain.FilterRequest{
		Page:        page,
		PageSize:    pageSize,
		SearchQuery: q.Get("q"),
		Filters: domain.Filters{
			City:          q["city"],
			State:         q["state"],
			FollowersTier: q["followersTier"],
			SheetSource:   q["sheetSource"],
		},
		SortColumn:    q.Get("sortColumn"),
		SortDirection: q.Get("sortDirection"),
	}
}

func (s *CRMServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *CRMServer) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsValidation(err):
		status = http.StatusBadRequest
	case errs.IsNotFound(err):
		status = http.StatusNotFound
	case errs.IsQuery(err):
		status = http.StatusBadGateway
	}

	s.logger.Error().Err(err).Int("status", status).Msg("request failed")
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

type creatorResponse struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Username               string    `json:"username"`
	Email                  string    `json:"email"`
	City                   string    `json:"city"`
	State                  string    `json:"state"`
	FollowersTier          string    `json:"followers_tier"`
	SheetSource            string    `json:"sheet_source"`
	EngagementRate         *float64  `json:"engagement_rate"`
	AvgLikes               *float64  `json:"avg_likes"`
	AvgComments            *float64  `json:"avg_comments"`
	ManualPerformanceScore *float64  `json:"manual_performance_score"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type rankedCreatorResponse struct {
	creatorResponse
	PerformanceScore   float64 `json:"performance_score"`
	IsManualScore      bool    `json:"is_manual_score"`
	TotalCampaigns     int     `json:"total_campaigns"`
	CompletedCampaigns int     `json:"completed_campaigns"`
	TotalEarned        float64 `json:"total_earned"`
}

type pageResponse struct {
	Data       []creatorResponse `json:"data"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

func toCreatorResponse(c domain.Creator) creatorResponse {
	return creatorResponse{
		ID:                     c.ID,
		Name:                   c.Name,
		Username:               c.Username,
		Email:                  c.Email,
		City:                   c.City,
		State:                  c.State,
		FollowersTier:          c.FollowersTier,
		SheetSource:            c.SheetSource,
		EngagementRate:         c.EngagementRate,
		AvgLikes:               c.AvgLikes,
		AvgComments:            c.AvgComments,
		ManualPerformanceScore: c.ManualPerformanceScore,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}
