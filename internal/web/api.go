package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/camuig/stockgrowth/internal/analysis"
	"github.com/camuig/stockgrowth/internal/storage"
)

const (
	maxHistoryLimit = 100
	maxBodyBytes    = 1 << 20
)

type analyzeRequest struct {
	Query  string `json:"query"`
	Filter string `json:"filter"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type watchlistResponse struct {
	Items []storage.WatchlistItem `json:"items"`
	Total int                     `json:"total"`
}

type historyResponse struct {
	Analyses []storage.AnalysisLog `json:"analyses"`
	Limit    int                   `json:"limit"`
}

func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Detail: err.Error()})
			return
		}
	} else {
		req.Query = r.URL.Query().Get("q")
		req.Filter = r.URL.Query().Get("filter")
	}

	res, err := s.analyzer.Analyze(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("analyze", "query", req.Query, "error", err)
		writeJSON(w, errorStatus(err), errorResponse{Error: userMessage(err), Detail: err.Error()})
		return
	}

	if req.Filter != "" {
		res.News = analysis.FilterNews(res.News, req.Filter)
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAPIWatchlist(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.GetWatchlist()
	if err != nil {
		s.logger.Error("get watchlist", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "database error"})
		return
	}
	if items == nil {
		items = []storage.WatchlistItem{}
	}
	writeJSON(w, http.StatusOK, watchlistResponse{Items: items, Total: len(items)})
}

func (s *Server) handleAPIWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	var item storage.WatchlistItem
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Detail: err.Error()})
		return
	}
	if strings.TrimSpace(item.Symbol) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "symbol is required"})
		return
	}

	if err := s.repo.AddToWatchlist(&item); err != nil {
		s.logger.Error("add to watchlist", "symbol", item.Symbol, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "database error"})
		return
	}
	s.logger.Info("watchlist item added", "symbol", item.Symbol)

	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleAPIWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	err := s.repo.RemoveFromWatchlist(symbol)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "symbol not in watchlist"})
		return
	case err != nil:
		s.logger.Error("remove from watchlist", "symbol", symbol, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "database error"})
		return
	}
	s.logger.Info("watchlist item removed", "symbol", symbol)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	logs, err := s.repo.GetRecentAnalyses(limit)
	if err != nil {
		s.logger.Error("get recent analyses", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "database error"})
		return
	}
	if logs == nil {
		logs = []storage.AnalysisLog{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Analyses: logs, Limit: limit})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
