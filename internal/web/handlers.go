package web

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/camuig/stockgrowth/internal/storage"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	filter := r.URL.Query().Get("filter")

	data := PageData{
		Query:     query,
		Threshold: s.analyzer.Threshold(),
	}

	watchlist, err := s.repo.GetWatchlist()
	if err != nil {
		s.logger.Error("get watchlist", "error", err)
	}
	data.Watchlist = watchlist

	if query != "" {
		res, err := s.analyzer.Analyze(r.Context(), query)
		if err != nil {
			s.logger.Error("analyze", "query", query, "error", err)
			data.Error = userMessage(err)
		} else {
			data.Result = newResultView(res, filter, data.Threshold, watchlist)
		}
	}

	s.render(w, "index.html", data)
}

// handleWatchlistFragment renders only the sidebar, for in-page refreshes.
func (s *Server) handleWatchlistFragment(w http.ResponseWriter, r *http.Request) {
	watchlist, err := s.repo.GetWatchlist()
	if err != nil {
		s.logger.Error("get watchlist", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.render(w, "watchlist", PageData{Watchlist: watchlist})
}

func (s *Server) handleWatchlistAddForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	score, _ := strconv.ParseFloat(r.PostFormValue("score"), 64)
	item := &storage.WatchlistItem{
		Symbol:       r.PostFormValue("symbol"),
		CompanyName:  strings.TrimSpace(r.PostFormValue("company_name")),
		Score:        score,
		IsHighGrowth: r.PostFormValue("is_high_growth") == "true",
	}

	if strings.TrimSpace(item.Symbol) == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	if err := s.repo.AddToWatchlist(item); err != nil {
		s.logger.Error("add to watchlist", "symbol", item.Symbol, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.logger.Info("watchlist item added", "symbol", item.Symbol)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleWatchlistRemoveForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	symbol := r.PostFormValue("symbol")
	if err := s.repo.RemoveFromWatchlist(symbol); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("remove from watchlist", "symbol", symbol, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.logger.Info("watchlist item removed", "symbol", symbol)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("execute template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
