package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/chart"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.p.State()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"state":  state.String(),
	})
}

type summaryResponse struct {
	State      string                  `json:"state"`
	Currency   string                  `json:"currency"`
	Value      folio.Money             `json:"value"`
	Invested   folio.Money             `json:"invested"`
	Result     folio.Percent           `json:"result"`
	Categories []folio.CategorySummary `json:"categories"`
}

func (s *Server) summary() summaryResponse {
	return summaryResponse{
		State:      s.p.State().String(),
		Currency:   s.p.DisplayCurrency(),
		Value:      s.p.Value(),
		Invested:   s.p.TotalInvested(),
		Result:     s.p.Result(),
		Categories: s.p.SummaryByCategory(),
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := s.summary()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rows := s.p.AssetRows()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, rows)
}

// series resolves the {name} parameter and the from/to query of r.
func (s *Server) series(r *http.Request, name string) (folio.Series, int, error) {
	var window date.Range
	var err error
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		if window.From, err = date.Parse(v); err != nil {
			return folio.Series{}, http.StatusBadRequest, err
		}
	}
	if v := q.Get("to"); v != "" {
		if window.To, err = date.Parse(v); err != nil {
			return folio.Series{}, http.StatusBadRequest, err
		}
	}

	s.mu.Lock()
	series, ok := s.p.Series(name, window)
	s.mu.Unlock()
	if !ok {
		return folio.Series{}, http.StatusNotFound, fmt.Errorf("unknown series %q", name)
	}
	return series, http.StatusOK, nil
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	series, status, err := s.series(r, chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(chi.URLParam(r, "name"), ".png")
	if !ok {
		s.writeError(w, http.StatusNotFound, "charts are only available as .png")
		return
	}
	series, status, err := s.series(r, name)
	if err != nil {
		s.writeError(w, status, err.Error())
		return
	}
	png, err := chart.Line(strings.ToUpper(name), series)
	if errors.Is(err, chart.ErrNotEnoughData) {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("series", name).Msg("Failed to render chart")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handleCurrency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if !folio.IsCurrency(currency) {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown currency %q", req.Currency))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.p.SetDisplayCurrency(r.Context(), currency); err != nil {
		s.log.Warn().Err(err).Str("currency", currency).Msg("Display currency unchanged")
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.summary())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		s.writeError(w, http.StatusNotImplemented, "reload is not configured")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.reload(r.Context(), s.p)
	var lerr *folio.LoadError
	switch {
	case errors.As(err, &lerr):
		s.writeJSON(w, http.StatusOK, map[string]any{"summary": s.summary(), "failed": lerr.Tickers()})
	case err != nil:
		s.log.Error().Err(err).Msg("Reload failed")
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, map[string]any{"summary": s.summary(), "failed": []string{}})
	}
}

const page = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Portfolio</title></head>
<body>
%s
%s
</body>
</html>
`

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	summary := renderer.RenderSummary(renderer.NewSummary(s.p))
	assets := renderer.RenderAssets(renderer.NewAssets(s.p))
	s.mu.Unlock()

	var parts [2]string
	for i, md := range []string{summary, assets} {
		html, err := renderer.HTML(md)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		parts[i] = html
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, page, parts[0], parts[1])
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
