package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

func (s *Server) sync(w http.ResponseWriter, r *http.Request) {
	if s.svc.Sync == nil {
		writeUnavailable(w, "document source")
		return
	}
	summary, err := s.svc.Sync.Sync(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, syncView{
		Success:        true,
		FilesFound:     summary.FilesFound,
		FilesProcessed: summary.FilesProcessed,
		FilesSkipped:   summary.FilesSkipped,
		FilesFailed:    summary.FilesFailed,
		DurationMS:     summary.Duration.Milliseconds(),
	})
}

func (s *Server) syncPreview(w http.ResponseWriter, r *http.Request) {
	if s.svc.Sync == nil {
		writeUnavailable(w, "document source")
		return
	}
	previews, err := s.svc.Sync.Preview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filesFound": len(previews),
		"results":    toPreviewViews(previews),
	})
}

func (s *Server) syncStatus(w http.ResponseWriter, _ *http.Request) {
	if s.svc.Sync == nil {
		writeUnavailable(w, "document source")
		return
	}
	st := s.svc.Sync.Status()
	view := syncStatusView{
		Running:     st.Running,
		CurrentFile: st.CurrentFile,
		FilesFound:  st.FilesFound,
		FilesDone:   st.FilesDone,
	}
	if !st.StartedAt.IsZero() {
		view.StartedAt = &st.StartedAt
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	if s.svc.Chat == nil {
		writeUnavailable(w, "chat")
		return
	}
	msgs, err := s.svc.Chat.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageViews(msgs))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	if s.svc.Search == nil {
		writeUnavailable(w, "search")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Query is required"})
		return
	}
	k, err := intParam(r, "k", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	chunks, err := s.svc.Search.Search(r.Context(), query, k)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": toChunkViews(chunks),
	})
}

func (s *Server) listProcesses(w http.ResponseWriter, r *http.Request) {
	if s.svc.Processes == nil {
		writeUnavailable(w, "document store")
		return
	}
	page, err := intParam(r, "page", domain.DefaultPage)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := intParam(r, "limit", domain.DefaultPageLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.svc.Processes.List(r.Context(), domain.DocumentQuery{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	docs := make([]documentView, len(result.Documents))
	for i := range result.Documents {
		d := &result.Documents[i]
		docs[i] = toDocumentView(d, s.svc.Processes.EligibleForAssessment(d))
		docs[i].Content = ""
	}
	writeJSON(w, http.StatusOK, documentPageView{
		Documents: docs,
		Pagination: paginationView{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
		},
	})
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	if s.svc.Processes == nil {
		writeUnavailable(w, "document store")
		return
	}
	cats, err := s.svc.Processes.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) getProcess(w http.ResponseWriter, r *http.Request) {
	if s.svc.Processes == nil {
		writeUnavailable(w, "document store")
		return
	}
	doc, err := s.svc.Processes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "Process not found"})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentView(doc, s.svc.Processes.EligibleForAssessment(doc)))
}

// intParam parses an optional integer query parameter.
func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
	}
	return n, nil
}
