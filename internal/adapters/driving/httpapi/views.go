package httpapi

import (
	"time"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

type documentView struct {
	ID                    string    `json:"id"`
	SourceFileID          string    `json:"sourceFileId"`
	Title                 string    `json:"title"`
	Category              string    `json:"category"`
	MIMEType              string    `json:"mimeType"`
	SourceURL             string    `json:"sourceUrl"`
	Content               string    `json:"content,omitempty"`
	FileSize              int64     `json:"fileSize"`
	LastModified          string    `json:"lastModified"`
	CreatedAt             time.Time `json:"createdAt"`
	SyncedAt              time.Time `json:"syncedAt"`
	EligibleForAssessment bool      `json:"eligibleForAssessment"`
}

type paginationView struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type documentPageView struct {
	Documents  []documentView `json:"documents"`
	Pagination paginationView `json:"pagination"`
}

type sourceView struct {
	DocumentID string  `json:"documentId"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	URL        string  `json:"url"`
	Score      float64 `json:"score"`
}

type messageView struct {
	ID        string       `json:"id"`
	Role      domain.Role  `json:"role"`
	Content   string       `json:"content"`
	Sources   []sourceView `json:"sources,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

type chunkView struct {
	DocumentID string  `json:"documentId"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	URL        string  `json:"url"`
	Index      int     `json:"chunkIndex"`
	Text       string  `json:"content"`
	Score      float64 `json:"score"`
}

type syncView struct {
	Success        bool  `json:"success"`
	FilesFound     int   `json:"filesFound"`
	FilesProcessed int   `json:"filesProcessed"`
	FilesSkipped   int   `json:"filesSkipped"`
	FilesFailed    int   `json:"filesFailed"`
	DurationMS     int64 `json:"durationMs"`
}

type previewView struct {
	Name             string `json:"name"`
	MIMEType         string `json:"mimeType"`
	ExportedMIMEType string `json:"exportedMimeType,omitempty"`
	Category         string `json:"category,omitempty"`
	Status           string `json:"status"`
	ContentLength    int    `json:"contentLength"`
	TextLength       int    `json:"textLength"`
	TextPreview      string `json:"textPreview,omitempty"`
	Error            string `json:"error,omitempty"`
}

type syncStatusView struct {
	Running     bool       `json:"running"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CurrentFile string     `json:"currentFile,omitempty"`
	FilesFound  int        `json:"filesFound"`
	FilesDone   int        `json:"filesDone"`
}

// chatEventView is one SSE payload. Only the fields of its type are set.
type chatEventView struct {
	Type      domain.ChatEventType `json:"type"`
	SessionID string               `json:"sessionId,omitempty"`
	Content   string               `json:"content,omitempty"`
	Sources   []sourceView         `json:"sources,omitempty"`
	Message   string               `json:"message,omitempty"`
}

func toDocumentView(d *domain.Document, eligible bool) documentView {
	return documentView{
		ID:                    d.ID,
		SourceFileID:          d.SourceFileID,
		Title:                 d.Title,
		Category:              d.Category,
		MIMEType:              d.ContentMIMEType,
		SourceURL:             d.SourceURL,
		Content:               d.Content,
		FileSize:              d.SizeBytes,
		LastModified:          d.LastModified,
		CreatedAt:             d.CreatedAt,
		SyncedAt:              d.SyncedAt,
		EligibleForAssessment: eligible,
	}
}

func toSourceViews(sources []domain.Source) []sourceView {
	out := make([]sourceView, len(sources))
	for i, s := range sources {
		out[i] = sourceView{
			DocumentID: s.DocumentID,
			Title:      s.Title,
			Category:   s.Category,
			URL:        s.SourceURL,
			Score:      s.Score,
		}
	}
	return out
}

func toMessageViews(msgs []domain.ChatMessage) []messageView {
	out := make([]messageView, len(msgs))
	for i := range msgs {
		m := &msgs[i]
		out[i] = messageView{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
		if len(m.Sources) > 0 {
			out[i].Sources = toSourceViews(m.Sources)
		}
	}
	return out
}

func toChunkViews(chunks []domain.RetrievedChunk) []chunkView {
	out := make([]chunkView, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		out[i] = chunkView{
			DocumentID: c.DocumentID,
			Title:      c.Title,
			Category:   c.Category,
			URL:        c.SourceURL,
			Index:      c.Index,
			Text:       c.Text,
			Score:      c.Score,
		}
	}
	return out
}

func toPreviewViews(previews []domain.FilePreview) []previewView {
	out := make([]previewView, len(previews))
	for i := range previews {
		p := &previews[i]
		out[i] = previewView{
			Name:          p.File.Name,
			MIMEType:      p.File.MIMEType,
			Category:      p.Category,
			Status:        string(p.Status),
			ContentLength: p.ContentLength,
			TextLength:    p.TextLength,
			TextPreview:   p.Preview,
			Error:         p.Error,
		}
		if p.ContentMIMEType != p.File.MIMEType {
			out[i].ExportedMIMEType = p.ContentMIMEType
		}
	}
	return out
}

func toChatEventView(ev domain.ChatEvent) chatEventView {
	view := chatEventView{
		Type:      ev.Type,
		SessionID: ev.SessionID,
		Content:   ev.Content,
		Message:   ev.Message,
	}
	if ev.Type == domain.EventSources {
		view.Sources = toSourceViews(ev.Sources)
	}
	return view
}
