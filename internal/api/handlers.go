package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adebayor/resumetable/internal/database"
	"github.com/adebayor/resumetable/internal/extract"
	"github.com/adebayor/resumetable/internal/models"
)

// maxUploadBytes bounds one multipart upload (all files together).
const maxUploadBytes = 64 << 20

type SessionStore interface {
	CreateSession(ctx context.Context, arg database.CreateSessionParams) (database.Session, error)
	CreateResume(ctx context.Context, arg database.CreateResumeParams) error
	GetSession(ctx context.Context, id uuid.UUID) (database.Session, error)
	GetAnalysesResultsBySession(ctx context.Context, sessionID uuid.UUID) (database.AnalysesResult, error)
}

type Producer interface {
	PublishSession(payload any) error
}

type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
}

type Handler struct {
	db       SessionStore
	queue    Producer
	uploader Uploader
}

func NewHandler(db SessionStore, queue Producer, uploader Uploader) *Handler {
	return &Handler{
		db:       db,
		queue:    queue,
		uploader: uploader,
	}
}

// HandleCreateSession accepts a multipart upload of one or more resume
// files, stores them, records the session as queued and hands it to the
// worker pool.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "could not parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["resumes"]
	if len(files) == 0 {
		http.Error(w, `upload at least one file under the "resumes" field`, http.StatusBadRequest)
		return
	}

	sessionID := uuid.New()

	var resumes []database.CreateResumeParams
	for _, fh := range files {
		mime := extract.MimeForFilename(fh.Filename)
		if mime == "" {
			http.Error(w, fmt.Sprintf("unsupported file type: %s (want .pdf, .docx or .txt)", fh.Filename), http.StatusBadRequest)
			return
		}

		src, err := fh.Open()
		if err != nil {
			http.Error(w, "could not read uploaded file", http.StatusBadRequest)
			return
		}

		resumeID := uuid.New()
		objectKey := fmt.Sprintf("%s/%s-%s", sessionID, resumeID, fh.Filename)

		err = h.uploader.Upload(r.Context(), objectKey, mime, src)
		src.Close()
		if err != nil {
			log.Printf("upload failed for %s: %v", fh.Filename, err)
			http.Error(w, "failed to store uploaded file", http.StatusInternalServerError)
			return
		}

		resumes = append(resumes, database.CreateResumeParams{
			ID:               resumeID,
			OriginalFilename: fh.Filename,
			Mime:             mime,
			SizeBytes:        fh.Size,
			ObjectKey:        objectKey,
			SessionID:        sessionID,
		})
	}

	session, err := h.db.CreateSession(r.Context(), database.CreateSessionParams{
		ID:     sessionID,
		Name:   r.FormValue("name"),
		Status: models.StatusQueued,
	})
	if err != nil {
		log.Printf("error creating session: %v", err)
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	for _, resume := range resumes {
		if err := h.db.CreateResume(r.Context(), resume); err != nil {
			log.Printf("error creating resume row: %v", err)
			http.Error(w, "failed to record uploaded file", http.StatusInternalServerError)
			return
		}
	}

	msg := models.Session{
		ID:        session.ID,
		Name:      session.Name,
		Status:    session.Status,
		CreatedAt: session.CreatedAt,
	}
	if err := h.queue.PublishSession(msg); err != nil {
		log.Printf("error queueing session %s: %v", session.ID, err)
		http.Error(w, "failed to queue session for analysis", http.StatusInternalServerError)
		return
	}

	log.Printf("session %s queued with %d file(s)", session.ID, len(resumes))
	writeJSON(w, http.StatusAccepted, msg)
}

// HandleGetSession returns the session status, with the analysis report
// attached once the session has finished.
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	session, err := h.db.GetSession(r.Context(), sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("error fetching session %s: %v", sessionID, err)
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}

	out := models.Session{
		ID:        session.ID,
		Name:      session.Name,
		Status:    session.Status,
		CreatedAt: session.CreatedAt,
	}

	if session.Status == models.StatusCompleted || session.Status == models.StatusFailed {
		result, err := h.db.GetAnalysesResultsBySession(r.Context(), sessionID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			log.Printf("error fetching results for %s: %v", sessionID, err)
			http.Error(w, "database error", http.StatusInternalServerError)
			return
		}
		out.Report = result.Results
	}

	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
