package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adebayor/resumetable/internal/database"
	"github.com/adebayor/resumetable/internal/models"
	"github.com/adebayor/resumetable/mocks"
)

func multipartBody(t *testing.T, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for _, name := range filenames {
		part, err := writer.CreateFormFile("resumes", name)
		require.NoError(t, err)
		part.Write([]byte("fake file content"))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandleCreateSession_Success(t *testing.T) {
	mockDB := new(mocks.MockSessionStore)
	mockQueue := new(mocks.MockProducer)
	mockUploader := new(mocks.MockUploader)

	mockUploader.On("Upload", mock.Anything, mock.Anything, "application/pdf", mock.Anything).Return(nil).Twice()
	mockDB.On("CreateSession", mock.Anything, mock.MatchedBy(func(arg database.CreateSessionParams) bool {
		return arg.Status == models.StatusQueued
	})).Return(database.Session{ID: uuid.New(), Status: models.StatusQueued}, nil)
	mockDB.On("CreateResume", mock.Anything, mock.Anything).Return(nil).Twice()
	mockQueue.On("PublishSession", mock.Anything).Return(nil)

	router := NewRouter(NewHandler(mockDB, mockQueue, mockUploader))

	body, contentType := multipartBody(t, "alice.pdf", "bob.pdf")
	req := httptest.NewRequest("POST", "/sessions", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)

	var resp models.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusQueued, resp.Status)

	mockDB.AssertExpectations(t)
	mockQueue.AssertExpectations(t)
	mockUploader.AssertExpectations(t)
}

func TestHandleCreateSession_NoFiles(t *testing.T) {
	router := NewRouter(NewHandler(new(mocks.MockSessionStore), new(mocks.MockProducer), new(mocks.MockUploader)))

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	writer.WriteField("name", "empty batch")
	writer.Close()

	req := httptest.NewRequest("POST", "/sessions", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleCreateSession_UnsupportedFileType(t *testing.T) {
	mockUploader := new(mocks.MockUploader)
	router := NewRouter(NewHandler(new(mocks.MockSessionStore), new(mocks.MockProducer), mockUploader))

	body, contentType := multipartBody(t, "resume.png")
	req := httptest.NewRequest("POST", "/sessions", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockUploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleGetSession_CompletedIncludesReport(t *testing.T) {
	sessionID := uuid.New()
	report := json.RawMessage(`{"raw_text":"| Name |","table":{"columns":["Name"],"rows":[["Alice"]]}}`)

	mockDB := new(mocks.MockSessionStore)
	mockDB.On("GetSession", mock.Anything, sessionID).Return(database.Session{
		ID:     sessionID,
		Status: models.StatusCompleted,
	}, nil)
	mockDB.On("GetAnalysesResultsBySession", mock.Anything, sessionID).Return(database.AnalysesResult{
		SessionID: sessionID,
		Results:   report,
	}, nil)

	router := NewRouter(NewHandler(mockDB, new(mocks.MockProducer), new(mocks.MockUploader)))

	req := httptest.NewRequest("GET", "/sessions/"+sessionID.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusCompleted, resp.Status)
	assert.JSONEq(t, string(report), string(resp.Report))
}

func TestHandleGetSession_QueuedHasNoReport(t *testing.T) {
	sessionID := uuid.New()

	mockDB := new(mocks.MockSessionStore)
	mockDB.On("GetSession", mock.Anything, sessionID).Return(database.Session{
		ID:     sessionID,
		Status: models.StatusQueued,
	}, nil)

	router := NewRouter(NewHandler(mockDB, new(mocks.MockProducer), new(mocks.MockUploader)))

	req := httptest.NewRequest("GET", "/sessions/"+sessionID.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Report)
	mockDB.AssertNotCalled(t, "GetAnalysesResultsBySession", mock.Anything, mock.Anything)
}

func TestHandleGetSession_NotFound(t *testing.T) {
	sessionID := uuid.New()

	mockDB := new(mocks.MockSessionStore)
	mockDB.On("GetSession", mock.Anything, sessionID).Return(database.Session{}, sql.ErrNoRows)

	router := NewRouter(NewHandler(mockDB, new(mocks.MockProducer), new(mocks.MockUploader)))

	req := httptest.NewRequest("GET", "/sessions/"+sessionID.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleGetSession_BadID(t *testing.T) {
	router := NewRouter(NewHandler(new(mocks.MockSessionStore), new(mocks.MockProducer), new(mocks.MockUploader)))

	req := httptest.NewRequest("GET", "/sessions/not-a-uuid", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
