package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rollmark/rollmark/internal/attendance"
	"github.com/rollmark/rollmark/internal/database"
	"github.com/rollmark/rollmark/internal/database/mock"
	"github.com/rollmark/rollmark/internal/extractor"
	"github.com/rollmark/rollmark/internal/recognize"
)

func newFacesHandler(store *mock.Store, ext extractor.Extractor) *FacesHandler {
	engine := recognize.NewEngine(store, ext, 0.6)
	ledger := attendance.NewLedger(store, store, store, false)
	return NewFacesHandler(engine, ledger)
}

func seedEnrolled(t *testing.T, store *mock.Store) {
	t.Helper()
	_, err := store.Upsert(context.Background(), database.Identity{
		StudentID:  "S1",
		GivenName:  "Ayse",
		FamilyName: "Yilmaz",
		Embedding:  testEmbedding(0.1),
	})
	if err != nil {
		t.Fatalf("failed to seed identity: %v", err)
	}
}

func TestFacesHandler_Verify_Recognized(t *testing.T) {
	store := mock.NewStore()
	seedEnrolled(t, store)
	ext := &fakeExtractor{faces: []extractor.Face{{Embedding: testEmbedding(0)}}}
	handler := newFacesHandler(store, ext)

	req := multipartImageRequest(t, http.MethodPost, "/api/v1/faces/verify", []byte("jpeg"), nil)
	recorder := httptest.NewRecorder()

	handler.Verify(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var result struct {
		Recognized bool            `json:"recognized"`
		Match      recognize.Match `json:"match"`
	}
	parseJSONResponse(t, recorder, &result)
	if !result.Recognized || result.Match.StudentID != "S1" {
		t.Errorf("expected S1 to be recognized, got %+v", result)
	}
}

func TestFacesHandler_Verify_NotRecognized(t *testing.T) {
	store := mock.NewStore()
	seedEnrolled(t, store)
	// Probe far from every gallery entry.
	probe := testEmbedding(0)
	probe[1] = 5
	ext := &fakeExtractor{faces: []extractor.Face{{Embedding: probe}}}
	handler := newFacesHandler(store, ext)

	req := multipartImageRequest(t, http.MethodPost, "/api/v1/faces/verify", []byte("jpeg"), nil)
	recorder := httptest.NewRecorder()

	handler.Verify(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["recognized"] != false {
		t.Errorf("expected recognized=false, got %v", result)
	}
}

func TestFacesHandler_Verify_NoFace(t *testing.T) {
	handler := newFacesHandler(mock.NewStore(), &fakeExtractor{})

	req := multipartImageRequest(t, http.MethodPost, "/api/v1/faces/verify", []byte("jpeg"), nil)
	recorder := httptest.NewRecorder()

	handler.Verify(recorder, req)
	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
	assertJSONError(t, recorder, "no face detected in the image")
}

func TestFacesHandler_Verify_ExtractorDown(t *testing.T) {
	handler := newFacesHandler(mock.NewStore(), extractor.Null{})

	req := multipartImageRequest(t, http.MethodPost, "/api/v1/faces/verify", []byte("jpeg"), nil)
	recorder := httptest.NewRecorder()

	handler.Verify(recorder, req)
	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
}

func TestFacesHandler_CheckIn(t *testing.T) {
	store := mock.NewStore()
	seedEnrolled(t, store)
	store.AddSession(database.Session{
		ID:         "sess-1",
		CourseCode: "MATH101",
		Status:     database.SessionActive,
		Date:       time.Now(),
		Roster:     []string{"S1"},
	})
	ext := &fakeExtractor{faces: []extractor.Face{{Embedding: testEmbedding(0)}}}
	handler := newFacesHandler(store, ext)

	checkIn := func() *httptest.ResponseRecorder {
		req := multipartImageRequest(t, http.MethodPost, "/api/v1/sessions/sess-1/check-in", []byte("jpeg"), nil)
		req = requestWithChiParams(req, map[string]string{"sessionID": "sess-1"})
		recorder := httptest.NewRecorder()
		handler.CheckIn(recorder, req)
		return recorder
	}

	recorder := checkIn()
	assertStatusCode(t, recorder, http.StatusOK)
	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["added"] != true {
		t.Errorf("expected first check-in to add, got %v", result)
	}

	recorder = checkIn()
	assertStatusCode(t, recorder, http.StatusOK)
	parseJSONResponse(t, recorder, &result)
	if result["already_present"] != true {
		t.Errorf("expected repeat check-in to report already present, got %v", result)
	}

	session, _ := store.GetSession(context.Background(), "sess-1")
	if len(session.Present) != 1 {
		t.Errorf("expected present set of size 1, got %v", session.Present)
	}
}

func TestFacesHandler_CheckIn_SessionNotFound(t *testing.T) {
	store := mock.NewStore()
	seedEnrolled(t, store)
	ext := &fakeExtractor{faces: []extractor.Face{{Embedding: testEmbedding(0)}}}
	handler := newFacesHandler(store, ext)

	req := multipartImageRequest(t, http.MethodPost, "/api/v1/sessions/missing/check-in", []byte("jpeg"), nil)
	req = requestWithChiParams(req, map[string]string{"sessionID": "missing"})
	recorder := httptest.NewRecorder()

	handler.CheckIn(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)
}
