package cmd

import (
	"errors"
	"fmt"

	"github.com/rollmark/rollmark/internal/attendance"
	"github.com/rollmark/rollmark/internal/config"
	"github.com/rollmark/rollmark/internal/database/postgres"
	"github.com/rollmark/rollmark/internal/extractor"
	"github.com/rollmark/rollmark/internal/gallery"
	"github.com/rollmark/rollmark/internal/photostore"
	"github.com/rollmark/rollmark/internal/recognize"
	"github.com/rollmark/rollmark/internal/verification"
)

// app wires repositories and services over the PostgreSQL pool. Every
// command that touches storage starts from here.
type app struct {
	cfg *config.Config

	identities    *postgres.IdentityRepository
	sessions      *postgres.SessionRepository
	courses       *postgres.CourseRepository
	verifications *postgres.VerificationRepository

	extractor extractor.Extractor
	gallery   *gallery.Service
	engine    *recognize.Engine
	ledger    *attendance.Ledger
	tracker   *attendance.Tracker
	verifier  *verification.Service
}

// newApp connects to PostgreSQL, runs migrations and builds the
// service graph.
func newApp() (*app, error) {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	pool := postgres.GetGlobalPool()

	identities := postgres.NewIdentityRepository(pool)
	sessions := postgres.NewSessionRepository(pool)
	courses := postgres.NewCourseRepository(pool)
	verifications := postgres.NewVerificationRepository(pool)

	var ext extractor.Extractor = extractor.Null{}
	if cfg.Extractor.URL != "" {
		ext = extractor.NewClient(cfg.Extractor.URL, cfg.Extractor.Model)
	}

	photos := photostore.New(cfg.Photo.Dir)

	return &app{
		cfg:           cfg,
		identities:    identities,
		sessions:      sessions,
		courses:       courses,
		verifications: verifications,
		extractor:     ext,
		gallery:       gallery.NewService(identities, ext, photos),
		engine:        recognize.NewEngine(identities, ext, cfg.MatchThreshold()),
		ledger:        attendance.NewLedger(sessions, courses, identities, cfg.Attendance.EnforceRoster),
		tracker:       attendance.NewTracker(sessions, courses, identities),
		verifier:      verification.NewService(verifications, verification.LogSender{}),
	}, nil
}

// engineWithThreshold builds a match engine with an overridden
// acceptance threshold.
func (a *app) engineWithThreshold(threshold float64) *recognize.Engine {
	return recognize.NewEngine(a.identities, a.extractor, threshold)
}

// close releases the database pool.
func (a *app) close() {
	postgres.CloseGlobalPool()
}
