package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/rollmark/rollmark/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	studentsHandler := handlers.NewStudentsHandler(s.services.Gallery, s.services.Engine)
	facesHandler := handlers.NewFacesHandler(s.services.Engine, s.services.Ledger)
	sessionsHandler := handlers.NewSessionsHandler(s.services.Ledger)
	trackingHandler := handlers.NewTrackingHandler(s.services.Tracker)
	verificationHandler := handlers.NewVerificationHandler(s.services.Verification)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Students
		r.Get("/students", studentsHandler.Search)
		r.Get("/students/{studentID}", studentsHandler.Get)
		r.Post("/students/{studentID}/enrollment", studentsHandler.Enroll)
		r.Get("/students/{studentID}/active-courses", sessionsHandler.ActiveCourses)
		r.Get("/students/{studentID}/tracking", trackingHandler.Student)

		// Faces
		r.Post("/faces/verify", facesHandler.Verify)

		// Sessions
		r.Post("/sessions", sessionsHandler.Open)
		r.Post("/sessions/{sessionID}/close", sessionsHandler.Close)
		r.Post("/sessions/{sessionID}/check-in", facesHandler.CheckIn)
		r.Post("/sessions/{sessionID}/present", sessionsHandler.MarkPresent)

		// Teacher tracking
		r.Get("/teachers/{teacherID}/courses/{courseCode}/tracking", trackingHandler.TeacherCourse)

		// Verification codes
		r.Post("/verification/send", verificationHandler.Send)
		r.Post("/verification/verify", verificationHandler.Verify)
	})
}
