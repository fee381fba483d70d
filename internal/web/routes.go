package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/veriface/veriface/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	identitiesHandler := handlers.NewIdentitiesHandler(s.engine)
	enrollHandler := handlers.NewEnrollHandler(s.engine)
	verifyHandler := handlers.NewVerifyHandler(s.engine)
	systemHandler := handlers.NewSystemHandler(s.engine)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// System
		r.Get("/status", systemHandler.Status)
		r.Get("/stats", systemHandler.Stats)
		r.Get("/events", systemHandler.Events)
		r.Put("/threshold", systemHandler.UpdateThreshold)
		r.Get("/camera/test", systemHandler.CameraTest)

		// Identities
		r.Get("/identities", identitiesHandler.List)
		r.Post("/identities", enrollHandler.Start)
		r.Get("/identities/{name}", identitiesHandler.Get)
		r.Get("/identities/{name}/stats", identitiesHandler.Stats)
		r.Delete("/identities/{name}", identitiesHandler.Delete)

		// Enrollment tasks (long-running operations)
		r.Get("/enroll/{taskId}", enrollHandler.Status)
		r.Delete("/enroll/{taskId}", enrollHandler.Abort)

		// Verification
		r.Post("/identities/{name}/verify", verifyHandler.Verify)
		r.Post("/identities/{name}/quick-verify", verifyHandler.QuickVerify)
		r.Post("/identify", verifyHandler.Identify)
	})
}
