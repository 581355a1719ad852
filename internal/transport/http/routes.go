package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

func Routes(h *Handler, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// after RequestID
	r.Use(RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", h.CreateJob)
		r.Get("/", h.ListJobs)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetJob)
			r.Patch("/", h.UpdateJob)
			r.Post("/payment", h.ProcessPayment)
			r.Post("/start", h.StartJob)
			r.Post("/complete", h.CompleteJob)
			r.Post("/cancel", h.CancelJob)
			r.Get("/receipt", h.GetReceipt)
			r.Get("/tasks", h.ListJobTasks)
			r.Post("/tasks/batch", h.AddTasksBatch)
			r.Get("/applications", h.ListJobApplications)
			r.Get("/reviews", h.ListJobReviews)
		})
	})

	r.Route("/applications", func(r chi.Router) {
		r.Post("/", h.Apply)
		r.Get("/", h.ListApplications)
		r.Patch("/{id}", h.SetApplicationStatus)
		r.Patch("/{id}/status", h.SetApplicationStatus)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.CreateTask)
		r.Patch("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
		r.Post("/{id}/complete", h.CompleteTask)
		r.Post("/job/{jobId}/reorder", h.ReorderTasks)
		r.Post("/job/{jobId}/complete", h.CompleteTasks)
	})

	r.Post("/reviews", h.CreateReview)
	r.Get("/users/{id}/reviews", h.ListUserReviews)
	r.Get("/earnings", h.ListEarnings)

	r.Route("/payouts/accounts", func(r chi.Router) {
		r.Post("/", h.CreatePayoutAccount)
		r.Get("/{workerId}", h.GetPayoutAccount)
		r.Post("/{workerId}/link", h.OnboardingLink)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
