package httptransport_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/notify"
	"gig-marketplace-service/internal/payment"
	"gig-marketplace-service/internal/repository/memory"
	"gig-marketplace-service/internal/service"
	httptransport "gig-marketplace-service/internal/transport/http"
)

// ---- helpers ----

type testServer struct {
	router  http.Handler
	gateway *payment.Fake
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	gateway := payment.NewFake()
	events := &notify.Recorder{}

	jobs := service.NewJobStore(store, service.DefaultFeePolicy())
	apps := service.NewApplicationStore(store)
	payouts := service.NewPayoutService(store, gateway, nil, events, nil)
	h := httptransport.NewHandler(httptransport.Services{
		Jobs:  jobs,
		Tasks: service.NewTaskStore(store),
		Apps:  apps,
		Lifecycle: service.NewLifecycle(service.LifecycleDeps{
			Store:    store,
			Jobs:     jobs,
			Apps:     apps,
			Payouts:  payouts,
			Gateway:  gateway,
			Notifier: events,
		}),
		Reviews: service.NewReviewService(store),
		Payouts: payouts,
	}, nil)
	return &testServer{router: httptransport.Routes(h, nil), gateway: gateway}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected %d, got %d, body=%s", want, rr.Code, rr.Body.String())
	}
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid json: %v, body=%s", err, rr.Body.String())
	}
	return v
}

type jobResp struct {
	ID          string           `json:"id"`
	Status      entity.JobStatus `json:"status"`
	WorkerID    *string          `json:"workerId"`
	ServiceFee  string           `json:"serviceFee"`
	TotalAmount string           `json:"totalAmount"`
}

type idResp struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Position int    `json:"position"`
}

func (s *testServer) postJob(t *testing.T, amount string, tasks ...string) jobResp {
	t.Helper()
	drafts := make([]map[string]any, len(tasks))
	for i, d := range tasks {
		drafts[i] = map[string]any{"description": d}
	}
	rr := s.do(t, http.MethodPost, "/jobs", map[string]any{
		"title":         "Assemble shelves",
		"category":      "handyman",
		"paymentType":   "fixed",
		"paymentAmount": amount,
		"posterId":      uuid.NewString(),
		"tasks":         drafts,
	})
	expectStatus(t, rr, http.StatusCreated)
	return decodeBody[jobResp](t, rr)
}

func (s *testServer) worker(t *testing.T) string {
	t.Helper()
	id := uuid.NewString()
	rr := s.do(t, http.MethodPost, "/payouts/accounts", map[string]any{"workerId": id, "email": "worker@example.com"})
	expectStatus(t, rr, http.StatusCreated)
	return id
}

// ---- tests ----

func TestHTTP_Health(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodGet, "/health", nil)
	expectStatus(t, rr, http.StatusOK)
	if rr.Body.String() != "ok" {
		t.Fatalf("expected ok, got %q", rr.Body.String())
	}
}

func TestHTTP_CreateJob_201_TotalAmount(t *testing.T) {
	s := newTestServer(t)
	job := s.postJob(t, "100")
	if job.Status != entity.StatusPendingPayment {
		t.Fatalf("expected pending_payment, got %s", job.Status)
	}
	if job.ServiceFee != "2.5" || job.TotalAmount != "102.5" {
		t.Fatalf("expected fee 2.5 and total 102.5, got %s / %s", job.ServiceFee, job.TotalAmount)
	}

	rr := s.do(t, http.MethodGet, "/jobs/"+job.ID, nil)
	expectStatus(t, rr, http.StatusOK)
	if got := decodeBody[jobResp](t, rr); got.TotalAmount != "102.5" {
		t.Fatalf("expected total on read, got %s", got.TotalAmount)
	}
}

func TestHTTP_Errors(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/jobs", `{"title":`)
	expectStatus(t, rr, http.StatusBadRequest)
	if msg := decodeBody[map[string]string](t, rr)["message"]; msg != "invalid json" {
		t.Fatalf("expected message body, got %q", msg)
	}

	rr = s.do(t, http.MethodPost, "/jobs", map[string]any{"title": "x"})
	expectStatus(t, rr, http.StatusBadRequest)

	rr = s.do(t, http.MethodGet, "/jobs/not-a-uuid", nil)
	expectStatus(t, rr, http.StatusBadRequest)

	rr = s.do(t, http.MethodGet, "/jobs/"+uuid.NewString(), nil)
	expectStatus(t, rr, http.StatusNotFound)
}

func TestHTTP_PaymentFailure_502_KeepsJob(t *testing.T) {
	s := newTestServer(t)
	job := s.postJob(t, "20")

	s.gateway.FailPayments = true
	rr := s.do(t, http.MethodPost, "/jobs/"+job.ID+"/payment", map[string]any{"paymentMethodId": "pm_card_visa"})
	expectStatus(t, rr, http.StatusBadGateway)

	rr = s.do(t, http.MethodGet, "/jobs/"+job.ID, nil)
	expectStatus(t, rr, http.StatusOK)
	if got := decodeBody[jobResp](t, rr); got.Status != entity.StatusPaymentFailed {
		t.Fatalf("expected payment_failed, got %s", got.Status)
	}
}

func TestHTTP_FullLifecycle(t *testing.T) {
	s := newTestServer(t)
	job := s.postJob(t, "100", "pack", "load", "unload")

	rr := s.do(t, http.MethodPost, "/jobs/"+job.ID+"/payment", map[string]any{"paymentMethodId": "pm_card_visa", "amount": "102.50"})
	expectStatus(t, rr, http.StatusOK)

	// apply without a payout account
	rr = s.do(t, http.MethodPost, "/applications", map[string]any{"jobId": job.ID, "workerId": uuid.NewString()})
	expectStatus(t, rr, http.StatusPreconditionFailed)

	w := s.worker(t)
	rr = s.do(t, http.MethodPost, "/applications", map[string]any{"jobId": job.ID, "workerId": w, "message": "on it"})
	expectStatus(t, rr, http.StatusCreated)
	app := decodeBody[idResp](t, rr)
	if app.Status != "pending" {
		t.Fatalf("expected pending, got %s", app.Status)
	}

	rr = s.do(t, http.MethodPost, "/applications", map[string]any{"jobId": job.ID, "workerId": w})
	expectStatus(t, rr, http.StatusConflict)

	rr = s.do(t, http.MethodPatch, "/applications/"+app.ID+"/status", map[string]any{"status": "accepted"})
	expectStatus(t, rr, http.StatusOK)
	upd := decodeBody[struct {
		Job jobResp `json:"job"`
	}](t, rr)
	if upd.Job.Status != entity.StatusAssigned || upd.Job.WorkerID == nil || *upd.Job.WorkerID != w {
		t.Fatalf("expected job assigned to %s, got %+v", w, upd.Job)
	}

	rr = s.do(t, http.MethodPost, "/jobs/"+job.ID+"/complete", nil)
	expectStatus(t, rr, http.StatusConflict)

	rr = s.do(t, http.MethodGet, "/jobs/"+job.ID+"/tasks", nil)
	expectStatus(t, rr, http.StatusOK)
	tasks := decodeBody[[]idResp](t, rr)
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for i, task := range tasks {
		if task.Position != i {
			t.Fatalf("expected position %d, got %d", i, task.Position)
		}
	}

	rr = s.do(t, http.MethodPost, "/tasks/"+tasks[0].ID+"/complete", nil)
	expectStatus(t, rr, http.StatusOK)
	rr = s.do(t, http.MethodPost, "/tasks/job/"+job.ID+"/complete", map[string]any{"taskIds": []string{tasks[1].ID, tasks[2].ID}})
	expectStatus(t, rr, http.StatusOK)

	rr = s.do(t, http.MethodPost, "/jobs/"+job.ID+"/complete", nil)
	expectStatus(t, rr, http.StatusOK)
	res := decodeBody[struct {
		Job     jobResp `json:"job"`
		Earning struct {
			WorkerID string `json:"workerId"`
			Amount   string `json:"amount"`
			Status   string `json:"status"`
		} `json:"earning"`
		PaymentPending bool `json:"paymentPending"`
	}](t, rr)
	if res.Job.Status != entity.StatusCompleted {
		t.Fatalf("expected completed, got %s", res.Job.Status)
	}
	if res.Earning.WorkerID != w || res.Earning.Amount != "100" || res.Earning.Status != "paid" || res.PaymentPending {
		t.Fatalf("unexpected earning %+v pending=%v", res.Earning, res.PaymentPending)
	}

	rr = s.do(t, http.MethodGet, "/earnings?workerId="+w, nil)
	expectStatus(t, rr, http.StatusOK)
	if earnings := decodeBody[[]idResp](t, rr); len(earnings) != 1 {
		t.Fatalf("expected one earning, got %d", len(earnings))
	}

	rr = s.do(t, http.MethodGet, "/jobs/"+job.ID+"/receipt", nil)
	expectStatus(t, rr, http.StatusOK)

	rr = s.do(t, http.MethodPost, "/jobs/"+job.ID+"/cancel", nil)
	expectStatus(t, rr, http.StatusConflict)

	rr = s.do(t, http.MethodPost, "/reviews", map[string]any{"jobId": job.ID, "reviewerId": w, "rating": 5})
	expectStatus(t, rr, http.StatusCreated)
	rr = s.do(t, http.MethodPost, "/reviews", map[string]any{"jobId": job.ID, "reviewerId": w, "rating": 4})
	expectStatus(t, rr, http.StatusConflict)
}

func TestHTTP_ReorderTasks(t *testing.T) {
	s := newTestServer(t)
	job := s.postJob(t, "0")

	rr := s.do(t, http.MethodPost, "/jobs/"+job.ID+"/tasks/batch", map[string]any{
		"tasks": []map[string]any{{"description": "a"}, {"description": "b"}, {"description": "c"}},
	})
	expectStatus(t, rr, http.StatusCreated)
	tasks := decodeBody[[]idResp](t, rr)

	order := []string{tasks[2].ID, tasks[1].ID, tasks[0].ID}
	rr = s.do(t, http.MethodPost, "/tasks/job/"+job.ID+"/reorder", map[string]any{"taskIds": order})
	expectStatus(t, rr, http.StatusOK)
	got := decodeBody[[]idResp](t, rr)
	for i := range order {
		if got[i].ID != order[i] || got[i].Position != i {
			t.Fatalf("unexpected order at %d: %+v", i, got[i])
		}
	}

	rr = s.do(t, http.MethodPost, "/tasks/job/"+job.ID+"/reorder", map[string]any{"taskIds": order[:2]})
	expectStatus(t, rr, http.StatusBadRequest)

	rr = s.do(t, http.MethodDelete, "/tasks/"+tasks[1].ID, nil)
	expectStatus(t, rr, http.StatusNoContent)
}

func TestHTTP_PatchJobStatusRoutesToLifecycle(t *testing.T) {
	s := newTestServer(t)
	job := s.postJob(t, "0")

	rr := s.do(t, http.MethodPatch, "/jobs/"+job.ID, map[string]any{"status": "assigned"})
	expectStatus(t, rr, http.StatusConflict)

	rr = s.do(t, http.MethodPatch, "/jobs/"+job.ID, map[string]any{"title": "Renamed"})
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"title":"Renamed"`) {
		t.Fatalf("expected renamed job, got %s", rr.Body.String())
	}

	rr = s.do(t, http.MethodPatch, "/jobs/"+job.ID, map[string]any{"status": "canceled"})
	expectStatus(t, rr, http.StatusOK)
	if got := decodeBody[jobResp](t, rr); got.Status != entity.StatusCanceled {
		t.Fatalf("expected canceled, got %s", got.Status)
	}
}
