package httptransport

import (
	"net/http"

	"go.uber.org/zap"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/repository"
	"gig-marketplace-service/internal/service"
)

type Services struct {
	Jobs      *service.JobStore
	Tasks     *service.TaskStore
	Apps      *service.ApplicationStore
	Lifecycle *service.Lifecycle
	Reviews   *service.ReviewService
	Payouts   *service.PayoutService
}

type Handler struct {
	jobs    *service.JobStore
	tasks   *service.TaskStore
	apps    *service.ApplicationStore
	life    *service.Lifecycle
	reviews *service.ReviewService
	payouts *service.PayoutService
	log     *zap.Logger
}

func NewHandler(s Services, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		jobs:    s.Jobs,
		tasks:   s.Tasks,
		apps:    s.Apps,
		life:    s.Lifecycle,
		reviews: s.Reviews,
		payouts: s.Payouts,
		log:     log,
	}
}

// fail writes err with its mapped status. Internal errors are logged and hidden.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		writeErr(w, code, "internal error")
		return
	}
	writeErr(w, code, err.Error())
}

// jobPatchDTO accepts field edits plus an optional status, which is routed to the
// matching lifecycle intent rather than written directly.
type jobPatchDTO struct {
	service.JobPatch
	Status *entity.JobStatus `json:"status,omitempty"`
}

type batchTasksDTO struct {
	Tasks []service.TaskDraft `json:"tasks"`
}

// CreateJob godoc
// @Summary Post a job
// @Description Paid jobs start in pending_payment, free jobs are open right away.
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body service.JobDraft true "job draft with optional initial tasks"
// @Success 201 {object} entity.Job
// @Failure 400 {object} apiError
// @Router /jobs [post]
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var d service.JobDraft
	if err := decode(r, &d); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := h.jobs.Create(r.Context(), d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// ListJobs godoc
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Param posterId query string false "poster id"
// @Param workerId query string false "worker id"
// @Param status query string false "job status"
// @Success 200 {array} entity.Job
// @Failure 400 {object} apiError
// @Router /jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	var f repository.JobFilter
	var err error
	if f.PosterID, err = queryID(r, "posterId"); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.WorkerID, err = queryID(r, "workerId"); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	f.Status = entity.JobStatus(r.URL.Query().Get("status"))

	jobs, err := h.jobs.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []entity.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GetJob godoc
// @Summary Get job by id
// @Tags jobs
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {object} entity.Job
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /jobs/{id} [get]
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// UpdateJob godoc
// @Summary Edit a job
// @Description Field edits apply while the job is unassigned. A status field is
// @Description dispatched to start, complete or cancel.
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "job id (uuid)"
// @Param request body jobPatchDTO true "fields to change"
// @Success 200 {object} entity.Job
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /jobs/{id} [patch]
func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	var dto jobPatchDTO
	if err := decode(r, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	if dto.Status == nil {
		job, err := h.jobs.Update(r.Context(), id, dto.JobPatch)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
		return
	}

	var job *entity.Job
	switch *dto.Status {
	case entity.StatusInProgress:
		job, err = h.life.StartJob(r.Context(), id)
	case entity.StatusCanceled:
		job, err = h.life.CancelJob(r.Context(), id)
	case entity.StatusCompleted:
		var res *service.CompletionResult
		if res, err = h.life.CompleteJob(r.Context(), id); err == nil {
			writeJSON(w, http.StatusOK, res)
			return
		}
	default:
		writeErr(w, http.StatusConflict, "status "+string(*dto.Status)+" is set by its own operation")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ProcessPayment godoc
// @Summary Pay for a job
// @Description Charges the poster. On decline the job moves to payment_failed and 502 is returned.
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "job id (uuid)"
// @Param request body service.PaymentRequest true "payment method and optional expected total"
// @Success 200 {object} entity.Job
// @Failure 400 {object} apiError
// @Failure 409 {object} apiError
// @Failure 502 {object} apiError
// @Router /jobs/{id}/payment [post]
func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	var req service.PaymentRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := h.life.ProcessPayment(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// StartJob godoc
// @Summary Start an assigned job
// @Tags jobs
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {object} entity.Job
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /jobs/{id}/start [post]
func (h *Handler) StartJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := h.life.StartJob(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// CompleteJob godoc
// @Summary Complete a job
// @Description Requires every non-optional task to be done. Creates the worker's earning;
// @Description paymentPending is true when the payout was queued for retry.
// @Tags jobs
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {object} service.CompletionResult
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /jobs/{id}/complete [post]
func (h *Handler) CompleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.life.CompleteJob(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CancelJob godoc
// @Summary Cancel a job
// @Tags jobs
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {object} entity.Job
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /jobs/{id}/cancel [post]
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := h.life.CancelJob(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// GetReceipt godoc
// @Summary Payment receipt of a job
// @Tags jobs
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {object} service.Receipt
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /jobs/{id}/receipt [get]
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	rc, err := h.life.GenerateReceipt(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

// ListJobTasks godoc
// @Summary Tasks of a job, ordered by position
// @Tags tasks
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {array} entity.Task
// @Failure 404 {object} apiError
// @Router /jobs/{id}/tasks [get]
func (h *Handler) ListJobTasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	tasks, err := h.tasks.List(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []entity.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// AddTasksBatch godoc
// @Summary Append tasks to a job
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "job id (uuid)"
// @Param request body batchTasksDTO true "tasks in order"
// @Success 201 {array} entity.Task
// @Failure 400 {object} apiError
// @Failure 409 {object} apiError
// @Router /jobs/{id}/tasks/batch [post]
func (h *Handler) AddTasksBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	var dto batchTasksDTO
	if err := decode(r, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	tasks, err := h.tasks.AddBatch(r.Context(), id, dto.Tasks)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tasks)
}
