package httptransport

import (
	"net/http"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/service"
)

type applicationStatusDTO struct {
	Status entity.ApplicationStatus `json:"status"`
}

// Apply godoc
// @Summary Apply to an open job
// @Description The worker needs a verified payout account (412 otherwise).
// @Tags applications
// @Accept json
// @Produce json
// @Param request body service.ApplyRequest true "application"
// @Success 201 {object} entity.Application
// @Failure 400 {object} apiError
// @Failure 409 {object} apiError
// @Failure 412 {object} apiError
// @Router /applications [post]
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req service.ApplyRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	app, err := h.life.ApplyToJob(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// ListApplications godoc
// @Summary Applications of a worker
// @Tags applications
// @Produce json
// @Param workerId query string true "worker id"
// @Success 200 {array} entity.Application
// @Failure 400 {object} apiError
// @Router /applications [get]
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	workerID, err := queryID(r, "workerId")
	if err != nil || workerID == nil {
		writeErr(w, http.StatusBadRequest, "workerId is required")
		return
	}
	apps, err := h.apps.ListByWorker(r.Context(), *workerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if apps == nil {
		apps = []entity.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}

// ListJobApplications godoc
// @Summary Applications of a job
// @Tags applications
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {array} entity.Application
// @Failure 404 {object} apiError
// @Router /jobs/{id}/applications [get]
func (h *Handler) ListJobApplications(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	apps, err := h.apps.ListByJob(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if apps == nil {
		apps = []entity.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}

// SetApplicationStatus godoc
// @Summary Accept or reject an application
// @Description Accepting assigns the job to the applicant and rejects the other pending applications.
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "application id (uuid)"
// @Param request body applicationStatusDTO true "accepted or rejected"
// @Success 200 {object} service.ApplicationUpdate
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /applications/{id}/status [patch]
func (h *Handler) SetApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	var dto applicationStatusDTO
	if err := decode(r, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	var upd *service.ApplicationUpdate
	switch dto.Status {
	case entity.ApplicationAccepted:
		upd, err = h.life.AcceptApplication(r.Context(), id)
	case entity.ApplicationRejected:
		upd, err = h.life.RejectApplication(r.Context(), id)
	default:
		writeErr(w, http.StatusBadRequest, "status must be accepted or rejected")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, upd)
}
