package httptransport

import (
	"net/http"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/service"
)

type linkResp struct {
	URL string `json:"url"`
}

// CreateReview godoc
// @Summary Review the other party of a completed job
// @Tags reviews
// @Accept json
// @Produce json
// @Param request body service.ReviewRequest true "review"
// @Success 201 {object} entity.Review
// @Failure 400 {object} apiError
// @Failure 409 {object} apiError
// @Router /reviews [post]
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req service.ReviewRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	rv, err := h.reviews.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

// ListJobReviews godoc
// @Summary Reviews of a job
// @Tags reviews
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {array} entity.Review
// @Failure 404 {object} apiError
// @Router /jobs/{id}/reviews [get]
func (h *Handler) ListJobReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	reviews, err := h.reviews.ListByJob(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []entity.Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

// ListUserReviews godoc
// @Summary Reviews received by a user, with the average rating
// @Tags reviews
// @Produce json
// @Param id path string true "user id (uuid)"
// @Success 200 {object} service.ReviewSummary
// @Router /users/{id}/reviews [get]
func (h *Handler) ListUserReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	sum, err := h.reviews.ListForUser(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ListEarnings godoc
// @Summary Earnings of a worker
// @Tags payouts
// @Produce json
// @Param workerId query string true "worker id"
// @Success 200 {array} entity.Earning
// @Failure 400 {object} apiError
// @Router /earnings [get]
func (h *Handler) ListEarnings(w http.ResponseWriter, r *http.Request) {
	workerID, err := queryID(r, "workerId")
	if err != nil || workerID == nil {
		writeErr(w, http.StatusBadRequest, "workerId is required")
		return
	}
	earnings, err := h.payouts.Earnings(r.Context(), *workerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if earnings == nil {
		earnings = []entity.Earning{}
	}
	writeJSON(w, http.StatusOK, earnings)
}

// CreatePayoutAccount godoc
// @Summary Create the worker's connected payout account
// @Description Returns the existing account when the worker already has one.
// @Tags payouts
// @Accept json
// @Produce json
// @Param request body service.CreateAccountRequest true "worker and email"
// @Success 201 {object} entity.PayoutAccount
// @Failure 400 {object} apiError
// @Failure 502 {object} apiError
// @Router /payouts/accounts [post]
func (h *Handler) CreatePayoutAccount(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAccountRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	acct, err := h.payouts.CreateAccount(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

// GetPayoutAccount godoc
// @Summary Connected account status of a worker
// @Tags payouts
// @Produce json
// @Param workerId path string true "worker id (uuid)"
// @Success 200 {object} payment.AccountStatus
// @Failure 404 {object} apiError
// @Failure 502 {object} apiError
// @Router /payouts/accounts/{workerId} [get]
func (h *Handler) GetPayoutAccount(w http.ResponseWriter, r *http.Request) {
	workerID, err := pathID(r, "workerId")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := h.payouts.AccountStatus(r.Context(), workerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// OnboardingLink godoc
// @Summary Onboarding link for the worker's connected account
// @Tags payouts
// @Accept json
// @Produce json
// @Param workerId path string true "worker id (uuid)"
// @Param request body service.OnboardingLinkRequest true "redirect urls"
// @Success 200 {object} linkResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 502 {object} apiError
// @Router /payouts/accounts/{workerId}/link [post]
func (h *Handler) OnboardingLink(w http.ResponseWriter, r *http.Request) {
	workerID, err := pathID(r, "workerId")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	var req service.OnboardingLinkRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	url, err := h.payouts.OnboardingLink(r.Context(), workerID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, linkResp{URL: url})
}
