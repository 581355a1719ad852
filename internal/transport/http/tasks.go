package httptransport

import (
	"net/http"

	"github.com/google/uuid"

	"gig-marketplace-service/internal/service"
)

type createTaskDTO struct {
	JobID uuid.UUID `json:"jobId"`
	service.TaskDraft
}

type taskIDsDTO struct {
	TaskIDs []uuid.UUID `json:"taskIds"`
}

// CreateTask godoc
// @Summary Add a task to a job
// @Description Appended at the end unless position is given.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body createTaskDTO true "task"
// @Success 201 {object} entity.Task
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /tasks [post]
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var dto createTaskDTO
	if err := decode(r, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if dto.JobID == uuid.Nil {
		writeErr(w, http.StatusBadRequest, "jobId is required")
		return
	}
	task, err := h.tasks.Add(r.Context(), dto.JobID, dto.TaskDraft)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask godoc
// @Summary Edit a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "task id (uuid)"
// @Param request body service.TaskPatch true "fields to change"
// @Success 200 {object} entity.Task
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /tasks/{id} [patch]
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	var p service.TaskPatch
	if err := decode(r, &p); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	task, err := h.tasks.Update(r.Context(), id, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Param id path string true "task id (uuid)"
// @Success 204
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /tasks/{id} [delete]
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.tasks.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteTask godoc
// @Summary Mark a task done
// @Tags tasks
// @Produce json
// @Param id path string true "task id (uuid)"
// @Success 200 {object} entity.Task
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /tasks/{id}/complete [post]
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	task, err := h.tasks.Complete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ReorderTasks godoc
// @Summary Reorder the tasks of a job
// @Description taskIds must list every task of the job exactly once.
// @Tags tasks
// @Accept json
// @Produce json
// @Param jobId path string true "job id (uuid)"
// @Param request body taskIDsDTO true "new order"
// @Success 200 {array} entity.Task
// @Failure 400 {object} apiError
// @Failure 409 {object} apiError
// @Router /tasks/job/{jobId}/reorder [post]
func (h *Handler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobId")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	var dto taskIDsDTO
	if err := decode(r, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	tasks, err := h.tasks.Reorder(r.Context(), jobID, dto.TaskIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CompleteTasks godoc
// @Summary Mark several tasks done
// @Description An empty taskIds completes every task of the job.
// @Tags tasks
// @Accept json
// @Produce json
// @Param jobId path string true "job id (uuid)"
// @Param request body taskIDsDTO false "tasks to complete"
// @Success 200 {array} entity.Task
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /tasks/job/{jobId}/complete [post]
func (h *Handler) CompleteTasks(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobId")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	var dto taskIDsDTO
	if r.ContentLength != 0 {
		if err := decode(r, &dto); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	tasks, err := h.tasks.CompleteAll(r.Context(), jobID, dto.TaskIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}
