// Package memory is an in-process Store used by tests and by STORE=memory deployments.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/repository"
)

type state struct {
	jobs     map[uuid.UUID]entity.Job
	apps     map[uuid.UUID]entity.Application
	tasks    map[uuid.UUID]entity.Task
	earnings map[uuid.UUID]entity.Earning
	reviews  map[uuid.UUID]entity.Review
	accounts map[uuid.UUID]entity.PayoutAccount
}

func (s *state) clone() *state {
	return &state{
		jobs:     maps.Clone(s.jobs),
		apps:     maps.Clone(s.apps),
		tasks:    maps.Clone(s.tasks),
		earnings: maps.Clone(s.earnings),
		reviews:  maps.Clone(s.reviews),
		accounts: maps.Clone(s.accounts),
	}
}

// Store serializes every transaction behind one mutex; that is also what makes
// GetForUpdate a real lock here.
type Store struct {
	mu sync.Mutex
	st *state
}

func NewStore() *Store {
	return &Store{st: &state{
		jobs:     make(map[uuid.UUID]entity.Job),
		apps:     make(map[uuid.UUID]entity.Application),
		tasks:    make(map[uuid.UUID]entity.Task),
		earnings: make(map[uuid.UUID]entity.Earning),
		reviews:  make(map[uuid.UUID]entity.Review),
		accounts: make(map[uuid.UUID]entity.PayoutAccount),
	}}
}

// InTx runs fn against the live state and restores the snapshot when fn fails.
func (s *Store) InTx(ctx context.Context, fn func(repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.st.clone()
	if err := fn(repos{s: s, held: true}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) Jobs() repository.JobRepository                 { return repos{s: s}.Jobs() }
func (s *Store) Applications() repository.ApplicationRepository { return repos{s: s}.Applications() }
func (s *Store) Tasks() repository.TaskRepository               { return repos{s: s}.Tasks() }
func (s *Store) Earnings() repository.EarningRepository         { return repos{s: s}.Earnings() }
func (s *Store) Reviews() repository.ReviewRepository           { return repos{s: s}.Reviews() }
func (s *Store) PayoutAccounts() repository.PayoutAccountRepository {
	return repos{s: s}.PayoutAccounts()
}

// repos binds the repositories to the store. held is true inside InTx, where the
// mutex is already owned by the transaction.
type repos struct {
	s    *Store
	held bool
}

func (r repos) lock() func() {
	if r.held {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r repos) Jobs() repository.JobRepository                     { return jobRepo{r} }
func (r repos) Applications() repository.ApplicationRepository     { return appRepo{r} }
func (r repos) Tasks() repository.TaskRepository                   { return taskRepo{r} }
func (r repos) Earnings() repository.EarningRepository             { return earningRepo{r} }
func (r repos) Reviews() repository.ReviewRepository               { return reviewRepo{r} }
func (r repos) PayoutAccounts() repository.PayoutAccountRepository { return accountRepo{r} }

// ---- jobs ----

type jobRepo struct{ repos }

func (r jobRepo) Create(_ context.Context, j *entity.Job) error {
	defer r.lock()()
	r.s.st.jobs[j.ID] = copyJob(*j)
	return nil
}

func (r jobRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	defer r.lock()()
	j, ok := r.s.st.jobs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	out := copyJob(j)
	return &out, nil
}

func (r jobRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return r.GetByID(ctx, id)
}

func (r jobRepo) List(_ context.Context, f repository.JobFilter) ([]entity.Job, error) {
	defer r.lock()()
	var out []entity.Job
	for _, j := range r.s.st.jobs {
		if f.PosterID != nil && j.PosterID != *f.PosterID {
			continue
		}
		if f.WorkerID != nil && (j.WorkerID == nil || *j.WorkerID != *f.WorkerID) {
			continue
		}
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		out = append(out, copyJob(j))
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].DatePosted.Equal(out[b].DatePosted) {
			return out[a].DatePosted.After(out[b].DatePosted)
		}
		return out[a].ID.String() < out[b].ID.String()
	})
	return out, nil
}

func (r jobRepo) Update(_ context.Context, j *entity.Job) error {
	defer r.lock()()
	if _, ok := r.s.st.jobs[j.ID]; !ok {
		return entity.ErrNotFound
	}
	r.s.st.jobs[j.ID] = copyJob(*j)
	return nil
}

func copyJob(j entity.Job) entity.Job {
	j.RequiredSkills = append([]string(nil), j.RequiredSkills...)
	if j.WorkerID != nil {
		w := *j.WorkerID
		j.WorkerID = &w
	}
	return j
}

// ---- applications ----

type appRepo struct{ repos }

func (r appRepo) Create(_ context.Context, a *entity.Application) error {
	defer r.lock()()
	if a.Active() && r.findActive(a.JobID, a.WorkerID) != nil {
		return entity.ErrDuplicateApplication
	}
	r.s.st.apps[a.ID] = *a
	return nil
}

func (r appRepo) findActive(jobID, workerID uuid.UUID) *entity.Application {
	for _, a := range r.s.st.apps {
		if a.JobID == jobID && a.WorkerID == workerID && a.Active() {
			return &a
		}
	}
	return nil
}

func (r appRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Application, error) {
	defer r.lock()()
	a, ok := r.s.st.apps[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &a, nil
}

func (r appRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	return r.GetByID(ctx, id)
}

func (r appRepo) FindActive(_ context.Context, jobID, workerID uuid.UUID) (*entity.Application, error) {
	defer r.lock()()
	if a := r.findActive(jobID, workerID); a != nil {
		return a, nil
	}
	return nil, entity.ErrNotFound
}

func (r appRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]entity.Application, error) {
	defer r.lock()()
	out := r.filter(func(a entity.Application) bool { return a.JobID == jobID })
	sort.Slice(out, func(i, j int) bool { return earlier(out[i].DateApplied, out[j].DateApplied, out[i].ID, out[j].ID) })
	return out, nil
}

func (r appRepo) ListByWorker(_ context.Context, workerID uuid.UUID) ([]entity.Application, error) {
	defer r.lock()()
	out := r.filter(func(a entity.Application) bool { return a.WorkerID == workerID })
	sort.Slice(out, func(i, j int) bool { return earlier(out[j].DateApplied, out[i].DateApplied, out[j].ID, out[i].ID) })
	return out, nil
}

func (r appRepo) filter(keep func(entity.Application) bool) []entity.Application {
	var out []entity.Application
	for _, a := range r.s.st.apps {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (r appRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.ApplicationStatus, at time.Time) error {
	defer r.lock()()
	a, ok := r.s.st.apps[id]
	if !ok {
		return entity.ErrNotFound
	}
	if status != entity.ApplicationRejected && !a.Active() {
		if other := r.findActive(a.JobID, a.WorkerID); other != nil {
			return entity.ErrDuplicateApplication
		}
	}
	a.Status = status
	a.UpdatedAt = at
	r.s.st.apps[id] = a
	return nil
}

func (r appRepo) RejectPending(_ context.Context, jobID, keep uuid.UUID, at time.Time) ([]entity.Application, error) {
	defer r.lock()()
	var out []entity.Application
	for id, a := range r.s.st.apps {
		if a.JobID != jobID || id == keep || a.Status != entity.ApplicationPending {
			continue
		}
		a.Status = entity.ApplicationRejected
		a.UpdatedAt = at
		r.s.st.apps[id] = a
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return earlier(out[i].DateApplied, out[j].DateApplied, out[i].ID, out[j].ID) })
	return out, nil
}

// ---- tasks ----

type taskRepo struct{ repos }

func (r taskRepo) Create(_ context.Context, t *entity.Task) error {
	defer r.lock()()
	r.s.st.tasks[t.ID] = *t
	return nil
}

func (r taskRepo) CreateBatch(_ context.Context, tasks []*entity.Task) error {
	defer r.lock()()
	for _, t := range tasks {
		r.s.st.tasks[t.ID] = *t
	}
	return nil
}

func (r taskRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Task, error) {
	defer r.lock()()
	t, ok := r.s.st.tasks[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &t, nil
}

func (r taskRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]entity.Task, error) {
	defer r.lock()()
	return r.listByJob(jobID), nil
}

func (r taskRepo) listByJob(jobID uuid.UUID) []entity.Task {
	var out []entity.Task
	for _, t := range r.s.st.tasks {
		if t.JobID == jobID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (r taskRepo) Count(_ context.Context, jobID uuid.UUID) (int, error) {
	defer r.lock()()
	return len(r.listByJob(jobID)), nil
}

func (r taskRepo) Update(_ context.Context, t *entity.Task) error {
	defer r.lock()()
	if _, ok := r.s.st.tasks[t.ID]; !ok {
		return entity.ErrNotFound
	}
	r.s.st.tasks[t.ID] = *t
	return nil
}

func (r taskRepo) Delete(_ context.Context, id uuid.UUID) error {
	defer r.lock()()
	if _, ok := r.s.st.tasks[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.s.st.tasks, id)
	return nil
}

func (r taskRepo) SetPositions(_ context.Context, jobID uuid.UUID, ids []uuid.UUID) error {
	defer r.lock()()
	for _, id := range ids {
		if t, ok := r.s.st.tasks[id]; !ok || t.JobID != jobID {
			return entity.ErrNotFound
		}
	}
	for i, id := range ids {
		t := r.s.st.tasks[id]
		t.Position = i
		r.s.st.tasks[id] = t
	}
	return nil
}

// ---- earnings ----

type earningRepo struct{ repos }

func (r earningRepo) Create(_ context.Context, e *entity.Earning) error {
	defer r.lock()()
	r.s.st.earnings[e.ID] = *e
	return nil
}

func (r earningRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Earning, error) {
	defer r.lock()()
	e, ok := r.s.st.earnings[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &e, nil
}

func (r earningRepo) GetByJob(_ context.Context, jobID uuid.UUID) (*entity.Earning, error) {
	defer r.lock()()
	for _, e := range r.s.st.earnings {
		if e.JobID == jobID {
			return &e, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r earningRepo) ListByWorker(_ context.Context, workerID uuid.UUID) ([]entity.Earning, error) {
	defer r.lock()()
	var out []entity.Earning
	for _, e := range r.s.st.earnings {
		if e.WorkerID == workerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return earlier(out[j].DateEarned, out[i].DateEarned, out[j].ID, out[i].ID) })
	return out, nil
}

func (r earningRepo) ListPending(_ context.Context, earnedBefore time.Time, limit int) ([]entity.Earning, error) {
	defer r.lock()()
	var out []entity.Earning
	for _, e := range r.s.st.earnings {
		if e.Status == entity.EarningPending && e.Amount.IsPositive() && e.DateEarned.Before(earnedBefore) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return earlier(out[i].DateEarned, out[j].DateEarned, out[i].ID, out[j].ID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r earningRepo) MarkPaid(_ context.Context, id uuid.UUID, transferID string, at time.Time) error {
	defer r.lock()()
	e, ok := r.s.st.earnings[id]
	if !ok {
		return entity.ErrNotFound
	}
	e.Status = entity.EarningPaid
	e.TransferID = &transferID
	e.DatePaid = &at
	r.s.st.earnings[id] = e
	return nil
}

// ---- reviews & payout accounts ----

type reviewRepo struct{ repos }

func (r reviewRepo) Create(_ context.Context, rv *entity.Review) error {
	defer r.lock()()
	for _, existing := range r.s.st.reviews {
		if existing.JobID == rv.JobID && existing.ReviewerID == rv.ReviewerID {
			return entity.ErrDuplicateReview
		}
	}
	r.s.st.reviews[rv.ID] = *rv
	return nil
}

func (r reviewRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]entity.Review, error) {
	defer r.lock()()
	out := r.filter(func(rv entity.Review) bool { return rv.JobID == jobID })
	sort.Slice(out, func(i, j int) bool { return earlier(out[i].DateReviewed, out[j].DateReviewed, out[i].ID, out[j].ID) })
	return out, nil
}

func (r reviewRepo) ListByReviewee(_ context.Context, revieweeID uuid.UUID) ([]entity.Review, error) {
	defer r.lock()()
	out := r.filter(func(rv entity.Review) bool { return rv.RevieweeID == revieweeID })
	sort.Slice(out, func(i, j int) bool { return earlier(out[j].DateReviewed, out[i].DateReviewed, out[j].ID, out[i].ID) })
	return out, nil
}

func (r reviewRepo) filter(keep func(entity.Review) bool) []entity.Review {
	var out []entity.Review
	for _, rv := range r.s.st.reviews {
		if keep(rv) {
			out = append(out, rv)
		}
	}
	return out
}

type accountRepo struct{ repos }

func (r accountRepo) Create(_ context.Context, a *entity.PayoutAccount) error {
	defer r.lock()()
	r.s.st.accounts[a.WorkerID] = *a
	return nil
}

func (r accountRepo) GetByWorker(_ context.Context, workerID uuid.UUID) (*entity.PayoutAccount, error) {
	defer r.lock()()
	a, ok := r.s.st.accounts[workerID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &a, nil
}

func earlier(a, b time.Time, idA, idB uuid.UUID) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return idA.String() < idB.String()
}
