package tests

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/models"
)

type adminStore struct {
	mu     sync.Mutex
	admins map[uuid.UUID]models.AdminUser
}

func newAdminStore() *adminStore {
	return &adminStore{admins: map[uuid.UUID]models.AdminUser{}}
}

func (s *adminStore) GetByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, errs.NotFound("admin")
}

func (s *adminStore) GetByID(_ context.Context, id uuid.UUID) (*models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return nil, errs.NotFound("admin")
	}
	return &a, nil
}

func (s *adminStore) Create(_ context.Context, a *models.AdminUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.New()
	s.admins[a.ID] = *a
	return nil
}

func (s *adminStore) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return errs.NotFound("admin")
	}
	now := time.Now()
	a.LastLoginAt = &now
	s.admins[id] = a
	return nil
}

type reviewStore struct {
	mu      sync.Mutex
	seq     int
	reviews map[uuid.UUID]models.Review
}

func newReviewStore() *reviewStore {
	return &reviewStore{reviews: map[uuid.UUID]models.Review{}}
}

func (s *reviewStore) Create(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	r.ID = uuid.New()
	r.CreatedAt = time.Date(2024, 1, 1, 0, 0, s.seq, 0, time.UTC)
	s.reviews[r.ID] = *r
	return nil
}

func (s *reviewStore) GetByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, errs.NotFound("review")
	}
	return &r, nil
}

func (s *reviewStore) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return errs.NotFound("review")
	}
	for k, v := range updates {
		switch k {
		case "author":
			r.Author = v.(string)
		case "title":
			r.Title = v.(string)
		case "comment":
			r.Comment = v.(string)
		case "rating":
			r.Rating = v.(int)
		case "city":
			r.City = v.(string)
		case "province":
			r.Province = v.(string)
		case "active":
			r.Active = v.(bool)
		case "image_url":
			r.ImageURL = v.(string)
		case "image_storage_path":
			r.ImageStoragePath = v.(string)
		}
	}
	s.reviews[id] = r
	return nil
}

func (s *reviewStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return errs.NotFound("review")
	}
	delete(s.reviews, id)
	return nil
}

func (s *reviewStore) newestFirst() []models.Review {
	out := make([]models.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *reviewStore) Search(_ context.Context, f models.ReviewFilter) ([]models.Review, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Review
	for _, r := range s.newestFirst() {
		if f.Rating != 0 && r.Rating != f.Rating {
			continue
		}
		if f.Active != nil && r.Active != *f.Active {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(r.Title+" "+r.Comment), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, r)
	}
	total := int64(len(out))
	from := (f.Page - 1) * f.Limit
	if from > len(out) {
		from = len(out)
	}
	to := from + f.Limit
	if to > len(out) {
		to = len(out)
	}
	return out[from:to], total, nil
}

func (s *reviewStore) ListActive(_ context.Context, limit int) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Review
	for _, r := range s.newestFirst() {
		if r.Active && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *reviewStore) Ratings(_ context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, r := range s.reviews {
		out = append(out, r.Rating)
	}
	return out, nil
}

func (s *reviewStore) DistinctValues(_ context.Context, column string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, r := range s.reviews {
		v := r.City
		if column == "province" {
			v = r.Province
		}
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}

type objectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newObjectStore() *objectStore {
	return &objectStore{objects: map[string][]byte{}}
}

func (s *objectStore) Upload(_ context.Context, bucket, path string, data []byte, _ string, overwrite bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := bucket + "/" + path
	if _, taken := s.objects[key]; taken && !overwrite {
		return "", errs.ErrObjectExists
	}
	s.objects[key] = data
	return path, nil
}

func (s *objectStore) Delete(_ context.Context, bucket string, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		delete(s.objects, bucket+"/"+p)
	}
	return nil
}

func (s *objectStore) List(_ context.Context, bucket, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for key := range s.objects {
		if name, ok := strings.CutPrefix(key, bucket+"/"); ok && strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *objectStore) PublicURL(bucket, path string, _ bool) string {
	return "https://storage.test/" + bucket + "/" + path
}

func (s *objectStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type issueSink struct {
	mu     sync.Mutex
	issues []models.ReconciliationIssue
}

func (s *issueSink) Record(_ context.Context, issue *models.ReconciliationIssue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = append(s.issues, *issue)
	return nil
}
