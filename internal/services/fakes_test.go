package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/models"
)

// memStorage is an in-memory ObjectStorage with failure injection.
type memStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte // bucket/path
	uploads   int
	deletes   int
	uploadErr func(bucket, path string) error
	deleteErr func(bucket string, paths []string) error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) Upload(_ context.Context, bucket, path string, data []byte, _ string, overwrite bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if s.uploadErr != nil {
		if err := s.uploadErr(bucket, path); err != nil {
			return "", err
		}
	}
	key := bucket + "/" + path
	if _, ok := s.objects[key]; ok && !overwrite {
		return "", fmt.Errorf("%s: %w", key, errs.ErrObjectExists)
	}
	s.objects[key] = data
	return path, nil
}

func (s *memStorage) Delete(_ context.Context, bucket string, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.deleteErr != nil {
		if err := s.deleteErr(bucket, paths); err != nil {
			return err
		}
	}
	for _, p := range paths {
		delete(s.objects, bucket+"/"+p)
	}
	return nil
}

func (s *memStorage) List(_ context.Context, bucket, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for k := range s.objects {
		if strings.HasPrefix(k, bucket+"/"+prefix) {
			out = append(out, strings.TrimPrefix(k, bucket+"/"))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *memStorage) PublicURL(bucket, path string, cacheBust bool) string {
	u := "https://storage.test/" + bucket + "/" + path
	if cacheBust {
		u += "?v=1"
	}
	return u
}

func (s *memStorage) has(bucket, path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[bucket+"/"+path]
	return ok
}

func (s *memStorage) count(bucket string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.objects {
		if strings.HasPrefix(k, bucket+"/") {
			n++
		}
	}
	return n
}

func (s *memStorage) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads + s.deletes
}

// memImageRepo is an in-memory ProductImageRepository.
type memImageRepo struct {
	mu        sync.Mutex
	images    map[uuid.UUID]models.ProductImage
	creates   int
	updates   int
	deletes   int
	createErr func(img *models.ProductImage) error
	deleteErr func(id uuid.UUID) error
	updateErr func(id uuid.UUID) error

	listPathsErr error
}

func newMemImageRepo() *memImageRepo {
	return &memImageRepo{images: map[uuid.UUID]models.ProductImage{}}
}

func (r *memImageRepo) seed(img models.ProductImage) models.ProductImage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	r.images[img.ID] = img
	return img
}

func (r *memImageRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ProductImage
	for _, img := range r.images {
		if img.ProductID == productID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memImageRepo) ListByProducts(ctx context.Context, ids []uuid.UUID) ([]models.ProductImage, error) {
	var out []models.ProductImage
	for _, id := range ids {
		imgs, _ := r.ListByProduct(ctx, id)
		out = append(out, imgs...)
	}
	return out, nil
}

func (r *memImageRepo) ListByPaths(_ context.Context, paths []string) ([]models.ProductImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listPathsErr != nil {
		return nil, r.listPathsErr
	}
	wanted := make(map[string]bool, len(paths))
	for _, p := range paths {
		wanted[p] = true
	}
	var out []models.ProductImage
	for _, img := range r.images {
		if wanted[img.StoragePath] {
			out = append(out, img)
		}
	}
	return out, nil
}

func (r *memImageRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ProductImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[id]
	if !ok {
		return nil, errs.NotFound("image")
	}
	return &img, nil
}

func (r *memImageRepo) Create(_ context.Context, img *models.ProductImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		if err := r.createErr(img); err != nil {
			return err
		}
	}
	img.ID = uuid.New()
	img.CreatedAt = time.Now()
	r.images[img.ID] = *img
	return nil
}

func (r *memImageRepo) UpdatePosition(_ context.Context, id uuid.UUID, position int, principal bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.updateErr != nil {
		if err := r.updateErr(id); err != nil {
			return err
		}
	}
	img, ok := r.images[id]
	if !ok {
		return errs.NotFound("image")
	}
	img.Position, img.Principal = position, principal
	r.images[id] = img
	return nil
}

func (r *memImageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	if r.deleteErr != nil {
		if err := r.deleteErr(id); err != nil {
			return err
		}
	}
	if _, ok := r.images[id]; !ok {
		return errs.NotFound("image")
	}
	delete(r.images, id)
	return nil
}

func (r *memImageRepo) DeleteByProduct(_ context.Context, productID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, img := range r.images {
		if img.ProductID == productID {
			delete(r.images, id)
			n++
		}
	}
	return n, nil
}

// memIssueLog collects reconciliation issues.
type memIssueLog struct {
	mu     sync.Mutex
	issues []models.ReconciliationIssue
}

func (l *memIssueLog) Record(_ context.Context, issue *models.ReconciliationIssue) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issues = append(l.issues, *issue)
	return nil
}

func (l *memIssueLog) all() []models.ReconciliationIssue {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.ReconciliationIssue(nil), l.issues...)
}

// memProductRepo is an in-memory ProductRepository.
type memProductRepo struct {
	mu          sync.Mutex
	products    map[uuid.UUID]models.Product
	images      *memImageRepo
	slugErr     error
	createErr   func(p *models.Product) error
	updateErr   error
	deleteErr   error
	slugQueries int
}

func newMemProductRepo(images *memImageRepo) *memProductRepo {
	return &memProductRepo{products: map[uuid.UUID]models.Product{}, images: images}
}

func (r *memProductRepo) seed(p models.Product) models.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.products[p.ID] = p
	return p
}

func (r *memProductRepo) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		if err := r.createErr(p); err != nil {
			return err
		}
	}
	for _, existing := range r.products {
		if existing.Slug == p.Slug {
			return fmt.Errorf("slug %s: %w", p.Slug, errs.ErrConflict)
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	r.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, errs.NotFound("product")
	}
	return &p, nil
}

func (r *memProductRepo) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, errs.NotFound("product")
}

func (r *memProductRepo) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	p, ok := r.products[id]
	if !ok {
		return errs.NotFound("product")
	}
	for k, v := range updates {
		switch k {
		case "title":
			p.Title = v.(string)
		case "slug":
			p.Slug = v.(string)
		case "brand":
			p.Brand = v.(string)
		case "condition":
			p.Condition = v.(string)
		case "model":
			p.Model = v.(string)
		case "short_description":
			p.ShortDescription = v.(string)
		case "price":
			p.Price = v.(float64)
		case "active":
			p.Active = v.(bool)
		case "featured":
			p.Featured = v.(bool)
		case "dynamic_attributes":
			p.DynamicAttributes = v.(models.JSONB)
		case "videos":
			p.Videos = v.(datatypes.JSONSlice[models.Video])
		case "pdf_path":
			p.PDFPath = v.(*string)
		case "category_id":
			p.CategoryID = v.(uuid.UUID)
		case "subcategory_id":
			p.SubcategoryID = v.(*uuid.UUID)
		default:
			return fmt.Errorf("unexpected column %s", k)
		}
	}
	r.products[id] = p
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.products[id]; !ok {
		return errs.NotFound("product")
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) Search(_ context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, p := range r.products {
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
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

func (r *memProductRepo) SlugExists(_ context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slugQueries++
	if r.slugErr != nil {
		return false, r.slugErr
	}
	for _, p := range r.products {
		if p.Slug == slug && (excludeID == nil || p.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memProductRepo) WithPrincipalImage(ctx context.Context, categoryID, excludeID *uuid.UUID, limit int) ([]models.Product, error) {
	r.mu.Lock()
	var candidates []models.Product
	for _, p := range r.products {
		if !p.Active {
			continue
		}
		if categoryID != nil && p.CategoryID != *categoryID {
			continue
		}
		if excludeID != nil && p.ID == *excludeID {
			continue
		}
		candidates = append(candidates, p)
	}
	r.mu.Unlock()

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].CreatedAt.After(candidates[j].CreatedAt) })
	var out []models.Product
	for _, p := range candidates {
		imgs, _ := r.images.ListByProduct(ctx, p.ID)
		for _, img := range imgs {
			if img.Principal {
				out = append(out, p)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// memReviewRepo is an in-memory ReviewRepository.
type memReviewRepo struct {
	mu        sync.Mutex
	reviews   map[uuid.UUID]models.Review
	createErr error
	updateErr error
	clock     time.Time
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: map[uuid.UUID]models.Review{}, clock: time.Unix(1700000000, 0)}
}

func (r *memReviewRepo) Create(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	review.ID = uuid.New()
	r.clock = r.clock.Add(time.Minute)
	review.CreatedAt = r.clock
	r.reviews[review.ID] = *review
	return nil
}

func (r *memReviewRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, errs.NotFound("review")
	}
	return &review, nil
}

func (r *memReviewRepo) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	review, ok := r.reviews[id]
	if !ok {
		return errs.NotFound("review")
	}
	for k, v := range updates {
		switch k {
		case "author":
			review.Author = v.(string)
		case "title":
			review.Title = v.(string)
		case "comment":
			review.Comment = v.(string)
		case "rating":
			review.Rating = v.(int)
		case "city":
			review.City = v.(string)
		case "province":
			review.Province = v.(string)
		case "active":
			review.Active = v.(bool)
		case "image_url":
			review.ImageURL = v.(string)
		case "image_storage_path":
			review.ImageStoragePath = v.(string)
		default:
			return fmt.Errorf("unexpected column %s", k)
		}
	}
	r.reviews[id] = review
	return nil
}

func (r *memReviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return errs.NotFound("review")
	}
	delete(r.reviews, id)
	return nil
}

func (r *memReviewRepo) sorted() []models.Review {
	out := make([]models.Review, 0, len(r.reviews))
	for _, rv := range r.reviews {
		out = append(out, rv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memReviewRepo) Search(_ context.Context, f models.ReviewFilter) ([]models.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Review
	for _, rv := range r.sorted() {
		if f.Rating != 0 && rv.Rating != f.Rating {
			continue
		}
		if f.Active != nil && rv.Active != *f.Active {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(rv.Title+" "+rv.Author+" "+rv.Comment), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, rv)
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

func (r *memReviewRepo) ListActive(_ context.Context, limit int) ([]models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Review
	for _, rv := range r.sorted() {
		if rv.Active {
			out = append(out, rv)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memReviewRepo) Ratings(_ context.Context) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for _, rv := range r.reviews {
		out = append(out, rv.Rating)
	}
	return out, nil
}

func (r *memReviewRepo) DistinctValues(_ context.Context, column string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, rv := range r.reviews {
		v := rv.City
		if column == "province" {
			v = rv.Province
		}
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}

// memCategoryRepo is an in-memory CategoryRepository.
type memCategoryRepo struct {
	mu            sync.Mutex
	categories    map[uuid.UUID]models.Category
	subcategories map[uuid.UUID]models.Subcategory
	fields        map[uuid.UUID]models.CategoryField
	fieldQueries  int
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{
		categories:    map[uuid.UUID]models.Category{},
		subcategories: map[uuid.UUID]models.Subcategory{},
		fields:        map[uuid.UUID]models.CategoryField{},
	}
}

func (r *memCategoryRepo) ListCategories(_ context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Category
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *memCategoryRepo) GetCategory(_ context.Context, id uuid.UUID) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, errs.NotFound("category")
	}
	return &c, nil
}

func (r *memCategoryRepo) GetCategoryByName(_ context.Context, name string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, errs.NotFound("category")
}

func (r *memCategoryRepo) CreateCategory(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.New()
	r.categories[c.ID] = *c
	return nil
}

func (r *memCategoryRepo) UpdateCategory(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return errs.NotFound("category")
	}
	c.Name = updates["name"].(string)
	c.Icon = updates["icon"].(string)
	c.SortOrder = updates["sort_order"].(int)
	r.categories[id] = c
	return nil
}

func (r *memCategoryRepo) DeleteCategory(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return errs.NotFound("category")
	}
	delete(r.categories, id)
	return nil
}

func (r *memCategoryRepo) ListSubcategories(_ context.Context, categoryID *uuid.UUID) ([]models.Subcategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Subcategory
	for _, s := range r.subcategories {
		if categoryID == nil || s.CategoryID == *categoryID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCategoryRepo) CreateSubcategory(_ context.Context, s *models.Subcategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = uuid.New()
	r.subcategories[s.ID] = *s
	return nil
}

func (r *memCategoryRepo) UpdateSubcategory(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subcategories[id]
	if !ok {
		return errs.NotFound("subcategory")
	}
	s.Name = updates["name"].(string)
	r.subcategories[id] = s
	return nil
}

func (r *memCategoryRepo) DeleteSubcategory(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subcategories[id]; !ok {
		return errs.NotFound("subcategory")
	}
	delete(r.subcategories, id)
	return nil
}

func (r *memCategoryRepo) ListFields(_ context.Context, categoryID uuid.UUID) ([]models.CategoryField, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fieldQueries++
	var out []models.CategoryField
	for _, f := range r.fields {
		if f.CategoryID == categoryID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memCategoryRepo) GetField(_ context.Context, id uuid.UUID) (*models.CategoryField, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fields[id]
	if !ok {
		return nil, errs.NotFound("field")
	}
	return &f, nil
}

func (r *memCategoryRepo) CreateField(_ context.Context, f *models.CategoryField) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = uuid.New()
	r.fields[f.ID] = *f
	return nil
}

func (r *memCategoryRepo) UpdateField(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fields[id]
	if !ok {
		return errs.NotFound("field")
	}
	for k, v := range updates {
		switch k {
		case "label":
			f.Label = v.(string)
		case "type":
			f.Type = v.(models.FieldType)
		case "required":
			f.Required = v.(bool)
		case "orden":
			f.Position = v.(int)
		}
	}
	r.fields[id] = f
	return nil
}

func (r *memCategoryRepo) DeleteField(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fields[id]; !ok {
		return errs.NotFound("field")
	}
	delete(r.fields, id)
	return nil
}

// memAdminRepo is an in-memory AdminRepository.
type memAdminRepo struct {
	mu     sync.Mutex
	admins map[uuid.UUID]models.AdminUser
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{admins: map[uuid.UUID]models.AdminUser{}}
}

func (r *memAdminRepo) GetByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, errs.NotFound("admin")
}

func (r *memAdminRepo) GetByID(_ context.Context, id uuid.UUID) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return nil, errs.NotFound("admin")
	}
	return &a, nil
}

func (r *memAdminRepo) Create(_ context.Context, a *models.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.New()
	r.admins[a.ID] = *a
	return nil
}

func (r *memAdminRepo) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return errs.NotFound("admin")
	}
	now := time.Now()
	a.LastLoginAt = &now
	r.admins[id] = a
	return nil
}
