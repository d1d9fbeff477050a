// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/javajoker/machinery-catalog/internal/config"
	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

const (
	defaultFeaturedLimit = 8
	defaultRelatedLimit  = 4
)

// AttributeSchema resolves the dynamic attribute fields of a category.
type AttributeSchema interface {
	Fields(ctx context.Context, categoryID uuid.UUID) ([]models.CategoryField, error)
	ValidateAttributes(ctx context.Context, categoryID uuid.UUID, attrs map[string]interface{}) (models.JSONB, error)
}

type ProductService struct {
	products   ProductRepository
	images     ProductImageRepository
	schema     AttributeSchema
	slugs      *SlugService
	reconciler *AssetReconciler
	storage    ObjectStorage
	namer      *FileNamer
	comp       *compensator
	buckets    config.StorageConfig
}

type CreateProductRequest struct {
	CategoryID        uuid.UUID              `json:"category_id" validate:"required"`
	SubcategoryID     *uuid.UUID             `json:"subcategory_id,omitempty"`
	Title             string                 `json:"title" validate:"required,min=3,max=255"`
	Slug              string                 `json:"slug,omitempty" validate:"slug"`
	Brand             string                 `json:"brand,omitempty" validate:"max=120"`
	Condition         string                 `json:"condition,omitempty" validate:"max=50"`
	Model             string                 `json:"model,omitempty" validate:"max=120"`
	ShortDescription  string                 `json:"short_description,omitempty"`
	Price             float64                `json:"price" validate:"gte=0"`
	DynamicAttributes map[string]interface{} `json:"dynamic_attributes,omitempty"`
	Active            *bool                  `json:"active,omitempty"`
	Featured          bool                   `json:"featured,omitempty"`
}

// UpdateProductRequest is a partial update: nil fields are left unchanged.
type UpdateProductRequest struct {
	CategoryID        *uuid.UUID             `json:"category_id,omitempty"`
	SubcategoryID     *uuid.UUID             `json:"subcategory_id,omitempty"`
	Title             *string                `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Slug              *string                `json:"slug,omitempty" validate:"omitempty,slug"`
	Brand             *string                `json:"brand,omitempty" validate:"omitempty,max=120"`
	Condition         *string                `json:"condition,omitempty" validate:"omitempty,max=50"`
	Model             *string                `json:"model,omitempty" validate:"omitempty,max=120"`
	ShortDescription  *string                `json:"short_description,omitempty"`
	Price             *float64               `json:"price,omitempty" validate:"omitempty,gte=0"`
	DynamicAttributes map[string]interface{} `json:"dynamic_attributes,omitempty"`
	Active            *bool                  `json:"active,omitempty"`
	Featured          *bool                  `json:"featured,omitempty"`
}

// ImageInput is the wire form of an AssetDescriptor: either the id of an
// existing image or an inline data URL.
type ImageInput struct {
	ID       *uuid.UUID `json:"id,omitempty"`
	DataURL  string     `json:"data_url,omitempty"`
	Filename string     `json:"filename,omitempty"`
}

// DescriptorsFromInputs decodes wire images into reconciliation targets. The
// result is never nil, so an empty input list still means "no images".
func DescriptorsFromInputs(inputs []ImageInput) ([]AssetDescriptor, error) {
	out := make([]AssetDescriptor, 0, len(inputs))
	for i, in := range inputs {
		d := AssetDescriptor{ExistingID: in.ID}
		if in.DataURL != "" {
			payload, err := PayloadFromDataURL(in.DataURL, in.Filename)
			if err != nil {
				return nil, fmt.Errorf("image %d: %w", i+1, err)
			}
			d.Payload = payload
		}
		out = append(out, d)
	}
	return out, nil
}

func NewProductService(products ProductRepository, images ProductImageRepository, schema AttributeSchema, storage ObjectStorage, issues IssueLog, cfg config.StorageConfig) *ProductService {
	namer := NewFileNamer()
	return &ProductService{
		products:   products,
		images:     images,
		schema:     schema,
		slugs:      NewSlugService(products),
		reconciler: NewAssetReconciler(images, storage, issues, namer, cfg.ImagesBucket, cfg.MaxAttempts),
		storage:    storage,
		namer:      namer,
		comp:       newCompensator(storage, issues, cfg.MaxAttempts),
		buckets:    cfg,
	}
}

// CreateProduct inserts a product and uploads its images. When the product row
// was written but the images failed, the product is returned together with the error.
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest, images []AssetDescriptor) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidationFailed, err)
	}
	if err := validateTargets(images); err != nil {
		return nil, err
	}

	attrs, err := s.schema.ValidateAttributes(ctx, req.CategoryID, req.DynamicAttributes)
	if err != nil {
		return nil, err
	}

	slugSource := req.Slug
	if slugSource == "" {
		slugSource = req.Title
	}

	product := &models.Product{
		CategoryID:        req.CategoryID,
		SubcategoryID:     req.SubcategoryID,
		Title:             strings.TrimSpace(req.Title),
		Brand:             req.Brand,
		Condition:         req.Condition,
		Model:             req.Model,
		ShortDescription:  req.ShortDescription,
		Price:             req.Price,
		DynamicAttributes: attrs,
		Active:            req.Active == nil || *req.Active,
		Featured:          req.Featured,
	}

	if err := s.insertWithUniqueSlug(ctx, product, slugSource); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"slug":       product.Slug,
		"images":     len(images),
	}).Info("Product created")

	if len(images) > 0 {
		if _, err := s.reconciler.Reconcile(ctx, product, images); err != nil {
			return s.refetchAfterFailure(ctx, product), err
		}
	}

	return s.GetProduct(ctx, product.ID)
}

// insertWithUniqueSlug resolves a slug and inserts. A unique-index rejection
// means another writer took the slug between check and insert; one retry
// resolves against the now-visible row.
func (s *ProductService) insertWithUniqueSlug(ctx context.Context, product *models.Product, slugSource string) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		product.Slug = s.resolveSlug(ctx, slugSource, nil)
		if err = s.products.Create(ctx, product); err == nil {
			return nil
		}
		if !errors.Is(err, errs.ErrConflict) {
			return &errs.RepositoryError{Op: "create product", Err: err}
		}
	}
	return fmt.Errorf("slug %q: %w", product.Slug, err)
}

// resolveSlug ignores ErrSlugResolutionDegraded: the fallback slug is usable
// and the degradation is already logged.
func (s *ProductService) resolveSlug(ctx context.Context, text string, excludeID *uuid.UUID) string {
	slug, _ := s.slugs.GenerateUniqueSlug(ctx, text, excludeID)
	return slug
}

func (s *ProductService) refetchAfterFailure(ctx context.Context, product *models.Product) *models.Product {
	if p, err := s.GetProduct(ctx, product.ID); err == nil {
		return p
	}
	return product
}

// UpdateProduct applies a partial update. A nil images slice leaves images
// untouched; a non-nil one (even empty) is reconciled.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest, images []AssetDescriptor) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidationFailed, err)
	}
	if images != nil {
		if err := validateTargets(images); err != nil {
			return nil, err
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	categoryID := product.CategoryID
	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		categoryID = *req.CategoryID
		updates["category_id"] = categoryID
		if req.SubcategoryID == nil {
			updates["subcategory_id"] = (*uuid.UUID)(nil)
		}
	}
	if req.SubcategoryID != nil {
		updates["subcategory_id"] = req.SubcategoryID
	}

	if req.DynamicAttributes != nil || categoryID != product.CategoryID {
		attrs := req.DynamicAttributes
		if attrs == nil {
			attrs = product.DynamicAttributes
		}
		validated, err := s.schema.ValidateAttributes(ctx, categoryID, attrs)
		if err != nil {
			return nil, err
		}
		updates["dynamic_attributes"] = validated
	}

	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Condition != nil {
		updates["condition"] = *req.Condition
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.ShortDescription != nil {
		updates["short_description"] = *req.ShortDescription
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}

	slugSource := ""
	switch {
	case req.Slug != nil && *req.Slug != "":
		if *req.Slug != product.Slug {
			slugSource = *req.Slug
		}
	case req.Title != nil:
		slugSource = *req.Title
	}
	if slugSource != "" {
		updates["slug"] = s.resolveSlug(ctx, slugSource, &id)
	}

	if len(updates) > 0 {
		err := s.products.Update(ctx, id, updates)
		if errors.Is(err, errs.ErrConflict) && slugSource != "" {
			updates["slug"] = s.resolveSlug(ctx, slugSource, &id)
			err = s.products.Update(ctx, id, updates)
		}
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrConflict) {
				return nil, err
			}
			return nil, &errs.RepositoryError{Op: "update product", Err: err}
		}
		if slug, ok := updates["slug"].(string); ok {
			product.Slug = slug
		}
	}

	if images != nil {
		if _, err := s.reconciler.Reconcile(ctx, product, images); err != nil {
			return s.refetchAfterFailure(ctx, product), err
		}
	}

	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product and, best-effort, every object it owns. Only
// the final product delete can fail the call.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{"product_id": id, "slug": product.Slug})
	fields := logrus.Fields{"product_id": id}

	images, err := s.images.ListByProduct(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to list product images for deletion")
	}
	byBucket := make(map[string][]string)
	for _, img := range images {
		bucket := img.BucketName
		if bucket == "" {
			bucket = s.buckets.ImagesBucket
		}
		byBucket[bucket] = append(byBucket[bucket], img.StoragePath)
	}

	// objects left in the product folder by earlier failures
	if folder := cleanSlug(product.Slug); folder != "" {
		leftovers, err := s.storage.List(ctx, s.buckets.ImagesBucket, folder+"/")
		if err != nil {
			log.WithError(err).Warn("Failed to list product folder")
		}
		leftovers, err = s.unclaimedPaths(ctx, id, leftovers)
		if err != nil {
			log.WithError(err).Warn("Failed to check product folder ownership, keeping leftovers")
		}
		byBucket[s.buckets.ImagesBucket] = appendMissing(byBucket[s.buckets.ImagesBucket], leftovers...)
	}

	for bucket, paths := range byBucket {
		deleteLogged(ctx, s.storage, bucket, paths, fields)
	}

	var videoPaths []string
	for _, v := range product.Videos {
		if v.IsUploaded() {
			videoPaths = append(videoPaths, v.StoragePath)
		}
	}
	deleteLogged(ctx, s.storage, s.buckets.VideosBucket, videoPaths, fields)

	if product.PDFPath != nil && *product.PDFPath != "" {
		deleteLogged(ctx, s.storage, s.buckets.PDFsBucket, []string{*product.PDFPath}, fields)
	}

	if n, err := s.images.DeleteByProduct(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to delete product image records")
	} else {
		log.WithField("images", n).Debug("Deleted product image records")
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return err
		}
		return &errs.RepositoryError{Op: "delete product", Err: err}
	}

	log.Info("Product deleted")
	return nil
}

// unclaimedPaths drops the paths still referenced by another product's image
// records. A renamed product keeps its images under its old slug folder, and a
// new product may later reuse that slug.
func (s *ProductService) unclaimedPaths(ctx context.Context, productID uuid.UUID, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	owned, err := s.images.ListByPaths(ctx, paths)
	if err != nil {
		return nil, err
	}
	claimed := make(map[string]bool, len(owned))
	for _, img := range owned {
		if img.ProductID != productID {
			claimed[img.StoragePath] = true
		}
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !claimed[p] {
			out = append(out, p)
		}
	}
	return out, nil
}

func appendMissing(list []string, values ...string) []string {
	seen := make(map[string]bool, len(list))
	for _, v := range list {
		seen[v] = true
	}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			list = append(list, v)
		}
	}
	return list
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withAssets(ctx, product)
}

func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.withAssets(ctx, product)
}

func (s *ProductService) withAssets(ctx context.Context, product *models.Product) (*models.Product, error) {
	images, err := s.images.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, &errs.RepositoryError{Op: "list product images", Err: err}
	}
	product.Images = s.withImageURLs(images)
	s.resolveAssetURLs(product)
	return product, nil
}

func (s *ProductService) resolveAssetURLs(product *models.Product) {
	if product.PDFPath != nil && *product.PDFPath != "" {
		product.PDFURL = s.storage.PublicURL(s.buckets.PDFsBucket, *product.PDFPath, false)
	}
}

func (s *ProductService) withImageURLs(images []models.ProductImage) []models.ProductImage {
	for i := range images {
		bucket := images[i].BucketName
		if bucket == "" {
			bucket = s.buckets.ImagesBucket
		}
		images[i].PublicURL = s.storage.PublicURL(bucket, images[i].StoragePath, false)
	}
	return images
}

// attachImages loads the images of a page of products in one query.
func (s *ProductService) attachImages(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	images, err := s.images.ListByProducts(ctx, ids)
	if err != nil {
		return &errs.RepositoryError{Op: "list product images", Err: err}
	}

	grouped := make(map[uuid.UUID][]models.ProductImage, len(products))
	for _, img := range s.withImageURLs(images) {
		grouped[img.ProductID] = append(grouped[img.ProductID], img)
	}
	for i := range products {
		products[i].Images = grouped[products[i].ID]
		s.resolveAssetURLs(&products[i])
	}
	return nil
}

func (s *ProductService) SearchProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	params := utils.NormalizePagination(utils.PaginationParams{
		Page:  filter.Page,
		Limit: filter.Limit,
		Sort:  filter.Sort,
		Order: filter.Order,
	}, utils.DefaultProductPageSize)
	filter.Page, filter.Limit, filter.Sort, filter.Order = params.Page, params.Limit, params.Sort, params.Order
	filter.Search = strings.TrimSpace(filter.Search)

	products, total, err := s.products.Search(ctx, filter)
	if err != nil {
		return nil, 0, &errs.RepositoryError{Op: "search products", Err: err}
	}
	if err := s.attachImages(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetFeaturedProducts lists the newest products that have a principal image.
func (s *ProductService) GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	products, err := s.products.WithPrincipalImage(ctx, nil, nil, limit)
	if err != nil {
		return nil, &errs.RepositoryError{Op: "featured products", Err: err}
	}
	if err := s.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetRelatedProducts lists products of the same category as id, excluding it.
func (s *ProductService) GetRelatedProducts(ctx context.Context, id uuid.UUID, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = defaultRelatedLimit
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.products.WithPrincipalImage(ctx, &product.CategoryID, &id, limit)
	if err != nil {
		return nil, &errs.RepositoryError{Op: "related products", Err: err}
	}
	if err := s.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductService) ListImages(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	images, err := s.images.ListByProduct(ctx, productID)
	if err != nil {
		return nil, &errs.RepositoryError{Op: "list product images", Err: err}
	}
	return s.withImageURLs(images), nil
}

// DeleteImage removes one image and renumbers the rest, so positions stay
// contiguous and the new first image becomes principal.
func (s *ProductService) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) ([]models.ProductImage, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	current, err := s.images.ListByProduct(ctx, productID)
	if err != nil {
		return nil, &errs.RepositoryError{Op: "list product images", Err: err}
	}

	targets := make([]AssetDescriptor, 0, len(current))
	found := false
	for _, img := range current {
		if img.ID == imageID {
			found = true
			continue
		}
		targets = append(targets, ExistingAsset(img.ID))
	}
	if !found {
		return nil, errs.NotFound("image")
	}

	images, err := s.reconciler.Reconcile(ctx, product, targets)
	if err != nil {
		return nil, err
	}
	return s.withImageURLs(images), nil
}

// UploadVideo stores a video file and appends it to the product's video list.
func (s *ProductService) UploadVideo(ctx context.Context, productID uuid.UUID, payload *AssetPayload, title string) (*models.Product, error) {
	if payload == nil {
		return nil, errs.Validation("video payload is required")
	}
	if err := ValidateAsset(models.AssetKindVideo, payload.MimeType, payload.Size()); err != nil {
		return nil, &errs.AssetError{Kind: errs.ErrValidationFailed, Filename: payload.Filename, Err: err}
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	original := payload.Filename
	if original == "" {
		original = "video." + ExtensionForMime(payload.MimeType)
	}
	path := cleanSlug(product.Slug) + "/" + s.namer.UniqueFileName(original, "video-"+productID.String()+"-")

	bucket := s.buckets.VideosBucket
	storedPath, err := s.storage.Upload(ctx, bucket, path, payload.Data, payload.MimeType, false)
	if err != nil {
		return nil, &errs.AssetError{Kind: errs.ErrUploadFailed, Filename: payload.Filename, Err: err}
	}

	if title == "" {
		title = product.Title
	}
	video := models.Video{
		Title:       title,
		URL:         s.storage.PublicURL(bucket, storedPath, false),
		StoragePath: storedPath,
		Provider:    models.VideoProviderUpload,
		MimeType:    payload.MimeType,
		FileSize:    payload.Size(),
	}
	videos := append(datatypes.JSONSlice[models.Video]{}, product.Videos...)
	videos = append(videos, video)

	if err := s.products.Update(ctx, productID, map[string]interface{}{"videos": videos}); err != nil {
		s.undoUpload(ctx, product, "undo_video_upload", bucket, storedPath, err)
		return nil, &errs.AssetError{Kind: errs.ErrRecordWriteFailed, Filename: payload.Filename, Err: err}
	}

	return s.GetProduct(ctx, productID)
}

// undoUpload deletes an object whose record write failed and reports it when
// the delete fails too.
func (s *ProductService) undoUpload(ctx context.Context, product *models.Product, op, bucket, path string, cause error) {
	if err := s.comp.deleteObjects(ctx, bucket, path); err != nil {
		s.comp.report(ctx, &models.ReconciliationIssue{
			EntityType: "product",
			EntityID:   product.ID,
			Operation:  op,
			Bucket:     bucket,
			Paths:      pq.StringArray{path},
			Error:      fmt.Sprintf("orphaned object after record write failure (%v): %v", cause, err),
		})
	}
}

// AddVideo appends an externally hosted video.
func (s *ProductService) AddVideo(ctx context.Context, productID uuid.UUID, video models.Video) (*models.Product, error) {
	u, err := url.Parse(strings.TrimSpace(video.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errs.Validation("video url %q is not an http(s) url", video.URL)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	video.URL = u.String()
	video.StoragePath = ""
	video.Provider = VideoProviderFor(u)
	if video.Title == "" {
		video.Title = product.Title
	}

	videos := append(datatypes.JSONSlice[models.Video]{}, product.Videos...)
	videos = append(videos, video)
	if err := s.products.Update(ctx, productID, map[string]interface{}{"videos": videos}); err != nil {
		return nil, &errs.RepositoryError{Op: "update product videos", Err: err}
	}
	return s.GetProduct(ctx, productID)
}

func VideoProviderFor(u *url.URL) models.VideoProvider {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case host == "youtube.com" || host == "youtu.be" || strings.HasSuffix(host, ".youtube.com"):
		return models.VideoProviderYouTube
	case host == "vimeo.com" || strings.HasSuffix(host, ".vimeo.com"):
		return models.VideoProviderVimeo
	}
	return models.VideoProviderExternal
}

// RemoveVideo drops the video at index (0-based). An uploaded file is deleted
// after the record no longer references it.
func (s *ProductService) RemoveVideo(ctx context.Context, productID uuid.UUID, index int) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(product.Videos) {
		return nil, errs.Validation("video index %d out of range (%d videos)", index, len(product.Videos))
	}

	removed := product.Videos[index]
	videos := append(datatypes.JSONSlice[models.Video]{}, product.Videos[:index]...)
	videos = append(videos, product.Videos[index+1:]...)

	if err := s.products.Update(ctx, productID, map[string]interface{}{"videos": videos}); err != nil {
		return nil, &errs.RepositoryError{Op: "update product videos", Err: err}
	}

	if removed.IsUploaded() {
		deleteLogged(ctx, s.storage, s.buckets.VideosBucket, []string{removed.StoragePath}, logrus.Fields{
			"product_id": productID,
		})
	}
	return s.GetProduct(ctx, productID)
}

// UploadPDF replaces the product's technical sheet. The previous file is
// deleted only after the record points at the new one.
func (s *ProductService) UploadPDF(ctx context.Context, productID uuid.UUID, payload *AssetPayload) (*models.Product, error) {
	if payload == nil {
		return nil, errs.Validation("pdf payload is required")
	}
	if err := ValidateAsset(models.AssetKindPDF, payload.MimeType, payload.Size()); err != nil {
		return nil, &errs.AssetError{Kind: errs.ErrValidationFailed, Filename: payload.Filename, Err: err}
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	bucket := s.buckets.PDFsBucket
	storedPath, err := s.storage.Upload(ctx, bucket, s.namer.PDFFileName(product.Slug), payload.Data, payload.MimeType, true)
	if err != nil {
		return nil, &errs.AssetError{Kind: errs.ErrUploadFailed, Filename: payload.Filename, Err: err}
	}

	if err := s.products.Update(ctx, productID, map[string]interface{}{"pdf_path": &storedPath}); err != nil {
		s.undoUpload(ctx, product, "undo_pdf_upload", bucket, storedPath, err)
		return nil, &errs.AssetError{Kind: errs.ErrRecordWriteFailed, Filename: payload.Filename, Err: err}
	}

	if product.PDFPath != nil && *product.PDFPath != "" && *product.PDFPath != storedPath {
		deleteLogged(ctx, s.storage, bucket, []string{*product.PDFPath}, logrus.Fields{"product_id": productID})
	}

	return s.GetProduct(ctx, productID)
}

func (s *ProductService) DeletePDF(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.PDFPath == nil || *product.PDFPath == "" {
		return s.withAssets(ctx, product)
	}

	if err := s.products.Update(ctx, productID, map[string]interface{}{"pdf_path": (*string)(nil)}); err != nil {
		return nil, &errs.RepositoryError{Op: "clear product pdf", Err: err}
	}
	deleteLogged(ctx, s.storage, s.buckets.PDFsBucket, []string{*product.PDFPath}, logrus.Fields{"product_id": productID})

	return s.GetProduct(ctx, productID)
}

// FormattedAttributes returns the product's dynamic attributes keyed by field
// label and formatted for display.
func (s *ProductService) FormattedAttributes(ctx context.Context, product *models.Product) (map[string]string, error) {
	fields, err := s.schema.Fields(ctx, product.CategoryID)
	if err != nil {
		return nil, err
	}
	return FormatDynamicAttributes(product, fields), nil
}
