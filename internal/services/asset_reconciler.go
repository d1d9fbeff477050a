// internal/services/asset_reconciler.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/metrics"
	"github.com/javajoker/machinery-catalog/internal/models"
)

// AssetDescriptor is one entry of a target image list: either a reference to an
// image the product already has, or a new payload to upload.
type AssetDescriptor struct {
	ExistingID *uuid.UUID
	Payload    *AssetPayload
}

func ExistingAsset(id uuid.UUID) AssetDescriptor {
	return AssetDescriptor{ExistingID: &id}
}

func NewAsset(payload *AssetPayload) AssetDescriptor {
	return AssetDescriptor{Payload: payload}
}

type AssetReconciler struct {
	images  ProductImageRepository
	storage ObjectStorage
	namer   *FileNamer
	comp    *compensator
	bucket  string
}

func NewAssetReconciler(images ProductImageRepository, storage ObjectStorage, issues IssueLog, namer *FileNamer, bucket string, attempts int) *AssetReconciler {
	return &AssetReconciler{
		images:  images,
		storage: storage,
		namer:   namer,
		comp:    newCompensator(storage, issues, attempts),
		bucket:  bucket,
	}
}

type appliedImage struct {
	recordID uuid.UUID
	path     string
}

// Reconcile converges the stored images of product to targets. Kept images take
// positions 1..k in target order, new images follow them. The call runs removal,
// addition and reorder in that order and returns the re-fetched image list.
//
// Payloads are validated before any storage or repository call. When an addition
// fails, images added earlier in the same call are rolled back and a
// *errs.BatchError is returned; removals already made are not restored.
func (r *AssetReconciler) Reconcile(ctx context.Context, product *models.Product, targets []AssetDescriptor) ([]models.ProductImage, error) {
	start := time.Now()
	images, outcome, err := r.reconcile(ctx, product, targets)
	metrics.AssetReconciliationDuration.Observe(time.Since(start).Seconds())
	metrics.AssetReconciliationsTotal.WithLabelValues(outcome).Inc()
	return images, err
}

func (r *AssetReconciler) reconcile(ctx context.Context, product *models.Product, targets []AssetDescriptor) ([]models.ProductImage, string, error) {
	if err := validateTargets(targets); err != nil {
		return nil, "invalid", err
	}

	current, err := r.images.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, "error", &errs.RepositoryError{Op: "list product images", Err: err}
	}

	keep, remove, add, err := partition(current, targets)
	if err != nil {
		return nil, "invalid", err
	}

	if len(remove) == 0 && len(add) == 0 && !needsReorder(current, keep) {
		return current, "unchanged", nil
	}

	log := logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"slug":       product.Slug,
		"keep":       len(keep),
		"remove":     len(remove),
		"add":        len(add),
	})
	log.Info("Reconciling product images")

	if err := r.removeImages(ctx, product, remove); err != nil {
		return nil, "failed", err
	}

	if err := r.addImages(ctx, product, len(keep), add); err != nil {
		var batch *errs.BatchError
		if errors.As(err, &batch) {
			log.WithError(err).WithField("consistent", batch.Consistent()).Warn("Image batch aborted")
			return nil, "aborted", err
		}
		return nil, "failed", err
	}

	r.reorderImages(ctx, keep, log)

	result, err := r.images.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, "error", &errs.RepositoryError{Op: "list product images", Err: err}
	}
	return result, "applied", nil
}

func validateTargets(targets []AssetDescriptor) error {
	existing := 0
	for _, t := range targets {
		if t.ExistingID != nil {
			existing++
		}
	}

	added := 0
	for i, t := range targets {
		switch {
		case t.ExistingID != nil && t.Payload != nil:
			return errs.Validation("image %d is both an existing reference and a new payload", i+1)
		case t.ExistingID == nil && t.Payload == nil:
			return errs.Validation("image %d carries neither an id nor a payload", i+1)
		case t.Payload != nil:
			added++
			if err := ValidateAsset(models.AssetKindImage, t.Payload.MimeType, t.Payload.Size()); err != nil {
				return &errs.AssetError{
					Kind:     errs.ErrValidationFailed,
					Position: existing + added,
					Filename: t.Payload.Filename,
					Err:      err,
				}
			}
		}
	}
	return nil
}

func partition(current []models.ProductImage, targets []AssetDescriptor) (keep, remove []models.ProductImage, add []*AssetPayload, err error) {
	byID := make(map[uuid.UUID]models.ProductImage, len(current))
	for _, img := range current {
		byID[img.ID] = img
	}

	seen := make(map[uuid.UUID]bool, len(targets))
	for _, t := range targets {
		if t.Payload != nil {
			add = append(add, t.Payload)
			continue
		}
		id := *t.ExistingID
		img, ok := byID[id]
		if !ok {
			return nil, nil, nil, errs.Validation("image %s does not belong to this product", id)
		}
		if seen[id] {
			return nil, nil, nil, errs.Validation("image %s is listed more than once", id)
		}
		seen[id] = true
		keep = append(keep, img)
	}

	for _, img := range current {
		if !seen[img.ID] {
			remove = append(remove, img)
		}
	}
	return keep, remove, add, nil
}

// needsReorder reports whether kept images must be renumbered: their relative
// order changed, or a stored position or principal flag no longer matches.
func needsReorder(current, keep []models.ProductImage) bool {
	for i, img := range keep {
		if img.Position != i+1 || img.Principal != (i == 0) {
			return true
		}
	}

	// current is ordered by position; compare the relative order of the kept subset
	rank := make(map[uuid.UUID]int, len(keep))
	for i, img := range keep {
		rank[img.ID] = i
	}
	last := -1
	for _, img := range current {
		r, ok := rank[img.ID]
		if !ok {
			continue
		}
		if r < last {
			return true
		}
		last = r
	}
	return false
}

func (r *AssetReconciler) removeImages(ctx context.Context, product *models.Product, remove []models.ProductImage) error {
	for _, img := range remove {
		bucket := img.BucketName
		if bucket == "" {
			bucket = r.bucket
		}
		deleteLogged(ctx, r.storage, bucket, []string{img.StoragePath}, logrus.Fields{
			"product_id": product.ID,
			"image_id":   img.ID,
		})

		if err := r.images.Delete(ctx, img.ID); err != nil && !errors.Is(err, errs.ErrNotFound) {
			r.comp.report(ctx, &models.ReconciliationIssue{
				EntityType: "product",
				EntityID:   product.ID,
				Operation:  "remove_image",
				Bucket:     bucket,
				Paths:      pq.StringArray{img.StoragePath},
				RecordIDs:  pq.StringArray{img.ID.String()},
				Error:      fmt.Sprintf("record may reference a deleted object: %v", err),
			})
			return &errs.AssetError{Kind: errs.ErrRecordWriteFailed, Position: img.Position, Filename: img.Filename, Err: err}
		}
	}
	return nil
}

func (r *AssetReconciler) addImages(ctx context.Context, product *models.Product, keepCount int, add []*AssetPayload) error {
	var applied []appliedImage

	for i, payload := range add {
		position := keepCount + i + 1
		principal := position == 1
		filename := r.namer.SEOFileName(ExtensionForMime(payload.MimeType), product.Slug, position, principal)
		path := cleanSlug(product.Slug) + "/" + filename

		storedPath, err := r.storage.Upload(ctx, r.bucket, path, payload.Data, payload.MimeType, true)
		if err != nil {
			cause := &errs.AssetError{Kind: errs.ErrUploadFailed, Position: position, Filename: payload.Filename, Err: err}
			return r.abort(ctx, product, applied, cause)
		}

		record := &models.ProductImage{
			ProductID:   product.ID,
			StoragePath: storedPath,
			BucketName:  r.bucket,
			Filename:    filename,
			FileSize:    payload.Size(),
			MimeType:    payload.MimeType,
			Position:    position,
			Principal:   principal,
		}
		if err := r.images.Create(ctx, record); err != nil {
			if cerr := r.comp.deleteObjects(ctx, r.bucket, storedPath); cerr != nil {
				r.comp.report(ctx, &models.ReconciliationIssue{
					EntityType: "product",
					EntityID:   product.ID,
					Operation:  "undo_image_upload",
					Bucket:     r.bucket,
					Paths:      pq.StringArray{storedPath},
					Error:      fmt.Sprintf("orphaned object after record write failure (%v): %v", err, cerr),
				})
			}
			cause := &errs.AssetError{Kind: errs.ErrRecordWriteFailed, Position: position, Filename: payload.Filename, Err: err}
			return r.abort(ctx, product, applied, cause)
		}

		applied = append(applied, appliedImage{recordID: record.ID, path: storedPath})
	}

	return nil
}

// abort rolls back the images added earlier in this call, newest first.
func (r *AssetReconciler) abort(ctx context.Context, product *models.Product, applied []appliedImage, cause error) error {
	if len(applied) == 0 {
		return cause
	}

	batch := &errs.BatchError{Cause: cause, Applied: len(applied)}
	var leftPaths, leftRecords []string

	for i := len(applied) - 1; i >= 0; i-- {
		a := applied[i]

		recErr := r.comp.retry(ctx, "delete_record", func(ctx context.Context) error {
			return r.images.Delete(ctx, a.recordID)
		})
		if recErr != nil {
			// keep the object so the surviving record still resolves
			batch.RollbackErrs = append(batch.RollbackErrs, fmt.Errorf("image record %s: %w", a.recordID, recErr))
			leftRecords = append(leftRecords, a.recordID.String())
			leftPaths = append(leftPaths, a.path)
			continue
		}

		if objErr := r.comp.deleteObjects(ctx, r.bucket, a.path); objErr != nil {
			batch.RollbackErrs = append(batch.RollbackErrs, fmt.Errorf("object %s: %w", a.path, objErr))
			leftPaths = append(leftPaths, a.path)
			continue
		}
		batch.RolledBack++
	}

	if !batch.Consistent() {
		r.comp.report(ctx, &models.ReconciliationIssue{
			EntityType: "product",
			EntityID:   product.ID,
			Operation:  "rollback_image_batch",
			Bucket:     r.bucket,
			Paths:      leftPaths,
			RecordIDs:  leftRecords,
			Error:      batch.Error(),
			Details: models.JSONB{
				"applied":     batch.Applied,
				"rolled_back": batch.RolledBack,
			},
		})
	}

	return batch
}

func (r *AssetReconciler) reorderImages(ctx context.Context, keep []models.ProductImage, log *logrus.Entry) {
	for i, img := range keep {
		position, principal := i+1, i == 0
		if img.Position == position && img.Principal == principal {
			continue
		}
		if err := r.images.UpdatePosition(ctx, img.ID, position, principal); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"image_id": img.ID,
				"position": position,
			}).Warn("Failed to update image position")
		}
	}
}
