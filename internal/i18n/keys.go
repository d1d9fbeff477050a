// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthAccountDisabled    = "auth.account_disabled"

	// Products
	KeyProductCreated  = "product.created"
	KeyProductUpdated  = "product.updated"
	KeyProductDeleted  = "product.deleted"
	KeyProductNotFound = "product.not_found"
	KeyProductConflict = "product.conflict"

	// Product assets
	KeyImageNotFound        = "image.not_found"
	KeyImageDeleted         = "image.deleted"
	KeyVideoNotFound        = "video.not_found"
	KeyAssetsPartialFailure = "assets.partial_failure"
	KeyAssetsBatchAborted   = "assets.batch_aborted"

	// Reviews
	KeyReviewCreated  = "review.created"
	KeyReviewUpdated  = "review.updated"
	KeyReviewDeleted  = "review.deleted"
	KeyReviewNotFound = "review.not_found"

	// Categories
	KeyCategoryNotFound    = "category.not_found"
	KeySubcategoryNotFound = "subcategory.not_found"
	KeyFieldNotFound       = "field.not_found"
	KeyCategoryConflict    = "category.conflict"

	// Back office
	KeyIssueNotFound = "issue.not_found"
	KeyAdminNotFound = "admin.not_found"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// File Upload
	KeyFileUploadFailed = "file.upload_failed"
	KeyFileInvalidType  = "file.invalid_type"
	KeyFileTooLarge     = "file.too_large"

	// Rate limiting
	KeyRateLimited = "rate.limited"
)
