// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/i18n"
	"github.com/javajoker/machinery-catalog/internal/services"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

// respondError maps a service error onto the response envelope. resource names
// the entity for not-found messages ("product", "review", ...).
func respondError(c *gin.Context, err error, resource string) {
	respondErrorWith(c, err, resource, nil)
}

// respondErrorWith adds partial data, such as a product whose images failed, to
// asset failure responses.
func respondErrorWith(c *gin.Context, err error, resource string, partial interface{}) {
	lang := utils.GetLangFromContext(c)

	var batchErr *errs.BatchError
	var assetErr *errs.AssetError

	switch {
	case errors.Is(err, errs.ErrValidationFailed):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrAccountDisabled):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthAccountDisabled))
	case errors.Is(err, errs.ErrNotFound):
		utils.NotFoundResponse(c, resource)
	case errors.Is(err, errs.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	case errors.As(err, &batchErr):
		details := gin.H{
			"applied":     batchErr.Applied,
			"rolled_back": batchErr.RolledBack,
			"consistent":  batchErr.Consistent(),
			"cause":       batchErr.Cause.Error(),
		}
		if partial != nil {
			details["data"] = partial
		}
		code, key := "ASSET_BATCH_ABORTED", i18n.KeyAssetsBatchAborted
		if !batchErr.Consistent() {
			code, key = "ASSET_BATCH_INCONSISTENT", i18n.KeyAssetsPartialFailure
		}
		utils.BadGatewayResponse(c, code, i18n.T(lang, key), details)
	case errors.As(err, &assetErr):
		details := gin.H{"position": assetErr.Position, "filename": assetErr.Filename, "cause": err.Error()}
		if partial != nil {
			details["data"] = partial
		}
		code := "ASSET_UPLOAD_FAILED"
		if errors.Is(err, errs.ErrRecordWriteFailed) {
			code = "ASSET_RECORD_FAILED"
		}
		utils.BadGatewayResponse(c, code, i18n.T(lang, i18n.KeyFileUploadFailed), details)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"path":     c.Request.URL.Path,
			"resource": resource,
		}).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	}
}
