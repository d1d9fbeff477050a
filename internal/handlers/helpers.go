// internal/handlers/helpers.go
package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/machinery-catalog/internal/i18n"
	"github.com/javajoker/machinery-catalog/internal/services"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, name), nil)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil {
		return v
	}
	return fallback
}

func queryBool(c *gin.Context, name string) *bool {
	if v, err := strconv.ParseBool(c.Query(name)); err == nil {
		return &v
	}
	return nil
}

func queryFloat(c *gin.Context, name string) *float64 {
	if v, err := strconv.ParseFloat(c.Query(name), 64); err == nil {
		return &v
	}
	return nil
}

func queryUUID(c *gin.Context, name string) *uuid.UUID {
	if v, err := uuid.Parse(c.Query(name)); err == nil {
		return &v
	}
	return nil
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// FileUpload is the JSON form of a single file: an inline data URL.
type FileUpload struct {
	DataURL  string `json:"data_url" binding:"required"`
	Filename string `json:"filename,omitempty"`
	Title    string `json:"title,omitempty"`
}

// readUpload accepts a file either as multipart field "file" or as a JSON
// FileUpload. The returned title comes from the "title" form field or JSON key.
func readUpload(c *gin.Context) (*services.AssetPayload, string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("file is required: %w", err)
		}
		f, err := header.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", err
		}

		mimeType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType, _, _ = mime.ParseMediaType(http.DetectContentType(data))
		}
		return &services.AssetPayload{Data: data, MimeType: mimeType, Filename: header.Filename}, c.PostForm("title"), nil
	}

	var upload FileUpload
	if err := c.ShouldBindJSON(&upload); err != nil {
		return nil, "", err
	}
	payload, err := services.PayloadFromDataURL(upload.DataURL, upload.Filename)
	if err != nil {
		return nil, "", err
	}
	return payload, upload.Title, nil
}
