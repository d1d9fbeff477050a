// internal/services/assets.go
package services

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

const mib = 1024 * 1024

type AssetRule struct {
	AllowedTypes []string
	MaxBytes     int64
}

var AssetRules = map[models.AssetKind]AssetRule{
	models.AssetKindImage: {
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
		MaxBytes:     10 * mib,
	},
	models.AssetKindVideo: {
		AllowedTypes: []string{"video/mp4", "video/webm", "video/ogg", "video/avi", "video/mov"},
		MaxBytes:     100 * mib,
	},
	models.AssetKindPDF: {
		AllowedTypes: []string{"application/pdf"},
		MaxBytes:     40 * mib,
	},
}

var mimeExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"image/gif":       "gif",
	"video/mp4":       "mp4",
	"video/webm":      "webm",
	"video/ogg":       "ogg",
	"video/avi":       "avi",
	"video/mov":       "mov",
	"application/pdf": "pdf",
}

// ValidateAsset checks a payload's MIME type and size against the rule for its class.
func ValidateAsset(kind models.AssetKind, mimeType string, size int64) error {
	rule, ok := AssetRules[kind]
	if !ok {
		return errs.Validation("unknown asset class %q", kind)
	}

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	allowed := false
	for _, t := range rule.AllowedTypes {
		if t == mimeType {
			allowed = true
			break
		}
	}
	if !allowed {
		return errs.Validation("%s type %q is not allowed (allowed: %s, max %d MiB)",
			kind, mimeType, strings.Join(rule.AllowedTypes, ", "), rule.MaxBytes/mib)
	}

	if size <= 0 {
		return errs.Validation("%s is empty", kind)
	}
	if size > rule.MaxBytes {
		return errs.Validation("%s is %.1f MiB, larger than the %d MiB limit (allowed: %s)",
			kind, float64(size)/mib, rule.MaxBytes/mib, strings.Join(rule.AllowedTypes, ", "))
	}

	return nil
}

// ExtensionForMime returns the file extension used when storing a payload of the given type.
func ExtensionForMime(mimeType string) string {
	if ext, ok := mimeExtensions[strings.ToLower(mimeType)]; ok {
		return ext
	}
	return "bin"
}

// AssetPayload is raw asset content supplied by a caller.
type AssetPayload struct {
	Data     []byte
	MimeType string
	Filename string
}

func (p *AssetPayload) Size() int64 {
	return int64(len(p.Data))
}

// PayloadFromDataURL decodes an inline data URL into a payload.
func PayloadFromDataURL(raw, filename string) (*AssetPayload, error) {
	mimeType, data, err := utils.DecodeDataURL(raw)
	if err != nil {
		return nil, errs.Validation("%v", err)
	}
	return &AssetPayload{Data: data, MimeType: mimeType, Filename: filename}, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
var hyphenRuns = regexp.MustCompile(`-+`)

// FileNamer builds storage file names. Now and Token are injectable so that names
// are reproducible in tests.
type FileNamer struct {
	Now   func() time.Time
	Token func(n int) string
}

func NewFileNamer() *FileNamer {
	return &FileNamer{Now: time.Now, Token: utils.RandomToken}
}

func (n *FileNamer) millis() string {
	return strconv.FormatInt(n.Now().UnixMilli(), 10)
}

// UniqueFileName returns {prefix}{millis}-{token6}-{base}.{ext} for an original file name.
func (n *FileNamer) UniqueFileName(original, prefix string) string {
	base, ext := splitExt(path.Base(strings.ReplaceAll(original, "\\", "/")))
	name := fmt.Sprintf("%s%s-%s-%s", prefix, n.millis(), n.Token(6), base)
	if ext != "" {
		name += "." + ext
	}
	return name
}

// SEOFileName returns {slug}-{principal|NN}-{millis}.{ext}.
func (n *FileNamer) SEOFileName(ext, slug string, index int, principal bool) string {
	suffix := fmt.Sprintf("%02d", index)
	if principal {
		suffix = "principal"
	}
	return fmt.Sprintf("%s-%s-%s.%s", cleanSlug(slug), suffix, n.millis(), strings.ToLower(ext))
}

func (n *FileNamer) PDFFileName(slug string) string {
	return fmt.Sprintf("%s-ficha-tecnica-%s.pdf", cleanSlug(slug), n.millis())
}

func (n *FileNamer) ReviewImageName(author, title, ext string) string {
	return fmt.Sprintf("review-%s-%s-%s-%s.%s",
		utils.GenerateSlug(author), utils.GenerateSlug(title), n.millis(), n.Token(6), strings.ToLower(ext))
}

// WithCollisionSuffix appends -{millis}-{token4} before the extension.
func (n *FileNamer) WithCollisionSuffix(name string) string {
	base, ext := splitExt(name)
	out := fmt.Sprintf("%s-%s-%s", base, n.millis(), n.Token(4))
	if ext != "" {
		out += "." + ext
	}
	return out
}

func cleanSlug(slug string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(slug), "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func splitExt(name string) (string, string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i+1:]
}
