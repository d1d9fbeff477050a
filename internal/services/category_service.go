// internal/services/category_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/metrics"
	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

const defaultSchemaTTL = 30 * time.Minute

// CategoryService owns categories, subcategories and the dynamic attribute
// schema of each category. Field lists are cached in Redis when a client is set.
type CategoryService struct {
	repo      CategoryRepository
	redis     *redis.Client
	ttl       time.Duration
	keyPrefix string
}

type CategoryRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=120"`
	Icon      string `json:"icon,omitempty" validate:"max=50"`
	SortOrder int    `json:"sort_order"`
}

type SubcategoryRequest struct {
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
	Name       string    `json:"name" validate:"required,min=2,max=120"`
}

type FieldRequest struct {
	FieldName string           `json:"field_name,omitempty" validate:"max=100"`
	Label     string           `json:"label" validate:"required,max=255"`
	Type      models.FieldType `json:"type" validate:"required,oneof=text textarea number currency date boolean image iframe"`
	Required  bool             `json:"required"`
	Position  int              `json:"orden" validate:"gte=0"`
}

func NewCategoryService(repo CategoryRepository, redisClient *redis.Client, ttl time.Duration, keyPrefix string) *CategoryService {
	if ttl <= 0 {
		ttl = defaultSchemaTTL
	}
	return &CategoryService{repo: repo, redis: redisClient, ttl: ttl, keyPrefix: keyPrefix}
}

func (s *CategoryService) fieldsKey(categoryID uuid.UUID) string {
	return fmt.Sprintf("%scategory:fields:%s", s.keyPrefix, categoryID)
}

func (s *CategoryService) invalidate(ctx context.Context, categoryID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(context.WithoutCancel(ctx), s.fieldsKey(categoryID)).Err(); err != nil {
		logrus.WithError(err).WithField("category_id", categoryID).Warn("Failed to invalidate category schema cache")
	}
}

// ListCategories returns every category with its subcategories and fields.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, &errs.RepositoryError{Op: "list categories", Err: err}
	}
	return categories, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *CategoryService) CreateCategory(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidationFailed, err)
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, nil); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name, Icon: req.Icon, SortOrder: req.SortOrder}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string, excludeID *uuid.UUID) error {
	existing, err := s.repo.GetCategoryByName(ctx, name)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return nil
	case err != nil:
		return &errs.RepositoryError{Op: "find category", Err: err}
	case excludeID != nil && existing.ID == *excludeID:
		return nil
	}
	return fmt.Errorf("category %q: %w", name, errs.ErrConflict)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidationFailed, err)
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, &id); err != nil {
		return nil, err
	}

	err := s.repo.UpdateCategory(ctx, id, map[string]interface{}{
		"name":       name,
		"icon":       req.Icon,
		"sort_order": req.SortOrder,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetCategory(ctx, id)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CategoryService) ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]models.Subcategory, error) {
	subs, err := s.repo.ListSubcategories(ctx, categoryID)
	if err != nil {
		return nil, &errs.RepositoryError{Op: "list subcategories", Err: err}
	}
	return subs, nil
}

func (s *CategoryService) CreateSubcategory(ctx context.Context, req *SubcategoryRequest) (*models.Subcategory, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidationFailed, err)
	}
	if _, err := s.repo.GetCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	sub := &models.Subcategory{CategoryID: req.CategoryID, Name: strings.TrimSpace(req.Name)}
	if err := s.repo.CreateSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *CategoryService) UpdateSubcategory(ctx context.Context, id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return errs.Validation("subcategory name is too short")
	}
	return s.repo.UpdateSubcategory(ctx, id, map[string]interface{}{"name": name})
}

func (s *CategoryService) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteSubcategory(ctx, id)
}

// Fields returns the dynamic attribute fields of a category ordered by position.
func (s *CategoryService) Fields(ctx context.Context, categoryID uuid.UUID) ([]models.CategoryField, error) {
	key := s.fieldsKey(categoryID)

	if s.redis != nil {
		raw, err := s.redis.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var fields []models.CategoryField
			if jerr := json.Unmarshal(raw, &fields); jerr == nil {
				metrics.SchemaCacheTotal.WithLabelValues("hit").Inc()
				return fields, nil
			}
		case !errors.Is(err, redis.Nil):
			logrus.WithError(err).WithField("category_id", categoryID).Warn("Category schema cache read failed")
		}
		metrics.SchemaCacheTotal.WithLabelValues("miss").Inc()
	}

	fields, err := s.repo.ListFields(ctx, categoryID)
	if err != nil {
		return nil, &errs.RepositoryError{Op: "list category fields", Err: err}
	}

	if s.redis != nil {
		if data, err := json.Marshal(fields); err == nil {
			if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
				logrus.WithError(err).WithField("category_id", categoryID).Warn("Category schema cache write failed")
			}
		}
	}
	return fields, nil
}

func (s *CategoryService) CreateField(ctx context.Context, categoryID uuid.UUID, req *FieldRequest) (*models.CategoryField, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidationFailed, err)
	}
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	name := req.FieldName
	if name == "" {
		name = FieldNameFromLabel(req.Label)
	}
	if name == "" {
		return nil, errs.Validation("field label %q yields an empty field name", req.Label)
	}

	existing, err := s.repo.ListFields(ctx, categoryID)
	if err != nil {
		return nil, &errs.RepositoryError{Op: "list category fields", Err: err}
	}
	for _, f := range existing {
		if f.FieldName == name {
			return nil, fmt.Errorf("field %q: %w", name, errs.ErrConflict)
		}
	}

	position := req.Position
	if position == 0 {
		position = len(existing) + 1
	}

	field := &models.CategoryField{
		CategoryID: categoryID,
		FieldName:  name,
		Label:      strings.TrimSpace(req.Label),
		Type:       req.Type,
		Required:   req.Required,
		Position:   position,
	}
	if err := s.repo.CreateField(ctx, field); err != nil {
		return nil, err
	}
	s.invalidate(ctx, categoryID)
	return field, nil
}

// UpdateField changes label, type, required flag and position. The field name
// is the key of stored product values and stays fixed.
func (s *CategoryService) UpdateField(ctx context.Context, id uuid.UUID, req *FieldRequest) (*models.CategoryField, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidationFailed, err)
	}
	field, err := s.repo.GetField(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"label":    strings.TrimSpace(req.Label),
		"type":     req.Type,
		"required": req.Required,
	}
	if req.Position > 0 {
		updates["orden"] = req.Position
	}
	if err := s.repo.UpdateField(ctx, id, updates); err != nil {
		return nil, err
	}
	s.invalidate(ctx, field.CategoryID)
	return s.repo.GetField(ctx, id)
}

func (s *CategoryService) DeleteField(ctx context.Context, id uuid.UUID) error {
	field, err := s.repo.GetField(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteField(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, field.CategoryID)
	return nil
}

// ValidateAttributes checks attrs against the schema of a category and returns
// the cleaned document: empty values are dropped and numeric strings become
// numbers. Keys that are not non-asset fields of the category are rejected.
func (s *CategoryService) ValidateAttributes(ctx context.Context, categoryID uuid.UUID, attrs map[string]interface{}) (models.JSONB, error) {
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.Validation("category %s does not exist", categoryID)
		}
		return nil, &errs.RepositoryError{Op: "get category", Err: err}
	}

	fields, err := s.Fields(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return checkAttributes(fields, attrs)
}

func checkAttributes(fields []models.CategoryField, attrs map[string]interface{}) (models.JSONB, error) {
	byName := make(map[string]models.CategoryField, len(fields))
	for _, f := range fields {
		byName[f.FieldName] = f
	}

	var problems []string
	out := models.JSONB{}

	for key, value := range attrs {
		f, ok := byName[key]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("%s is not a field of this category", key))
			continue
		case f.Type.IsAsset():
			problems = append(problems, fmt.Sprintf("%s is managed through the asset endpoints", key))
			continue
		case isEmptyValue(value):
			continue
		}

		normalized, err := coerceValue(f.Type, value)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		out[key] = normalized
	}

	for _, f := range fields {
		if !f.Required || f.Type.IsAsset() {
			continue
		}
		if _, ok := out[f.FieldName]; !ok {
			problems = append(problems, fmt.Sprintf("%s is required", f.FieldName))
		}
	}

	if len(problems) > 0 {
		return nil, errs.Validation("%s", strings.Join(problems, "; "))
	}
	return out, nil
}

func isEmptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func coerceValue(t models.FieldType, v interface{}) (interface{}, error) {
	switch t {
	case models.FieldTypeNumber, models.FieldTypeCurrency:
		n, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("expected a number, got %v", v)
		}
		return n, nil
	case models.FieldTypeBoolean:
		b, ok := toBool(v)
		if !ok {
			return nil, fmt.Errorf("expected true or false, got %v", v)
		}
		return b, nil
	case models.FieldTypeDate:
		if _, ok := parseDate(v); !ok {
			return nil, fmt.Errorf("expected a date (YYYY-MM-DD), got %v", v)
		}
		return strings.TrimSpace(v.(string)), nil
	default:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected text, got %v", v)
		}
		return strings.TrimSpace(s), nil
	}
}

// FieldNameFromLabel derives the attribute key of a field: "Año de Fabricación"
// becomes "ano_de_fabricacion".
func FieldNameFromLabel(label string) string {
	return strings.ReplaceAll(utils.GenerateSlug(label), "-", "_")
}

// SeedDefaults creates the default machinery categories that do not exist yet
// and returns how many were created.
func (s *CategoryService) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for i, def := range defaultCategories {
		_, err := s.repo.GetCategoryByName(ctx, def.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return created, &errs.RepositoryError{Op: "find category", Err: err}
		}

		category := &models.Category{Name: def.Name, Icon: def.Icon, SortOrder: i + 1}
		if err := s.repo.CreateCategory(ctx, category); err != nil {
			return created, err
		}

		seen := map[string]bool{}
		for _, name := range def.Subcategories {
			if seen[name] {
				continue
			}
			seen[name] = true
			if err := s.repo.CreateSubcategory(ctx, &models.Subcategory{CategoryID: category.ID, Name: name}); err != nil {
				return created, err
			}
		}

		for pos, f := range def.Fields {
			field := &models.CategoryField{
				CategoryID: category.ID,
				FieldName:  FieldNameFromLabel(f.Label),
				Label:      f.Label,
				Type:       f.Type,
				Required:   f.Required,
				Position:   pos + 1,
			}
			if err := s.repo.CreateField(ctx, field); err != nil {
				return created, err
			}
		}

		created++
		logrus.WithField("category", def.Name).Info("Seeded category")
	}
	return created, nil
}
