package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/models"
)

func newTestCategoryService() (*CategoryService, *memCategoryRepo) {
	repo := newMemCategoryRepo()
	return NewCategoryService(repo, nil, 0, "test:"), repo
}

func TestCategoryCRUD(t *testing.T) {
	svc, _ := newTestCategoryService()
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, &CategoryRequest{Name: " Tractores ", Icon: "truck"})
	require.NoError(t, err)
	assert.Equal(t, "Tractores", cat.Name)

	_, err = svc.CreateCategory(ctx, &CategoryRequest{Name: "tractores"})
	assert.ErrorIs(t, err, errs.ErrConflict)

	updated, err := svc.UpdateCategory(ctx, cat.ID, &CategoryRequest{Name: "Tractores", Icon: "tractor", SortOrder: 2})
	require.NoError(t, err)
	assert.Equal(t, "tractor", updated.Icon)
	assert.Equal(t, 2, updated.SortOrder)

	_, err = svc.CreateCategory(ctx, &CategoryRequest{Name: "x"})
	assert.ErrorIs(t, err, errs.ErrValidationFailed)

	sub, err := svc.CreateSubcategory(ctx, &SubcategoryRequest{CategoryID: cat.ID, Name: "Agrícolas"})
	require.NoError(t, err)
	subs, err := svc.ListSubcategories(ctx, &cat.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
	require.NoError(t, svc.UpdateSubcategory(ctx, sub.ID, "De Ruedas"))
	assert.ErrorIs(t, svc.UpdateSubcategory(ctx, sub.ID, " "), errs.ErrValidationFailed)
	require.NoError(t, svc.DeleteSubcategory(ctx, sub.ID))

	_, err = svc.CreateSubcategory(ctx, &SubcategoryRequest{CategoryID: uuid.New(), Name: "Huérfana"})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	_, err = svc.GetCategory(ctx, cat.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCategoryFields(t *testing.T) {
	svc, _ := newTestCategoryService()
	ctx := context.Background()
	cat, err := svc.CreateCategory(ctx, &CategoryRequest{Name: "Tractores"})
	require.NoError(t, err)

	hp, err := svc.CreateField(ctx, cat.ID, &FieldRequest{Label: "Potencia HP", Type: models.FieldTypeNumber, Required: true})
	require.NoError(t, err)
	assert.Equal(t, "potencia_hp", hp.FieldName)
	assert.Equal(t, 1, hp.Position)

	year, err := svc.CreateField(ctx, cat.ID, &FieldRequest{Label: "Año de Fabricación", Type: models.FieldTypeNumber})
	require.NoError(t, err)
	assert.Equal(t, "ano_de_fabricacion", year.FieldName)
	assert.Equal(t, 2, year.Position)

	_, err = svc.CreateField(ctx, cat.ID, &FieldRequest{Label: "Potencia HP", Type: models.FieldTypeText})
	assert.ErrorIs(t, err, errs.ErrConflict)

	_, err = svc.CreateField(ctx, cat.ID, &FieldRequest{Label: "Color", Type: "color"})
	assert.ErrorIs(t, err, errs.ErrValidationFailed)

	updated, err := svc.UpdateField(ctx, year.ID, &FieldRequest{Label: "Año", Type: models.FieldTypeNumber, Position: 1})
	require.NoError(t, err)
	assert.Equal(t, "Año", updated.Label)
	assert.Equal(t, "ano_de_fabricacion", updated.FieldName)

	fields, err := svc.Fields(ctx, cat.ID)
	require.NoError(t, err)
	assert.Len(t, fields, 2)

	require.NoError(t, svc.DeleteField(ctx, hp.ID))
	fields, err = svc.Fields(ctx, cat.ID)
	require.NoError(t, err)
	assert.Len(t, fields, 1)
}

func TestCheckAttributes(t *testing.T) {
	fields := []models.CategoryField{
		{FieldName: "potencia_hp", Type: models.FieldTypeNumber, Required: true},
		{FieldName: "cabina", Type: models.FieldTypeBoolean},
		{FieldName: "fecha_compra", Type: models.FieldTypeDate},
		{FieldName: "linea", Type: models.FieldTypeText},
		{FieldName: "imagenes", Type: models.FieldTypeImage, Required: true},
	}

	out, err := checkAttributes(fields, map[string]interface{}{
		"potencia_hp":  "120.5",
		"cabina":       "true",
		"fecha_compra": "2024-03-15",
		"linea":        "  6000  ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.JSONB{
		"potencia_hp":  120.5,
		"cabina":       true,
		"fecha_compra": "2024-03-15",
		"linea":        "6000",
	}, out)

	out, err = checkAttributes(fields, map[string]interface{}{"potencia_hp": 90, "linea": ""})
	require.NoError(t, err)
	assert.Equal(t, models.JSONB{"potencia_hp": 90.0}, out)

	_, err = checkAttributes(fields, map[string]interface{}{"linea": "x"})
	assert.ErrorIs(t, err, errs.ErrValidationFailed)
	assert.ErrorContains(t, err, "potencia_hp is required")

	_, err = checkAttributes(fields, map[string]interface{}{"potencia_hp": 1, "imagenes": "a.jpg"})
	assert.ErrorContains(t, err, "imagenes is managed through the asset endpoints")

	_, err = checkAttributes(fields, map[string]interface{}{"potencia_hp": 1, "fecha_compra": "15/03/2024"})
	assert.ErrorContains(t, err, "fecha_compra: expected a date")

	_, err = checkAttributes(fields, map[string]interface{}{"potencia_hp": 1, "linea": 7})
	assert.ErrorContains(t, err, "linea: expected text")
}

func TestValidateAttributesUnknownCategory(t *testing.T) {
	svc, _ := newTestCategoryService()
	_, err := svc.ValidateAttributes(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, errs.ErrValidationFailed)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	svc, repo := newTestCategoryService()
	ctx := context.Background()

	created, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(defaultCategories), created)

	created, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	pala, err := repo.GetCategoryByName(ctx, "Pala cargadora")
	require.NoError(t, err)
	subs, err := svc.ListSubcategories(ctx, &pala.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 3)

	tractores, err := repo.GetCategoryByName(ctx, "Tractores")
	require.NoError(t, err)
	fields, err := svc.Fields(ctx, tractores.ID)
	require.NoError(t, err)
	require.NotEmpty(t, fields)
	assert.Equal(t, "ano_de_fabricacion", fields[0].FieldName)
	for _, f := range fields {
		assert.False(t, f.Type.IsAsset(), f.FieldName)
	}
}

func TestFieldNameFromLabel(t *testing.T) {
	assert.Equal(t, "capacidad_tn", FieldNameFromLabel("Capacidad (tn)"))
	assert.Equal(t, "cultivo_uso", FieldNameFromLabel("Cultivo / Uso"))
	assert.Equal(t, "levante_3_puntos", FieldNameFromLabel("Levante 3 puntos"))
}
