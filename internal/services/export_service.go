// internal/services/export_service.go
package services

import (
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

const (
	exportSheet    = "Productos"
	maxExportPages = 200
)

var exportBaseColumns = []string{
	"ID", "Título", "Slug", "Marca", "Condición", "Modelo", "Precio",
	"Activo", "Destacado", "Imágenes", "Imagen principal", "Creado",
}

// ExportService writes product catalogs as xlsx workbooks.
type ExportService struct {
	products *ProductService
	schema   AttributeSchema
}

func NewExportService(products *ProductService, schema AttributeSchema) *ExportService {
	return &ExportService{products: products, schema: schema}
}

// ExportProducts returns a workbook with every product matching filter. When
// the filter selects a category, its dynamic attributes get one column each.
func (s *ExportService) ExportProducts(ctx context.Context, filter models.ProductFilter) (*excelize.File, error) {
	var fields []models.CategoryField
	if filter.CategoryID != nil {
		all, err := s.schema.Fields(ctx, *filter.CategoryID)
		if err != nil {
			return nil, err
		}
		for _, f := range all {
			if !f.Type.IsAsset() {
				fields = append(fields, f)
			}
		}
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", exportSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	headers := append([]string{}, exportBaseColumns...)
	for _, field := range fields {
		headers = append(headers, field.Label)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, col, col, 20)
	}

	filter.Page = 1
	filter.Limit = utils.MaxPageSize
	row := 2
	for page := 0; page < maxExportPages; page++ {
		products, total, err := s.products.SearchProducts(ctx, filter)
		if err != nil {
			f.Close()
			return nil, err
		}

		for i := range products {
			if err := writeProductRow(f, row, &products[i], fields); err != nil {
				f.Close()
				return nil, err
			}
			row++
		}

		if int64(filter.Page*filter.Limit) >= total || len(products) == 0 {
			break
		}
		filter.Page++
	}

	f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return f, nil
}

func writeProductRow(f *excelize.File, row int, p *models.Product, fields []models.CategoryField) error {
	principal := ""
	if img := p.PrincipalImage(); img != nil {
		principal = img.PublicURL
	}

	values := []interface{}{
		p.ID.String(), p.Title, p.Slug, p.Brand, p.Condition, p.Model, p.Price,
		yesNo(p.Active), yesNo(p.Featured), len(p.Images), principal,
		p.CreatedAt.Format("2006-01-02 15:04"),
	}
	for _, field := range fields {
		values = append(values, p.DynamicAttributes[field.FieldName])
	}

	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(exportSheet, cell, &values)
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
