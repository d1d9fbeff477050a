// internal/services/category_defaults.go
package services

import "github.com/javajoker/machinery-catalog/internal/models"

type fieldDef struct {
	Label    string
	Type     models.FieldType
	Required bool
}

type categoryDef struct {
	Name          string
	Icon          string
	Subcategories []string
	Fields        []fieldDef
}

// Title, brand, condition, model, price, short description, images and video
// are product columns or assets, so they are not part of the dynamic schema.
var defaultCategories = []categoryDef{
	{
		Name:          "Tractores",
		Icon:          "truck",
		Subcategories: []string{"Agrícolas", "De Cadenas", "De Ruedas"},
		Fields: []fieldDef{
			{"Año de Fabricación", models.FieldTypeNumber, false},
			{"Línea", models.FieldTypeText, false},
			{"Potencia HP", models.FieldTypeNumber, true},
			{"Tracción", models.FieldTypeText, false},
			{"Dirección", models.FieldTypeText, false},
			{"Tipo de Motor", models.FieldTypeText, false},
			{"Levante 3 puntos", models.FieldTypeText, true},
			{"Cabina", models.FieldTypeText, false},
			{"Tipo de tractor", models.FieldTypeText, false},
			{"Descripción larga", models.FieldTypeTextarea, true},
			{"Oferta", models.FieldTypeCurrency, false},
		},
	},
	{
		Name:          "Pala cargadora",
		Icon:          "truck",
		Subcategories: []string{"Frontal", "Compacta", "De Orugas"},
		Fields: []fieldDef{
			{"Año de Fabricación", models.FieldTypeNumber, false},
			{"Capacidad balde m3", models.FieldTypeNumber, true},
			{"Descripción larga", models.FieldTypeTextarea, true},
			{"Oferta", models.FieldTypeCurrency, false},
		},
	},
	{
		Name: "Línea Logística",
		Icon: "truck",
		Fields: []fieldDef{
			{"Año de Fabricación", models.FieldTypeNumber, false},
			{"Potencia HP", models.FieldTypeNumber, false},
			{"Capacidad (tn)", models.FieldTypeNumber, true},
			{"Tipo de Motor", models.FieldTypeText, true},
			{"Sistema de Transmisión", models.FieldTypeText, false},
			{"Altura de elevación (m)", models.FieldTypeNumber, true},
			{"Torre de elevación", models.FieldTypeText, false},
			{"Descripción larga", models.FieldTypeTextarea, true},
			{"Oferta", models.FieldTypeCurrency, false},
		},
	},
	{
		Name: "Maquinaría Vial",
		Icon: "truck",
		Fields: []fieldDef{
			{"Año de Fabricación", models.FieldTypeNumber, false},
			{"Potencia HP", models.FieldTypeNumber, true},
			{"Capacidad de Carga", models.FieldTypeNumber, false},
			{"Peso Operativo (kg)", models.FieldTypeNumber, true},
			{"Descripción larga", models.FieldTypeTextarea, true},
			{"Oferta", models.FieldTypeCurrency, false},
		},
	},
	{
		Name: "Maquinaría Agrícola",
		Icon: "truck",
		Fields: []fieldDef{
			{"Año de Fabricación", models.FieldTypeNumber, false},
			{"Potencia HP", models.FieldTypeNumber, false},
			{"Cultivo / Uso", models.FieldTypeText, false},
			{"Tipo de Plataforma Incluida", models.FieldTypeText, false},
			{"Sistema de Cosecha", models.FieldTypeText, false},
			{"Ancho de Labor", models.FieldTypeNumber, false},
			{"Capacidad de la Tolva (L)", models.FieldTypeNumber, false},
			{"Descarga por Segundo", models.FieldTypeNumber, false},
			{"Tipo de Grano", models.FieldTypeText, false},
			{"Distancia entre Surcos (cm)", models.FieldTypeNumber, false},
			{"Ancho de trabajo (m)", models.FieldTypeNumber, false},
			{"Cantidad de Tolvas", models.FieldTypeNumber, false},
			{"Características del Chasis", models.FieldTypeText, false},
			{"Sistema de labranza", models.FieldTypeText, false},
			{"Sistema de Siembra", models.FieldTypeText, false},
			{"Cantidad de Surcos", models.FieldTypeNumber, false},
			{"Cantidad del Depósito", models.FieldTypeNumber, false},
			{"Descripción larga", models.FieldTypeTextarea, true},
			{"Oferta", models.FieldTypeCurrency, false},
		},
	},
	{
		Name: "Implementos",
		Icon: "truck",
		Fields: []fieldDef{
			{"Año de Fabricación", models.FieldTypeNumber, false},
			{"Cultivo / Uso", models.FieldTypeText, false},
			{"Ancho de Labor", models.FieldTypeNumber, false},
			{"Tipo de Enganche", models.FieldTypeText, true},
			{"Potencia Requerida", models.FieldTypeNumber, false},
			{"Oferta", models.FieldTypeCurrency, false},
		},
	},
	{
		Name: "Ferretería",
		Icon: "tool",
		Fields: []fieldDef{
			{"Potencia", models.FieldTypeText, false},
			{"Motor", models.FieldTypeText, false},
			{"Arranque", models.FieldTypeText, false},
			{"Peso", models.FieldTypeNumber, false},
			{"Uso", models.FieldTypeText, false},
			{"Oferta", models.FieldTypeCurrency, false},
		},
	},
	{
		Name: "Productos Especiales",
		Icon: "star",
		Fields: []fieldDef{
			{"Descripción larga", models.FieldTypeTextarea, true},
			{"Oferta", models.FieldTypeCurrency, false},
		},
	},
}
