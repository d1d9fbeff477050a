// internal/services/format.go
package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/javajoker/machinery-catalog/internal/models"
)

// FormatDynamicAttributes renders the dynamic attributes of product for display,
// keyed by field label. Missing and empty values are skipped. Numbers use the
// Colombian convention: "." groups thousands and "," separates decimals.
func FormatDynamicAttributes(product *models.Product, fields []models.CategoryField) map[string]string {
	out := make(map[string]string)
	if product == nil || product.DynamicAttributes == nil {
		return out
	}

	for _, f := range fields {
		value, ok := product.DynamicAttributes[f.FieldName]
		if !ok || value == nil || value == "" {
			continue
		}

		switch f.Type {
		case models.FieldTypeCurrency:
			if n, ok := toFloat(value); ok {
				out[f.Label] = "$ " + formatNumber(n, 2)
				continue
			}
		case models.FieldTypeNumber:
			if n, ok := toFloat(value); ok {
				out[f.Label] = formatNumber(n, 3)
				continue
			}
		case models.FieldTypeDate:
			if t, ok := parseDate(value); ok {
				out[f.Label] = t.Format("02/01/2006")
				continue
			}
		case models.FieldTypeBoolean:
			if b, ok := toBool(value); ok {
				if b {
					out[f.Label] = "Sí"
				} else {
					out[f.Label] = "No"
				}
				continue
			}
		}
		out[f.Label] = fmt.Sprint(value)
	}
	return out
}

// formatNumber groups thousands with "." and keeps up to maxFrac decimals,
// without trailing zeros.
func formatNumber(n float64, maxFrac int) string {
	neg := n < 0
	n = math.Abs(n)

	s := strconv.FormatFloat(n, 'f', maxFrac, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	}
	return false, false
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
