package services

import (
	"strings"

	"reimdesk/internal/models"
)

// EquivalentItems reports whether two template item sets describe the same
// document requirements. Items pair up by name with no extras on either side;
// paired items must match on every definition field, with the allowed file
// type set compared order-insensitively.
func EquivalentItems(a, b []models.TemplateItem) bool {
	if len(a) != len(b) {
		return false
	}

	byName := make(map[string]models.TemplateItem, len(a))
	for _, item := range a {
		if _, dup := byName[item.Name]; dup {
			return false
		}
		byName[item.Name] = item
	}

	for _, item := range b {
		other, ok := byName[item.Name]
		if !ok {
			return false
		}
		if !equivalentItem(other, item) {
			return false
		}
		delete(byName, item.Name)
	}
	return len(byName) == 0
}

func equivalentItem(a, b models.TemplateItem) bool {
	return a.Description == b.Description &&
		a.IsRequired == b.IsRequired &&
		sameFileTypeSet(a.FileTypes, b.FileTypes) &&
		a.NeedsWatermark == b.NeedsWatermark &&
		a.WatermarkTemplate == b.WatermarkTemplate &&
		a.AllowsMultipleFiles == b.AllowsMultipleFiles &&
		a.DisplayOrder == b.DisplayOrder &&
		a.Category == b.Category
}

func sameFileTypeSet(a, b []string) bool {
	set := make(map[string]int, len(a))
	for _, t := range normalizeFileTypes(a) {
		set[t]++
	}
	for _, t := range normalizeFileTypes(b) {
		set[t]--
		if set[t] == 0 {
			delete(set, t)
		}
	}
	return len(set) == 0
}

// normalizeFileTypes lowercases extensions and strips leading dots so that
// ".JPG" and "jpg" describe the same type.
func normalizeFileTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
