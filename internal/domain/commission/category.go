package commission

import (
	"fmt"
	"strings"
)

// Category is the commission bucket of a test.
type Category string

const (
	CategoryPath    Category = "PATH"
	CategoryXray350 Category = "XRAY_350"
	CategoryXray450 Category = "XRAY_450"
	CategoryXray650 Category = "XRAY_650"
	CategoryUSG750  Category = "USG_750"
	CategoryUSG1200 Category = "USG_1200"
	CategoryCTScan  Category = "CT_SCAN"
	CategoryECG     Category = "ECG"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryPath,
	CategoryXray350, CategoryXray450, CategoryXray650,
	CategoryUSG750, CategoryUSG1200,
	CategoryCTScan,
	CategoryECG,
}

func ParseCategory(s string) (Category, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category: %q", s)
}

func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// Categorize buckets a test by name and standard price. The rules are
// checked in order and the first match wins; anything unmatched is
// pathology.
func Categorize(name string, standardPrice int64) Category {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case strings.HasPrefix(n, "CT-SCAN"), strings.HasPrefix(n, "CT SCAN"):
		return CategoryCTScan
	case strings.HasPrefix(n, "X-RAY"), strings.HasPrefix(n, "XRAY"):
		switch {
		case standardPrice <= 350:
			return CategoryXray350
		case standardPrice <= 450:
			return CategoryXray450
		}
		return CategoryXray650
	case strings.Contains(n, "USG"), strings.Contains(n, "ULTRASOUND"), strings.Contains(n, "SONOGRAPHY"):
		if standardPrice <= 750 {
			return CategoryUSG750
		}
		return CategoryUSG1200
	case strings.Contains(n, "ECG"), strings.Contains(n, "EKG"):
		return CategoryECG
	}
	return CategoryPath
}
