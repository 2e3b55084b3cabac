package models

import (
	"fmt"
	"strings"
)

// PriorityLevel is the legacy Low/Medium/High representation. Tasks may also carry
// a 1-10 PriorityBucket; the two are stored independently and only converted on request.
type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "Low"
	PriorityMedium PriorityLevel = "Medium"
	PriorityHigh   PriorityLevel = "High"
)

const (
	MinPriorityBucket = 1
	MaxPriorityBucket = 10
)

// ParsePriorityLevel accepts "low", "Medium", "HIGH" and so on.
func ParsePriorityLevel(s string) (PriorityLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("unknown priority level %q", s)
}

func ValidBucket(b int) bool {
	return b >= MinPriorityBucket && b <= MaxPriorityBucket
}

// BucketToLevel maps 1-3 to Low, 4-7 to Medium and 8-10 to High.
func BucketToLevel(b int) (PriorityLevel, error) {
	switch {
	case !ValidBucket(b):
		return "", fmt.Errorf("priority bucket %d out of range", b)
	case b <= 3:
		return PriorityLow, nil
	case b <= 7:
		return PriorityMedium, nil
	default:
		return PriorityHigh, nil
	}
}

// LevelToBucket maps a level to the representative bucket of its range.
func LevelToBucket(l PriorityLevel) (int, error) {
	switch l {
	case PriorityLow:
		return 2, nil
	case PriorityMedium:
		return 5, nil
	case PriorityHigh:
		return 8, nil
	}
	return 0, fmt.Errorf("unknown priority level %q", l)
}
