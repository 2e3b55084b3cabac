package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yukikurage/teamtasks-api/internal/models"
)

// Priority is a 1-10 bucket or a Low/Medium/High level. It encodes as a JSON
// number or string. The zero value is "no priority" and encodes as null.
type Priority struct {
	bucket *int
	level  *models.PriorityLevel
}

func BucketPriority(b int) Priority {
	return Priority{bucket: &b}
}

func LevelPriority(l models.PriorityLevel) Priority {
	return Priority{level: &l}
}

// PriorityOf picks the representation stored on a task, preferring the bucket.
func PriorityOf(task *models.Task) Priority {
	switch {
	case task.PriorityBucket != nil:
		return BucketPriority(*task.PriorityBucket)
	case task.PriorityLevel != nil:
		return LevelPriority(*task.PriorityLevel)
	}
	return Priority{}
}

func (p Priority) Bucket() (int, bool) {
	if p.bucket == nil {
		return 0, false
	}
	return *p.bucket, true
}

func (p Priority) Level() (models.PriorityLevel, bool) {
	if p.level == nil {
		return "", false
	}
	return *p.level, true
}

func (p Priority) IsZero() bool {
	return p.bucket == nil && p.level == nil
}

// Parts returns the bucket and level pointers for the service layer.
func (p Priority) Parts() (*int, *models.PriorityLevel) {
	return p.bucket, p.level
}

func (p Priority) MarshalJSON() ([]byte, error) {
	switch {
	case p.bucket != nil:
		return json.Marshal(*p.bucket)
	case p.level != nil:
		return json.Marshal(string(*p.level))
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts an integer bucket or a case-insensitive level name.
// Bucket range is checked by the task service.
func (p *Priority) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Priority{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		level, err := models.ParsePriorityLevel(s)
		if err != nil {
			return err
		}
		*p = LevelPriority(level)
		return nil
	}

	var b int
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("priority must be an integer bucket or a level name: %w", err)
	}
	*p = BucketPriority(b)
	return nil
}
