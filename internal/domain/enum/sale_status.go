package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// SaleStatus represents the lifecycle state of a sale
type SaleStatus string

const (
	SaleStatusDraft     SaleStatus = "draft"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known status
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusDraft, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}

// ParseSaleStatus parses a status case-insensitively
func ParseSaleStatus(str string) (SaleStatus, error) {
	s := SaleStatus(strings.ToLower(strings.TrimSpace(str)))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown sale status %q", str)
	}
	return s, nil
}

func (s *SaleStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSaleStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s SaleStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *SaleStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = SaleStatusDraft
	case string:
		*s = SaleStatus(v)
	case []byte:
		*s = SaleStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into SaleStatus", value)
	}
	return nil
}
