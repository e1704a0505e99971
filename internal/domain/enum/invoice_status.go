package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// InvoiceStatus tracks whether an invoice has been settled
type InvoiceStatus int

const (
	InvoiceStatusOutstanding InvoiceStatus = 0
	InvoiceStatusPaid        InvoiceStatus = 1
)

func (s InvoiceStatus) String() string {
	if s == InvoiceStatusPaid {
		return "paid"
	}
	return "outstanding"
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = InvoiceStatus(i)
		return nil
	}
	if str == "paid" {
		*s = InvoiceStatusPaid
	} else {
		*s = InvoiceStatusOutstanding
	}
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusOutstanding
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InvoiceStatus(v)
	case int:
		*s = InvoiceStatus(v)
	}
	return nil
}
