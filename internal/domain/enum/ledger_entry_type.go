package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LedgerEntryType is the kind of posting a ledger entry records
type LedgerEntryType int

const (
	LedgerEntryInvoice LedgerEntryType = 1
	LedgerEntryPayment LedgerEntryType = 2
)

func (t LedgerEntryType) String() string {
	switch t {
	case LedgerEntryInvoice:
		return "Invoice"
	case LedgerEntryPayment:
		return "Payment"
	}
	return "Unknown"
}

func (t LedgerEntryType) Valid() bool {
	return t == LedgerEntryInvoice || t == LedgerEntryPayment
}

func (t LedgerEntryType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *LedgerEntryType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = LedgerEntryType(i)
		return nil
	}
	switch str {
	case "Invoice":
		*t = LedgerEntryInvoice
	case "Payment":
		*t = LedgerEntryPayment
	default:
		return fmt.Errorf("unknown ledger entry type %q", str)
	}
	return nil
}

func (t LedgerEntryType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *LedgerEntryType) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*t = LedgerEntryType(v)
	case int:
		*t = LedgerEntryType(v)
	case nil:
		return fmt.Errorf("ledger entry type is null")
	default:
		return fmt.Errorf("cannot scan %T into LedgerEntryType", value)
	}
	return nil
}
