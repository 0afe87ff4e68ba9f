package entity

import "github.com/shopspring/decimal"

// ReceiptHeader holds the business header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ReceiptCustomer is the customer block of a receipt.
type ReceiptCustomer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// ReceiptItem is a single printed line: name, "2.5 kg × ₦1,000.00/kg" and total.
type ReceiptItem struct {
	Name       string          `json:"name"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Total      decimal.Decimal `json:"total"`
	Detail     string          `json:"detail"`
	TotalText  string          `json:"total_text"`
}

// Receipt is composed from a sale at print time; it is not stored.
type Receipt struct {
	Header      ReceiptHeader   `json:"header"`
	ReceiptNo   string          `json:"receipt_no"`
	Date        string          `json:"date"`
	Status      string          `json:"status"`
	Branch      string          `json:"branch"`
	SalesRep    string          `json:"sales_rep,omitempty"`
	Customer    ReceiptCustomer `json:"customer"`
	Items       []ReceiptItem   `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalText   string          `json:"total_text"`
	Footer      []string        `json:"footer"`
}
