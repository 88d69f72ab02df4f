package models

import "time"

// Record is one normalised order row. Profit is OrderValue - Cost and is set
// once by the loader.
type Record struct {
	OrderValue float64   `json:"order_value_eur"`
	Cost       float64   `json:"cost"`
	Profit     float64   `json:"profit"`
	Date       time.Time `json:"date"`
	DeviceType string    `json:"device_type"`
	Category   string    `json:"category"`
	Country    string    `json:"country"`
}

// DailyCost is the summed cost of all records sharing a calendar day.
type DailyCost struct {
	Date time.Time `json:"date"`
	Cost float64   `json:"cost"`
}

type RecordPage struct {
	Records    []Record `json:"records"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
	TotalRows  int      `json:"total_rows"`
}
