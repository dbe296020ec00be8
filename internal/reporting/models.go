package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// TransactionsSummaryRequest requests aggregated exchange metrics.
//
// OfficeID is advisory: the service forces an agent's own office regardless
// of what the request carries. Empty means all offices (admin only).
type TransactionsSummaryRequest struct {
	OfficeID string    `json:"office_id,omitempty"`
	Range    TimeRange `json:"range"`
	ClientID string    `json:"client_id,omitempty"`
}

type TransactionsSummary struct {
	OfficeID string `json:"office_id,omitempty"`
	ClientID string `json:"client_id,omitempty"`

	TotalTransactions int `json:"total_transactions"`
	BuyTransactions   int `json:"buy_transactions"`
	SellTransactions  int `json:"sell_transactions"`
	UniqueClients     int `json:"unique_clients"`

	// VolumeMinorByBase sums base amounts per currency; amounts in different
	// currencies are never added together.
	VolumeMinorByBase map[string]int64 `json:"volume_minor_by_base"`
}

// CampaignConversionRequest captures campaign conversion metrics: how many
// recommendations turned into booked exchanges within the range.
type CampaignConversionRequest struct {
	OfficeID   string    `json:"office_id,omitempty"`
	CampaignID string    `json:"campaign_id"`
	Range      TimeRange `json:"range"`
}

type CampaignConversion struct {
	OfficeID   string `json:"office_id,omitempty"`
	CampaignID string `json:"campaign_id"`

	Recommendations  int `json:"recommendations"`
	MessagesSent     int `json:"messages_sent"`
	ConvertedClients int `json:"converted_clients"`

	// ConversionRate is converted clients over distinct recommended clients.
	ConversionRate float64 `json:"conversion_rate"`
}
