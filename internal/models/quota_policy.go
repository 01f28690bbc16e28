package models

// QuotaPolicy overrides the installation-wide storage ceiling for one owner.
// Owners without a policy row fall back to the configured default.
type QuotaPolicy struct {
	OwnerID  uint64 `gorm:"primaryKey" json:"owner_id"`
	MaxBytes uint64 `gorm:"type:bigint unsigned;not null" json:"max_bytes"`
}

func (QuotaPolicy) TableName() string {
	return "quota_policies"
}

// StorageUsage is derived, never persisted.
type StorageUsage struct {
	UsedBytes       uint64  `json:"used_bytes"`
	MaxBytes        uint64  `json:"max_bytes"`
	UsagePercentage float64 `json:"usage_percentage"`
}
