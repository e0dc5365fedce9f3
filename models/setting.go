package models

import "gorm.io/gorm"

// Setting is the single-row platform configuration.
type Setting struct {
	ID             int    `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"size:100" json:"name"`
	Maintenance    bool   `gorm:"default:false" json:"maintenance"`
	ClosedRegister bool   `gorm:"default:false" json:"closed_register"`
	SupportEmail   string `gorm:"size:191" json:"support_email"`
	LinkCommunity  string `gorm:"size:255" json:"link_community"`
}

func (Setting) TableName() string {
	return "settings"
}

func GetSetting(db *gorm.DB) (*Setting, error) {
	var setting Setting
	if err := db.Take(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}
