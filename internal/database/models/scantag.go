package models

import "github.com/google/uuid"

// ScanTag is a physical tag registered to a company. The tag code is unique
// per company, not globally.
type ScanTag struct {
	Base
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_scantag_code" json:"company_id"`
	Name      string    `gorm:"not null" json:"name"`
	Code      string    `gorm:"not null;uniqueIndex:uq_scantag_code" json:"code"`
}

func (ScanTag) TableName() string {
	return "scantags"
}
