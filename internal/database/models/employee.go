package models

import "github.com/google/uuid"

// Employee carries a short pairing code unique within its company, used to
// bind a person to a physical scan tag. Codes never change after issuance.
type Employee struct {
	Base
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_employee_pairing_code" json:"company_id"`
	Name        string    `gorm:"not null" json:"name"`
	PairingCode string    `gorm:"not null;uniqueIndex:uq_employee_pairing_code" json:"pairing_code"`
}

func (Employee) TableName() string {
	return "employees"
}
