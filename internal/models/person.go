package models

// Person is someone a transaction can be associated with (a beneficiary or a
// donor). Transactions reference persons weakly by id.
type Person struct {
	Base
	FullName string  `gorm:"not null" json:"full_name"`
	Notes    *string `json:"notes,omitempty"`
}

// TableName keeps the table name "persons" rather than gorm's "people".
func (Person) TableName() string { return "persons" }
