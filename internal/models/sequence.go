package models

// Sequence is a named monotonic counter used to assign public numbers.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value uint   `gorm:"not null;default:0"`
}
