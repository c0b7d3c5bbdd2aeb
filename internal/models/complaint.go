package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Status of a complaint. Any value may follow any other.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// AnonymousSubmitter is shown instead of the owner's name on anonymous
// complaints.
const AnonymousSubmitter = "Anonymous"

// Complaint is a reported issue. Number is the public id used in URLs; ID
// is the storage key and never leaves the server.
type Complaint struct {
	ID          uint    `gorm:"primaryKey"`
	Number      uint    `gorm:"uniqueIndex;not null"`
	Submitter   string  `gorm:"size:128;not null"`
	Email       *string `gorm:"size:255"`
	UserID      uint    `gorm:"index;not null"`
	Title       string  `gorm:"size:200;not null"`
	Category    string  `gorm:"size:64;not null;index"`
	Description string  `gorm:"type:text;not null"`
	Photo       *string `gorm:"size:255"`
	Status      Status  `gorm:"size:20;not null;default:Open;index"`
	Reply       string  `gorm:"type:text"`
	SubmittedAt string  `gorm:"size:64"` // localized label, set once at creation
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

func (c *Complaint) BeforeSave(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = StatusOpen
	}
	if !c.Status.Valid() {
		return fmt.Errorf("invalid status %q", c.Status)
	}
	return nil
}

// IsAnonymous reports whether the complaint hides its owner.
func (c *Complaint) IsAnonymous() bool {
	return c.Submitter == AnonymousSubmitter
}

// OwnedBy reports whether userID is the owning user reference.
func (c *Complaint) OwnedBy(userID uint) bool {
	return c.UserID == userID
}
