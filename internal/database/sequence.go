package database

import (
	"errors"
	"fmt"

	"campus-complaints/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComplaintSequence names the counter that numbers complaints.
const ComplaintSequence = "complaints"

// NextSequence increments the named counter and returns the new value. It
// must run inside tx together with the insert that consumes the value: the
// UPDATE takes the row lock, so concurrent callers get distinct values.
func NextSequence(tx *gorm.DB, name string) (uint, error) {
	res := tx.Model(&models.Sequence{}).
		Where("name = ?", name).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("bump sequence %s: %w", name, res.Error)
	}

	if res.RowsAffected == 0 {
		// first use: seed at 1, tolerating a concurrent seeder
		seed := models.Sequence{Name: name, Value: 1}
		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed)
		if ins.Error != nil {
			return 0, fmt.Errorf("seed sequence %s: %w", name, ins.Error)
		}
		if ins.RowsAffected == 1 {
			return 1, nil
		}
		return NextSequence(tx, name)
	}

	var seq models.Sequence
	if err := tx.Where("name = ?", name).First(&seq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("sequence %s vanished", name)
		}
		return 0, fmt.Errorf("read sequence %s: %w", name, err)
	}
	return seq.Value, nil
}
