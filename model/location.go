package model

import "time"

// Location 对应 Production.Location，Insert/Update/Delete 三个例子都操作它
type Location struct {
	LocationID   int64     `db:"LocationID" gorm:"column:LocationID;primaryKey;autoIncrement"`
	Name         string    `db:"Name" gorm:"column:Name"`
	CostRate     float64   `db:"CostRate" gorm:"column:CostRate"`
	Availability float64   `db:"Availability" gorm:"column:Availability"`
	ModifiedDate time.Time `db:"ModifiedDate" gorm:"column:ModifiedDate"`
}

func (*Location) TableName() string {
	return "Production.Location"
}

// NewLocation returns the location every insert sample creates.
func NewLocation(now time.Time) *Location {
	return &Location{
		Name:         "Bad Breisig",
		CostRate:     10,
		Availability: 1,
		ModifiedDate: now,
	}
}
