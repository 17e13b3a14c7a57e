package entity

import "time"

type Review struct {
	ID          int       `json:"id"`
	ProductID   int       `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}
