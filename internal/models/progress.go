package models

import "time"

// UserProgress хранит процент прохождения купленного курса.
type UserProgress struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex:idx_user_course" json:"user_id"`
	CourseID     uint      `gorm:"uniqueIndex:idx_user_course" json:"course_id"`
	Progress     int       `gorm:"default:0" json:"progress"` // 0-100
	LastActivity time.Time `json:"last_activity"`
}
