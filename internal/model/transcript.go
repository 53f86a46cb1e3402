package model

import "time"

// Transcript is the set of courses a student has completed
type Transcript struct {
	StudentID        string    `json:"studentId" bson:"_id"`
	CompletedCourses []string  `json:"completedCourses" bson:"completedCourses"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}
