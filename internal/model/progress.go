package model

// StudentProgress сводка обучения студента для личного кабинета
type StudentProgress struct {
	Upcoming           []*Booking `json:"upcoming"`
	Completed          []*Booking `json:"completed"`
	ProgressPercentage float64    `json:"progressPercentage"`
	TotalLessons       int        `json:"totalLessons"`
}

// InstructorStats сводные показатели инструктора
type InstructorStats struct {
	CompletedLessons int `json:"completedLessons"`
	TotalStudents    int `json:"totalStudents"`
	UpcomingLessons  int `json:"upcomingLessons"`
}
