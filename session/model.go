package session

import "time"

// Snapshot is the cached view of a principal. It carries everything the
// authorization gate needs (id and role) without a further store round-trip.
type Snapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Verified  bool      `json:"isVerified"`
	Avatar    *Avatar   `json:"avatar,omitempty"`
	Courses   []Course  `json:"courses"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Avatar references an uploaded profile image.
type Avatar struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Course references a course owned by the principal.
type Course struct {
	CourseID string `json:"courseId"`
}
