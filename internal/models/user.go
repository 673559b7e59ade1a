package models

import "time"

const (
	MinGrade = 1
	MaxGrade = 7
)

type User struct {
	ID           int64     `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Username     string    `db:"username"`
	PasswordHash []byte    `db:"password_hash"`
	Grade        int       `db:"grade"`
	IsActive     bool      `db:"is_active"`
	IsGuest      bool      `db:"is_guest"`
	CreatedAt    time.Time `db:"created_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func ValidGrade(g int) bool { return g >= MinGrade && g <= MaxGrade }
