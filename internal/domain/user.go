package domain

import "time"

type User struct {
	ID           int32     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"nom"`
	CreatedOn    time.Time `json:"cree_le"`
	UpdatedOn    time.Time `json:"modifie_le"`
}
