package domain

import "time"

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"id_utilisateur"`
	Title      string            `json:"titre"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"lu"`
	Attributes map[string]string `json:"attributs"`
	CreatedOn  time.Time         `json:"cree_le"`
}
