package entity

const (
	MembershipBronze = "B"
	MembershipSilver = "S"
	MembershipGold   = "G"
)

// DateLayout is the wire and storage format of birth dates.
const DateLayout = "2006-01-02"

type Customer struct {
	ID         int     `json:"id"`
	UserID     int     `json:"user_id"`
	Phone      string  `json:"phone"`
	BirthDate  *string `json:"birth_date"`
	Membership string  `json:"membership"`
}
