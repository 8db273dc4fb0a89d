package entity

type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"fname"`
	LastName  *string `json:"sname"`
}

// WatchlistEntry joins a watchlist row with its user and shoe.
type WatchlistEntry struct {
	ID       string
	User     User
	Shoe     Shoe
	Discount *float64
}

type NotificationPreference struct {
	UserID       string
	EmailEnabled *bool
	Frequency    string
}

// AllowsEmail is false only when email has been explicitly disabled.
func (p *NotificationPreference) AllowsEmail() bool {
	if p == nil || p.EmailEnabled == nil {
		return true
	}
	return *p.EmailEnabled
}
