package entity

// AlertShoe is the shoe identity carried in a price alert.
type AlertShoe struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	ImageURL string `json:"image_url"`
	Category string `json:"category"`
	Gender   string `json:"gender"`
}

// PriceAlert is the payload handed to the notification sender.
type PriceAlert struct {
	User                  User      `json:"user"`
	Shoe                  AlertShoe `json:"shoe"`
	CurrentPrice          float64   `json:"current_price"`
	OriginalPrice         float64   `json:"original_price"`
	DiscountPercentage    float64   `json:"discount_percentage"`
	UserDiscountThreshold float64   `json:"user_discount_threshold"`
	ProductURL            string    `json:"product_url"`
	Size                  string    `json:"size"`
	Color                 string    `json:"color"`
}

type WelcomeEmail struct {
	User         User   `json:"user"`
	DashboardURL string `json:"dashboard_url"`
	ProfileURL   string `json:"profile_url"`
}

// AlertSummary is the outcome of one alert-matching pass.
type AlertSummary struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
}
