package types

type NewsletterSubscription struct {
	ID        int64  `json:"id" db:"id"`
	Email     string `json:"email" db:"email"`
	Source    string `json:"source" db:"source"`
	IPAddress string `json:"ip_address" db:"ip_address"`
	UserAgent string `json:"user_agent" db:"user_agent"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
}

type ContactRequest struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email" db:"email"`
	Message   string `json:"message" db:"message"`
	IPAddress string `json:"ip_address" db:"ip_address"`
	UserAgent string `json:"user_agent" db:"user_agent"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}
