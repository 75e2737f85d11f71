package dto

// LoginRequestDTO is the body of POST /api/auth/login.
type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponseDTO is returned on a successful login.
type LoginResponseDTO struct {
	Token string      `json:"token"`
	User  AuthUserDTO `json:"user"`
}

// AuthUserDTO is the public slice of the auth-service user record.
type AuthUserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthConfigDTO is the public auth-service connection info.
type AuthConfigDTO struct {
	URL     string `json:"url"`
	AnonKey string `json:"anonKey"`
}

// UsageStatusDTO is returned by the usage endpoint.
type UsageStatusDTO struct {
	Allowed bool   `json:"allowed"`
	Count   int    `json:"count"`
	Limit   int    `json:"limit"`
	Tool    string `json:"tool"`
}
