// Data transfer objects for the auth endpoints.
package auth

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse represents the authentication token response returned on a
// successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Always "bearer"
}
