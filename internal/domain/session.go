package domain

// Session representa un refresh token emitido para un dispositivo o cliente.
// ExpiresAt está en segundos desde epoch.
type Session struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}
