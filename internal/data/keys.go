package data

// Persistent key layout.  Each key holds one serialized collection or value.
const (
	KeyDinners        = "dinners"
	KeyReservations   = "reservations"
	KeyUsers          = "users"
	KeyCurrentUser    = "currentUser"
	KeyNewDinners     = "newlyCreatedDinners"
	KeyNewUsers       = "newlyRegisteredUsers"
	KeyRecentSearches = "recentSearches"
	KeyRefreshTokens  = "refreshTokens"
)
