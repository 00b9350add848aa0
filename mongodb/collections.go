package mongodb

const (
	UsersCollection           = "auth_users"            // Internal user records
	SocialLinksCollection     = "auth_social_links"     // External identity bindings
	RefreshSessionsCollection = "auth_refresh_sessions" // Hashed refresh-token records
)
