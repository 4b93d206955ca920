package credentials

// Credentials represents the stored credentials in credentials.toml.
type Credentials struct {
	Version int            `toml:"version"`
	Auth    AuthCredential `toml:"auth"`
}

// AuthCredential holds the bearer token for the quill assistant API.
type AuthCredential struct {
	Token string `toml:"token"`
}
