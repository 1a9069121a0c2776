package config

const (
	statusConfigured = "configured"
	statusMissing    = "missing"
)

func presence(v string) string {
	if v == "" {
		return statusMissing
	}
	return statusConfigured
}

// Health reporta los settings obligatorios como configured|missing, sin exponer valores.
func (c *Config) Health() map[string]string {
	return map[string]string{
		"steamApiKey":  presence(c.Steam.APIKey),
		"realm":        presence(c.Steam.Realm),
		"returnUrl":    presence(c.Steam.ReturnURL),
		"clientId":     presence(c.Client.ID),
		"clientSecret": presence(c.Client.Secret),
		"jwtSecret":    presence(c.JWT.Secret),
	}
}
