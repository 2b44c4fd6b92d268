package server

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// TurnTimeout bounds one agent turn, in seconds.
	TurnTimeout    int      `json:"turnTimeout"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:           "0.0.0.0",
		Port:           8000,
		TurnTimeout:    300,
		AllowedOrigins: []string{"*"},
	}
}
