package instance

import "os"

// GetID returns the process instance identifier attached to startup logs.
// Heroku style DYNO names are honoured when no explicit id is set.
func GetID() string {
	for _, key := range []string{"ADSPACE_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
