package sheets

import (
	"os"
	"strings"

	"google.golang.org/api/option"
)

// ClientOptions returns the credential options for the Sheets client.
// Explicit configuration wins; otherwise GOOGLE_APPLICATION_CREDENTIALS_JSON
// and GOOGLE_APPLICATION_CREDENTIALS are consulted. A value starting with
// '{' is treated as inline JSON, anything else as a file path. With no
// credentials at all nil is returned and the client falls back to
// application default credentials.
func ClientOptions(opts Options) []option.ClientOption {
	if creds := strings.TrimSpace(opts.CredentialsJSON); creds != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	if path := strings.TrimSpace(opts.CredentialsFile); path != "" {
		return []option.ClientOption{option.WithCredentialsFile(path)}
	}

	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
