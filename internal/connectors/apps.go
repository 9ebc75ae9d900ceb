package connectors

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apexmarketer-ai/apex/internal/kv"
)

const appsStorageKey = "apexmarketer-connected-apps"

// SetupInstructions walk a user through linking an external workspace app.
type SetupInstructions struct {
	Title string   `json:"title"`
	Steps []string `json:"steps"`
	Note  string   `json:"note,omitempty"`
}

// ConnectedApp is a workspace integration the assistant can deliver output to.
type ConnectedApp struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Icon              string            `json:"icon"`
	Connected         bool              `json:"connected"`
	SetupInstructions SetupInstructions `json:"setup_instructions"`
}

// AppsRegistry tracks which workspace apps the user has connected. The
// catalog itself is fixed; only connection flags persist, so stored state
// never masks updated setup instructions.
type AppsRegistry struct {
	kv kv.Store
}

// NewAppsRegistry creates the registry over the given medium. medium may be
// nil, in which case connection flags do not persist.
func NewAppsRegistry(medium kv.Store) *AppsRegistry {
	return &AppsRegistry{kv: medium}
}

// List returns the app catalog with persisted connection flags merged in.
func (r *AppsRegistry) List(ctx context.Context) []ConnectedApp {
	apps := defaultApps()
	if r.kv == nil {
		return apps
	}
	raw, ok, err := r.kv.Get(ctx, appsStorageKey)
	if err != nil || !ok {
		return apps
	}
	var flags map[string]bool
	if err := json.Unmarshal([]byte(raw), &flags); err != nil {
		return apps
	}
	for i := range apps {
		if connected, ok := flags[apps[i].ID]; ok {
			apps[i].Connected = connected
		}
	}
	return apps
}

// SetConnected flips the connection flag for the app with the given id.
func (r *AppsRegistry) SetConnected(ctx context.Context, appID string, connected bool) error {
	known := false
	flags := make(map[string]bool)
	for _, app := range r.List(ctx) {
		flags[app.ID] = app.Connected
		if app.ID == appID {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("connectors: unknown app %q", appID)
	}
	if r.kv == nil {
		return nil
	}
	flags[appID] = connected
	raw, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("connectors: encode app flags: %w", err)
	}
	if err := r.kv.Set(ctx, appsStorageKey, string(raw)); err != nil {
		return fmt.Errorf("connectors: store app flags: %w", err)
	}
	return nil
}

func defaultApps() []ConnectedApp {
	return []ConnectedApp{
		{
			ID:        "slack",
			Name:      "Slack",
			Icon:      "💬",
			Connected: false,
			SetupInstructions: SetupInstructions{
				Title: "Connect Slack to ApexMarketer-AI",
				Steps: []string{
					"Go to your Slack workspace settings",
					`Navigate to "Apps" in the left sidebar`,
					`Click "Build" and then "Create an App"`,
					`Choose "From scratch" and name it "ApexMarketer-AI"`,
					`Go to "OAuth & Permissions" in the left sidebar`,
					"Add these Bot Token Scopes: channels:read, chat:write, users:read",
					`Click "Install to Workspace" and authorize the app`,
					`Copy the "Bot User OAuth Token" that starts with "xoxb-"`,
					"Paste the token in ApexMarketer-AI settings",
				},
				Note: "This will allow ApexMarketer-AI to send marketing insights and reports directly to your Slack channels.",
			},
		},
		{
			ID:        "notion",
			Name:      "Notion",
			Icon:      "📝",
			Connected: false,
			SetupInstructions: SetupInstructions{
				Title: "Connect Notion to ApexMarketer-AI",
				Steps: []string{
					"Go to https://www.notion.so/my-integrations",
					`Click "Create new integration"`,
					`Name it "ApexMarketer-AI" and select your workspace`,
					`Click "Submit" to create the integration`,
					`Copy the "Internal Integration Token"`,
					"Go to your Notion workspace and create a new page for marketing data",
					`Click "Share" on the page and invite your integration`,
					`Search for "ApexMarketer-AI" and click "Invite"`,
					"Copy the page URL and paste both the token and URL in ApexMarketer-AI settings",
				},
				Note: "This enables ApexMarketer-AI to create marketing reports, campaign plans, and content calendars directly in your Notion workspace.",
			},
		},
		{
			ID:        "googledrive",
			Name:      "Google Drive",
			Icon:      "📁",
			Connected: false,
			SetupInstructions: SetupInstructions{
				Title: "Connect Google Drive to ApexMarketer-AI",
				Steps: []string{
					"Go to https://console.cloud.google.com/",
					"Create a new project or select an existing one",
					"Enable the Google Drive API for your project",
					`Go to "Credentials" and click "Create Credentials"`,
					`Choose "OAuth 2.0 Client IDs"`,
					`Select "Web application" as the application type`,
					"Add your ApexMarketer-AI domain to authorized origins",
					"Download the JSON credentials file",
					"Upload the credentials file in ApexMarketer-AI settings",
					"Authorize access to your Google Drive",
				},
				Note: "This allows ApexMarketer-AI to save marketing assets, reports, and campaign materials directly to your Google Drive folders.",
			},
		},
	}
}
