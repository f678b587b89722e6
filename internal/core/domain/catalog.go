package domain

// Connector describes a catalog entry on the integrations surface.
type Connector struct {
	// ID is the unique connector identifier (e.g. "gmail").
	ID string
	// Name is the human-readable display name.
	Name string
	// Description provides a brief explanation of the connector.
	Description string
	// Category groups connectors on the integrations surface.
	Category string
	// OAuth indicates the connector links through the OAuth consent flow.
	// Non-OAuth entries are placeholders toggled locally.
	OAuth bool
}

// DefaultCatalog returns the connectors known to the application. The link
// controller owns one state machine per entry.
func DefaultCatalog() []Connector {
	return []Connector{
		{
			ID:          "teams",
			Name:        "Microsoft Teams",
			Description: "Teams integrates chat and video meetings for workplace communication.",
			Category:    "Conversations",
		},
		{
			ID:          "slack",
			Name:        "Slack",
			Description: "Slack is a messaging platform that streamlines team communication.",
			Category:    "Conversations",
		},
		{
			ID:          "github",
			Name:        "GitHub",
			Description: "GitHub is a web-based platform for collaborative software development.",
			Category:    "Coding",
		},
		{
			ID:          "gmail",
			Name:        "Gmail",
			Description: "Connect your Gmail to import emails into your knowledge base.",
			Category:    "Conversations",
			OAuth:       true,
		},
		{
			ID:          "powerpoint",
			Name:        "Microsoft PowerPoint",
			Description: "PowerPoint is a presentation software used to create slideshows.",
			Category:    "Documents & Recordings",
		},
		{
			ID:          "excel",
			Name:        "Microsoft Excel",
			Description: "Excel learns your patterns, organising your data to save you time.",
			Category:    "Documents & Recordings",
		},
	}
}
