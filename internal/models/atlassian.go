package models

// JiraProject represents a Jira project as returned by the backend.
type JiraProject struct {
	ID             string `json:"id"`
	Key            string `json:"key"`
	Name           string `json:"name"`
	ProjectTypeKey string `json:"projectTypeKey,omitempty"`
	Simplified     bool   `json:"simplified,omitempty"`
	Style          string `json:"style,omitempty"`
	IsPrivate      bool   `json:"isPrivate,omitempty"`
	Description    string `json:"description,omitempty"`
}

// ConfluenceSpace represents a Confluence space.
type ConfluenceSpace struct {
	ID          string            `json:"id"`
	Key         string            `json:"key"`
	Name        string            `json:"name"`
	Type        string            `json:"type,omitempty"`
	Description *SpaceDescription `json:"description,omitempty"`
	Homepage    *ContentRef       `json:"homepage,omitempty"`
}

// SpaceDescription carries the plain-text description of a space.
type SpaceDescription struct {
	Plain struct {
		Value          string `json:"value"`
		Representation string `json:"representation,omitempty"`
	} `json:"plain"`
}

// ContentRef is a lightweight reference to a content item.
type ContentRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ConfluenceContent represents one content item (page, blog post) in a space.
type ConfluenceContent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Status  string          `json:"status,omitempty"`
	Title   string          `json:"title"`
	Space   *SpaceRef       `json:"space,omitempty"`
	Body    *ContentBody    `json:"body,omitempty"`
	History *ContentHistory `json:"history,omitempty"`
	Version *ContentVersion `json:"version,omitempty"`
}

// SpaceRef identifies the space a content item belongs to.
type SpaceRef struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// ContentBody carries the storage-format body of a content item when the
// backend expands it.
type ContentBody struct {
	Storage struct {
		Value          string `json:"value"`
		Representation string `json:"representation,omitempty"`
	} `json:"storage"`
}

// ContentHistory carries optional creation metadata.
type ContentHistory struct {
	CreatedBy   *UserProfile `json:"createdBy,omitempty"`
	CreatedDate string       `json:"createdDate,omitempty"`
	Latest      bool         `json:"latest,omitempty"`
}

// ContentVersion carries optional version metadata.
type ContentVersion struct {
	Number int    `json:"number,omitempty"`
	When   string `json:"when,omitempty"`
}
