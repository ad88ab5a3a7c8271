package domain

// Source is one RSS feed configured for a region. Sources are externally
// managed configuration and read-only to the pipeline.
type Source struct {
	RegionID string `json:"regionId" yaml:"region"`
	FeedURL  string `json:"feedUrl" yaml:"feed_url"`
	Name     string `json:"name" yaml:"name"`
	Weight   int    `json:"weight" yaml:"weight"`
	Active   bool   `json:"active" yaml:"active"`
}
