// Package xkcd provides an HTTP client for the xkcd JSON interface.
package xkcd

// Info is the metadata xkcd publishes for a single comic.
type Info struct {
	Num        int    `json:"num"`
	Title      string `json:"title"`
	SafeTitle  string `json:"safe_title"`
	Alt        string `json:"alt"`
	Img        string `json:"img"`
	Transcript string `json:"transcript,omitempty"`
	Year       string `json:"year,omitempty"`
	Month      string `json:"month,omitempty"`
	Day        string `json:"day,omitempty"`
}
