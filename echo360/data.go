package echo360

import "encoding/json"

// Lecture is a recorded presentation of a section
type Lecture struct {
	UUID  string `json:"uuid"`
	Title string `json:"title"`
}

// Presentation holds the details of a lecture
type Presentation struct {
	UUID      string      `json:"uuid"`
	Title     string      `json:"title"`
	Week      json.Number `json:"week"`
	StartTime string      `json:"startTime"`
	Vodcast   string      `json:"vodcast"`
}

type sectionData struct {
	Section struct {
		Course struct {
			Name string `json:"name"`
		} `json:"course"`
		Presentations struct {
			PageContents []Lecture `json:"pageContents"`
		} `json:"presentations"`
	} `json:"section"`
}

type detailsData struct {
	Presentation Presentation `json:"presentation"`
}
