package message

type Query struct {
	Question        string `json:"question"`
	KnowledgeBaseID string `json:"knowledgeBaseId"`
	ModelArn        string `json:"modelArn,omitempty"`
	SessionID       string `json:"sessionId,omitempty"`
	NumberOfResults int    `json:"numberOfResults,omitempty"`
}

type Answer struct {
	Text      string     `json:"text"`
	SessionID string     `json:"sessionId,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
}

type Citation struct {
	Text       string      `json:"text,omitempty"`
	References []Reference `json:"references,omitempty"`
}

type Reference struct {
	Location string `json:"location"`
	Excerpt  string `json:"excerpt,omitempty"`
}

type MetaData struct {
	RequestID string
}

// Locations returns the distinct reference locations of the answer, in citation order.
func (a *Answer) Locations() []string {
	var locations []string
	seen := make(map[string]bool)
	for _, c := range a.Citations {
		for _, r := range c.References {
			if r.Location == "" || seen[r.Location] {
				continue
			}
			seen[r.Location] = true
			locations = append(locations, r.Location)
		}
	}
	return locations
}
