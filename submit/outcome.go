package submit

// Outcome is the normalized result of a cluster submission. A failed
// outcome never carries job ids and always carries a message; a
// successful one always carries an application id.
type Outcome struct {
	AppID   string   `json:"app_id"                yaml:"app_id"`
	JobIDs  []string `json:"job_ids"               yaml:"job_ids"`
	WebURL  string   `json:"web_url"               yaml:"web_url"`
	Success bool     `json:"success"               yaml:"success"`
	Message string   `json:"message,omitempty"     yaml:"message,omitempty"`
}

// SuccessOutcome de-duplicates jobIDs keeping their order. An empty appID
// turns the outcome into a failure.
func SuccessOutcome(appID string, jobIDs []string, webURL string) *Outcome {
	if appID == "" {
		return FailureOutcome("deployed cluster reported no application id")
	}
	seen := make(map[string]struct{}, len(jobIDs))
	unique := make([]string, 0, len(jobIDs))
	for _, id := range jobIDs {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return &Outcome{
		AppID:   appID,
		JobIDs:  unique,
		WebURL:  webURL,
		Success: true,
	}
}

func FailureOutcome(message string) *Outcome {
	if message == "" {
		message = "cluster submission failed"
	}
	return &Outcome{
		JobIDs:  []string{},
		Success: false,
		Message: message,
	}
}
