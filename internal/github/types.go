package github

// Calendar is the contribution calendar of one user, oldest week first.
type Calendar struct {
	TotalContributions int    `json:"totalContributions"`
	Weeks              []Week `json:"weeks"`
}

// Week holds up to seven days starting at the upstream week boundary.
type Week struct {
	ContributionDays []Day `json:"contributionDays"`
}

// Day is a single calendar cell. Date is a plain YYYY-MM-DD calendar date.
type Day struct {
	ContributionCount int    `json:"contributionCount"`
	Date              string `json:"date"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data *struct {
		User *struct {
			ContributionsCollection *struct {
				ContributionCalendar *Calendar `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	// Errors is nil only when the field is absent or null. An empty array
	// still marks the response as failed.
	Errors *[]map[string]any `json:"errors"`
}

func (r *graphQLResponse) calendar() *Calendar {
	if r.Data == nil || r.Data.User == nil || r.Data.User.ContributionsCollection == nil {
		return nil
	}
	return r.Data.User.ContributionsCollection.ContributionCalendar
}
