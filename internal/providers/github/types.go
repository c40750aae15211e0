package github

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   *responseData  `json:"data"`
	Errors []graphQLIssue `json:"errors"`
}

type graphQLIssue struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type responseData struct {
	User *userResponse `json:"user"`
}

type userResponse struct {
	ContributionsCollection struct {
		ContributionCalendar calendarResponse `json:"contributionCalendar"`
	} `json:"contributionsCollection"`
}

type calendarResponse struct {
	TotalContributions int            `json:"totalContributions"`
	Weeks              []weekResponse `json:"weeks"`
}

type weekResponse struct {
	ContributionDays []dayResponse `json:"contributionDays"`
}

type dayResponse struct {
	Date              string `json:"date"`
	ContributionCount int    `json:"contributionCount"`
}
