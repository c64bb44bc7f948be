package transfer

type LinkedInCallback struct {
	Code  string `json:"code" validate:"required"`
	State string `json:"state" validate:"required"`
}

type LinkedInAuthURL struct {
	AuthURL string `json:"authUrl"`
}

type LinkedInErrorResponse struct {
	Status           int    `json:"status"`
	ServiceErrorCode int    `json:"serviceErrorCode"`
	Message          string `json:"message"`
}
