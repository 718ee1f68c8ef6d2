package domain

// PullRequest is the review-platform view of a pull request.
type PullRequest struct {
	Number int
	Title  string
	Head   string
	Base   string
	URL    string
	Merged bool
}
