package constant

const (
	DEFAULT_PAGE = 1

	// UI guard only, the tree itself carries no depth limit.
	DEFAULT_MAX_REPLY_LEVEL = 5

	MAX_CONTENT_LENGTH = 4000

	DEFAULT_USERNAME     = "Anonymous"
	PLACEHOLDER_USERNAME = "Unknown"
	PLACEHOLDER_CONTENT  = "Error loading comment"
)
