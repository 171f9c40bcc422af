package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	MaxFolderNameLength = 255

	// MaxTagNameLength is the maximum length for tag names.
	// Tags render as chips, so they stay short.
	MaxTagNameLength = 64

	// MaxWebsiteTitleLength is the maximum length for website titles.
	MaxWebsiteTitleLength = 500

	// MaxLinkLength is the maximum length for website links.
	// Matches the practical URL limit of common browsers.
	MaxLinkLength = 2048

	// MaxDescriptionLength is the maximum length for website descriptions.
	MaxDescriptionLength = 5000

	// MaxSearchQueryLength caps tree search input.
	MaxSearchQueryLength = 200

	// MaxReorderBatch is the largest position batch accepted in one request.
	MaxReorderBatch = 1000
)
