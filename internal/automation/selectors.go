package automation

// CSS selectors and button-text patterns, centralized so LinkedIn UI
// changes only touch this file. Button labels are regex patterns matched
// through the driver's text lookup because LinkedIn renders most action
// buttons without stable classes.

// Profile pages.
const (
	profileNameSel = "h1.text-heading-xlarge"

	connectAriaSel     = `button[aria-label*="to connect" i]`
	moreActionsSel     = `button[aria-label="More actions"]`
	connectDropdownSel = `div[aria-label="Connect"] span`

	connectTextPattern   = `^Connect$`
	pendingTextPattern   = `^Pending$`
	messageTextPattern   = `^Message$`
	followTextPattern    = `^Follow$`
	followingTextPattern = `^Following$`

	roleButtonSel = `[role="button"]`
)

// Connection request modal.
const (
	addNoteSel      = `button[aria-label="Add a note"]`
	noteTextareaSel = `textarea[name="message"]`
	sendInviteSel   = `button[aria-label="Send invitation"]`
	sendNowSel      = `button[aria-label="Send now"]`
)

// Company pages.
const (
	companyNameSel        = "h1.org-top-card-summary__title"
	companyFollowSel      = "button.follow"
	companyFollowingSel   = "button.follow--following"
	companyFollowDoneText = `^Following$`
)

// Shared chrome.
const (
	rateLimitPageSel = "div.challenge-container"
	toastSuccessSel  = "div.artdeco-toast-item--success"
	modalSel         = "div.artdeco-modal"
)

// People search results.
const (
	peopleSearchBaseURL = "https://www.linkedin.com/search/results/people/"
	peopleResultsSel    = "ul.reusable-search__entity-result-list"
	nextPageSel         = `button[aria-label="Next"]`
)

// Connection notes over this length are rejected by LinkedIn.
const maxNoteLength = 300
