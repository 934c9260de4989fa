package session

import "github.com/KirkDiggler/initiative-tracker/internal/tracker"

// OpenInput defines the request for opening a session
type OpenInput struct {
	SessionID string
}

// OpenOutput defines the response for opening a session
type OpenOutput struct {
	State tracker.State
	// Restored is set when a stored roster was loaded
	Restored bool
	// Discarded is set when a stored cookie could not be read and the
	// session started empty instead
	Discarded bool
}

// DispatchInput defines the request for applying an action
type DispatchInput struct {
	SessionID string
	Action    tracker.Action
}

// DispatchOutput defines the response for applying an action
type DispatchOutput struct {
	State tracker.State
	// CookieSaved is set when the roster changed and was persisted
	CookieSaved bool
}

// GetStateInput defines the request for reading a session
type GetStateInput struct {
	SessionID string
}

// GetStateOutput defines the response for reading a session
type GetStateOutput struct {
	State tracker.State
}

// FillInitiativesInput defines the request for rolling missing initiatives
type FillInitiativesInput struct {
	SessionID string
}

// FillInitiativesOutput defines the response for rolling missing initiatives
type FillInitiativesOutput struct {
	State tracker.State
	// Rolled maps participant id to the rolled initiative
	Rolled map[int]int
}

// ExportCookieInput defines the request for reading the cookie value
type ExportCookieInput struct {
	SessionID string
}

// ExportCookieOutput defines the response for reading the cookie value
type ExportCookieOutput struct {
	Value string
}

// ImportCookieInput defines the request for replacing the roster
type ImportCookieInput struct {
	SessionID string
	Value     string
}

// ImportCookieOutput defines the response for replacing the roster
type ImportCookieOutput struct {
	State tracker.State
}

// ClearInput defines the request for dropping a session's roster
type ClearInput struct {
	SessionID string
}

// ClearOutput defines the response for dropping a session's roster
type ClearOutput struct {
	State tracker.State
}

// CloseInput defines the request for closing a session
type CloseInput struct {
	SessionID string
}

// CloseOutput defines the response for closing a session
type CloseOutput struct{}
