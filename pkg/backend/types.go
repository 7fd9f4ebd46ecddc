package backend

import "io"

// Session is one entry of the server-side session registry.
type Session struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// AskRequest is the /ask payload. SessionID is a pointer because "no
// session yet" is a legal state the backend has to see as null, not "".
type AskRequest struct {
	Question  string  `json:"question"`
	SessionID *string `json:"session_id"`
}

// AskResponse carries exactly one of Answer or Error; both empty is legal
// and resolved to a placeholder by the caller.
type AskResponse struct {
	Answer string `json:"answer"`
	Error  string `json:"error"`
}

type createSessionRequest struct {
	Title string `json:"title"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error"`
}

type renameSessionRequest struct {
	Title string `json:"title"`
}

// UploadFile is one file to transfer, streamed from Content.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// UploadScope is the single correlation field attached to an upload:
// exactly one of GuestID or SessionID is set, depending on identity mode.
type UploadScope struct {
	GuestID   string
	SessionID string
}

// UploadResult is the upload response. SessionID is only meaningful for
// guests, whose session is created server-side on first upload.
type UploadResult struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error"`
}

type cleanupGuestRequest struct {
	GuestID string `json:"guest_id"`
}
