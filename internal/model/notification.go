package model

type Notification struct {
	To      string
	Subject string
	Body    string
	// Ref identifies what the message is about, for logging only.
	Ref string
}
