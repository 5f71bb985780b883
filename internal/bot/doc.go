// Package bot hosts the Telegram front end: command routing, the language
// selection keyboard, upload validation and staging, and delivery of results
// back to the chat.
//
// Conversation flow is driven by the session package's explicit state machine;
// the bot only translates chat updates into session events and session states
// into replies. Accepted uploads are persisted as queue jobs which the
// workflow manager processes out of band.
package bot
