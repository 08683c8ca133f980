// Package models defines the client-side data model shared by the backend
// client, the services and the CLI: identity and profile records, the three
// paginated resource kinds (conversations, progress entries, exams) and the
// pagination envelope they arrive in.
package models
