// Package cli implements the interactive studysync terminal client.
//
// The App wires the session, conversation, progress and exam services into
// a small read–eval–print loop. Commands that touch backend data require a
// signed-in session; all output goes through the i18n Translator so the
// client speaks Turkish or English depending on configuration.
//
// When the session signs out, or a different user signs in, every cached
// collection is cleared so nothing from the previous account is shown.
package cli
