package cli

import (
	"errors"

	"github.com/dmitrijs2005/studysync/internal/client/client"
	"github.com/dmitrijs2005/studysync/internal/client/i18n"
	"github.com/dmitrijs2005/studysync/internal/client/identity"
	"github.com/dmitrijs2005/studysync/internal/common"
)

// errorMessages maps error kinds to message IDs. Identity kinds come first
// so that a provider rejection is not shown as a generic validation error.
var errorMessages = []struct {
	kind error
	id   string
}{
	{identity.ErrFlowCancelled, "ProviderCancelled"},
	{common.ErrInvalidCredentials, "ErrInvalidCredentials"},
	{common.ErrInvalidEmail, "ErrInvalidEmail"},
	{common.ErrAccountDisabled, "ErrAccountDisabled"},
	{common.ErrEmailInUse, "ErrEmailInUse"},
	{common.ErrWeakPassword, "ErrWeakPassword"},
	{common.ErrUnauthenticated, "ErrUnauthenticated"},
	{common.ErrForbidden, "ErrForbidden"},
	{common.ErrNotFound, "ErrNotFound"},
	{common.ErrRateLimited, "ErrRateLimited"},
	{common.ErrNetwork, "ErrNetwork"},
	{common.ErrServer, "ErrServer"},
}

// describeError renders err for the user.
func describeError(tr *i18n.Translator, err error) string {
	for _, m := range errorMessages {
		if errors.Is(err, m.kind) {
			return tr.T(m.id)
		}
	}
	if errors.Is(err, common.ErrValidation) {
		detail := err.Error()
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			detail = apiErr.Detail
		}
		return tr.Td("ErrValidation", map[string]any{"Detail": detail})
	}
	return tr.Td("ErrGeneric", map[string]any{"Error": err.Error()})
}
