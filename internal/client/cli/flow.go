package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/url"

	"github.com/dmitrijs2005/studysync/internal/client/i18n"
	"github.com/dmitrijs2005/studysync/internal/client/identity"
)

// googleProviderID is the identity toolkit id of the Google provider.
const googleProviderID = "google.com"

// PasteFlow is an identity.InteractiveFlow for terminals: the user signs in
// with Google in a browser and pastes the resulting ID token.
type PasteFlow struct {
	reader     *bufio.Reader
	out        io.Writer
	tr         *i18n.Translator
	requestURI string
}

var _ identity.InteractiveFlow = (*PasteFlow)(nil)

func NewPasteFlow(reader *bufio.Reader, out io.Writer, tr *i18n.Translator) *PasteFlow {
	return &PasteFlow{reader: reader, out: out, tr: tr, requestURI: "http://localhost"}
}

// Credential asks for the token. An empty answer cancels the flow.
func (f *PasteFlow) Credential(ctx context.Context) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	tok, err := GetSimpleText(f.reader, f.tr.T("PromptPasteToken"), f.out)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", "", err
	}
	if tok == "" {
		return "", "", identity.ErrFlowCancelled
	}

	body := url.Values{}
	body.Set("id_token", tok)
	body.Set("providerId", googleProviderID)
	return body.Encode(), f.requestURI, nil
}
