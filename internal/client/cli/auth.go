package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/client/services"
	"github.com/dmitrijs2005/studysync/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) prompt(id string) (string, error) {
	return getSimpleText(a.reader, a.tr.T(id), a.out)
}

func (a *App) credentials() (string, []byte, error) {
	email, err := a.prompt("PromptEmail")
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.reader, a.tr.T("PromptPassword"), a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register prompts for e-mail, password and name and creates the account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context, _ []string) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	name, err := a.prompt("PromptDisplayName")
	if err != nil {
		return err
	}

	if err := a.session.Register(ctx, email, string(password), name); err != nil {
		return err
	}
	a.say("Registered", map[string]any{"Email": email})
	a.profileGate()
	return nil
}

// Login prompts for credentials and signs in. The profile is loaded as part
// of the sign-in; an incomplete profile is pointed out.
func (a *App) Login(ctx context.Context, _ []string) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		return err
	}
	a.say("LoginOK", map[string]any{"Email": email})
	a.profileGate()
	return nil
}

// LoginWithProvider runs the interactive Google sign-in. Cancelling it is
// not an error.
func (a *App) LoginWithProvider(ctx context.Context, _ []string) error {
	if err := a.session.LoginWithProvider(ctx); err != nil {
		return err
	}
	s := a.session.Snapshot()
	if s.Principal == nil {
		a.say("ProviderCancelled", nil)
		return nil
	}
	a.say("LoginOK", map[string]any{"Email": s.Principal.Email})
	a.profileGate()
	return nil
}

func (a *App) Logout(_ context.Context, _ []string) error {
	a.session.Logout()
	a.say("LoggedOut", nil)
	return nil
}

// ResetPassword sends a reset e-mail to the given address, or to the
// signed-in user's address, or asks for one.
func (a *App) ResetPassword(ctx context.Context, args []string) error {
	var email string
	switch {
	case len(args) > 0:
		email = args[0]
	case a.session.Snapshot().Principal != nil:
		email = a.session.Snapshot().Principal.Email
	}
	if email == "" {
		var err error
		if email, err = a.prompt("PromptEmail"); err != nil {
			return err
		}
	}
	if err := a.session.ResetPassword(ctx, email); err != nil {
		return err
	}
	a.say("ResetSent", map[string]any{"Email": email})
	return nil
}

// profileGate tells the user what is blocking the app after sign-in.
func (a *App) profileGate() {
	s := a.session.Snapshot()
	switch s.State {
	case services.StateProfileReady:
		if s.Profile != nil && !s.Profile.ProfileComplete {
			a.say("ProfileIncomplete", nil)
		}
	case services.StateProfileLoading:
		a.say("ProfileLoading", nil)
	case services.StateProfileFailed:
		a.say("ProfileFailed", map[string]any{"Error": describeError(a.tr, a.session.ProfileError())})
	}
}

// ShowProfile prints the backend profile, retrying the fetch first if the
// last attempt failed.
func (a *App) ShowProfile(ctx context.Context, _ []string) error {
	if a.session.Snapshot().State == services.StateProfileFailed {
		if err := a.session.RefreshProfile(ctx); err != nil {
			return err
		}
	}

	s := a.session.Snapshot()
	if s.Profile == nil {
		a.profileGate()
		return nil
	}
	p := s.Profile
	grade := "-"
	if p.Grade != nil {
		grade = strconv.Itoa(*p.Grade)
	}
	name := p.FullName
	if name == "" && s.Principal != nil {
		name = s.Principal.DisplayName
	}
	a.say("ProfileLine", map[string]any{"Name": name, "Email": p.Email, "Role": p.Role, "Grade": grade})
	if !p.ProfileComplete {
		a.say("ProfileIncomplete", nil)
	}
	return nil
}

// CompleteProfile asks for the missing profile fields and submits them.
func (a *App) CompleteProfile(ctx context.Context, _ []string) error {
	name, err := a.prompt("PromptFullName")
	if err != nil {
		return err
	}
	role, err := a.prompt("PromptRole")
	if err != nil {
		return err
	}
	update := models.ProfileUpdate{FullName: name, Role: models.Role(role)}

	if update.Role == models.RoleStudent {
		grade, ok, err := GetOptionalInt(a.reader, a.tr.T("PromptGrade"), a.out)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
		if ok {
			update.Grade = &grade
		}
	}

	if _, err := a.session.CompleteProfile(ctx, update); err != nil {
		return err
	}
	a.say("ProfileSaved", nil)
	return nil
}
