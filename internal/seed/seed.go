package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/alunos/internal/app/auth"
	appModels "github.com/yigit/alunos/internal/app/models"
	appRepos "github.com/yigit/alunos/internal/app/repositories"
	"github.com/yigit/alunos/internal/pkg/apperrors"
)

// DemoAccount is the account created at start-up when configured
type DemoAccount struct {
	Email    string
	Password string
}

// demoStudents are added to a freshly created demo account
var demoStudents = []appModels.StudentInput{
	{
		FullName:           "Ana Silva",
		RegistrationNumber: "2024001",
		CPF:                "12345678901",
		BirthDate:          "2004-08-21",
		Email:              "ana.silva@example.com",
		Phone:              "11987654321",
	},
	{
		FullName:           "Bruno Costa",
		RegistrationNumber: "2024002",
		CPF:                "10987654321",
		BirthDate:          "2003-02-14",
		Email:              "bruno.costa@example.com",
		Phone:              "21912345678",
	},
}

// CreateDefaultData creates the demo account and its students if the account doesn't exist yet.
// Existing data is left untouched.
func CreateDefaultData(ctx context.Context, provider *appAuth.SessionProvider, gateway appRepos.StudentGateway, demo DemoAccount, lgr zerolog.Logger) error {
	if demo.Email == "" {
		return nil
	}

	lgr.Info().Str("email", demo.Email).Msg("Checking/Creating demo account...")
	account, err := provider.SignUp(ctx, demo.Email, demo.Password)
	if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		lgr.Info().Str("email", demo.Email).Msg("Demo account already exists, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	var finalErr error
	for _, in := range demoStudents {
		if _, err := gateway.Create(ctx, account.ID, in); err != nil {
			// another account may already hold the demo CPF or registration number
			lgr.Warn().Err(err).Str("registrationNumber", in.RegistrationNumber).Msg("Could not create demo student")
			if !errors.Is(err, apperrors.ErrConflict) {
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	lgr.Info().Str("email", demo.Email).Msg("Demo account created")
	return finalErr
}
